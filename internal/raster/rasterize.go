package raster

import (
	"fmt"
	"math"
)

// Rasterize splats every point of cloud onto the (2r+1)² neighbourhood of
// its home cell and merges the weighted values into the grid. It may be
// called any number of times before Finalize; each call adds to the
// existing state. Splats falling outside the grid are dropped.
//
// The cloud is validated as a whole first, so an error leaves the grid
// untouched.
func (g *Grid) Rasterize(cloud Cloud) error {
	if g.finalized {
		opsf("rasterize called on a finalized grid")
		return ErrFinalized
	}
	if cloud.Bands != g.layout.Bands {
		return fmt.Errorf("%w: cloud has %d bands, grid has %d", ErrBandMismatch, cloud.Bands, g.layout.Bands)
	}
	if err := cloud.validate(); err != nil {
		opsf("rejected batch of %d values: %v", len(cloud.Data), err)
		return err
	}

	var updates, dropped int64
	r := g.radius
	n := cloud.Len()
	for p := 0; p < n; p++ {
		x, y, values := cloud.Point(p)
		i, j := g.geom.Cell(x, y)
		if traceLogger != nil {
			tracef("point %d at (%.3f, %.3f) -> home cell (%d, %d)", p, x, y, i, j)
		}
		for di := -r; di <= r; di++ {
			for dj := -r; dj <= r; dj++ {
				ii, jj := i+di, j+dj
				if !g.geom.Contains(ii, jj) {
					dropped++
					continue
				}
				g.accumulate(g.geom.Idx(ii, jj), values, g.weight(x, y, ii, jj))
				updates++
			}
		}
	}

	g.stats.Batches++
	g.stats.Points += int64(n)
	g.stats.CellUpdates += updates
	g.stats.Dropped += dropped
	diagf("batch %d: %d points, %d cell updates, %d splats outside grid", g.stats.Batches, n, updates, dropped)
	return nil
}

// weight is the kernel weight between (x, y) and the centre of (i, j).
func (g *Grid) weight(x, y float64, i, j int) float64 {
	if g.kernel.IsBox() {
		return 1
	}
	cx, cy := g.geom.Center(i, j)
	return g.kernel.Weight(math.Hypot(x-cx, y-cy))
}
