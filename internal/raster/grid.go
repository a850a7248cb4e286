package raster

import (
	"fmt"
)

// Grid is the accumulating state of a raster: geometry, splat parameters
// and the five flat buffers. A Grid is not safe for concurrent use; callers
// that parallelise must give each goroutine a disjoint set of cells.
type Grid struct {
	geom   Geometry
	layout Layout
	kernel Kernel
	radius int
	buf    Buffers

	finalized bool
	stats     RasterizeStats
}

// RasterizeStats counts the work done by Rasterize over the grid's life.
type RasterizeStats struct {
	Batches     int   // Rasterize calls that were applied
	Points      int64 // points consumed
	CellUpdates int64 // in-bounds splats applied
	Dropped     int64 // splats that fell outside the grid
}

// NewGrid allocates and seeds buffers for cfg.
func NewGrid(cfg *RasterConfig) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newGrid(cfg, NewBuffers(cfg.Layout())), nil
}

// WrapBuffers builds a Grid over caller-owned buffers. The buffers must
// already be seeded (see Buffers.Seed) or hold state from an earlier grid
// with the same configuration; they are validated once here and never
// bounds-checked against the layout again.
func WrapBuffers(cfg *RasterConfig, bufs Buffers) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Layout().Validate(bufs); err != nil {
		return nil, err
	}
	return newGrid(cfg, bufs), nil
}

func newGrid(cfg *RasterConfig, bufs Buffers) *Grid {
	return &Grid{
		geom:   cfg.Geometry,
		layout: cfg.Layout(),
		kernel: cfg.Kernel(),
		radius: cfg.Radius,
		buf:    bufs,
	}
}

// Geometry returns the grid placement.
func (g *Grid) Geometry() Geometry { return g.geom }

// Bands returns the number of values accumulated per cell.
func (g *Grid) Bands() int { return g.layout.Bands }

// Radius returns the splat half-width in cells.
func (g *Grid) Radius() int { return g.radius }

// Kernel returns the splat kernel.
func (g *Grid) Kernel() Kernel { return g.kernel }

// Finalized reports whether Finalize has run.
func (g *Grid) Finalized() bool { return g.finalized }

// Stats returns the accumulated rasterisation counters.
func (g *Grid) Stats() RasterizeStats { return g.stats }

// Cell returns a copy of the raw accumulator of cell (i, j).
func (g *Grid) Cell(i, j int) (CellState, error) {
	if g.finalized {
		return CellState{}, ErrFinalized
	}
	if !g.geom.Contains(i, j) {
		return CellState{}, fmt.Errorf("%w: cell (%d, %d) outside %dx%d grid", ErrInvalidInput, i, j, g.geom.Width, g.geom.Height)
	}
	idx := g.geom.Idx(i, j)
	c := CellState{Weight: float64(g.buf.Weight[idx]), Bands: make([]BandState, g.layout.Bands)}
	for l := range c.Bands {
		c.Bands[l] = g.band(g.layout.Offset(idx, l))
	}
	return c, nil
}

func (g *Grid) band(off int) BandState {
	return BandState{
		Mean:         float64(g.buf.Mean[off]),
		SecondMoment: float64(g.buf.SecondMoment[off]),
		Min:          float64(g.buf.Min[off]),
		Max:          float64(g.buf.Max[off]),
	}
}

func (g *Grid) setBand(off int, b BandState) {
	g.buf.Mean[off] = float32(b.Mean)
	g.buf.SecondMoment[off] = float32(b.SecondMoment)
	g.buf.Min[off] = float32(b.Min)
	g.buf.Max[off] = float32(b.Max)
}

// accumulate folds one observation into cell idx in place. Every band sees
// the same pre-update weight; the shared weight is bumped once at the end.
func (g *Grid) accumulate(idx int, values []float64, w float64) {
	c := float64(g.buf.Weight[idx])
	base := g.layout.Offset(idx, 0)
	for l, v := range values {
		g.setBand(base+l, updateBand(g.band(base+l), c, v, w))
	}
	g.buf.Weight[idx] = float32(c + w)
}
