package raster

import (
	"fmt"
	"math"
)

// Stat names one of the four finalised statistics.
type Stat int

const (
	StatMean Stat = iota
	StatStd
	StatMin
	StatMax
)

func (s Stat) String() string {
	switch s {
	case StatMean:
		return "mean"
	case StatStd:
		return "std"
	case StatMin:
		return "min"
	case StatMax:
		return "max"
	}
	return fmt.Sprintf("Stat(%d)", int(s))
}

// ParseStat is the inverse of Stat.String.
func ParseStat(s string) (Stat, error) {
	for _, st := range []Stat{StatMean, StatStd, StatMin, StatMax} {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown statistic %q", s)
}

// Raster is a finalised grid. Its SecondMoment buffer now holds standard
// deviations; unobserved cells are NaN in every statistic.
type Raster struct {
	geom   Geometry
	layout Layout
	buf    Buffers
}

// NewRaster adopts already finalised buffers, e.g. ones restored from a
// snapshot.
func NewRaster(geom Geometry, bands int, bufs Buffers) (*Raster, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	layout := Layout{Width: geom.Width, Height: geom.Height, Bands: bands}
	if err := layout.Validate(bufs); err != nil {
		return nil, err
	}
	return &Raster{geom: geom, layout: layout, buf: bufs}, nil
}

// Finalize converts the accumulator into a Raster in place. It must run
// once, after every Rasterize call. The grid cannot be used afterwards.
func (g *Grid) Finalize() (*Raster, error) {
	if g.finalized {
		opsf("finalize called twice on the same grid")
		return nil, ErrFinalized
	}
	g.finalized = true

	var unobserved, thin int
	k := g.layout.Bands
	for idx := 0; idx < g.layout.Cells(); idx++ {
		w := float64(g.buf.Weight[idx])
		switch {
		case w == 0:
			unobserved++
		case w < 2:
			thin++
		}
		base := g.layout.Offset(idx, 0)
		for l := 0; l < k; l++ {
			s := finalizeBand(g.band(base+l), w)
			g.buf.Mean[base+l] = float32(s.Mean)
			g.buf.SecondMoment[base+l] = float32(s.Std)
			g.buf.Min[base+l] = float32(s.Min)
			g.buf.Max[base+l] = float32(s.Max)
		}
	}
	diagf("finalized %dx%d grid: %d unobserved cells, %d below two samples", g.geom.Width, g.geom.Height, unobserved, thin)

	return &Raster{geom: g.geom, layout: g.layout, buf: g.buf}, nil
}

// Geometry returns the raster placement.
func (r *Raster) Geometry() Geometry { return r.geom }

// Bands returns the number of bands per cell.
func (r *Raster) Bands() int { return r.layout.Bands }

// Buffers returns the finalised buffers; SecondMoment holds std.
func (r *Raster) Buffers() Buffers { return r.buf }

// Weight returns the accumulated weight of cell (i, j).
func (r *Raster) Weight(i, j int) float64 {
	return float64(r.buf.Weight[r.geom.Idx(i, j)])
}

// Observed reports whether cell (i, j) received any weight. This is the
// only reliable "has data" test: a mean of 0 may be a real value.
func (r *Raster) Observed(i, j int) bool { return r.Weight(i, j) > 0 }

// At returns the statistics of cell (i, j).
func (r *Raster) At(i, j int) CellStats {
	idx := r.geom.Idx(i, j)
	out := CellStats{Weight: float64(r.buf.Weight[idx]), Bands: make([]BandStats, r.layout.Bands)}
	for l := range out.Bands {
		off := r.layout.Offset(idx, l)
		out.Bands[l] = BandStats{
			Mean: float64(r.buf.Mean[off]),
			Std:  float64(r.buf.SecondMoment[off]),
			Min:  float64(r.buf.Min[off]),
			Max:  float64(r.buf.Max[off]),
		}
	}
	return out
}

// Band extracts a row-major W*H plane of one statistic for band l.
func (r *Raster) Band(stat Stat, l int) ([]float32, error) {
	if l < 0 || l >= r.layout.Bands {
		return nil, fmt.Errorf("%w: band %d out of range [0, %d)", ErrInvalidInput, l, r.layout.Bands)
	}
	var src []float32
	switch stat {
	case StatMean:
		src = r.buf.Mean
	case StatStd:
		src = r.buf.SecondMoment
	case StatMin:
		src = r.buf.Min
	case StatMax:
		src = r.buf.Max
	default:
		return nil, fmt.Errorf("%w: unknown statistic %v", ErrInvalidInput, stat)
	}
	out := make([]float32, r.layout.Cells())
	for idx := range out {
		out[idx] = src[r.layout.Offset(idx, l)]
	}
	return out, nil
}

// Summary is a coarse description of a raster for logs and persistence.
type Summary struct {
	Cells         int           `json:"cells"`
	ObservedCells int           `json:"observed_cells"`
	TotalWeight   float64       `json:"total_weight"`
	Bands         []BandSummary `json:"bands"`
}

// BandSummary is the range of mean values of one band over observed cells.
type BandSummary struct {
	MinMean float64 `json:"min_mean"`
	MaxMean float64 `json:"max_mean"`
}

// Summary scans the raster once.
func (r *Raster) Summary() Summary {
	s := Summary{Cells: r.layout.Cells(), Bands: make([]BandSummary, r.layout.Bands)}
	for l := range s.Bands {
		s.Bands[l] = BandSummary{MinMean: math.Inf(1), MaxMean: math.Inf(-1)}
	}
	for idx := 0; idx < r.layout.Cells(); idx++ {
		w := float64(r.buf.Weight[idx])
		if w <= 0 {
			continue
		}
		s.ObservedCells++
		s.TotalWeight += w
		for l := range s.Bands {
			m := float64(r.buf.Mean[r.layout.Offset(idx, l)])
			s.Bands[l].MinMean = math.Min(s.Bands[l].MinMean, m)
			s.Bands[l].MaxMean = math.Max(s.Bands[l].MaxMean, m)
		}
	}
	if s.ObservedCells == 0 {
		for l := range s.Bands {
			s.Bands[l] = BandSummary{}
		}
	}
	return s
}
