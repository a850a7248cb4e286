package raster

import "math"

// BandState is the raw accumulator of one band of one cell. Mean and
// SecondMoment are weighted averages of v and v², not sums.
type BandState struct {
	Mean         float64
	SecondMoment float64
	Min          float64
	Max          float64
}

// CellState is the raw accumulator of one cell. Weight is shared by all
// bands.
type CellState struct {
	Weight float64
	Bands  []BandState
}

// BandStats is the finalised form of a BandState.
type BandStats struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// CellStats is the finalised form of a CellState.
type CellStats struct {
	Weight float64
	Bands  []BandStats
}

// EmptyBand is the seed state of a band before any observation.
func EmptyBand() BandState {
	return BandState{Min: math.Inf(1), Max: math.Inf(-1)}
}

// EmptyCell returns an unobserved cell with the given number of bands.
func EmptyCell(bands int) CellState {
	c := CellState{Bands: make([]BandState, bands)}
	for l := range c.Bands {
		c.Bands[l] = EmptyBand()
	}
	return c
}

// Observed reports whether the cell has received any weight.
func (c CellState) Observed() bool { return c.Weight > 0 }

// Accumulate returns the state after observing values with weight w. The
// receiver is left unchanged. len(values) must equal len(c.Bands).
func (c CellState) Accumulate(values []float64, w float64) CellState {
	next := CellState{Weight: c.Weight + w, Bands: make([]BandState, len(c.Bands))}
	for l, b := range c.Bands {
		next.Bands[l] = updateBand(b, c.Weight, values[l], w)
	}
	return next
}

// Finalize converts the raw accumulator into reportable statistics.
func (c CellState) Finalize() CellStats {
	out := CellStats{Weight: c.Weight, Bands: make([]BandStats, len(c.Bands))}
	for l, b := range c.Bands {
		out.Bands[l] = finalizeBand(b, c.Weight)
	}
	return out
}

// updateBand folds value v with weight w into b, whose cell held weight c
// before this observation. A zero total weight leaves mean and second
// moment alone rather than producing 0/0.
func updateBand(b BandState, c, v, w float64) BandState {
	if total := w + c; total != 0 {
		b.Mean = (v*w + c*b.Mean) / total
		b.SecondMoment = (v*v*w + c*b.SecondMoment) / total
	}
	b.Min = math.Min(b.Min, v)
	b.Max = math.Max(b.Max, v)
	return b
}

// finalizeBand applies the sentinel rules. Var = E[x²] - E[x]² can dip
// below zero from rounding; the resulting NaN is kept.
func finalizeBand(b BandState, weight float64) BandStats {
	nan := math.NaN()
	if weight == 0 {
		return BandStats{Mean: nan, Std: nan, Min: nan, Max: nan}
	}
	s := BandStats{Mean: b.Mean, Min: b.Min, Max: b.Max}
	if weight < 2 {
		s.Std = nan
		return s
	}
	s.Std = math.Sqrt(b.SecondMoment - b.Mean*b.Mean)
	return s
}
