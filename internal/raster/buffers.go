package raster

import (
	"fmt"
	"math"
)

// Layout describes how the flat output buffers are indexed. Band varies
// fastest inside a cell, then column, then row.
type Layout struct {
	Width  int
	Height int
	Bands  int
}

// Cells is W*H.
func (l Layout) Cells() int { return l.Width * l.Height }

// Len is the length of each per-band buffer: W*H*k.
func (l Layout) Len() int { return l.Cells() * l.Bands }

// CellStride is the distance between two adjacent cells in a per-band buffer.
func (l Layout) CellStride() int { return l.Bands }

// RowStride is the distance between two adjacent rows in a per-band buffer.
func (l Layout) RowStride() int { return l.Width * l.Bands }

// Offset returns the position of band b of cell idx in a per-band buffer.
func (l Layout) Offset(idx, b int) int { return idx*l.Bands + b }

// Buffers are the five parallel output buffers. Mean, SecondMoment, Min and
// Max hold W*H*k values; Weight holds W*H. After finalisation SecondMoment
// holds the standard deviation.
type Buffers struct {
	Mean         []float32
	SecondMoment []float32
	Min          []float32
	Max          []float32
	Weight       []float32
}

// NewBuffers allocates buffers for l and seeds them for accumulation.
func NewBuffers(l Layout) Buffers {
	b := Buffers{
		Mean:         make([]float32, l.Len()),
		SecondMoment: make([]float32, l.Len()),
		Min:          make([]float32, l.Len()),
		Max:          make([]float32, l.Len()),
		Weight:       make([]float32, l.Cells()),
	}
	b.Seed()
	return b
}

// Seed resets every buffer to the unobserved state: zero mean, second
// moment and weight, +Inf min and -Inf max.
func (b Buffers) Seed() {
	clear(b.Mean)
	clear(b.SecondMoment)
	clear(b.Weight)
	for n := range b.Min {
		b.Min[n] = float32(math.Inf(1))
	}
	for n := range b.Max {
		b.Max[n] = float32(math.Inf(-1))
	}
}

// Validate checks every buffer length against the layout.
func (l Layout) Validate(b Buffers) error {
	if l.Width <= 0 || l.Height <= 0 || l.Bands <= 0 {
		return fmt.Errorf("%w: layout %dx%dx%d", ErrInvalidConfig, l.Width, l.Height, l.Bands)
	}
	want := l.Len()
	for _, buf := range []struct {
		name string
		data []float32
	}{
		{"mean", b.Mean},
		{"second moment", b.SecondMoment},
		{"min", b.Min},
		{"max", b.Max},
	} {
		if len(buf.data) != want {
			return fmt.Errorf("%w: %s buffer has %d values, want %d", ErrBufferSize, buf.name, len(buf.data), want)
		}
	}
	if len(b.Weight) != l.Cells() {
		return fmt.Errorf("%w: weight buffer has %d values, want %d", ErrBufferSize, len(b.Weight), l.Cells())
	}
	return nil
}
