package raster

import (
	"fmt"
	"math"
)

// Cloud is a point-major flat buffer: each point is x, y followed by Bands
// values. The buffer is only read.
type Cloud struct {
	Data  []float64
	Bands int
}

// NewCloud wraps data as a cloud with the given band count.
func NewCloud(data []float64, bands int) (Cloud, error) {
	if bands <= 0 {
		return Cloud{}, fmt.Errorf("%w: cloud needs at least one band, got %d", ErrInvalidInput, bands)
	}
	if len(data)%(2+bands) != 0 {
		return Cloud{}, fmt.Errorf("%w: %d values is not a multiple of point stride %d", ErrInvalidInput, len(data), 2+bands)
	}
	return Cloud{Data: data, Bands: bands}, nil
}

// Stride is the number of values per point.
func (c Cloud) Stride() int { return 2 + c.Bands }

// Len returns the number of points.
func (c Cloud) Len() int {
	if c.Bands <= 0 {
		return 0
	}
	return len(c.Data) / c.Stride()
}

// Point returns the coordinates and band values of point n. The values
// slice aliases the cloud buffer.
func (c Cloud) Point(n int) (x, y float64, values []float64) {
	off := n * c.Stride()
	return c.Data[off], c.Data[off+1], c.Data[off+2 : off+c.Stride()]
}

// validate checks the whole buffer before any grid mutation.
func (c Cloud) validate() error {
	if c.Bands <= 0 || len(c.Data)%c.Stride() != 0 {
		return fmt.Errorf("%w: %d values with %d bands", ErrInvalidInput, len(c.Data), c.Bands)
	}
	for n, v := range c.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: point %d column %d is %v", ErrInvalidInput, n/c.Stride(), n%c.Stride(), v)
		}
	}
	return nil
}
