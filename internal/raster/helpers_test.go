package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// makeTestGrid builds a w x h grid with unit cells whose upper-left corner
// is (0, h), so cell (i, j) is centred on (i+0.5, h-j-0.5).
func makeTestGrid(t *testing.T, w, h, bands, radius int, sigma float64) *Grid {
	t.Helper()
	cfg := (&RasterConfig{}).
		WithGeometry(Geometry{XOff: 0, YOff: float64(h), Resolution: 1, Width: w, Height: h}).
		WithBands(bands).
		WithRadius(radius).
		WithSigma(sigma)
	g, err := NewGrid(cfg)
	require.NoError(t, err)
	return g
}

func mustCloud(t *testing.T, bands int, data ...float64) Cloud {
	t.Helper()
	c, err := NewCloud(data, bands)
	require.NoError(t, err)
	return c
}

func copyBuffers(b Buffers) Buffers {
	return Buffers{
		Mean:         append([]float32(nil), b.Mean...),
		SecondMoment: append([]float32(nil), b.SecondMoment...),
		Min:          append([]float32(nil), b.Min...),
		Max:          append([]float32(nil), b.Max...),
		Weight:       append([]float32(nil), b.Weight...),
	}
}

var inf = math.Inf(1)
