package raster

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtent_Geometry(t *testing.T) {
	t.Parallel()

	e := EmptyExtent()
	assert.True(t, e.Empty())
	e.AddCloud(mustCloud(t, 1,
		3.2, 7.9, 0,
		10.1, 1.5, 0,
	))
	e.AddCloud(mustCloud(t, 1, 4.0, 0.4, 0))
	assert.False(t, e.Empty())

	got, err := e.Geometry(2)
	require.NoError(t, err)

	want := Geometry{XOff: 2, YOff: 8, Resolution: 2, Width: 5, Height: 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Geometry mismatch (-want +got):\n%s", diff)
	}

	// Every input point maps inside the derived grid.
	for _, p := range [][2]float64{{3.2, 7.9}, {10.1, 1.5}, {4.0, 0.4}} {
		i, j := got.Cell(p[0], p[1])
		assert.True(t, got.Contains(i, j), "point %v -> (%d,%d)", p, i, j)
	}
}

func TestExtent_GeometryErrors(t *testing.T) {
	t.Parallel()

	_, err := EmptyExtent().Geometry(1)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	e := EmptyExtent()
	e.Add(0, 0)
	_, err = e.Geometry(0)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestExtent_SinglePoint(t *testing.T) {
	t.Parallel()
	e := EmptyExtent()
	e.Add(5.5, 5.5)

	g, err := e.Geometry(1)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Width)
	// The vertical span rounds up from the snapped top edge, leaving one
	// spare row below a point that is not on a cell boundary.
	assert.Equal(t, 2, g.Height)
	i, j := g.Cell(5.5, 5.5)
	assert.Equal(t, 0, i)
	assert.Equal(t, 0, j)
}

func TestExtent_IgnoresNonFinite(t *testing.T) {
	t.Parallel()
	e := EmptyExtent()
	e.Add(math.NaN(), 1)
	e.Add(1, math.Inf(1))
	assert.True(t, e.Empty())
	e.Add(2, 3)
	assert.Equal(t, Extent{XMin: 2, XMax: 2, YMin: 3, YMax: 3}, e)
}
