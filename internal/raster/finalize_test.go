package raster

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalize_StdFromSecondMoment(t *testing.T) {
	t.Parallel()
	g := makeTestGrid(t, 2, 1, 1, 0, inf)

	require.NoError(t, g.Rasterize(mustCloud(t, 1,
		0.5, 0.5, 2,
		0.5, 0.5, 4,
		0.5, 0.5, 6,
	)))
	r, err := g.Finalize()
	require.NoError(t, err)

	c := r.At(0, 0)
	assert.Equal(t, 3.0, c.Weight)
	assert.InDelta(t, 4.0, c.Bands[0].Mean, 1e-6)
	assert.InDelta(t, math.Sqrt(8.0/3), c.Bands[0].Std, 1e-5)
	assert.Equal(t, 2.0, c.Bands[0].Min)
	assert.Equal(t, 6.0, c.Bands[0].Max)

	// The second-moment buffer now holds std.
	assert.InDelta(t, math.Sqrt(8.0/3), float64(r.Buffers().SecondMoment[0]), 1e-5)
}

func TestFinalize_ThinCellsGetNaNStd(t *testing.T) {
	t.Parallel()
	g := makeTestGrid(t, 3, 3, 1, 1, 0.5)

	// One Gaussian splat: the home cell weighs 1, neighbours less.
	require.NoError(t, g.Rasterize(mustCloud(t, 1, 1.5, 1.5, 9)))
	r, err := g.Finalize()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c := r.At(i, j)
			assert.Greater(t, c.Weight, 0.0)
			assert.Less(t, c.Weight, 2.0)
			assert.True(t, math.IsNaN(c.Bands[0].Std), "cell (%d,%d)", i, j)
			assert.InDelta(t, 9.0, c.Bands[0].Mean, 1e-6)
		}
	}
}

func TestFinalize_ObservedZeroIsNotUnobserved(t *testing.T) {
	t.Parallel()
	g := makeTestGrid(t, 2, 1, 1, 0, inf)

	require.NoError(t, g.Rasterize(mustCloud(t, 1, 0.5, 0.5, 0)))
	r, err := g.Finalize()
	require.NoError(t, err)

	assert.True(t, r.Observed(0, 0))
	assert.Equal(t, 0.0, r.At(0, 0).Bands[0].Mean)
	assert.False(t, r.Observed(1, 0))
	assert.True(t, math.IsNaN(r.At(1, 0).Bands[0].Mean))
}

func TestFinalize_OnlyOnce(t *testing.T) {
	t.Parallel()
	g := makeTestGrid(t, 2, 2, 1, 0, inf)

	r, err := g.Finalize()
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, g.Finalized())

	_, err = g.Finalize()
	assert.True(t, errors.Is(err, ErrFinalized))
}

func TestRaster_Band(t *testing.T) {
	t.Parallel()
	g := makeTestGrid(t, 2, 2, 2, 0, inf)
	require.NoError(t, g.Rasterize(mustCloud(t, 2,
		0.5, 1.5, 1, 100,
		1.5, 0.5, 2, 200,
		1.5, 0.5, 4, 400,
	)))
	r, err := g.Finalize()
	require.NoError(t, err)

	mean1, err := r.Band(StatMean, 1)
	require.NoError(t, err)
	require.Len(t, mean1, 4)
	assert.Equal(t, float32(100), mean1[0])
	assert.True(t, math.IsNaN(float64(mean1[1])))
	assert.True(t, math.IsNaN(float64(mean1[2])))
	assert.Equal(t, float32(250), mean1[3])

	max0, err := r.Band(StatMax, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(4), max0[3])

	std0, err := r.Band(StatStd, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1), std0[3])

	_, err = r.Band(StatMin, 2)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = r.Band(Stat(9), 0)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestRaster_Summary(t *testing.T) {
	t.Parallel()
	g := makeTestGrid(t, 3, 1, 1, 0, inf)
	require.NoError(t, g.Rasterize(mustCloud(t, 1,
		0.5, 0.5, -2,
		2.5, 0.5, 5,
		2.5, 0.5, 7,
	)))
	r, err := g.Finalize()
	require.NoError(t, err)

	s := r.Summary()
	assert.Equal(t, 3, s.Cells)
	assert.Equal(t, 2, s.ObservedCells)
	assert.Equal(t, 3.0, s.TotalWeight)
	require.Len(t, s.Bands, 1)
	assert.Equal(t, -2.0, s.Bands[0].MinMean)
	assert.Equal(t, 6.0, s.Bands[0].MaxMean)
}

func TestParseStat(t *testing.T) {
	t.Parallel()
	for _, st := range []Stat{StatMean, StatStd, StatMin, StatMax} {
		got, err := ParseStat(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}
	_, err := ParseStat("median")
	assert.Error(t, err)
	assert.Equal(t, "Stat(7)", Stat(7).String())
}

func TestRaster_SummaryUnobserved(t *testing.T) {
	t.Parallel()
	g := makeTestGrid(t, 2, 2, 2, 0, inf)
	r, err := g.Finalize()
	require.NoError(t, err)

	s := r.Summary()
	assert.Equal(t, 0, s.ObservedCells)
	assert.Equal(t, []BandSummary{{}, {}}, s.Bands)
}

func TestNewRaster(t *testing.T) {
	t.Parallel()
	g := makeTestGrid(t, 2, 1, 1, 0, inf)
	require.NoError(t, g.Rasterize(mustCloud(t, 1, 0.5, 0.5, 3)))
	r, err := g.Finalize()
	require.NoError(t, err)

	restored, err := NewRaster(r.Geometry(), r.Bands(), copyBuffers(r.Buffers()))
	require.NoError(t, err)
	assert.Equal(t, r.At(0, 0), restored.At(0, 0))
	assert.False(t, restored.Observed(1, 0))

	short := copyBuffers(r.Buffers())
	short.Weight = short.Weight[:1]
	_, err = NewRaster(r.Geometry(), 1, short)
	assert.True(t, errors.Is(err, ErrBufferSize))

	_, err = NewRaster(r.Geometry(), 0, r.Buffers())
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = NewRaster(Geometry{}, 1, r.Buffers())
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
