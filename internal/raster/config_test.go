package raster

import (
	"errors"
	"math"
	"testing"

	"github.com/banshee-data/dsmgrid/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRasterConfig(t *testing.T) {
	cfg := DefaultRasterConfig()

	assert.Equal(t, 1.0, cfg.Geometry.Resolution)
	assert.Equal(t, 0, cfg.Radius)
	assert.Equal(t, 1, cfg.Bands)
	assert.True(t, math.IsInf(cfg.Sigma, 1))
	assert.True(t, cfg.Kernel().IsBox())

	// Geometry is unset until an ROI is chosen.
	assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfig))

	cfg.WithGeometry(Geometry{XOff: 0, YOff: 10, Resolution: 1, Width: 10, Height: 10})
	assert.NoError(t, cfg.Validate())
}

func TestRasterConfigFromFile_ROI(t *testing.T) {
	t.Parallel()
	res, radius, sigma := 0.5, 2, 1.25
	cfg := RasterConfigFromFile(&config.Config{
		Resolution: &res,
		Radius:     &radius,
		Sigma:      &sigma,
		ROI:        &config.ROI{XOff: 100, YOff: 200, Width: 8, Height: 6},
	})

	require.NoError(t, cfg.Validate())
	assert.Equal(t, Geometry{XOff: 100, YOff: 200, Resolution: 0.5, Width: 8, Height: 6}, cfg.Geometry)
	assert.Equal(t, 2, cfg.Radius)
	assert.Equal(t, 1.25, cfg.Sigma)
	assert.Equal(t, Layout{Width: 8, Height: 6, Bands: 1}, cfg.Layout())
}
