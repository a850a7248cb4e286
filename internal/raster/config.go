package raster

import (
	"fmt"
	"math"

	"github.com/banshee-data/dsmgrid/internal/config"
)

// RasterConfig provides a configuration builder for a Grid. It allows
// setting parameters with defaults and validation before allocating.
type RasterConfig struct {
	Geometry Geometry // Grid placement and size
	Bands    int      // Auxiliary values per point (default: 1)
	Radius   int      // Splat half-width in cells (default: 0)
	Sigma    float64  // Gaussian std in point units; +Inf for box (default: +Inf)
}

// DefaultRasterConfig returns a RasterConfig loaded from the canonical
// defaults file (config/dsmgrid.defaults.json). The geometry is left zero
// and must be set before use.
func DefaultRasterConfig() *RasterConfig {
	return RasterConfigFromFile(config.MustLoadDefaultConfig())
}

// RasterConfigFromFile builds a RasterConfig from a loaded Config. An ROI
// present in the file becomes the geometry.
func RasterConfigFromFile(cfg *config.Config) *RasterConfig {
	rc := &RasterConfig{
		Bands:  1,
		Radius: cfg.GetRadius(),
		Sigma:  cfg.GetSigma(),
	}
	rc.Geometry.Resolution = cfg.GetResolution()
	if roi := cfg.ROI; roi != nil {
		rc.Geometry = Geometry{
			XOff:       roi.XOff,
			YOff:       roi.YOff,
			Resolution: rc.Geometry.Resolution,
			Width:      roi.Width,
			Height:     roi.Height,
		}
	}
	return rc
}

// Validate checks if the configuration is valid.
func (c *RasterConfig) Validate() error {
	if err := c.Geometry.Validate(); err != nil {
		return err
	}
	if c.Bands <= 0 {
		return fmt.Errorf("%w: Bands must be positive, got %d", ErrInvalidConfig, c.Bands)
	}
	if c.Radius < 0 {
		return fmt.Errorf("%w: Radius must be non-negative, got %d", ErrInvalidConfig, c.Radius)
	}
	return c.Kernel().Validate()
}

// Kernel returns the splat kernel described by Sigma.
func (c *RasterConfig) Kernel() Kernel { return Kernel{Sigma: c.Sigma} }

// Layout returns the buffer layout for this configuration.
func (c *RasterConfig) Layout() Layout {
	return Layout{Width: c.Geometry.Width, Height: c.Geometry.Height, Bands: c.Bands}
}

// WithGeometry sets the grid placement and size.
func (c *RasterConfig) WithGeometry(g Geometry) *RasterConfig {
	c.Geometry = g
	return c
}

// WithResolution sets the cell edge length.
func (c *RasterConfig) WithResolution(r float64) *RasterConfig {
	c.Geometry.Resolution = r
	return c
}

// WithBands sets the number of auxiliary values per point.
func (c *RasterConfig) WithBands(k int) *RasterConfig {
	c.Bands = k
	return c
}

// WithRadius sets the splat half-width in cells.
func (c *RasterConfig) WithRadius(r int) *RasterConfig {
	c.Radius = r
	return c
}

// WithSigma sets the Gaussian standard deviation.
func (c *RasterConfig) WithSigma(s float64) *RasterConfig {
	c.Sigma = s
	return c
}

// WithBoxKernel makes every in-radius candidate weigh 1.
func (c *RasterConfig) WithBoxKernel() *RasterConfig {
	c.Sigma = math.Inf(1)
	return c
}
