// Package pipeline runs a complete rasterisation job: size the grid from
// the inputs, splat each file as one batch, finalise, then write the
// requested rasters and previews and optionally persist a snapshot.
package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/dsmgrid/internal/config"
	"github.com/banshee-data/dsmgrid/internal/raster"
	"github.com/banshee-data/dsmgrid/internal/rasterdb"
)

// ErrNoInputs is returned by Validate for a job without point clouds.
var ErrNoInputs = errors.New("no input clouds")

// Outputs names the files a job writes. Empty paths are skipped. The
// statistic rasters are ESRI ASCII grids; Heatmap, Chart and TIFF are
// previews of the mean of the selected band.
type Outputs struct {
	Mean string
	Std  string
	Min  string
	Max  string

	Heatmap string // PNG
	Chart   string // HTML
	TIFF    string
}

// Job describes one rasterisation run.
type Job struct {
	Inputs     []string
	Resolution float64
	Radius     int
	Sigma      float64          // +Inf selects the box kernel
	ROI        *raster.Geometry // fixed grid with its own resolution; nil sizes it from the inputs

	Band          int     // band written to the outputs
	NoData        float64 // ASCII grid value for unobserved cells
	HeatmapSizeCm float64

	Outputs Outputs
	Store   rasterdb.SnapshotStore // nil disables persistence
}

// JobFromConfig fills the tunable fields of a Job from a loaded config.
// Inputs, outputs and the store are left for the caller.
func JobFromConfig(cfg *config.Config) Job {
	rc := raster.RasterConfigFromFile(cfg)
	j := Job{
		Resolution:    rc.Geometry.Resolution,
		Radius:        rc.Radius,
		Sigma:         rc.Sigma,
		Band:          cfg.GetBand(),
		NoData:        cfg.GetNoData(),
		HeatmapSizeCm: cfg.GetHeatmapSizeCm(),
	}
	if cfg.ROI != nil {
		roi := rc.Geometry
		j.ROI = &roi
	}
	return j
}

// Validate checks the job before any file is read.
func (j Job) Validate() error {
	if len(j.Inputs) == 0 {
		return ErrNoInputs
	}
	if !(j.Resolution > 0) || math.IsInf(j.Resolution, 0) {
		return fmt.Errorf("%w: resolution must be positive and finite, got %v", raster.ErrInvalidConfig, j.Resolution)
	}
	if j.Band < 0 {
		return fmt.Errorf("%w: band must be non-negative, got %d", raster.ErrInvalidConfig, j.Band)
	}
	if j.ROI != nil {
		if err := j.ROI.Validate(); err != nil {
			return err
		}
	}
	cfg := (&raster.RasterConfig{}).
		WithResolution(j.Resolution).
		WithRadius(j.Radius).
		WithSigma(j.Sigma)
	if cfg.Radius < 0 {
		return fmt.Errorf("%w: radius must be non-negative, got %d", raster.ErrInvalidConfig, j.Radius)
	}
	return cfg.Kernel().Validate()
}

// params is the JSON record of a job stored with each snapshot.
type params struct {
	Inputs     []string `json:"inputs"`
	Resolution float64  `json:"resolution"`
	Radius     int      `json:"radius"`
	Sigma      *float64 `json:"sigma,omitempty"` // absent for the box kernel
	FixedROI   bool     `json:"fixed_roi"`
}

func (j Job) params() params {
	p := params{
		Inputs:     j.Inputs,
		Resolution: j.Resolution,
		Radius:     j.Radius,
		FixedROI:   j.ROI != nil,
	}
	if !math.IsInf(j.Sigma, 1) {
		s := j.Sigma
		p.Sigma = &s
	}
	return p
}
