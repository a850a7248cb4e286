package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical defaults file.
// This is the single source of truth for all default rasterisation values.
const DefaultConfigPath = "config/dsmgrid.defaults.json"

// Config represents the root configuration for a rasterisation job.
// Every field is optional; the Get* accessors supply defaults for
// anything left out of the file.
type Config struct {
	// Grid params
	Resolution *float64 `json:"resolution,omitempty"` // cell edge length in point units
	ROI        *ROI     `json:"roi,omitempty"`        // fixed grid; computed from the clouds when absent

	// Splat params
	Radius *int     `json:"radius,omitempty"` // neighbourhood half-width in cells
	Sigma  *float64 `json:"sigma,omitempty"`  // Gaussian std; absent means box kernel

	// Output params
	Band          *int     `json:"band,omitempty"`            // band written by single-band writers
	NoData        *float64 `json:"nodata,omitempty"`          // value written for NaN cells in ASCII grids
	HeatmapSizeCm *float64 `json:"heatmap_size_cm,omitempty"` // edge of the square PNG preview
	DBPath        *string  `json:"db_path,omitempty"`         // sqlite file for raster snapshots
}

// ROI pins the output grid instead of deriving it from cloud extents.
type ROI struct {
	XOff   float64 `json:"x_off"`
	YOff   float64 `json:"y_off"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptyConfig returns a Config with all fields set to nil.
// Use LoadConfig to load actual values from a file.
func EmptyConfig() *Config {
	return &Config{}
}

// LoadConfig loads a Config from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted
// from the file fall back to their defaults, so partial configs are safe.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a JSON config document.
func ParseConfig(data []byte) (*Config, error) {
	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *Config {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.Resolution != nil && !(*c.Resolution > 0) {
		return fmt.Errorf("resolution must be positive, got %v", *c.Resolution)
	}
	if c.Radius != nil && *c.Radius < 0 {
		return fmt.Errorf("radius must be non-negative, got %d", *c.Radius)
	}
	if c.Sigma != nil && (*c.Sigma < 0 || math.IsNaN(*c.Sigma)) {
		return fmt.Errorf("sigma must be non-negative, got %v", *c.Sigma)
	}
	if c.Band != nil && *c.Band < 0 {
		return fmt.Errorf("band must be non-negative, got %d", *c.Band)
	}
	if c.HeatmapSizeCm != nil && !(*c.HeatmapSizeCm > 0) {
		return fmt.Errorf("heatmap_size_cm must be positive, got %v", *c.HeatmapSizeCm)
	}
	if c.ROI != nil && (c.ROI.Width <= 0 || c.ROI.Height <= 0) {
		return fmt.Errorf("roi size must be positive, got %dx%d", c.ROI.Width, c.ROI.Height)
	}
	return nil
}

// GetResolution returns the resolution value or the default.
func (c *Config) GetResolution() float64 {
	if c.Resolution == nil {
		return 1.0 // default: 1 point unit per cell
	}
	return *c.Resolution
}

// GetRadius returns the radius value or the default.
func (c *Config) GetRadius() int {
	if c.Radius == nil {
		return 0 // default: home cell only
	}
	return *c.Radius
}

// GetSigma returns the sigma value, or +Inf (box kernel) when unset.
func (c *Config) GetSigma() float64 {
	if c.Sigma == nil {
		return math.Inf(1)
	}
	return *c.Sigma
}

// GetBand returns the band value or the default.
func (c *Config) GetBand() int {
	if c.Band == nil {
		return 0
	}
	return *c.Band
}

// GetNoData returns the nodata value or the default.
func (c *Config) GetNoData() float64 {
	if c.NoData == nil {
		return -9999
	}
	return *c.NoData
}

// GetHeatmapSizeCm returns the heatmap_size_cm value or the default.
func (c *Config) GetHeatmapSizeCm() float64 {
	if c.HeatmapSizeCm == nil {
		return 15
	}
	return *c.HeatmapSizeCm
}

// GetDBPath returns the db_path value; empty disables persistence.
func (c *Config) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

// Merge overlays every field set in o onto c and returns c.
func (c *Config) Merge(o *Config) *Config {
	if o == nil {
		return c
	}
	if o.Resolution != nil {
		c.Resolution = ptrFloat64(*o.Resolution)
	}
	if o.ROI != nil {
		roi := *o.ROI
		c.ROI = &roi
	}
	if o.Radius != nil {
		c.Radius = ptrInt(*o.Radius)
	}
	if o.Sigma != nil {
		c.Sigma = ptrFloat64(*o.Sigma)
	}
	if o.Band != nil {
		c.Band = ptrInt(*o.Band)
	}
	if o.NoData != nil {
		c.NoData = ptrFloat64(*o.NoData)
	}
	if o.HeatmapSizeCm != nil {
		c.HeatmapSizeCm = ptrFloat64(*o.HeatmapSizeCm)
	}
	if o.DBPath != nil {
		c.DBPath = ptrString(*o.DBPath)
	}
	return c
}
