package raster

import (
	"fmt"
	"math"
)

// CellIndex maps a continuous coordinate onto a cell index along one axis.
func CellIndex(v, origin, resolution float64) int {
	return int(math.Floor((v - origin) / resolution))
}

// CellCenter recovers the continuous coordinate of the centre of cell i.
// Call it with a negated resolution for the vertical axis.
func CellCenter(i int, origin, resolution float64) float64 {
	return origin + resolution*(float64(i)+0.5)
}

// Geometry places a Width x Height grid of square cells in point
// coordinates. (XOff, YOff) is the upper-left corner; rows grow downward
// while y grows upward.
type Geometry struct {
	XOff       float64 `json:"x_off"`
	YOff       float64 `json:"y_off"`
	Resolution float64 `json:"resolution"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// Validate checks that the geometry describes a usable grid.
func (g Geometry) Validate() error {
	if !(g.Resolution > 0) || math.IsInf(g.Resolution, 0) {
		return fmt.Errorf("%w: resolution must be positive and finite, got %v", ErrInvalidConfig, g.Resolution)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: grid size must be positive, got %dx%d", ErrInvalidConfig, g.Width, g.Height)
	}
	if !isFinite(g.XOff) || !isFinite(g.YOff) {
		return fmt.Errorf("%w: origin must be finite, got (%v, %v)", ErrInvalidConfig, g.XOff, g.YOff)
	}
	return nil
}

// Cell returns the (column, row) of the cell containing (x, y).
func (g Geometry) Cell(x, y float64) (i, j int) {
	return CellIndex(x, g.XOff, g.Resolution), CellIndex(-y, -g.YOff, g.Resolution)
}

// Center returns the point coordinates of the centre of cell (i, j).
func (g Geometry) Center(i, j int) (x, y float64) {
	return CellCenter(i, g.XOff, g.Resolution), CellCenter(j, g.YOff, -g.Resolution)
}

// Contains reports whether (i, j) lies inside [0, Width) x [0, Height).
func (g Geometry) Contains(i, j int) bool {
	return i >= 0 && j >= 0 && i < g.Width && j < g.Height
}

// Idx returns the flat cell index: idx = j*Width + i.
func (g Geometry) Idx(i, j int) int { return j*g.Width + i }

// Cells is the total number of cells in the grid.
func (g Geometry) Cells() int { return g.Width * g.Height }

// GeoTransform returns the GDAL-ordered affine transform of the grid:
// x = t[0] + col*t[1] + row*t[2], y = t[3] + col*t[4] + row*t[5].
func (g Geometry) GeoTransform() [6]float64 {
	return [6]float64{g.XOff, g.Resolution, 0, g.YOff, 0, -g.Resolution}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
