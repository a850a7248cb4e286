package raster

import (
	"fmt"
	"math"
)

// Extent tracks the x/y bounds of clouds seen so far, so a grid covering
// several files can be sized without holding them all in memory.
type Extent struct {
	XMin, XMax float64
	YMin, YMax float64
}

// EmptyExtent returns an extent that contains nothing.
func EmptyExtent() Extent {
	return Extent{
		XMin: math.Inf(1), XMax: math.Inf(-1),
		YMin: math.Inf(1), YMax: math.Inf(-1),
	}
}

// Empty reports whether no point has been added.
func (e Extent) Empty() bool { return e.XMin > e.XMax || e.YMin > e.YMax }

// Add grows the extent to include (x, y). Non-finite coordinates are
// ignored here; Rasterize rejects them.
func (e *Extent) Add(x, y float64) {
	if !isFinite(x) || !isFinite(y) {
		return
	}
	e.XMin = math.Min(e.XMin, x)
	e.XMax = math.Max(e.XMax, x)
	e.YMin = math.Min(e.YMin, y)
	e.YMax = math.Max(e.YMax, y)
}

// AddCloud grows the extent to include every point of c.
func (e *Extent) AddCloud(c Cloud) {
	for n := 0; n < c.Len(); n++ {
		x, y, _ := c.Point(n)
		e.Add(x, y)
	}
}

// Geometry snaps the extent outward onto multiples of resolution. The
// upper-left corner is (floor(xmin/res)*res, ceil(ymax/res)*res).
func (e Extent) Geometry(resolution float64) (Geometry, error) {
	if e.Empty() {
		return Geometry{}, fmt.Errorf("%w: empty extent", ErrInvalidInput)
	}
	if !(resolution > 0) {
		return Geometry{}, fmt.Errorf("%w: resolution must be positive, got %v", ErrInvalidConfig, resolution)
	}
	xoff := math.Floor(e.XMin/resolution) * resolution
	yoff := math.Ceil(e.YMax/resolution) * resolution
	return Geometry{
		XOff:       xoff,
		YOff:       yoff,
		Resolution: resolution,
		Width:      int(1 + math.Floor((e.XMax-xoff)/resolution)),
		Height:     int(1 - math.Floor((e.YMin-yoff)/resolution)),
	}, nil
}
