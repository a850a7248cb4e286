package export

import (
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// planeGrid adapts a Plane to plotter.GridXYZ. Rows are flipped so that Y
// increases with the row index.
type planeGrid struct {
	p Plane
}

func (g planeGrid) Dims() (c, r int) { return g.p.Geometry.Width, g.p.Geometry.Height }

func (g planeGrid) Z(c, r int) float64 { return g.p.at(c, g.p.Geometry.Height-1-r) }

func (g planeGrid) X(c int) float64 {
	x, _ := g.p.Geometry.Center(c, 0)
	return x
}

func (g planeGrid) Y(r int) float64 {
	_, y := g.p.Geometry.Center(0, g.p.Geometry.Height-1-r)
	return y
}

// WriteHeatmap renders the plane as a square PNG heat map of the given side.
// Unobserved cells are left transparent.
func WriteHeatmap(w io.Writer, p Plane, side vg.Length) error {
	if err := p.validate(); err != nil {
		return err
	}
	lo, hi, ok := p.Range()
	if !ok {
		return ErrEmptyPlane
	}

	pl := plot.New()
	pl.Title.Text = p.Label
	pl.X.Label.Text = "X"
	pl.Y.Label.Text = "Y"

	hm := plotter.NewHeatMap(planeGrid{p: p}, palette.Heat(256, 1))
	hm.Min, hm.Max = lo, hi
	if hi == lo {
		hm.Max = lo + 1
	}
	hm.NaN = color.Transparent
	pl.Add(hm)

	wt, err := pl.WriterTo(side, side, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// HeatmapSide converts a size in centimetres to a plot length.
func HeatmapSide(cm float64) vg.Length {
	if cm <= 0 || math.IsNaN(cm) {
		cm = 15
	}
	return vg.Length(cm) * vg.Centimeter
}
