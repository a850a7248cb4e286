package export

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// WriteChart renders the observed cells of the plane as an interactive
// HTML scatter of cell centres coloured by value.
func WriteChart(w io.Writer, p Plane) error {
	if err := p.validate(); err != nil {
		return err
	}
	lo, hi, ok := p.Range()
	if !ok {
		return ErrEmptyPlane
	}

	g := p.Geometry
	data := make([]opts.ScatterData, 0, g.Cells())
	for j := 0; j < g.Height; j++ {
		for i := 0; i < g.Width; i++ {
			v := p.at(i, j)
			if math.IsNaN(v) {
				continue
			}
			x, y := g.Center(i, j)
			data = append(data, opts.ScatterData{Value: []interface{}{x, y, v}})
		}
	}

	x0, y1 := g.XOff, g.YOff
	x1 := x0 + float64(g.Width)*g.Resolution
	y0 := y1 - float64(g.Height)*g.Resolution

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "dsmgrid " + p.Label, Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: p.Label, Subtitle: fmt.Sprintf("%dx%d cells res=%g observed=%d", g.Width, g.Height, g.Resolution, len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: x0, Max: x1, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: y0, Max: y1, Name: "Y", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries(p.Label, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	return scatter.Render(w)
}
