package export

import (
	"bufio"
	"io"
	"math"
	"strconv"
)

// WriteASCGrid writes the plane as an ESRI ASCII grid. NaN cells are written
// as nodata. The lower-left corner is derived from the upper-left origin.
func WriteASCGrid(w io.Writer, p Plane, nodata float64) error {
	if err := p.validate(); err != nil {
		return err
	}
	g := p.Geometry
	bw := bufio.NewWriter(w)
	bw.WriteString("ncols " + strconv.Itoa(g.Width) + "\n")
	bw.WriteString("nrows " + strconv.Itoa(g.Height) + "\n")
	bw.WriteString("xllcorner " + formatCoord(g.XOff) + "\n")
	bw.WriteString("yllcorner " + formatCoord(g.YOff-float64(g.Height)*g.Resolution) + "\n")
	bw.WriteString("cellsize " + formatCoord(g.Resolution) + "\n")
	bw.WriteString("NODATA_value " + formatCoord(nodata) + "\n")

	nd := formatCoord(nodata)
	for j := 0; j < g.Height; j++ {
		for i := 0; i < g.Width; i++ {
			if i > 0 {
				bw.WriteByte(' ')
			}
			v := p.Values[g.Idx(i, j)]
			if math.IsNaN(float64(v)) {
				bw.WriteString(nd)
				continue
			}
			bw.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
