package export

import (
	"image"
	"image/color"
	"io"
	"math"

	"golang.org/x/image/tiff"
)

// WriteQuicklook encodes the plane as a deflate-compressed 16-bit greyscale
// TIFF. Finite values are stretched linearly over 1..65535 and NaN cells
// become 0.
func WriteQuicklook(w io.Writer, p Plane) error {
	if err := p.validate(); err != nil {
		return err
	}
	lo, hi, ok := p.Range()
	if !ok {
		return ErrEmptyPlane
	}
	scale := 0.0
	if hi > lo {
		scale = 65534 / (hi - lo)
	}

	g := p.Geometry
	img := image.NewGray16(image.Rect(0, 0, g.Width, g.Height))
	for j := 0; j < g.Height; j++ {
		for i := 0; i < g.Width; i++ {
			img.SetGray16(i, j, quantise(p.at(i, j), lo, scale))
		}
	}
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

func quantise(v, lo, scale float64) color.Gray16 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return color.Gray16{}
	}
	return color.Gray16{Y: uint16(1 + math.Round((v-lo)*scale))}
}
