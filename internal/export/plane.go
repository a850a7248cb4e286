package export

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/banshee-data/dsmgrid/internal/fsutil"
	"github.com/banshee-data/dsmgrid/internal/raster"
)

// ErrEmptyPlane is returned by previews when the plane holds no finite value.
var ErrEmptyPlane = errors.New("plane has no finite values")

// Plane is one W x H statistic of one band, row-major with row 0 at the top.
type Plane struct {
	Geometry raster.Geometry
	Values   []float32
	Label    string
}

// NewPlane extracts a plane from a finalised raster.
func NewPlane(r *raster.Raster, stat raster.Stat, band int) (Plane, error) {
	values, err := r.Band(stat, band)
	if err != nil {
		return Plane{}, err
	}
	return Plane{
		Geometry: r.Geometry(),
		Values:   values,
		Label:    fmt.Sprintf("%s band %d", stat, band),
	}, nil
}

func (p Plane) validate() error {
	if len(p.Values) != p.Geometry.Cells() {
		return fmt.Errorf("%w: plane has %d values, geometry %dx%d", raster.ErrBufferSize, len(p.Values), p.Geometry.Width, p.Geometry.Height)
	}
	return nil
}

// at returns the value of cell (i, j) as float64.
func (p Plane) at(i, j int) float64 {
	return float64(p.Values[p.Geometry.Idx(i, j)])
}

// Range returns the smallest and largest finite values. ok is false when
// every value is NaN.
func (p Plane) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range p.Values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
		ok = true
	}
	return lo, hi, ok
}

// WriteFile creates path on fsys and hands the file to write.
func WriteFile(fsys fsutil.FileSystem, path string, write func(io.Writer) error) (err error) {
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
