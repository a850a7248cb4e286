package pointcloud

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/banshee-data/dsmgrid/internal/fsutil"
	"github.com/banshee-data/dsmgrid/internal/raster"
)

// ErrFormat marks a file that cannot be decoded.
var ErrFormat = errors.New("malformed point cloud")

// Cloud is a decoded point cloud. Data is point-major with one value per
// column, in file order.
type Cloud struct {
	Columns  []string
	Data     []float64
	Comments []string
}

// Len returns the number of points.
func (c *Cloud) Len() int {
	if len(c.Columns) == 0 {
		return 0
	}
	return len(c.Data) / len(c.Columns)
}

// Bands returns the names of the columns that become raster bands: every
// column except x and y, in file order.
func (c *Cloud) Bands() []string {
	xi, yi := c.xyColumns()
	bands := make([]string, 0, len(c.Columns))
	for n, name := range c.Columns {
		if n != xi && n != yi {
			bands = append(bands, name)
		}
	}
	return bands
}

// xyColumns finds the x and y columns by name, falling back to the first
// two columns.
func (c *Cloud) xyColumns() (int, int) {
	xi, yi := -1, -1
	for n, name := range c.Columns {
		switch strings.ToLower(name) {
		case "x":
			if xi < 0 {
				xi = n
			}
		case "y":
			if yi < 0 {
				yi = n
			}
		}
	}
	if xi < 0 || yi < 0 {
		return 0, 1
	}
	return xi, yi
}

// Raster reorders the cloud into the x, y, band... layout expected by
// raster.Grid.Rasterize.
func (c *Cloud) Raster() (raster.Cloud, error) {
	if len(c.Columns) < 3 {
		return raster.Cloud{}, fmt.Errorf("%w: need x, y and at least one value column, got %v", ErrFormat, c.Columns)
	}
	xi, yi := c.xyColumns()
	stride := len(c.Columns)
	out := make([]float64, 0, len(c.Data))
	for off := 0; off+stride <= len(c.Data); off += stride {
		row := c.Data[off : off+stride]
		out = append(out, row[xi], row[yi])
		for n, v := range row {
			if n != xi && n != yi {
				out = append(out, v)
			}
		}
	}
	return raster.NewCloud(out, stride-2)
}

// Read decodes r according to the extension of name (.ply or .asc/.xyz/.txt).
func Read(r io.Reader, name string) (*Cloud, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ply":
		return ReadPLY(r)
	case ".asc", ".xyz", ".txt":
		return ReadASC(r)
	}
	return nil, fmt.Errorf("%w: unsupported file extension %q", ErrFormat, filepath.Ext(name))
}

// ReadFile opens and decodes a point cloud file.
func ReadFile(fsys fsutil.FileSystem, path string) (*Cloud, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := Read(f, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
