package export

import (
	"bytes"
	"errors"
	"image"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/banshee-data/dsmgrid/internal/fsutil"
	"github.com/banshee-data/dsmgrid/internal/raster"
)

// testRaster is a 2x2 unit grid anchored at (0, 2) with two observed cells:
// (0, 0) holding 10 and (1, 1) holding 20.
func testRaster(t *testing.T) *raster.Raster {
	t.Helper()
	cfg := (&raster.RasterConfig{}).
		WithGeometry(raster.Geometry{XOff: 0, YOff: 2, Resolution: 1, Width: 2, Height: 2}).
		WithBands(1).
		WithBoxKernel()
	g, err := raster.NewGrid(cfg)
	require.NoError(t, err)
	cloud, err := raster.NewCloud([]float64{0.5, 1.5, 10, 1.5, 0.5, 20}, 1)
	require.NoError(t, err)
	require.NoError(t, g.Rasterize(cloud))
	r, err := g.Finalize()
	require.NoError(t, err)
	return r
}

func testPlane(t *testing.T) Plane {
	t.Helper()
	p, err := NewPlane(testRaster(t), raster.StatMean, 0)
	require.NoError(t, err)
	return p
}

func TestNewPlane(t *testing.T) {
	p := testPlane(t)
	assert.Equal(t, "mean band 0", p.Label)
	assert.Len(t, p.Values, 4)

	lo, hi, ok := p.Range()
	assert.True(t, ok)
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 20.0, hi)

	_, err := NewPlane(testRaster(t), raster.StatMean, 1)
	assert.True(t, errors.Is(err, raster.ErrInvalidInput))
}

func TestWriteASCGrid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteASCGrid(&buf, testPlane(t), -9999))

	want := strings.Join([]string{
		"ncols 2",
		"nrows 2",
		"xllcorner 0",
		"yllcorner 0",
		"cellsize 1",
		"NODATA_value -9999",
		"10 -9999",
		"-9999 20",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWriteASCGrid_Georeference(t *testing.T) {
	p := Plane{
		Geometry: raster.Geometry{XOff: 500000, YOff: 4650000.5, Resolution: 0.5, Width: 3, Height: 1},
		Values:   []float32{1.25, float32(math.NaN()), -3},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteASCGrid(&buf, p, -1))
	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "xllcorner 500000", lines[2])
	assert.Equal(t, "yllcorner 4650000", lines[3])
	assert.Equal(t, "cellsize 0.5", lines[4])
	assert.Equal(t, "1.25 -1 -3", lines[6])
}

func TestWriters_RejectMismatchedPlane(t *testing.T) {
	p := Plane{Geometry: raster.Geometry{Resolution: 1, Width: 2, Height: 2}, Values: []float32{1}}
	for name, write := range map[string]func(io.Writer) error{
		"asc":  func(w io.Writer) error { return WriteASCGrid(w, p, 0) },
		"png":  func(w io.Writer) error { return WriteHeatmap(w, p, HeatmapSide(5)) },
		"html": func(w io.Writer) error { return WriteChart(w, p) },
		"tiff": func(w io.Writer) error { return WriteQuicklook(w, p) },
	} {
		err := write(io.Discard)
		assert.True(t, errors.Is(err, raster.ErrBufferSize), "%s: %v", name, err)
	}
}

func TestPreviews_EmptyPlane(t *testing.T) {
	nan := float32(math.NaN())
	p := Plane{Geometry: raster.Geometry{Resolution: 1, Width: 2, Height: 1}, Values: []float32{nan, nan}}
	assert.ErrorIs(t, WriteHeatmap(io.Discard, p, HeatmapSide(5)), ErrEmptyPlane)
	assert.ErrorIs(t, WriteChart(io.Discard, p), ErrEmptyPlane)
	assert.ErrorIs(t, WriteQuicklook(io.Discard, p), ErrEmptyPlane)
}

func TestWriteHeatmap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHeatmap(&buf, testPlane(t), HeatmapSide(5)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestWriteHeatmap_ConstantPlane(t *testing.T) {
	p := Plane{Geometry: raster.Geometry{Resolution: 1, Width: 2, Height: 1}, Values: []float32{4, 4}}
	var buf bytes.Buffer
	require.NoError(t, WriteHeatmap(&buf, p, HeatmapSide(5)))
	assert.NotZero(t, buf.Len())
}

func TestHeatmapSide(t *testing.T) {
	assert.Equal(t, HeatmapSide(15), HeatmapSide(0))
	assert.Equal(t, HeatmapSide(15), HeatmapSide(math.NaN()))
	assert.Greater(t, float64(HeatmapSide(20)), float64(HeatmapSide(10)))
}

func TestWriteChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, testPlane(t)))
	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "mean band 0")
	assert.Contains(t, html, "observed=2")
}

func TestWriteQuicklook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteQuicklook(&buf, testPlane(t)))

	img, err := tiff.Decode(&buf)
	require.NoError(t, err)
	gray, ok := img.(*image.Gray16)
	require.True(t, ok, "got %T", img)
	assert.Equal(t, uint16(1), gray.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(0), gray.Gray16At(1, 0).Y)
	assert.Equal(t, uint16(0), gray.Gray16At(0, 1).Y)
	assert.Equal(t, uint16(65535), gray.Gray16At(1, 1).Y)
}

func TestWriteFile(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	p := testPlane(t)
	require.NoError(t, WriteFile(mfs, "out/mean.asc", func(w io.Writer) error {
		return WriteASCGrid(w, p, -9999)
	}))
	data, ok := mfs.Get("out/mean.asc")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(string(data), "ncols 2\n"))

	boom := errors.New("boom")
	err := WriteFile(mfs, "out/bad.asc", func(io.Writer) error { return boom })
	assert.ErrorIs(t, err, boom)
}
