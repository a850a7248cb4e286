package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/dsmgrid/internal/export"
	"github.com/banshee-data/dsmgrid/internal/fsutil"
	"github.com/banshee-data/dsmgrid/internal/pointcloud"
	"github.com/banshee-data/dsmgrid/internal/raster"
	"github.com/banshee-data/dsmgrid/internal/rasterdb"
)

// Result describes a finished job.
type Result struct {
	Raster     *raster.Raster
	Stats      raster.RasterizeStats
	CRS        pointcloud.CRS // zero when the first input has no projection comment
	Inputs     []rasterdb.Input
	Written    []string // output files in write order
	SnapshotID string
}

// Run executes job against fsys. Each input file is one Rasterize batch and
// ctx is checked between batches. Without an ROI every input is read twice:
// once to size the grid and once to splat.
func Run(ctx context.Context, fsys fsutil.FileSystem, job Job) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	res := &Result{}

	var geom raster.Geometry
	if job.ROI != nil {
		geom = *job.ROI
	} else {
		var err error
		if geom, err = scanExtent(ctx, fsys, job); err != nil {
			return nil, err
		}
	}
	diagf("grid %dx%d origin (%g, %g) res %g", geom.Width, geom.Height, geom.XOff, geom.YOff, geom.Resolution)

	var grid *raster.Grid
	for n, path := range job.Inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pc, err := pointcloud.ReadFile(fsys, path)
		if err != nil {
			return nil, err
		}
		cloud, err := pc.Raster()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if n == 0 {
			res.CRS = firstCRS(path, pc)
			cfg := (&raster.RasterConfig{}).
				WithGeometry(geom).
				WithBands(cloud.Bands).
				WithRadius(job.Radius).
				WithSigma(job.Sigma)
			if grid, err = raster.NewGrid(cfg); err != nil {
				return nil, err
			}
		}
		if err := grid.Rasterize(cloud); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		res.Inputs = append(res.Inputs, rasterdb.Input{Path: path, Points: cloud.Len()})
		diagf("%s: %d points, bands %v", path, cloud.Len(), pc.Bands())
	}

	r, err := grid.Finalize()
	if err != nil {
		return nil, err
	}
	res.Raster = r
	res.Stats = grid.Stats()
	sum := r.Summary()
	opsf("rasterised %d points from %d files: %d/%d cells observed, %d splats dropped",
		res.Stats.Points, len(job.Inputs), sum.ObservedCells, sum.Cells, res.Stats.Dropped)

	if err := writeOutputs(fsys, job, r, res); err != nil {
		return nil, err
	}

	if job.Store != nil {
		crs := ""
		if res.CRS.Type != "" {
			crs = res.CRS.String()
		}
		snap, err := rasterdb.NewSnapshot(r, job.params(), crs, res.Inputs)
		if err != nil {
			return nil, err
		}
		if res.SnapshotID, err = job.Store.InsertSnapshot(snap); err != nil {
			return nil, fmt.Errorf("persist snapshot: %w", err)
		}
		opsf("stored snapshot %s", res.SnapshotID)
	}
	return res, nil
}

// scanExtent streams every input once to find the grid that covers them.
func scanExtent(ctx context.Context, fsys fsutil.FileSystem, job Job) (raster.Geometry, error) {
	ext := raster.EmptyExtent()
	for _, path := range job.Inputs {
		if err := ctx.Err(); err != nil {
			return raster.Geometry{}, err
		}
		pc, err := pointcloud.ReadFile(fsys, path)
		if err != nil {
			return raster.Geometry{}, err
		}
		cloud, err := pc.Raster()
		if err != nil {
			return raster.Geometry{}, fmt.Errorf("%s: %w", path, err)
		}
		ext.AddCloud(cloud)
	}
	return ext.Geometry(job.Resolution)
}

func firstCRS(path string, pc *pointcloud.Cloud) pointcloud.CRS {
	crs, err := pointcloud.CRSFromComments(pc.Comments)
	if errors.Is(err, pointcloud.ErrNoCRS) {
		opsf("%s: no projection comment, output is not georeferenced", path)
	}
	return crs
}

func writeOutputs(fsys fsutil.FileSystem, job Job, r *raster.Raster, res *Result) error {
	grids := []struct {
		stat raster.Stat
		path string
	}{
		{raster.StatMean, job.Outputs.Mean},
		{raster.StatStd, job.Outputs.Std},
		{raster.StatMin, job.Outputs.Min},
		{raster.StatMax, job.Outputs.Max},
	}
	for _, g := range grids {
		if g.path == "" {
			continue
		}
		plane, err := export.NewPlane(r, g.stat, job.Band)
		if err != nil {
			return err
		}
		if err := write(fsys, g.path, res, func(w io.Writer) error {
			return export.WriteASCGrid(w, plane, job.NoData)
		}); err != nil {
			return err
		}
	}

	o := job.Outputs
	if o.Heatmap == "" && o.Chart == "" && o.TIFF == "" {
		return nil
	}
	mean, err := export.NewPlane(r, raster.StatMean, job.Band)
	if err != nil {
		return err
	}
	if _, _, ok := mean.Range(); !ok {
		opsf("skipping previews: %v", export.ErrEmptyPlane)
		return nil
	}
	previews := []struct {
		path  string
		write func(io.Writer) error
	}{
		{o.Heatmap, func(w io.Writer) error { return export.WriteHeatmap(w, mean, export.HeatmapSide(job.HeatmapSizeCm)) }},
		{o.Chart, func(w io.Writer) error { return export.WriteChart(w, mean) }},
		{o.TIFF, func(w io.Writer) error { return export.WriteQuicklook(w, mean) }},
	}
	for _, p := range previews {
		if p.path == "" {
			continue
		}
		if err := write(fsys, p.path, res, p.write); err != nil {
			return err
		}
	}
	return nil
}

func write(fsys fsutil.FileSystem, path string, res *Result, fn func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := export.WriteFile(fsys, path, fn); err != nil {
		return err
	}
	res.Written = append(res.Written, path)
	diagf("wrote %s", path)
	return nil
}
