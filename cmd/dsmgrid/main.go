// Command dsmgrid rasterises point clouds into mean/std/min/max grids.
//
//	dsmgrid [flags] cloud.ply [cloud2.ply ...] mean.asc
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/dsmgrid/internal/config"
	"github.com/banshee-data/dsmgrid/internal/fsutil"
	"github.com/banshee-data/dsmgrid/internal/pipeline"
	"github.com/banshee-data/dsmgrid/internal/raster"
	"github.com/banshee-data/dsmgrid/internal/rasterdb"
	"github.com/banshee-data/dsmgrid/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr, fsutil.OSFileSystem{}))
}

type options struct {
	configPath string
	std        string
	min        string
	max        string
	heatmap    string
	chart      string
	tiff       string
	db         string
	list       bool
	version    bool
	verbose    bool
	trace      bool

	// Set only when given on the command line; they override the config file.
	overrides config.Config
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	o := &options{}
	fset := flag.NewFlagSet("dsmgrid", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.Usage = func() {
		fmt.Fprintln(stderr, "usage: dsmgrid [flags] cloud.ply [cloud2.ply ...] mean.asc")
		fmt.Fprintln(stderr, "       dsmgrid -db runs.db -list")
		fset.PrintDefaults()
	}

	fset.StringVar(&o.configPath, "config", "", "JSON config file (defaults to "+config.DefaultConfigPath+" when present)")
	fset.StringVar(&o.std, "std", "", "Output standard deviation grid")
	fset.StringVar(&o.min, "min", "", "Output minimum grid")
	fset.StringVar(&o.max, "max", "", "Output maximum grid")
	fset.StringVar(&o.heatmap, "heatmap", "", "Output PNG heat map of the mean")
	fset.StringVar(&o.chart, "chart", "", "Output HTML chart of the mean")
	fset.StringVar(&o.tiff, "tiff", "", "Output 16-bit TIFF quicklook of the mean")
	fset.StringVar(&o.db, "db", "", "SQLite database for raster snapshots")
	fset.BoolVar(&o.list, "list", false, "List snapshots stored in -db and exit")
	fset.BoolVar(&o.version, "version", false, "Print version and exit")
	fset.BoolVar(&o.verbose, "v", false, "Log per-batch diagnostics")
	fset.BoolVar(&o.trace, "trace", false, "Log every splatted point (very verbose)")
	resolution := fset.Float64("resolution", 1, "Cell size in point units")
	radius := fset.Int("radius", 0, "Splat half-width in cells")
	sigma := fset.Float64("sigma", 0, "Gaussian std in point units (box kernel when not given)")
	band := fset.Int("band", 0, "Value column written to the outputs")
	nodata := fset.Float64("nodata", -9999, "Value written for unobserved cells")

	if err := fset.Parse(args); err != nil {
		return nil, nil, err
	}
	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "resolution":
			o.overrides.Resolution = resolution
		case "radius":
			o.overrides.Radius = radius
		case "sigma":
			o.overrides.Sigma = sigma
		case "band":
			o.overrides.Band = band
		case "nodata":
			o.overrides.NoData = nodata
		case "db":
			o.overrides.DBPath = &o.db
		}
	})
	return o, fset.Args(), nil
}

// loadConfig reads -config, or the defaults file when it exists, and
// applies command-line overrides.
func loadConfig(o *options) (*config.Config, error) {
	cfg := config.EmptyConfig()
	switch {
	case o.configPath != "":
		c, err := config.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	default:
		c, err := config.LoadConfig(config.DefaultConfigPath)
		if err == nil {
			cfg = c
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	cfg.Merge(&o.overrides)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, fsys fsutil.FileSystem) int {
	o, rest, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if o.version {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	var diag, trace io.Writer
	if o.verbose {
		diag = stderr
	}
	if o.trace {
		trace = stderr
	}
	raster.SetLogWriters(stderr, diag, trace)
	pipeline.SetLogWriters(stderr, diag)

	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(stderr, "dsmgrid: %v\n", err)
		return 1
	}

	var db *rasterdb.DB
	if path := cfg.GetDBPath(); path != "" {
		if db, err = rasterdb.Open(path); err != nil {
			fmt.Fprintf(stderr, "dsmgrid: open %s: %v\n", path, err)
			return 1
		}
		defer db.Close()
	}

	if o.list {
		if db == nil {
			fmt.Fprintln(stderr, "dsmgrid: -list requires -db")
			return 2
		}
		return listSnapshots(db, stdout, stderr)
	}

	if len(rest) < 2 {
		fmt.Fprintln(stderr, "usage: dsmgrid [flags] cloud.ply [cloud2.ply ...] mean.asc")
		return 2
	}

	job := pipeline.JobFromConfig(cfg)
	job.Inputs = rest[:len(rest)-1]
	job.Outputs = pipeline.Outputs{
		Mean:    rest[len(rest)-1],
		Std:     o.std,
		Min:     o.min,
		Max:     o.max,
		Heatmap: o.heatmap,
		Chart:   o.chart,
		TIFF:    o.tiff,
	}
	if db != nil {
		job.Store = db
	}

	res, err := pipeline.Run(ctx, fsys, job)
	if err != nil {
		fmt.Fprintf(stderr, "dsmgrid: %v\n", err)
		return 1
	}
	g := res.Raster.Geometry()
	fmt.Fprintf(stdout, "%dx%d grid at (%g, %g) res %g, crs %s\n", g.Width, g.Height, g.XOff, g.YOff, g.Resolution, res.CRS)
	for _, path := range res.Written {
		fmt.Fprintf(stdout, "wrote %s\n", path)
	}
	if res.SnapshotID != "" {
		fmt.Fprintf(stdout, "snapshot %s\n", res.SnapshotID)
	}
	return 0
}

func listSnapshots(db *rasterdb.DB, stdout, stderr io.Writer) int {
	snaps, err := db.ListSnapshots(0)
	if err != nil {
		fmt.Fprintf(stderr, "dsmgrid: %v\n", err)
		return 1
	}
	for _, s := range snaps {
		crs := s.CRS
		if crs == "" {
			crs = "-"
		}
		fmt.Fprintf(stdout, "%s %dx%d bands=%d observed=%d/%d crs=%s\n",
			s.SnapshotID, s.Geometry.Width, s.Geometry.Height, s.Bands,
			s.Summary.ObservedCells, s.Summary.Cells, crs)
	}
	return 0
}
