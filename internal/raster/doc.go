// Package raster owns the point-to-grid accumulation core.
//
// Responsibilities: coordinate/cell mapping, kernel weighting, per-cell
// streaming statistics, neighbourhood splatting and the one-shot
// finalisation into mean / std / min / max rasters.
// Key types: Geometry, Kernel, CellState, Grid, Raster.
//
// Dependency rule: no file formats, no SQL, no plotting in this package.
// Readers and writers live in internal/pointcloud and internal/export.
package raster
