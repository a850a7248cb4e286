// Package export writes finalised raster planes to disk: ESRI ASCII grids
// for GIS tools, plus PNG, TIFF and HTML previews.
package export
