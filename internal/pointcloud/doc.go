// Package pointcloud reads point clouds from PLY and CloudCompare ASCII
// files into point-major buffers ready for rasterisation, and recovers the
// coordinate reference system recorded in file comments.
package pointcloud
