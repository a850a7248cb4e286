package raster

import "errors"

var (
	// ErrInvalidInput marks a point buffer holding non-finite values or an
	// inconsistent stride.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig marks an unusable geometry, radius or kernel.
	ErrInvalidConfig = errors.New("invalid raster configuration")

	// ErrBufferSize marks caller buffers that do not match the grid layout.
	ErrBufferSize = errors.New("buffer size mismatch")

	// ErrBandMismatch marks a cloud whose band count differs from the grid's.
	ErrBandMismatch = errors.New("band count mismatch")

	// ErrFinalized is returned by any operation on a grid that has already
	// been turned into a Raster.
	ErrFinalized = errors.New("grid already finalized")
)
