package raster

import (
	"fmt"
	"math"
)

// Kernel weights a splat by the distance between a point and the centre of
// a candidate cell.
type Kernel struct {
	// Sigma is the Gaussian standard deviation in point units. +Inf gives a
	// box kernel where every candidate weighs 1.
	Sigma float64
}

// BoxKernel returns the unweighted kernel.
func BoxKernel() Kernel { return Kernel{Sigma: math.Inf(1)} }

// GaussianKernel returns a Gaussian falloff kernel.
func GaussianKernel(sigma float64) Kernel { return Kernel{Sigma: sigma} }

// IsBox reports whether the kernel ignores distance.
func (k Kernel) IsBox() bool { return math.IsInf(k.Sigma, 1) }

// Validate rejects NaN and negative sigmas. Sigma == 0 is accepted: only an
// exactly coincident candidate then gets a non-zero weight.
func (k Kernel) Validate() error {
	if math.IsNaN(k.Sigma) || k.Sigma < 0 {
		return fmt.Errorf("%w: sigma must be >= 0 or +Inf, got %v", ErrInvalidConfig, k.Sigma)
	}
	return nil
}

// Weight returns the splat weight for distance d.
func (k Kernel) Weight(d float64) float64 {
	if k.IsBox() {
		return 1
	}
	if d == 0 {
		return 1
	}
	return math.Exp(-d * d / (2 * k.Sigma * k.Sigma))
}
