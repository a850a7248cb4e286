// Package testutil provides shared test helpers.
package testutil

import (
	"errors"
	"math"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertErrorIs fails the test unless err wraps target.
func AssertErrorIs(t testing.TB, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

// AssertPlane compares a raster plane against want, treating NaN as equal
// to NaN and allowing tol of absolute difference elsewhere.
func AssertPlane(t testing.TB, got, want []float32, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("plane has %d values, want %d", len(got), len(want))
		return
	}
	for n := range want {
		g, w := float64(got[n]), float64(want[n])
		if math.IsNaN(w) {
			if !math.IsNaN(g) {
				t.Errorf("value %d = %v, want NaN", n, g)
			}
			continue
		}
		if math.IsNaN(g) || math.Abs(g-w) > tol {
			t.Errorf("value %d = %v, want %v", n, g, w)
		}
	}
}
