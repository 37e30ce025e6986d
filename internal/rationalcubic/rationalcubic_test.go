package rationalcubic

import (
	"math"
	"testing"
)

func TestInterpolateEndpoints(t *testing.T) {
	got := Interpolate(1.0, 1.0, 2.0, 3.0, 4.0, 1.0, 2.0, 5.0)
	if math.Abs(got-3.0) > 1e-12 {
		t.Errorf("Interpolate at x_l = %v, want 3.0 (y_l)", got)
	}
	got = Interpolate(2.0, 1.0, 2.0, 3.0, 4.0, 1.0, 2.0, 5.0)
	if math.Abs(got-4.0) > 1e-12 {
		t.Errorf("Interpolate at x_r = %v, want 4.0 (y_r)", got)
	}
}

func TestInterpolateDegenerateInterval(t *testing.T) {
	got := Interpolate(1.0, 1.0, 1.0, 3.0, 5.0, 0.0, 0.0, 1.0)
	want := 0.5 * (3.0 + 5.0)
	if got != want {
		t.Errorf("Interpolate on zero-width interval = %v, want %v", got, want)
	}
}

func TestInterpolateLinearFallbackAboveMaxControlParameter(t *testing.T) {
	x, xl, xr, yl, yr, dl, dr := 1.5, 1.0, 2.0, 3.0, 4.0, 1.0, 2.0
	got := Interpolate(x, xl, xr, yl, yr, dl, dr, maxControlParameter+1)
	t2 := (x - xl) / (xr - xl)
	want := yr*t2 + yl*(1.0-t2)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Interpolate above max r = %v, want linear %v", got, want)
	}
}

func TestControlParameterToFitSecondDerivativeAtRightSideKnownValue(t *testing.T) {
	got := ControlParameterToFitSecondDerivativeAtRightSide(1.0, 2.0, 3.0, 4.0, 1.0, 2.0, 0.5)
	if math.Abs(got-1.25) > 1e-12 {
		t.Errorf("ControlParameterToFitSecondDerivativeAtRightSide = %v, want 1.25", got)
	}
}

func TestMinimumControlParameterMonotonicSecant(t *testing.T) {
	// A monotonic secant with matching-sign endpoint derivatives should
	// never force the minimum below the raw floor.
	r := MinimumControlParameter(1.0, 2.0, 1.5, false)
	if r < minControlParameter {
		t.Errorf("MinimumControlParameter = %v below floor %v", r, minControlParameter)
	}
}

func TestConvexControlParameterClampsToMinimum(t *testing.T) {
	// When the raw fitted r would violate shape preservation, the convex
	// variant must clamp up to at least the shape-preserving minimum.
	r := ConvexControlParameterToFitSecondDerivativeAtLeftSide(0.0, 1.0, 0.0, 1.0, 1.0, 1.0, -1e10, true)
	rMin := MinimumControlParameter(1.0, 1.0, 1.0, true)
	if r < rMin-1e-9 {
		t.Errorf("ConvexControlParameterToFitSecondDerivativeAtLeftSide = %v, want >= %v", r, rMin)
	}
}
