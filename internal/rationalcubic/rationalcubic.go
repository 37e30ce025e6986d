// Package rationalcubic implements the shape-preserving rational cubic
// Hermite interpolant used to build high-quality initial guesses for the
// implied volatility root finder. See Jäckel, "Let's Be Rational" (2015),
// section on rational cubic interpolation for shape preservation.
package rationalcubic

import "math"

const (
	minControlParameter = -(1.0 - 0.000000014901161193847656)
	maxControlParameter = 2.0 / (2.220446049250313e-16 * 2.220446049250313e-16)
)

// Interpolate evaluates the rational cubic interpolant at x on the interval
// [xl, xr] with endpoint values yl, yr, endpoint derivatives dl, dr, and
// control parameter r.
func Interpolate(x, xl, xr, yl, yr, dl, dr, r float64) float64 {
	h := xr - xl
	if h == 0.0 {
		return 0.5 * (yl + yr)
	}
	t := (x - xl) / h
	if r < maxControlParameter {
		omt := 1.0 - t
		t2 := t * t
		omt2 := omt * omt
		return (yr*t2*t + (r*yr-h*dr)*t2*omt + (r*yl+h*dl)*t*omt2 + yl*omt2*omt) / (1.0 + (r-3.0)*t*omt)
	}
	return yr*t + yl*(1.0-t)
}

// ControlParameterToFitSecondDerivativeAtLeftSide computes the r that makes
// the interpolant's second derivative at xl equal to secondDerivativeL.
func ControlParameterToFitSecondDerivativeAtLeftSide(xl, xr, yl, yr, dl, dr, secondDerivativeL float64) float64 {
	h := xr - xl
	numerator := 0.5*h*secondDerivativeL + (dr - dl)
	if numerator == 0.0 {
		return 0.0
	}
	denominator := (yr-yl)/h - dl
	if denominator == 0.0 {
		if numerator > 0 {
			return maxControlParameter
		}
		return minControlParameter
	}
	return numerator / denominator
}

// ControlParameterToFitSecondDerivativeAtRightSide computes the r that makes
// the interpolant's second derivative at xr equal to secondDerivativeR.
func ControlParameterToFitSecondDerivativeAtRightSide(xl, xr, yl, yr, dl, dr, secondDerivativeR float64) float64 {
	h := xr - xl
	numerator := 0.5*h*secondDerivativeR + (dr - dl)
	if numerator == 0.0 {
		return 0.0
	}
	denominator := dr - (yr-yl)/h
	if denominator == 0.0 {
		if numerator > 0 {
			return maxControlParameter
		}
		return minControlParameter
	}
	return numerator / denominator
}

// MinimumControlParameter returns the smallest r that keeps the interpolant
// monotonic (or convex/concave, matching the secant slope s) between the
// endpoint derivatives dl and dr.
func MinimumControlParameter(dl, dr, s float64, preferShapePreservationOverSmoothness bool) float64 {
	monotonic := dl*s >= 0.0 && dr*s >= 0.0
	convexOrConcave := (dl <= s && s <= dr) || (dl >= s && s >= dr)
	if !monotonic && !convexOrConcave {
		return minControlParameter
	}

	drMdl := dr - dl
	drMs := dr - s
	sMdl := s - dl

	var r1 float64
	switch {
	case monotonic && s != 0.0:
		r1 = (dr + dl) / s
	case monotonic && s == 0.0 && preferShapePreservationOverSmoothness:
		r1 = maxControlParameter
	default:
		r1 = -math.MaxFloat64
	}

	var r2 float64
	switch {
	case convexOrConcave && sMdl != 0.0 && drMs != 0.0:
		r2 = math.Max(math.Abs(drMdl/drMs), math.Abs(drMdl/sMdl))
	case convexOrConcave && preferShapePreservationOverSmoothness:
		r2 = maxControlParameter
	case convexOrConcave:
		r2 = -math.MaxFloat64
	case monotonic && preferShapePreservationOverSmoothness:
		r2 = maxControlParameter
	default:
		r2 = -math.MaxFloat64
	}

	return math.Max(math.Max(r1, r2), minControlParameter)
}

// ConvexControlParameterToFitSecondDerivativeAtLeftSide is
// ControlParameterToFitSecondDerivativeAtLeftSide clamped to preserve shape.
func ConvexControlParameterToFitSecondDerivativeAtLeftSide(xl, xr, yl, yr, dl, dr, secondDerivativeL float64, preferShapePreservationOverSmoothness bool) float64 {
	r := ControlParameterToFitSecondDerivativeAtLeftSide(xl, xr, yl, yr, dl, dr, secondDerivativeL)
	rMin := MinimumControlParameter(dl, dr, (yr-yl)/(xr-xl), preferShapePreservationOverSmoothness)
	return math.Max(r, rMin)
}

// ConvexControlParameterToFitSecondDerivativeAtRightSide is
// ControlParameterToFitSecondDerivativeAtRightSide clamped to preserve shape.
func ConvexControlParameterToFitSecondDerivativeAtRightSide(xl, xr, yl, yr, dl, dr, secondDerivativeR float64, preferShapePreservationOverSmoothness bool) float64 {
	r := ControlParameterToFitSecondDerivativeAtRightSide(xl, xr, yl, yr, dl, dr, secondDerivativeR)
	rMin := MinimumControlParameter(dl, dr, (yr-yl)/(xr-xl), preferShapePreservationOverSmoothness)
	return math.Max(r, rMin)
}
