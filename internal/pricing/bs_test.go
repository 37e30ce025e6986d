package pricing

import (
	"errors"
	"math"
	"testing"
)

func TestBlackImpliedVolatilityRoundTrips(t *testing.T) {
	f, k, tt := 100.0, 105.0, 1.5
	for _, sigma := range []float64{0.05, 0.2, 0.5, 1.2} {
		price, err := Black(true, f, k, sigma, tt)
		if err != nil {
			t.Fatalf("Black returned error: %v", err)
		}
		got, err := ImpliedBlackVolatility(true, price, f, k, tt)
		if err != nil {
			t.Fatalf("ImpliedBlackVolatility returned error: %v", err)
		}
		tol := ImpliedVolatilityAttainableAccuracy(0, math.Log(f/k)) * sigma * math.Sqrt(tt) * 100
		if math.Abs(got-sigma) > math.Max(1e-9, tol) {
			t.Errorf("sigma=%v round-tripped to %v", sigma, got)
		}
	}
}

func TestImpliedBlackVolatilityRejectsBelowIntrinsic(t *testing.T) {
	_, err := ImpliedBlackVolatility(true, 0.0, 100.0, 90.0, 1.0)
	if !errors.Is(err, ErrPriceBelowIntrinsic) {
		t.Errorf("expected ErrPriceBelowIntrinsic, got %v", err)
	}
}

func TestImpliedBlackVolatilityRejectsAboveMaximum(t *testing.T) {
	_, err := ImpliedBlackVolatility(true, 150.0, 100.0, 100.0, 1.0)
	if !errors.Is(err, ErrPriceAboveMaximum) {
		t.Errorf("expected ErrPriceAboveMaximum, got %v", err)
	}
}

func TestImpliedBlackVolatilityRejectsInvalidInputs(t *testing.T) {
	if _, err := ImpliedBlackVolatility(true, 1.0, -1.0, 100.0, 1.0); err == nil {
		t.Errorf("expected validation error for negative forward")
	}
	if _, err := ImpliedBlackVolatility(true, 1.0, 100.0, 100.0, 0.0); err == nil {
		t.Errorf("expected validation error for zero maturity")
	}
}

func TestBachelierImpliedNormalVolatilityRoundTrips(t *testing.T) {
	f, k, tt := 100.0, 95.0, 2.0
	for _, sigma := range []float64{1.0, 5.0, 20.0} {
		price, err := Bachelier(true, f, k, sigma, tt)
		if err != nil {
			t.Fatalf("Bachelier returned error: %v", err)
		}
		got, err := ImpliedNormalVolatility(true, price, f, k, tt)
		if err != nil {
			t.Fatalf("ImpliedNormalVolatility returned error: %v", err)
		}
		if math.Abs(got-sigma) > 1e-6*sigma {
			t.Errorf("sigma=%v round-tripped to %v", sigma, got)
		}
	}
}

func TestVegaPositive(t *testing.T) {
	v := Vega(100.0, 100.0, 0.2, 1.0)
	if v <= 0 {
		t.Errorf("Vega = %v, want positive", v)
	}
}

func TestVolgaFiniteDifferenceAgreesWithBumpedVega(t *testing.T) {
	f, k, tt, sigma := 100.0, 100.0, 1.0, 0.2
	got := Volga(f, k, sigma, tt)
	const bump = 1e-4
	want := (Vega(f, k, sigma+bump, tt) - Vega(f, k, sigma-bump, tt)) / (2 * bump)
	if got != want {
		t.Errorf("Volga = %v, want %v", got, want)
	}
}

func TestNormalisedImpliedBlackVolatilitySentinels(t *testing.T) {
	thetaX := -0.2
	bMax := math.Exp(0.5 * thetaX)
	if _, err := NormalisedImpliedBlackVolatility(bMax+1, thetaX); !errors.Is(err, ErrPriceAboveMaximum) {
		t.Errorf("expected ErrPriceAboveMaximum, got %v", err)
	}
	if _, err := NormalisedImpliedBlackVolatility(-1, thetaX); !errors.Is(err, ErrPriceBelowIntrinsic) {
		t.Errorf("expected ErrPriceBelowIntrinsic, got %v", err)
	}
}
