package specialfn

import (
	"math"
	"testing"
)

func TestErfKnownValues(t *testing.T) {
	cases := []struct {
		x, want float64
	}{
		{0, 0},
		{1, 0.8427007929497149},
		{-1, -0.8427007929497149},
		{2, 0.9953222650189527},
	}
	for _, c := range cases {
		got := Erf(c.x)
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("Erf(%v) = %v, want %v", c.x, got, c.want)
		}
	}
}

func TestErfcComplementsErf(t *testing.T) {
	for _, x := range []float64{-3, -1, -0.1, 0, 0.1, 1, 3, 10} {
		got := Erf(x) + Erfc(x)
		if math.Abs(got-1.0) > 1e-12 {
			t.Errorf("Erf(%v)+Erfc(%v) = %v, want 1", x, x, got)
		}
	}
}

func TestErfcxMatchesDefinitionForModerateX(t *testing.T) {
	for _, x := range []float64{0.1, 0.5, 1.0, 2.0, 3.5} {
		want := math.Exp(x*x) * Erfc(x)
		got := Erfcx(x)
		if math.Abs(got-want)/want > 1e-9 {
			t.Errorf("Erfcx(%v) = %v, want %v", x, got, want)
		}
	}
}

func TestErfcxAvoidsUnderflowForLargeX(t *testing.T) {
	// erfc(30) underflows to 0 in float64, but erfcx(30) stays finite and
	// well away from zero.
	got := Erfcx(30)
	if got <= 0 || math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("Erfcx(30) = %v, want finite positive value", got)
	}
}

func TestOneMinusErfcxAgreesWithNaiveSubtractionOutsideCancellationZone(t *testing.T) {
	for _, x := range []float64{-5, -1, 1, 5} {
		got := OneMinusErfcx(x)
		want := 1 - Erfcx(x)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("OneMinusErfcx(%v) = %v, want ~%v", x, got, want)
		}
	}
}

func TestOneMinusErfcxNearZero(t *testing.T) {
	// At x=0, erfcx(0)=1 exactly, so OneMinusErfcx(0) must be exactly 0.
	got := OneMinusErfcx(0)
	if got != 0 {
		t.Errorf("OneMinusErfcx(0) = %v, want 0", got)
	}
}

func TestCalerfThreshBoundary(t *testing.T) {
	// Sanity check around Cody's THRESH=0.46875 boundary: Erf must not
	// decrease across the region switch.
	below := Erf(erfThresh - 1e-9)
	above := Erf(erfThresh + 1e-9)
	if above < below {
		t.Errorf("Erf not monotonic across THRESH: below=%v above=%v", below, above)
	}
}
