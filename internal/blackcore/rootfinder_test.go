package blackcore

import (
	"math"
	"math/rand"
	"testing"
)

func TestImpliedBlackVolatilityReconstructsCallATM(t *testing.T) {
	f, k, tt := 100.0, 100.0, 1.0
	for i := 1; i < 100; i++ {
		price := 0.01 * float64(i)
		sigma := ImpliedBlackVolatility(true, price, f, k, tt)
		reprice := BlackUndiscounted(true, f, k, sigma, tt)
		if math.Abs(price-reprice) > 5e-12 {
			t.Errorf("ATM call price=%v reconstructed=%v sigma=%v", price, reprice, sigma)
		}
	}
}

func TestImpliedBlackVolatilityReconstructsPutATM(t *testing.T) {
	f, k, tt := 100.0, 100.0, 1.0
	for i := 1; i < 100; i++ {
		price := 0.01 * float64(i)
		sigma := ImpliedBlackVolatility(false, price, f, k, tt)
		reprice := BlackUndiscounted(false, f, k, sigma, tt)
		if math.Abs(price-reprice) > 5e-12 {
			t.Errorf("ATM put price=%v reconstructed=%v sigma=%v", price, reprice, sigma)
		}
	}
}

// TestImpliedBlackVolatilityReconstructsRandom is a reduced-sample-count
// reconstruction sweep across random forward/strike/maturity/vol
// combinations, checking that pricing forward, inverting, and repricing at
// the recovered volatility reproduces the input price to within
// max(1e-8, 1e-6*price).
func TestImpliedBlackVolatilityReconstructsRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 2000
	for i := 0; i < n; i++ {
		f := 50.0 + rng.Float64()*150.0
		k := 50.0 + rng.Float64()*150.0
		tt := 0.01 + rng.Float64()*5.0
		sigma := 0.01 + rng.Float64()*2.0
		isCall := rng.Intn(2) == 0

		price := BlackUndiscounted(isCall, f, k, sigma, tt)
		intrinsic := math.Max(f-k, 0)
		if !isCall {
			intrinsic = math.Max(k-f, 0)
		}
		if price <= intrinsic+1e-12 {
			continue // too close to intrinsic to reliably invert
		}

		got := ImpliedBlackVolatility(isCall, price, f, k, tt)
		if got == VolatilityBelowIntrinsic || got == VolatilityAboveMaximum {
			continue
		}
		reprice := BlackUndiscounted(isCall, f, k, got, tt)
		tol := math.Max(1e-8, price*1e-6)
		if math.Abs(reprice-price) > tol {
			t.Errorf("case %d: f=%v k=%v t=%v sigma=%v price=%v got_sigma=%v reprice=%v", i, f, k, tt, sigma, price, got, reprice)
		}
	}
}

// TestPanicCaseRegressions pins down a handful of (price, f, k, t) inputs
// previously known to stress the branch-selection logic near the lowest and
// highest branches, checking that the solver does not return NaN for them.
func TestPanicCaseRegressions(t *testing.T) {
	cases := []struct {
		price, f, k, tt float64
	}{
		{73.425, 12173.425, 12100.0, 0.0077076327759348934},
		{0.0000001, 100.0, 100.0001, 1e-6},
		{0.5, 1.0, 1.0, 1e-8},
		{1e-10, 100.0, 105.0, 10.0},
		{99.999999, 100.0, 0.0001, 1.0},
	}
	for _, c := range cases {
		isCall := c.price >= math.Max(c.f-c.k, 0)
		got := ImpliedBlackVolatility(true, c.price, c.f, c.k, c.tt)
		if math.IsNaN(got) {
			t.Errorf("case f=%v k=%v t=%v price=%v: got NaN", c.f, c.k, c.tt, c.price)
		}
		_ = isCall
	}
}

func TestImpliedBlackVolatilityAtInfiniteMaturity(t *testing.T) {
	sigma := ImpliedBlackVolatility(true, 0.0, 100.0, 100.0, math.Inf(1))
	if sigma != 0 {
		t.Errorf("sigma at T=inf, price=0 = %v, want 0", sigma)
	}
}

func TestLetsBeRationalSentinelsAtBoundary(t *testing.T) {
	thetaX := -0.1
	bMax := math.Exp(0.5 * thetaX)
	if s := LetsBeRational(0, thetaX); s != 0 {
		t.Errorf("LetsBeRational(0,.) = %v, want 0", s)
	}
	if s := LetsBeRational(bMax, thetaX); s != VolatilityAboveMaximum {
		t.Errorf("LetsBeRational(bMax,.) = %v, want VolatilityAboveMaximum", s)
	}
	if s := LetsBeRational(-1, thetaX); s != VolatilityBelowIntrinsic {
		t.Errorf("LetsBeRational(-1,.) = %v, want VolatilityBelowIntrinsic", s)
	}
}
