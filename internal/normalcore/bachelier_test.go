package normalcore

import (
	"math"
	"math/rand"
	"testing"
)

func TestImpliedVolatilityReconstructsCallATM(t *testing.T) {
	f, k, tt := 100.0, 100.0, 1.0
	for i := 1; i < 100; i++ {
		price := 0.01 * float64(i)
		sigma, ok := ImpliedVolatility(true, price, f, k, tt)
		if !ok {
			t.Fatalf("unexpected failure at price=%v", price)
		}
		reprice := Price(true, f, k, sigma, tt)
		if math.Abs(price-reprice) > 5e-14 {
			t.Errorf("ATM call price=%v reconstructed=%v", price, reprice)
		}
	}
}

func TestImpliedVolatilityReconstructsPutATM(t *testing.T) {
	f, k, tt := 100.0, 100.0, 1.0
	for i := 1; i < 100; i++ {
		price := 0.01 * float64(i)
		sigma, ok := ImpliedVolatility(false, price, f, k, tt)
		if !ok {
			t.Fatalf("unexpected failure at price=%v", price)
		}
		reprice := Price(false, f, k, sigma, tt)
		if math.Abs(price-reprice) > 5e-14 {
			t.Errorf("ATM put price=%v reconstructed=%v", price, reprice)
		}
	}
}

func TestImpliedVolatilityReconstructsRandomCallITM(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	const n = 2000
	for i := 0; i < n; i++ {
		r := rng.Float64()
		r2 := rng.Float64()
		r3 := rng.Float64()
		price := 1.0*(1.0-r) + 1.0*r*r2
		f := 1.0
		k := 1.0 * r
		tt := 1e5 * r3
		if tt == 0 {
			continue
		}
		sigma, ok := ImpliedVolatility(true, price, f, k, tt)
		if !ok {
			continue
		}
		reprice := Price(true, f, k, sigma, tt)
		if math.Abs(price-reprice) > 1e-9 {
			t.Errorf("case %d: price=%v reprice=%v sigma=%v", i, price, reprice, sigma)
		}
	}
}

func TestImpliedVolatilityBelowIntrinsicFails(t *testing.T) {
	_, ok := ImpliedVolatility(true, -1.0, 100.0, 100.0, 1.0)
	if ok {
		t.Errorf("expected failure for a price below intrinsic value")
	}
}

func TestPriceAtZeroVolReturnsIntrinsic(t *testing.T) {
	got := Price(true, 105.0, 100.0, 0.0, 1.0)
	if got != 5.0 {
		t.Errorf("Price at sigma=0 = %v, want intrinsic 5.0", got)
	}
}
