package data

import (
	"sort"
	"testing"
	"time"
)

func testDateRange() (time.Time, time.Time) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	return start, end
}

func TestSyntheticProviderGetBarsStaysInRange(t *testing.T) {
	start, end := testDateRange()
	p := NewSyntheticProvider()

	bars, err := p.GetBars("AAPL", start, end, 1, "day")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) == 0 {
		t.Fatalf("expected non-empty bars")
	}
	for _, b := range bars {
		if b.Date.Before(start) || b.Date.After(end) {
			t.Fatalf("bar date out of range: %v", b.Date)
		}
	}
}

func TestSelectProviderPicksSyntheticWithoutAPIKey(t *testing.T) {
	t.Setenv("MASSIVE_API_KEY", "")
	p := SelectProvider()
	if _, ok := p.(*synthDataProvider); !ok {
		t.Errorf("SelectProvider without MASSIVE_API_KEY = %T, want *synthDataProvider", p)
	}
}

func TestSelectProviderPicksMassiveWithAPIKey(t *testing.T) {
	t.Setenv("MASSIVE_API_KEY", "a-key")
	p := SelectProvider()
	if _, ok := p.(*massiveDataProvider); !ok {
		t.Errorf("SelectProvider with MASSIVE_API_KEY = %T, want *massiveDataProvider", p)
	}
}

func TestResolveQuoteSetsPositiveTAndSpotForward(t *testing.T) {
	p := NewSyntheticProvider()
	openDate := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	expiryDate := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	q, err := ResolveQuote(p, "SPY", expiryDate, openDate, 100.0, true)
	if err != nil {
		t.Fatalf("ResolveQuote: %v", err)
	}
	if q.T <= 0 {
		t.Errorf("ResolveQuote T = %v, want positive", q.T)
	}
	if q.Forward != 100.0 {
		t.Errorf("ResolveQuote Forward = %v, want 100.0", q.Forward)
	}
}

func TestMatchBarDateNearestPrefersExact(t *testing.T) {
	target := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	dates := []time.Time{
		time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		target,
		time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC),
	}
	got := MatchBarDate(target, dates, MatchNearest)
	if !got.Equal(target) {
		t.Errorf("MatchBarDate = %v, want exact match %v", got, target)
	}
}

func TestClosestReturnsNearestValue(t *testing.T) {
	values := []float64{1, 5, 10, 20}
	sort.Float64s(values)
	if got := Closest(values, 9); got != 10 {
		t.Errorf("Closest(values, 9) = %v, want 10", got)
	}
	if got := Closest(values, 0); got != 1 {
		t.Errorf("Closest(values, 0) = %v, want 1", got)
	}
}
