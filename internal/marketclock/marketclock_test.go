package marketclock

import (
	"testing"
	"time"
)

func TestAsOfCombinesDateAndTimeInZone(t *testing.T) {
	day := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	got, err := AsOf(day, "16:00", "America/New_York")
	if err != nil {
		t.Fatalf("AsOf: %v", err)
	}
	if got.Hour() != 16 || got.Minute() != 0 {
		t.Errorf("AsOf hour/minute = %d:%d, want 16:00", got.Hour(), got.Minute())
	}
	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 5 {
		t.Errorf("AsOf date = %v, want 2026-03-05", got)
	}
}

func TestAsOfRejectsBadTimeZone(t *testing.T) {
	if _, err := AsOf(time.Now(), "16:00", "Not/AZone"); err == nil {
		t.Error("expected error for invalid timezone")
	}
}

func TestAsOfRejectsBadTimeOfDay(t *testing.T) {
	if _, err := AsOf(time.Now(), "4pm", "UTC"); err == nil {
		t.Error("expected error for invalid time-of-day format")
	}
}
