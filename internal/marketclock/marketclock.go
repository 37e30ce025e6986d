// Package marketclock resolves the wall-clock instant a surface snapshot
// should treat as "now": a time of day in a named market timezone, applied
// to a given calendar day.
package marketclock

import (
	"fmt"
	"time"
)

// AsOf combines day's date with timeOfDay (HH:MM) interpreted in timeZone,
// e.g. AsOf(today, "16:00", "America/New_York") for the US equity close.
func AsOf(day time.Time, timeOfDay, timeZone string) (time.Time, error) {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("marketclock: invalid timezone %q: %w", timeZone, err)
	}

	parsed, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("marketclock: invalid time-of-day %q, want HH:MM: %w", timeOfDay, err)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc), nil
}
