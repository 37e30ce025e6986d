package main

// Config is the JSON document describing a server run: which underlyings to
// snapshot into the vol surface, where reports land, and how the periodic
// scan is scheduled.
type Config struct {
	// Underlyings lists the tickers to include in each surface snapshot.
	Underlyings []string `json:"underlyings"`
	// SpotLevels lists the as-of spot prices scanned against each
	// underlying; each is passed to the provider's ATM lookup, and the
	// strike that lookup returns is the one priced.
	SpotLevels []float64 `json:"spot_levels"`
	// ExpiryDays lists days-to-expiry offsets (from the scan's as-of date)
	// used to build each request's expiry.
	ExpiryDays []int `json:"expiry_days"`
	// Filter is an optional govaluate expression applied to scan results,
	// e.g. "iv > 0.05 && dte < 60".
	Filter string `json:"filter"`
	// ReportDir is where periodic snapshots are written.
	ReportDir string `json:"report_dir"`
	// CronSpec schedules the periodic snapshot job (robfig/cron syntax,
	// five fields, no seconds). Empty disables the periodic job.
	CronSpec string `json:"cron_spec"`
	// RedisAddr, when set, enables the implied-volatility result cache.
	RedisAddr string `json:"redis_addr"`
	// SnapshotTime is the HH:MM time of day, in TimeZone, treated as the
	// as-of instant for each scan. Empty means "use wall-clock now".
	SnapshotTime string `json:"snapshot_time"`
	// TimeZone names the IANA zone SnapshotTime is interpreted in.
	TimeZone string `json:"time_zone"`
}
