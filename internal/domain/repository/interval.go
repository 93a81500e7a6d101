package repository

import (
	"strconv"
	"strings"
	"time"
)

// Interval is a bar sampling interval such as "5m", "1h", "1d" or "1wk".
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval1d  Interval = "1d"
	Interval1wk Interval = "1wk"
	Interval1mo Interval = "1mo"
)

// DefaultInterval returns the interval used when none is supplied.
func DefaultInterval() Interval { return Interval1d }

// Duration returns the length of one bar. Unknown intervals return 0.
func (iv Interval) Duration() time.Duration {
	s := strings.ToLower(strings.TrimSpace(string(iv)))
	unit := strings.TrimLeft(s, "0123456789")
	n, err := strconv.Atoi(strings.TrimSuffix(s, unit))
	if err != nil || n <= 0 {
		return 0
	}
	switch unit {
	case "m":
		return time.Duration(n) * time.Minute
	case "h":
		return time.Duration(n) * time.Hour
	case "d":
		return time.Duration(n) * 24 * time.Hour
	case "wk", "w":
		return time.Duration(n) * 7 * 24 * time.Hour
	case "mo":
		return time.Duration(n) * 30 * 24 * time.Hour
	default:
		return 0
	}
}

// IsValid reports whether iv parses to a positive bar length.
func (iv Interval) IsValid() bool { return iv.Duration() > 0 }

// Intraday reports whether bars are shorter than a day.
func (iv Interval) Intraday() bool {
	d := iv.Duration()
	return d > 0 && d < 24*time.Hour
}

// NormalizeInterval converts raw input to a valid interval (or the default).
// "60m" and "1h" are kept as given.
func NormalizeInterval(s string) Interval {
	iv := Interval(strings.ToLower(strings.TrimSpace(s)))
	if iv.IsValid() {
		return iv
	}
	return DefaultInterval()
}
