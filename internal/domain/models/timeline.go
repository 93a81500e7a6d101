package models

// Freshness tiers a signal by age relative to the sampling interval.
type Freshness string

const (
	FreshnessFresh   Freshness = "Fresh"
	FreshnessRecent  Freshness = "Recent"
	FreshnessDelayed Freshness = "Delayed"
	FreshnessStale   Freshness = "Stale"
)

// Badge highlights very young signals regardless of interval.
type Badge string

const (
	BadgeNone     Badge = ""
	BadgeHot      Badge = "Hot"
	BadgeToday    Badge = "Today"
	BadgeThreeDay Badge = "ThreeDay"
)

// TimelineEntry is a Signal decorated with its age and freshness.
type TimelineEntry struct {
	Signal
	DaysSince  int       `json:"daysSince"`
	AgeMinutes int64     `json:"ageMinutes"`
	Freshness  Freshness `json:"freshness"`
	Badge      Badge     `json:"badge,omitempty"`
}
