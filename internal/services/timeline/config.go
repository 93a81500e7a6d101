package timeline

import (
	"time"

	"SignalFusion/internal/domain/repository"
)

// FreshnessRule holds the age cutoffs for intervals up to UpTo. Ages equal
// to a cutoff fall into the younger tier.
type FreshnessRule struct {
	UpTo    time.Duration `yaml:"up_to"`
	Fresh   time.Duration `yaml:"fresh"`
	Recent  time.Duration `yaml:"recent"`
	Delayed time.Duration `yaml:"delayed"`
}

// BadgeRule holds the highlight cutoffs, applied regardless of interval.
type BadgeRule struct {
	Hot      time.Duration `yaml:"hot"`
	Today    time.Duration `yaml:"today"`
	ThreeDay time.Duration `yaml:"three_day"`
}

// Config controls the merge window and the freshness model.
type Config struct {
	WindowDays    int             `yaml:"window_days"`
	MinEntries    int             `yaml:"min_entries"`
	FallbackLimit int             `yaml:"fallback_limit"`
	Intraday      []FreshnessRule `yaml:"intraday"`
	Daily         FreshnessRule   `yaml:"daily"`
	Badges        BadgeRule       `yaml:"badges"`
}

// DefaultConfig returns the standard 60-day window and freshness table.
func DefaultConfig() Config {
	return Config{
		WindowDays:    60,
		MinEntries:    10,
		FallbackLimit: 20,
		Intraday: []FreshnessRule{
			{UpTo: time.Minute, Fresh: 5 * time.Minute, Recent: 15 * time.Minute, Delayed: 60 * time.Minute},
			{UpTo: 5 * time.Minute, Fresh: 10 * time.Minute, Recent: 30 * time.Minute, Delayed: 120 * time.Minute},
			{UpTo: 15 * time.Minute, Fresh: 30 * time.Minute, Recent: 60 * time.Minute, Delayed: 240 * time.Minute},
			{UpTo: 30 * time.Minute, Fresh: 60 * time.Minute, Recent: 120 * time.Minute, Delayed: 360 * time.Minute},
			{UpTo: 23 * time.Hour, Fresh: 2 * time.Hour, Recent: 6 * time.Hour, Delayed: 24 * time.Hour},
		},
		Daily: FreshnessRule{Fresh: 24 * time.Hour, Recent: 48 * time.Hour, Delayed: 7 * 24 * time.Hour},
		Badges: BadgeRule{
			Hot:      12 * time.Hour,
			Today:    24 * time.Hour,
			ThreeDay: 72 * time.Hour,
		},
	}
}

// Rule picks the freshness row for an interval. Unknown and daily-or-longer
// intervals use the daily row.
func (c Config) Rule(iv repository.Interval) FreshnessRule {
	d := iv.Duration()
	if d <= 0 || !iv.Intraday() {
		return c.Daily
	}
	for _, r := range c.Intraday {
		if d <= r.UpTo {
			return r
		}
	}
	return c.Daily
}
