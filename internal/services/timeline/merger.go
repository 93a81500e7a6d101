// Package timeline merges the signals of every family into one dated
// timeline and tags each entry with its age relative to an injected now.
package timeline

import (
	"sort"
	"time"

	"SignalFusion/internal/domain/models"
	"SignalFusion/internal/domain/repository"
)

const day = 24 * time.Hour

type Merger struct {
	cfg Config
}

func NewMerger(cfg Config) *Merger {
	return &Merger{cfg: cfg}
}

// Merge builds the timeline: duplicates of (family, date, type) are dropped
// keeping the strongest, entries are sorted newest first and limited to the
// configured window. A sparse window widens to the most recent entries of
// the whole history. The result is never nil.
func (m *Merger) Merge(signals []models.Signal, now time.Time, iv repository.Interval) []models.TimelineEntry {
	rule := m.cfg.Rule(iv)
	unique := dedupe(signals)

	entries := make([]models.TimelineEntry, 0, len(unique))
	for _, s := range unique {
		age := Age(s.Date, now)
		entries = append(entries, models.TimelineEntry{
			Signal:     s,
			DaysSince:  int(age / day),
			AgeMinutes: int64(age / time.Minute),
			Freshness:  Classify(age, rule),
			Badge:      m.Badge(age),
		})
	}
	Sort(entries)

	window := time.Duration(m.cfg.WindowDays) * day
	recent := make([]models.TimelineEntry, 0, len(entries))
	for _, e := range entries {
		if now.Sub(e.Date) <= window {
			recent = append(recent, e)
		}
	}
	if len(recent) >= m.cfg.MinEntries {
		return recent
	}
	limit := m.cfg.FallbackLimit
	if limit > len(entries) {
		limit = len(entries)
	}
	return entries[:limit]
}

// Badge returns the highlight tier for an age, or BadgeNone.
func (m *Merger) Badge(age time.Duration) models.Badge {
	b := m.cfg.Badges
	switch {
	case age <= b.Hot:
		return models.BadgeHot
	case age <= b.Today:
		return models.BadgeToday
	case age <= b.ThreeDay:
		return models.BadgeThreeDay
	default:
		return models.BadgeNone
	}
}

// Classify tiers an age against one freshness row.
func Classify(age time.Duration, rule FreshnessRule) models.Freshness {
	switch {
	case age <= rule.Fresh:
		return models.FreshnessFresh
	case age <= rule.Recent:
		return models.FreshnessRecent
	case age <= rule.Delayed:
		return models.FreshnessDelayed
	default:
		return models.FreshnessStale
	}
}

// Age is now minus date, never negative.
func Age(date, now time.Time) time.Duration {
	age := now.Sub(date)
	if age < 0 {
		return 0
	}
	return age
}

// Sort orders entries newest first. Equal dates are ordered by family, then
// type, then the later bar index first.
func Sort(entries []models.TimelineEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if a.Family != b.Family {
			return a.Family < b.Family
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Index > b.Index
	})
}

type signalKey struct {
	family models.Family
	date   int64
	typ    models.SignalType
}

func dedupe(signals []models.Signal) []models.Signal {
	out := make([]models.Signal, 0, len(signals))
	seen := make(map[signalKey]int, len(signals))
	for _, s := range signals {
		k := signalKey{family: s.Family, date: s.Date.UnixNano(), typ: s.Type}
		if at, ok := seen[k]; ok {
			if s.Strength.Rank() > out[at].Strength.Rank() {
				out[at] = s
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, s)
	}
	return out
}
