package states

import (
	"time"

	"SignalFusion/internal/domain/models"
)

// Exhaustion zone boundaries on the averaged Williams %R.
const (
	OverboughtLevel     = -20.0
	OversoldLevel       = -80.0
	NearOverboughtLevel = -30.0
	NearOversoldLevel   = -70.0
)

// ClassifyZone maps a Williams %R value onto its zone. Boundaries are
// inclusive and checked from the extremes inward.
func ClassifyZone(v float64) models.ExhaustionZone {
	switch {
	case v >= OverboughtLevel:
		return models.ZoneOverbought
	case v <= OversoldLevel:
		return models.ZoneOversold
	case v >= NearOverboughtLevel:
		return models.ZoneNearOverbought
	case v <= NearOversoldLevel:
		return models.ZoneNearOversold
	default:
		return models.ZoneNeutral
	}
}

// ClassifyExhaustion classifies the latest present value of the averaged
// %R and finds when the series entered that zone. Missing bars are skipped
// while scanning back; with no zone change in the whole history the entry
// is the first present bar. It returns nil for an absent series.
func ClassifyExhaustion(avg models.Series, now time.Time) *models.ExhaustionReading {
	last := -1
	for i := avg.Len() - 1; i >= 0; i-- {
		if _, ok := avg.At(i); ok {
			last = i
			break
		}
	}
	if last < 0 {
		return nil
	}
	value, _ := avg.At(last)
	zone := ClassifyZone(value)

	entry := last
	for i := last - 1; i >= 0; i-- {
		v, ok := avg.At(i)
		if !ok {
			continue
		}
		if ClassifyZone(v) != zone {
			break
		}
		entry = i
	}

	return &models.ExhaustionReading{
		OscillatorState: models.OscillatorState{
			State:        string(zone),
			StartIndex:   entry,
			StartDate:    avg.Dates[entry],
			DurationBars: last - entry + 1,
		},
		Zone:       zone,
		Value:      value,
		DaysInZone: DaysSince(avg.Dates[entry], now),
	}
}
