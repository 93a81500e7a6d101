// Package states classifies continuous oscillator readings into discrete
// states: the RSI-variant trend state and the Williams %R exhaustion zone.
package states

import (
	"math"
	"time"

	"SignalFusion/internal/domain/models"
)

const day = 24 * time.Hour

// RSI strength thresholds.
const (
	rsiStrongBull   = 60.0
	rsiStrongBear   = 40.0
	rsiModerateMid  = 50.0
	rsiStrongBars   = 3
	rsiValidMinBars = 2
)

// Code returns the state code at i. Non-integer codes and codes outside
// 0..3 are treated as missing.
func Code(codes []float64, i int) (int, bool) {
	if i < 0 || i >= len(codes) || models.IsNull(codes[i]) {
		return 0, false
	}
	v := codes[i]
	if v != math.Trunc(v) || v < models.RSICodeNeutral || v > models.RSICodeTransition {
		return 0, false
	}
	return int(v), true
}

// TrendDuration counts the consecutive bars ending at i that carry the same
// code as bar i. A missing code ends the run.
func TrendDuration(codes []float64, i int) int {
	cur, ok := Code(codes, i)
	if !ok {
		return 0
	}
	n := 1
	for j := i - 1; j >= 0; j-- {
		c, ok := Code(codes, j)
		if !ok || c != cur {
			break
		}
		n++
	}
	return n
}

// Strength grades a state code given its underlying value and duration.
func Strength(code int, value *float64, duration int) models.RSIStrength {
	if code == models.RSICodeTransition {
		return models.RSIStrengthTransition
	}
	if value == nil {
		return models.RSIStrengthWeak
	}
	v := *value
	switch {
	case code == models.RSICodeBullish && v > rsiStrongBull && duration >= rsiStrongBars,
		code == models.RSICodeBearish && v < rsiStrongBear && duration >= rsiStrongBars:
		return models.RSIStrengthStrong
	case code == models.RSICodeBullish && v > rsiModerateMid,
		code == models.RSICodeBearish && v < rsiModerateMid:
		return models.RSIStrengthModerate
	}
	return models.RSIStrengthWeak
}

// ChangeType maps the code a state changed into onto its signal type.
func ChangeType(code int) models.SignalType {
	switch code {
	case models.RSICodeBullish:
		return models.SignalBullishEntry
	case models.RSICodeBearish:
		return models.SignalBearishEntry
	case models.RSICodeTransition:
		return models.SignalTransitionPhase
	default:
		return models.SignalNeutralPhase
	}
}

// LastStateChange scans backward for the most recent bar whose code differs
// from the bar before it. Bars with a missing code on either side are not
// considered a change. It returns nil when the code never changed.
func LastStateChange(codes models.Series, now time.Time) *models.StateChange {
	for i := codes.Len() - 1; i >= 1; i-- {
		cur, ok := Code(codes.Values, i)
		if !ok {
			continue
		}
		prev, ok := Code(codes.Values, i-1)
		if !ok || prev == cur {
			continue
		}
		return &models.StateChange{
			Index:           i,
			Date:            codes.Dates[i],
			FromCode:        prev,
			ToCode:          cur,
			ChangeType:      ChangeType(cur),
			DaysSinceChange: DaysSince(codes.Dates[i], now),
		}
	}
	return nil
}

// ClassifyRSI reads the current RSI state from the state-code series and the
// optional value series. It returns nil when no valid code exists.
func ClassifyRSI(codes, values models.Series, now time.Time) *models.RSIReading {
	last := -1
	for i := codes.Len() - 1; i >= 0; i-- {
		if _, ok := Code(codes.Values, i); ok {
			last = i
			break
		}
	}
	if last < 0 {
		return nil
	}
	code, _ := Code(codes.Values, last)
	var value *float64
	if v, ok := values.At(last); ok {
		value = &v
	}
	duration := TrendDuration(codes.Values, last)
	start := last - duration + 1
	strength := Strength(code, value, duration)

	return &models.RSIReading{
		OscillatorState: models.OscillatorState{
			State:        string(models.RSIStateFromCode(code)),
			StartIndex:   start,
			StartDate:    codes.Dates[start],
			DurationBars: duration,
		},
		Code:       code,
		Value:      value,
		Strength:   strength,
		Valid:      duration >= rsiValidMinBars && strength != models.RSIStrengthWeak,
		LastChange: LastStateChange(codes, now),
	}
}

// DaysSince returns the whole days elapsed from t to now, never negative.
func DaysSince(t, now time.Time) int {
	age := now.Sub(t)
	if age < 0 {
		return 0
	}
	return int(age / day)
}
