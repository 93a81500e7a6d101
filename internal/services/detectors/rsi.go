package detectors

import (
	"SignalFusion/internal/domain/models"
	"SignalFusion/internal/services/states"
)

const (
	rsiEntryStrongBull = 60.0
	rsiEntryStrongBear = 40.0
	rsiTurnOversold    = 30.0
	rsiTurnOverbought  = 70.0
	rsiTrendBars       = 5
	rsiMidline         = 50.0
)

// RSI emits one signal per state-code change. Bars without a change may
// instead carry a break of a five-bar RSI trend or, when the RSI moving
// average is present, a turn out of the oversold or overbought region, in
// that order of precedence.
type RSI struct{}

func (RSI) Family() models.Family { return models.FamilyRSI }

func (d RSI) Detect(snap *models.Snapshot) []models.Signal {
	codes := snap.Values(models.ColRSIState)
	ma := snap.Values(models.ColRSIMA)
	values := snap.Values(models.ColRSIValue)
	if codes == nil && ma == nil && values == nil {
		return nil
	}
	set := newSignalSet(d.Family(), snap)

	for i := 1; i < snap.Len(); i++ {
		if cur, ok := states.Code(codes, i); ok {
			if prev, ok := states.Code(codes, i-1); ok && prev != cur {
				value, hasValue := at(values, i)
				context := float64(cur)
				if hasValue {
					context = value
				}
				set.emit(i, states.ChangeType(cur), entryStrength(cur, value, hasValue), context)
				continue
			}
		}

		if typ, ok := trendBreak(values, i); ok {
			set.emit(i, typ, models.StrengthModerate, values[i])
			continue
		}

		if i < 2 {
			continue
		}
		m0, ok0 := at(ma, i)
		m1, ok1 := at(ma, i-1)
		m2, ok2 := at(ma, i-2)
		if !ok0 || !ok1 || !ok2 {
			continue
		}
		switch {
		case m0 > m1 && m1 < m2 && m1 < rsiTurnOversold:
			set.emit(i, models.SignalOversoldTurn, models.StrengthModerate, m0)
		case m0 < m1 && m1 > m2 && m1 > rsiTurnOverbought:
			set.emit(i, models.SignalOverboughtTurn, models.StrengthModerate, m0)
		}
	}
	return set.signals()
}

// trendBreak reports an RSI rising off a run of non-rising bars below the
// midline, or falling off a run of non-falling bars above it.
func trendBreak(values []float64, i int) (models.SignalType, bool) {
	if i < 2*rsiTrendBars {
		return "", false
	}
	cur, ok0 := at(values, i)
	prev, ok1 := at(values, i-1)
	back2, ok2 := at(values, i-2)
	if !ok0 || !ok1 || !ok2 {
		return "", false
	}
	switch {
	case cur > prev && prev < rsiMidline && cur > back2 && monotone(values, i, true):
		return models.SignalBullishTrendBreak, true
	case cur < prev && prev > rsiMidline && cur < back2 && monotone(values, i, false):
		return models.SignalBearishTrendBreak, true
	}
	return "", false
}

// monotone reports whether the rsiTrendBars steps ending at i-1 never rose
// (falling) or never fell.
func monotone(values []float64, i int, falling bool) bool {
	for j := 2; j <= rsiTrendBars+1; j++ {
		later, ok1 := at(values, i-j+1)
		earlier, ok2 := at(values, i-j)
		if !ok1 || !ok2 {
			return false
		}
		if falling && later > earlier || !falling && later < earlier {
			return false
		}
	}
	return true
}

func entryStrength(code int, value float64, hasValue bool) models.Strength {
	switch code {
	case models.RSICodeBullish:
		if hasValue && value > rsiEntryStrongBull {
			return models.StrengthStrong
		}
		return models.StrengthModerate
	case models.RSICodeBearish:
		if hasValue && value < rsiEntryStrongBear {
			return models.StrengthStrong
		}
		return models.StrengthModerate
	default:
		return models.StrengthWeak
	}
}
