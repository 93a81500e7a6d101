package detectors

import (
	"SignalFusion/internal/domain/models"
	"SignalFusion/internal/services/states"
)

// Exhaustion detects exits from the oversold/overbought zones of the
// averaged %R and crossovers between the short and long %R lines.
type Exhaustion struct{}

func (Exhaustion) Family() models.Family { return models.FamilyExhaustion }

func (d Exhaustion) Detect(snap *models.Snapshot) []models.Signal {
	avg := snap.Values(models.ColWRAvg)
	short, long := snap.Values(models.ColWRShort), snap.Values(models.ColWRLong)
	if avg == nil && (short == nil || long == nil) {
		return nil
	}
	set := newSignalSet(d.Family(), snap)

	for i := 1; i < snap.Len(); i++ {
		if prev, cur, ok := pair(avg, i); ok {
			switch {
			case prev <= states.OversoldLevel && cur > states.OversoldLevel:
				strength := models.StrengthModerate
				if cur > states.NearOversoldLevel {
					strength = models.StrengthStrong
				}
				set.emit(i, models.SignalOversoldReversal, strength, cur)
			case prev >= states.OverboughtLevel && cur < states.OverboughtLevel:
				strength := models.StrengthModerate
				if cur < states.NearOverboughtLevel {
					strength = models.StrengthStrong
				}
				set.emit(i, models.SignalOverboughtReversal, strength, cur)
			}
		}

		ps, cs, ok := pair(short, i)
		if !ok {
			continue
		}
		pl, cl, ok := pair(long, i)
		if !ok {
			continue
		}
		a, hasAvg := at(avg, i)
		switch {
		case ps <= pl && cs > cl:
			strength := models.StrengthModerate
			if hasAvg && a <= states.OversoldLevel {
				strength = models.StrengthStrong
			}
			set.emit(i, models.SignalBullishCross, strength, cs)
		case ps >= pl && cs < cl:
			strength := models.StrengthModerate
			if hasAvg && a >= states.OverboughtLevel {
				strength = models.StrengthStrong
			}
			set.emit(i, models.SignalBearishCross, strength, cs)
		}
	}
	return set.signals()
}
