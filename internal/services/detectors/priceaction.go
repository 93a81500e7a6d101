package detectors

import (
	"math"

	"SignalFusion/internal/domain/models"
)

const (
	barMoveLevel      = 0.05
	barMoveExtreme    = 0.10
	weeklyBars        = 5
	weeklyMoveLevel   = 0.15
	weeklyMoveExtreme = 0.25
)

// PriceAction flags large single-bar moves and, on every fifth bar, large
// five-bar moves.
type PriceAction struct{}

func (PriceAction) Family() models.Family { return models.FamilyPriceAction }

func (d PriceAction) Detect(snap *models.Snapshot) []models.Signal {
	closes := snap.Values(models.ColClose)
	if closes == nil {
		return nil
	}
	set := newSignalSet(d.Family(), snap)

	for i := 1; i < snap.Len(); i++ {
		if i >= weeklyBars && i%weeklyBars == 0 {
			if r, ok := returnOver(closes, i-weeklyBars, i); ok && math.Abs(r) > weeklyMoveLevel {
				typ := models.SignalWeeklySurge
				if r < 0 {
					typ = models.SignalWeeklyDecline
				}
				strength := models.StrengthVeryStrong
				if math.Abs(r) > weeklyMoveExtreme {
					strength = models.StrengthExtreme
				}
				set.emit(i, typ, strength, r*100)
			}
		}

		if r, ok := returnOver(closes, i-1, i); ok && math.Abs(r) > barMoveLevel {
			typ := models.SignalBreakout
			if r < 0 {
				typ = models.SignalBreakdown
			}
			strength := models.StrengthStrong
			if math.Abs(r) > barMoveExtreme {
				strength = models.StrengthExtreme
			}
			set.emit(i, typ, strength, r*100)
		}
	}
	return set.signals()
}

// returnOver is the simple return from closes[from] to closes[to]. A
// non-positive base price yields no return.
func returnOver(closes []float64, from, to int) (float64, bool) {
	a, ok := at(closes, from)
	if !ok || a <= 0 {
		return 0, false
	}
	b, ok := at(closes, to)
	if !ok {
		return 0, false
	}
	return (b - a) / a, true
}
