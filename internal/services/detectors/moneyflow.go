package detectors

import (
	"math"

	"SignalFusion/internal/domain/models"
)

const (
	divergenceWindow     = 2
	divergencePriceSlope = 0.02
	divergenceFlowSlope  = 0.10
)

// MoneyFlowDivergence flags bars where price and money flow move in
// opposite directions over a three-bar window, and swing points where price
// makes a new low (high) that money flow does not confirm. A swing
// divergence is Strong and takes the bar over the window check.
type MoneyFlowDivergence struct{}

func (MoneyFlowDivergence) Family() models.Family { return models.FamilyMoneyFlow }

func (d MoneyFlowDivergence) Detect(snap *models.Snapshot) []models.Signal {
	closes, mf := snap.Values(models.ColClose), snap.Values(models.ColMoneyFlow)
	if closes == nil || mf == nil {
		return nil
	}
	set := newSignalSet(d.Family(), snap)
	always := func(float64) bool { return true }

	for i := divergenceWindow; i < snap.Len(); i++ {
		if i >= swingBars && i < snap.Len()-swingBars {
			if prev, ok := previousSwing(mf, closes, i, true, always); ok && closes[i] < closes[prev] && mf[i] > mf[prev] {
				set.emit(i, models.SignalBullishPivotDivergence, models.StrengthStrong, mf[i])
				continue
			}
			if prev, ok := previousSwing(mf, closes, i, false, always); ok && closes[i] > closes[prev] && mf[i] < mf[prev] {
				set.emit(i, models.SignalBearishPivotDivergence, models.StrengthStrong, mf[i])
				continue
			}
		}

		priceSlope, ok := slope(closes, i-divergenceWindow, i)
		if !ok {
			continue
		}
		flowSlope, ok := slope(mf, i-divergenceWindow, i)
		if !ok {
			continue
		}
		switch {
		case priceSlope < -divergencePriceSlope && flowSlope > divergenceFlowSlope:
			set.emit(i, models.SignalBullishDivergence, models.StrengthModerate, mf[i])
		case priceSlope > divergencePriceSlope && flowSlope < -divergenceFlowSlope:
			set.emit(i, models.SignalBearishDivergence, models.StrengthModerate, mf[i])
		}
	}
	return set.signals()
}

// slope is the relative change from values[from] to values[to].
func slope(values []float64, from, to int) (float64, bool) {
	a, ok := at(values, from)
	if !ok || a == 0 {
		return 0, false
	}
	b, ok := at(values, to)
	if !ok {
		return 0, false
	}
	return (b - a) / math.Abs(a), true
}
