package detectors

import "SignalFusion/internal/domain/models"

const (
	swingBars       = 5
	divergenceLevel = 40.0
)

// Divergence compares wt2 swing points with price swing points. Regular
// divergences (price makes a new extreme the oscillator does not confirm)
// are Strong; hidden ones (the oscillator makes the new extreme) are
// Moderate. Only swings with wt2 beyond ±40 count.
type Divergence struct{}

func (Divergence) Family() models.Family { return models.FamilyDivergence }

func (d Divergence) Detect(snap *models.Snapshot) []models.Signal {
	wt2, closes := snap.Values(models.ColWT2), snap.Values(models.ColClose)
	if wt2 == nil || closes == nil {
		return nil
	}
	set := newSignalSet(d.Family(), snap)
	oversold := func(v float64) bool { return v < -divergenceLevel }
	overbought := func(v float64) bool { return v > divergenceLevel }

	for i := swingBars; i < snap.Len()-swingBars; i++ {
		if prev, ok := previousSwing(wt2, closes, i, true, oversold); ok {
			switch {
			case closes[i] < closes[prev] && wt2[i] > wt2[prev]:
				set.emit(i, models.SignalRegularBullishDivergence, models.StrengthStrong, wt2[i])
			case closes[i] > closes[prev] && wt2[i] < wt2[prev]:
				set.emit(i, models.SignalHiddenBullishDivergence, models.StrengthModerate, wt2[i])
			}
		}
		if prev, ok := previousSwing(wt2, closes, i, false, overbought); ok {
			switch {
			case closes[i] > closes[prev] && wt2[i] < wt2[prev]:
				set.emit(i, models.SignalRegularBearishDivergence, models.StrengthStrong, wt2[i])
			case closes[i] < closes[prev] && wt2[i] > wt2[prev]:
				set.emit(i, models.SignalHiddenBearishDivergence, models.StrengthModerate, wt2[i])
			}
		}
	}
	return set.signals()
}

// previousSwing reports whether bar i is a joint swing low (or high) of osc
// and price that passes accept, and returns the nearest earlier joint swing
// that also passes accept and lies more than swingBars bars back.
func previousSwing(osc, price []float64, i int, low bool, accept func(float64) bool) (int, bool) {
	if !swing(osc, i, low) || !swing(price, i, low) || !accept(osc[i]) {
		return 0, false
	}
	for j := i - swingBars - 1; j >= 1; j-- {
		if swing(osc, j, low) && swing(price, j, low) && accept(osc[j]) {
			return j, true
		}
	}
	return 0, false
}

// swing reports whether values[i] is at least as low (or as high) as every
// bar within swingBars on either side. Bars outside the series are ignored;
// a missing value inside the window disqualifies i.
func swing(values []float64, i int, low bool) bool {
	v, ok := at(values, i)
	if !ok {
		return false
	}
	for k := 1; k <= swingBars; k++ {
		for _, j := range [2]int{i - k, i + k} {
			if j < 0 || j >= len(values) {
				continue
			}
			n, ok := at(values, j)
			if !ok {
				return false
			}
			if low && v > n || !low && v < n {
				return false
			}
		}
	}
	return true
}
