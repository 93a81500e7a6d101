package detectors

import (
	"math"

	"SignalFusion/internal/domain/models"
)

const (
	cusumMinBars       = 20
	cusumThreshold     = 1.0
	slidingWindow      = 20
	slidingThreshold   = 2.0
	deviationMinBars   = 30
	deviationMaxWindow = 30
	deviationThreshold = 2.0
	regimeVotes        = 2
	regimeDirBars      = 2
)

// Regime flags bars where at least two of three change detectors agree
// that close (or wt2, when present) left its previous regime: a CUSUM
// chart, a sliding-window z-score and a deviation from the rolling mean.
// The direction comes from the close two bars earlier. Agreement of price
// and wave trend makes the shift Strong.
type Regime struct{}

func (Regime) Family() models.Family { return models.FamilyRegime }

func (d Regime) Detect(snap *models.Snapshot) []models.Signal {
	closes := snap.Values(models.ColClose)
	if closes == nil {
		return nil
	}
	price := RegimeChanges(closes)
	var wave []bool
	if wt2 := snap.Values(models.ColWT2); wt2 != nil {
		wave = RegimeChanges(wt2)
	}
	set := newSignalSet(d.Family(), snap)

	for i := regimeDirBars; i < snap.Len(); i++ {
		p, w := price[i], wave != nil && wave[i]
		if !p && !w {
			continue
		}
		r, ok := returnOver(closes, i-regimeDirBars, i)
		if !ok {
			continue
		}
		typ := models.SignalRegimeShiftDown
		if r > 0 {
			typ = models.SignalRegimeShiftUp
		}
		strength := models.StrengthModerate
		if p && w {
			strength = models.StrengthStrong
		}
		set.emit(i, typ, strength, closes[i])
	}
	return set.signals()
}

// RegimeChanges marks the bars where at least two change detectors fire.
func RegimeChanges(values []float64) []bool {
	out := make([]bool, len(values))
	votes := make([]int, len(values))
	for _, detect := range []func([]float64) []bool{cusum, slidingZScore, rollingDeviation} {
		for i, hit := range detect(values) {
			if hit {
				votes[i]++
			}
		}
	}
	for i, v := range votes {
		out[i] = v >= regimeVotes
	}
	return out
}

// cusum runs a two-sided CUSUM chart over the standardised series and
// resets both sums after every alarm.
func cusum(values []float64) []bool {
	out := make([]bool, len(values))
	if len(values) < cusumMinBars {
		return out
	}
	mean, std, ok := moments(values, false)
	if !ok {
		return out
	}
	var pos, neg float64
	for i := 1; i < len(values); i++ {
		v, ok := at(values, i)
		if !ok {
			continue
		}
		z := (v - mean) / std
		pos = math.Max(0, pos+z)
		neg = math.Max(0, neg-z)
		if pos > cusumThreshold || neg > cusumThreshold {
			out[i] = true
			pos, neg = 0, 0
		}
	}
	return out
}

// slidingZScore fires when a bar lies more than slidingThreshold sample
// deviations away from the mean of the window that precedes it.
func slidingZScore(values []float64) []bool {
	out := make([]bool, len(values))
	if len(values) < 2*slidingWindow {
		return out
	}
	for i := slidingWindow; i < len(values); i++ {
		v, ok := at(values, i)
		if !ok {
			continue
		}
		win := values[i-slidingWindow : i]
		if countPresent(win) != slidingWindow {
			continue
		}
		mean, std, ok := moments(win, true)
		if !ok {
			continue
		}
		if math.Abs(v-mean)/std > slidingThreshold {
			out[i] = true
		}
	}
	return out
}

// rollingDeviation fires when a bar strays from its rolling mean by more
// than deviationThreshold times the deviation of the whole series.
func rollingDeviation(values []float64) []bool {
	out := make([]bool, len(values))
	if len(values) < deviationMinBars {
		return out
	}
	window := min(deviationMaxWindow, len(values)/4)
	_, std, ok := moments(values, true)
	if !ok {
		return out
	}
	for i := window; i < len(values); i++ {
		v, ok := at(values, i)
		if !ok {
			continue
		}
		win := values[i-window+1 : i+1]
		if countPresent(win) != window {
			continue
		}
		mean, _, _ := moments(win, false)
		if math.Abs(v-mean) > deviationThreshold*std {
			out[i] = true
		}
	}
	return out
}

// moments returns the mean and standard deviation of the present values,
// using the sample formula when sample is set. ok is false when the
// deviation is zero or there are too few values.
func moments(values []float64, sample bool) (mean, std float64, ok bool) {
	n := 0
	for _, v := range values {
		if !models.IsNull(v) {
			mean += v
			n++
		}
	}
	if n < 2 {
		return 0, 0, false
	}
	mean /= float64(n)
	var ss float64
	for _, v := range values {
		if !models.IsNull(v) {
			ss += (v - mean) * (v - mean)
		}
	}
	div := float64(n)
	if sample {
		div--
	}
	std = math.Sqrt(ss / div)
	return mean, std, std > 1e-8
}

func countPresent(values []float64) int {
	n := 0
	for _, v := range values {
		if !models.IsNull(v) {
			n++
		}
	}
	return n
}
