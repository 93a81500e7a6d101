// Package indicators implements the derived-indicator math. Every function
// is pure: inputs are never modified and a NaN in any window yields NaN
// (a missing point) at that position.
package indicators

import (
	"math"

	"SignalFusion/internal/domain/models"
)

func nulls(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = models.Null()
	}
	return out
}

// windowOK reports whether values[i-period+1..i] are all present.
func windowOK(values []float64, i, period int) bool {
	if i-period+1 < 0 {
		return false
	}
	for j := i - period + 1; j <= i; j++ {
		if models.IsNull(values[j]) {
			return false
		}
	}
	return true
}

// SMA is the simple moving average over a trailing window.
func SMA(values []float64, period int) []float64 {
	out := nulls(len(values))
	if period <= 0 {
		return out
	}
	for i := range values {
		if !windowOK(values, i, period) {
			continue
		}
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}

// StdDev is the population standard deviation over a trailing window.
func StdDev(values []float64, period int) []float64 {
	out := nulls(len(values))
	if period <= 0 {
		return out
	}
	mean := SMA(values, period)
	for i := range values {
		if models.IsNull(mean[i]) {
			continue
		}
		var ss float64
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - mean[i]
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(period))
	}
	return out
}

// Highest is the trailing-window maximum.
func Highest(values []float64, period int) []float64 {
	return extreme(values, period, math.Max)
}

// Lowest is the trailing-window minimum.
func Lowest(values []float64, period int) []float64 {
	return extreme(values, period, math.Min)
}

func extreme(values []float64, period int, pick func(a, b float64) float64) []float64 {
	out := nulls(len(values))
	if period <= 0 {
		return out
	}
	for i := range values {
		if !windowOK(values, i, period) {
			continue
		}
		v := values[i-period+1]
		for j := i - period + 2; j <= i; j++ {
			v = pick(v, values[j])
		}
		out[i] = v
	}
	return out
}

// firstValid returns the index of the first present value or -1.
func firstValid(values []float64) int {
	for i, v := range values {
		if !models.IsNull(v) {
			return i
		}
	}
	return -1
}

// finite collapses non-finite results to the null marker.
func finite(v float64) float64 {
	if models.IsNull(v) {
		return models.Null()
	}
	return v
}
