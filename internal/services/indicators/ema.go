package indicators

import "SignalFusion/internal/domain/models"

// EMA is the exponential moving average seeded with the simple mean of the
// first period values, k = 2/(period+1). The first period-1 outputs are
// missing. A gap resets the average, which is seeded again once period
// consecutive values are available.
func EMA(values []float64, period int) []float64 {
	out := nulls(len(values))
	if period <= 0 {
		return out
	}
	k := 2.0 / float64(period+1)
	prev := models.Null()
	run := 0
	for i, v := range values {
		if models.IsNull(v) {
			run = 0
			prev = models.Null()
			continue
		}
		run++
		switch {
		case !models.IsNull(prev):
			prev = v*k + prev*(1-k)
		case run >= period:
			var sum float64
			for j := i - period + 1; j <= i; j++ {
				sum += values[j]
			}
			prev = sum / float64(period)
		default:
			continue
		}
		out[i] = prev
	}
	return out
}

// ewm is the recursive average seeded with the first present value, the
// form used by the wave-trend and trend-exhaust oscillators.
func ewm(values []float64, span int) []float64 {
	out := nulls(len(values))
	if span <= 0 {
		return out
	}
	a := 2.0 / float64(span+1)
	prev := models.Null()
	for i, v := range values {
		if models.IsNull(v) {
			prev = models.Null()
			continue
		}
		if models.IsNull(prev) {
			prev = v
		} else {
			prev = a*v + (1-a)*prev
		}
		out[i] = prev
	}
	return out
}
