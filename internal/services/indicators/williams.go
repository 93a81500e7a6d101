package indicators

import "SignalFusion/internal/domain/models"

const WilliamsPeriod = 14

// WilliamsR returns ((highestHigh - close) / (highestHigh - lowestLow)) * -100
// over a trailing window. A flat window (highestHigh == lowestLow) is missing,
// and results are kept within [-100, 0].
func WilliamsR(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := nulls(n)
	if len(high) != n || len(low) != n || period <= 0 {
		return out
	}
	hh := Highest(high, period)
	ll := Lowest(low, period)
	for i := 0; i < n; i++ {
		if models.IsNull(hh[i]) || models.IsNull(ll[i]) || models.IsNull(close[i]) {
			continue
		}
		rng := hh[i] - ll[i]
		if rng == 0 {
			continue
		}
		v := finite((hh[i] - close[i]) / rng * -100)
		if models.IsNull(v) {
			continue
		}
		if v == 0 {
			v = 0 // drop the sign of -0
		}
		out[i] = clamp(v, -100, 0)
	}
	return out
}
