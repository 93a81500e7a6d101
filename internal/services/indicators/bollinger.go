package indicators

import "SignalFusion/internal/domain/models"

const (
	BollingerPeriod = 20
	BollingerK      = 2.0
)

// Bollinger returns the upper, middle and lower bands. The middle band is
// the SMA; the width uses the population standard deviation.
func Bollinger(values []float64, period int, k float64) (upper, middle, lower []float64) {
	n := len(values)
	middle = SMA(values, period)
	sd := StdDev(values, period)
	upper, lower = nulls(n), nulls(n)
	for i := 0; i < n; i++ {
		if models.IsNull(middle[i]) || models.IsNull(sd[i]) {
			continue
		}
		upper[i] = middle[i] + k*sd[i]
		lower[i] = middle[i] - k*sd[i]
	}
	return upper, middle, lower
}
