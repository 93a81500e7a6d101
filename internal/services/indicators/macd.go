package indicators

import "SignalFusion/internal/domain/models"

const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// MACD returns the line (EMA12 - EMA26), the signal line (EMA9 of the line
// computed over its non-null tail and padded back to full length) and the
// histogram.
func MACD(values []float64) (line, signal, hist []float64) {
	n := len(values)
	fast := EMA(values, MACDFast)
	slow := EMA(values, MACDSlow)
	line = nulls(n)
	for i := 0; i < n; i++ {
		if models.IsNull(fast[i]) || models.IsNull(slow[i]) {
			continue
		}
		line[i] = fast[i] - slow[i]
	}

	signal = nulls(n)
	if start := firstValid(line); start >= 0 {
		copy(signal[start:], EMA(line[start:], MACDSignal))
	}

	hist = nulls(n)
	for i := 0; i < n; i++ {
		if models.IsNull(line[i]) || models.IsNull(signal[i]) {
			continue
		}
		hist[i] = line[i] - signal[i]
	}
	return line, signal, hist
}
