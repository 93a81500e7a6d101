package indicators

import (
	"math"

	"SignalFusion/internal/domain/models"

	"github.com/markcheno/go-talib"
)

// RSI3M3 state thresholds.
const (
	rsiBullCross   = 67.0
	rsiBearCross   = 33.0
	rsiBullRecover = 61.0
	rsiBearRecover = 39.0
)

// HLC3 is the typical price (high + low + close) / 3.
func HLC3(high, low, close []float64) []float64 {
	out := nulls(len(close))
	for i := range close {
		if models.IsNull(high[i]) || models.IsNull(low[i]) || models.IsNull(close[i]) {
			continue
		}
		out[i] = (high[i] + low[i] + close[i]) / 3
	}
	return out
}

// smaTail runs talib's SMA over the present tail of values and marks the
// warm-up bars as missing. A tail with gaps falls back to SMA.
func smaTail(values []float64, period int) []float64 {
	out := nulls(len(values))
	start := firstValid(values)
	if start < 0 || period <= 0 || len(values)-start < period {
		return out
	}
	for _, v := range values[start:] {
		if models.IsNull(v) {
			return SMA(values, period)
		}
	}
	sma := talib.Sma(values[start:], period)
	for i := period - 1; i < len(sma); i++ {
		out[start+i] = finite(sma[i])
	}
	return out
}

// WaveTrend derives the wt1/wt2 pair from hlc3.
func WaveTrend(high, low, close []float64, p OscillatorParams) (wt1, wt2 []float64) {
	n := len(close)
	src := HLC3(high, low, close)
	esa := ewm(src, p.WTChannel)
	dev := nulls(n)
	for i := range src {
		if !models.IsNull(src[i]) && !models.IsNull(esa[i]) {
			dev[i] = math.Abs(src[i] - esa[i])
		}
	}
	d := ewm(dev, p.WTChannel)
	ci := nulls(n)
	for i := range src {
		if models.IsNull(src[i]) || models.IsNull(esa[i]) || models.IsNull(d[i]) || d[i] == 0 {
			continue
		}
		ci[i] = (src[i] - esa[i]) / (0.015 * d[i])
	}
	wt1 = ewm(ci, p.WTAverage)
	wt2 = smaTail(wt1, p.WTMA)
	return wt1, wt2
}

// MoneyFlow derives the money-flow oscillator from hlc3.
func MoneyFlow(high, low, close []float64, p OscillatorParams) []float64 {
	n := len(close)
	src := HLC3(high, low, close)
	m := smaTail(src, p.MFPeriod)
	dev := nulls(n)
	for i := range src {
		if !models.IsNull(m[i]) {
			dev[i] = math.Abs(src[i] - m[i])
		}
	}
	f := smaTail(dev, p.MFPeriod)
	raw := nulls(n)
	for i := range src {
		if models.IsNull(m[i]) || models.IsNull(f[i]) || f[i] == 0 {
			continue
		}
		raw[i] = (src[i] - m[i]) / (0.015 * f[i])
	}
	return smaTail(raw, p.MFSmooth)
}

// RSI3M3 derives the short RSI, its moving average and the trend-state
// codes (0 neutral, 1 bullish, 2 bearish, 3 transition).
func RSI3M3(close []float64, p OscillatorParams) (rsi, ma, state []float64) {
	n := len(close)
	gain, loss := nulls(n), nulls(n)
	for i := 1; i < n; i++ {
		if models.IsNull(close[i]) || models.IsNull(close[i-1]) {
			continue
		}
		d := close[i] - close[i-1]
		gain[i], loss[i] = math.Max(d, 0), math.Max(-d, 0)
	}
	avgGain := smaTail(gain, p.RSILength)
	avgLoss := smaTail(loss, p.RSILength)

	rsi = nulls(n)
	for i := 0; i < n; i++ {
		g, l := avgGain[i], avgLoss[i]
		if models.IsNull(g) || models.IsNull(l) {
			continue
		}
		switch {
		case l == 0 && g == 0:
			continue
		case l == 0:
			rsi[i] = 100
		default:
			rsi[i] = 100 - 100/(1+g/l)
		}
	}
	ma = smaTail(rsi, p.RSIMA)

	state = make([]float64, n)
	for i := 1; i < n; i++ {
		prevState := state[i-1]
		cur, prev := rsi[i], rsi[i-1]
		state[i] = prevState
		if models.IsNull(cur) || models.IsNull(prev) {
			continue
		}
		switch {
		case prev <= rsiBullCross && cur > rsiBullCross:
			state[i] = models.RSICodeBullish
		case prev >= rsiBearCross && cur < rsiBearCross:
			state[i] = models.RSICodeBearish
		case prevState == models.RSICodeBullish && prev >= rsiBearRecover && cur < rsiBearRecover:
			state[i] = models.RSICodeTransition
		case prevState == models.RSICodeBearish && prev <= rsiBullRecover && cur > rsiBullRecover:
			state[i] = models.RSICodeTransition
		}
	}
	return rsi, ma, state
}

// TrendExhaust derives the smoothed short, long and average Williams %R.
// The average is taken from the raw values before smoothing.
func TrendExhaust(high, low, close []float64, p OscillatorParams) (short, long, avg []float64) {
	n := len(close)
	s := WilliamsR(high, low, close, p.WRShort)
	l := WilliamsR(high, low, close, p.WRLong)
	rawAvg := nulls(n)
	for i := 0; i < n; i++ {
		if models.IsNull(s[i]) || models.IsNull(l[i]) {
			continue
		}
		rawAvg[i] = (s[i] + l[i]) / 2
	}
	return smooth(s, p.WRShortSmooth), smooth(l, p.WRLongSmooth), smooth(rawAvg, p.WRAvgSmooth)
}

func smooth(values []float64, span int) []float64 {
	if span <= 1 {
		return values
	}
	return ewm(values, span)
}
