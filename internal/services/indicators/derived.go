package indicators

import (
	"time"

	"SignalFusion/internal/domain/models"
)

// Derive computes MACD and Bollinger Bands from close, and ADX and
// Williams %R from high/low/close. Members whose inputs are absent stay nil.
func Derive(snap *models.Snapshot) models.DerivedIndicators {
	var out models.DerivedIndicators
	if snap == nil || !snap.Has(models.ColClose) {
		return out
	}
	dates := snap.Dates
	closes := snap.Values(models.ColClose)

	line, signal, hist := MACD(closes)
	out.MACD = &models.MACD{
		Line:      series(dates, line),
		Signal:    series(dates, signal),
		Histogram: series(dates, hist),
	}

	upper, middle, lower := Bollinger(closes, BollingerPeriod, BollingerK)
	out.Bollinger = &models.Bollinger{
		Upper:  series(dates, upper),
		Middle: series(dates, middle),
		Lower:  series(dates, lower),
	}

	if !snap.Has(models.ColHigh) || !snap.Has(models.ColLow) {
		return out
	}
	highs, lows := snap.Values(models.ColHigh), snap.Values(models.ColLow)
	adx, plus, minus := ADX(highs, lows, closes, ADXPeriod)
	out.ADX = &models.ADX{
		ADX:     series(dates, adx),
		PlusDI:  series(dates, plus),
		MinusDI: series(dates, minus),
	}
	wr := series(dates, WilliamsR(highs, lows, closes, WilliamsPeriod))
	out.WilliamsR = &wr
	return out
}

// FillOscillators returns a snapshot in which absent oscillator families are
// derived from OHLC. The input is returned unchanged when price is
// incomplete, since the derivations assume a gap-free series.
func FillOscillators(snap *models.Snapshot, interval string) *models.Snapshot {
	if snap == nil || !completeOHLC(snap) {
		return snap
	}
	p := ParamsForInterval(interval)
	highs := snap.Values(models.ColHigh)
	lows := snap.Values(models.ColLow)
	closes := snap.Values(models.ColClose)

	out := snap
	if !snap.Has(models.ColWT1) || !snap.Has(models.ColWT2) {
		wt1, wt2 := WaveTrend(highs, lows, closes, p)
		out = out.WithColumn(models.ColWT1, wt1).WithColumn(models.ColWT2, wt2)
	}
	if !snap.Has(models.ColMoneyFlow) {
		out = out.WithColumn(models.ColMoneyFlow, MoneyFlow(highs, lows, closes, p))
	}
	if !snap.Has(models.ColRSIState) {
		rsi, ma, state := RSI3M3(closes, p)
		out = out.WithColumn(models.ColRSIValue, rsi).
			WithColumn(models.ColRSIMA, ma).
			WithColumn(models.ColRSIState, state)
	}
	if !snap.Has(models.ColWRAvg) {
		s, l, avg := TrendExhaust(highs, lows, closes, p)
		out = out.WithColumn(models.ColWRShort, s).
			WithColumn(models.ColWRLong, l).
			WithColumn(models.ColWRAvg, avg)
	}
	return out
}

func completeOHLC(snap *models.Snapshot) bool {
	for _, col := range []models.Column{models.ColHigh, models.ColLow, models.ColClose} {
		vals := snap.Values(col)
		if len(vals) == 0 {
			return false
		}
		for _, v := range vals {
			if models.IsNull(v) {
				return false
			}
		}
	}
	return true
}

func series(dates []time.Time, values []float64) models.Series {
	return models.Series{Dates: dates, Values: values}
}
