package indicators

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"SignalFusion/internal/domain/models"

	"github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomWalk(n int, seed int64) (high, low, close []float64) {
	r := rand.New(rand.NewSource(seed))
	high, low, close = make([]float64, n), make([]float64, n), make([]float64, n)
	price := 100.0
	for i := 0; i < n; i++ {
		price *= 1 + (r.Float64()-0.5)*0.04
		spread := price * r.Float64() * 0.02
		close[i] = price
		high[i] = price + spread*r.Float64()
		low[i] = price - spread*r.Float64()
	}
	return high, low, close
}

func countLeadingNulls(values []float64) (leading int, interior int) {
	started := false
	for _, v := range values {
		if models.IsNull(v) {
			if started {
				interior++
			} else {
				leading++
			}
			continue
		}
		started = true
	}
	return leading, interior
}

func TestEMALeadingNulls(t *testing.T) {
	_, _, closes := randomWalk(80, 1)
	for _, p := range []int{1, 2, 5, 12, 26, 80} {
		leading, interior := countLeadingNulls(EMA(closes, p))
		assert.Equal(t, p-1, leading, "period %d", p)
		assert.Zero(t, interior, "period %d", p)
	}
}

func TestEMAMatchesTalib(t *testing.T) {
	_, _, closes := randomWalk(120, 2)
	for _, p := range []int{5, 12, 26} {
		got := EMA(closes, p)
		want := talib.Ema(closes, p)
		for i := p - 1; i < len(closes); i++ {
			require.InDelta(t, want[i], got[i], 1e-9, "period %d index %d", p, i)
		}
	}
}

func TestEMAShorterThanPeriod(t *testing.T) {
	out := EMA([]float64{1, 2, 3}, 5)
	for _, v := range out {
		assert.True(t, models.IsNull(v))
	}
}

func TestEMAGapReseeds(t *testing.T) {
	vals := []float64{1, 2, 3, math.NaN(), 4, 5, 6}
	out := EMA(vals, 2)
	assert.True(t, models.IsNull(out[0]))
	assert.InDelta(t, 1.5, out[1], 1e-12)
	assert.True(t, models.IsNull(out[3]))
	assert.True(t, models.IsNull(out[4]))
	assert.InDelta(t, 4.5, out[5], 1e-12)
}

func TestSMAMatchesTalib(t *testing.T) {
	_, _, closes := randomWalk(60, 3)
	got := SMA(closes, 10)
	want := talib.Sma(closes, 10)
	for i := 9; i < len(closes); i++ {
		assert.InDelta(t, want[i], got[i], 1e-9)
	}
}

func TestBollingerPopulationStdDev(t *testing.T) {
	upper, middle, lower := Bollinger([]float64{1, 2, 3, 4}, 4, 2)
	sd := math.Sqrt(1.25)
	assert.InDelta(t, 2.5, middle[3], 1e-12)
	assert.InDelta(t, 2.5+2*sd, upper[3], 1e-12)
	assert.InDelta(t, 2.5-2*sd, lower[3], 1e-12)
	for i := 0; i < 3; i++ {
		assert.True(t, models.IsNull(middle[i]))
	}
}

func TestBollingerMiddleLeadingNulls(t *testing.T) {
	_, _, closes := randomWalk(50, 4)
	for _, p := range []int{1, 5, 20, 50} {
		_, middle, _ := Bollinger(closes, p, 2)
		leading, interior := countLeadingNulls(middle)
		assert.Equal(t, p-1, leading)
		assert.Zero(t, interior)
	}
}

func TestMACDOffsets(t *testing.T) {
	_, _, closes := randomWalk(100, 5)
	line, signal, hist := MACD(closes)
	require.Len(t, line, 100)
	lineLead, _ := countLeadingNulls(line)
	sigLead, sigInterior := countLeadingNulls(signal)
	histLead, _ := countLeadingNulls(hist)
	assert.Equal(t, MACDSlow-1, lineLead)
	assert.Equal(t, MACDSlow-1+MACDSignal-1, sigLead)
	assert.Zero(t, sigInterior)
	assert.Equal(t, sigLead, histLead)
	i := 60
	assert.InDelta(t, line[i]-signal[i], hist[i], 1e-12)
}

func TestWilliamsRBounds(t *testing.T) {
	for seed := int64(10); seed < 20; seed++ {
		high, low, closes := randomWalk(200, seed)
		for _, v := range WilliamsR(high, low, closes, 14) {
			if models.IsNull(v) {
				continue
			}
			require.GreaterOrEqual(t, v, -100.0)
			require.LessOrEqual(t, v, 0.0)
		}
	}
}

func TestWilliamsRMatchesTalib(t *testing.T) {
	high, low, closes := randomWalk(100, 6)
	got := WilliamsR(high, low, closes, 14)
	want := talib.WillR(high, low, closes, 14)
	for i := 13; i < len(closes); i++ {
		assert.InDelta(t, want[i], got[i], 1e-9)
	}
}

func TestWilliamsRFlatWindowIsNull(t *testing.T) {
	flat := []float64{5, 5, 5, 5}
	out := WilliamsR(flat, flat, flat, 3)
	for _, v := range out {
		assert.True(t, models.IsNull(v))
	}
}

func TestADXBounds(t *testing.T) {
	high, low, closes := randomWalk(150, 7)
	adx, plus, minus := ADX(high, low, closes, ADXPeriod)
	present := 0
	for i := range adx {
		for _, v := range []float64{adx[i], plus[i], minus[i]} {
			if models.IsNull(v) {
				continue
			}
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 100.0)
		}
		if !models.IsNull(adx[i]) {
			present++
		}
	}
	assert.Greater(t, present, 100)
}

func TestRSI3M3States(t *testing.T) {
	closes := []float64{10, 9, 8, 7, 8, 9, 10, 11, 12, 11, 10, 9, 8, 7}
	rsi, _, state := RSI3M3(closes, ParamsForInterval("1d"))
	require.Len(t, state, len(closes))
	assert.InDelta(t, 0, rsi[3], 1e-12)
	assert.InDelta(t, 100, rsi[6], 1e-12)
	assert.Equal(t, float64(models.RSICodeNeutral), state[5])
	assert.Equal(t, float64(models.RSICodeBullish), state[6])
	assert.Equal(t, float64(models.RSICodeBullish), state[9])
	assert.Equal(t, float64(models.RSICodeTransition), state[10])
	assert.Equal(t, float64(models.RSICodeBearish), state[11])
}

func TestFillOscillatorsSkipsGappyPrice(t *testing.T) {
	high, low, closes := randomWalk(40, 8)
	closes[10] = math.NaN()
	snap := snapshotOf(high, low, closes)
	out := FillOscillators(snap, "1d")
	assert.False(t, out.Has(models.ColWT1))
	assert.False(t, out.Has(models.ColWRAvg))
}

func TestFillOscillatorsDerivesFamilies(t *testing.T) {
	high, low, closes := randomWalk(300, 9)
	snap := snapshotOf(high, low, closes)
	out := FillOscillators(snap, "1d")
	for _, col := range []models.Column{models.ColWT1, models.ColWT2, models.ColMoneyFlow, models.ColRSIState, models.ColWRAvg} {
		assert.True(t, out.Has(col), string(col))
	}
	assert.False(t, snap.Has(models.ColWT1), "input snapshot must not change")
	for _, v := range out.Values(models.ColWRAvg) {
		if !models.IsNull(v) {
			require.GreaterOrEqual(t, v, -100.0)
			require.LessOrEqual(t, v, 0.0)
		}
	}
}

func TestParamsForInterval(t *testing.T) {
	assert.Equal(t, 7, ParamsForInterval("5m").WTChannel)
	assert.Equal(t, 20, ParamsForInterval("1m").MFSmooth)
	assert.Equal(t, 40, ParamsForInterval("1h").MFSmooth)
	assert.Equal(t, 50, ParamsForInterval("4h").MFSmooth)
	assert.Equal(t, 60, ParamsForInterval("1wk").MFSmooth)
}

func snapshotOf(high, low, closes []float64) *models.Snapshot {
	dates := make([]time.Time, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	snap := models.NewSnapshot("TEST", dates)
	snap.Attach(models.ColHigh, models.Series{Dates: dates, Values: high})
	snap.Attach(models.ColLow, models.Series{Dates: dates, Values: low})
	snap.Attach(models.ColClose, models.Series{Dates: dates, Values: closes})
	return snap
}
