package states

import (
	"testing"
	"time"

	"SignalFusion/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func daily(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = t0.AddDate(0, 0, i)
	}
	return out
}

func seriesOf(values ...float64) models.Series {
	return models.Series{Dates: daily(len(values)), Values: values}
}

func TestLastStateChange(t *testing.T) {
	codes := seriesOf(0, 0, 1, 1, 1, 3, 2, 2)
	now := codes.Dates[6].Add(50 * time.Hour)

	change := LastStateChange(codes, now)
	require.NotNil(t, change)
	assert.Equal(t, 6, change.Index)
	assert.Equal(t, 3, change.FromCode)
	assert.Equal(t, 2, change.ToCode)
	assert.Equal(t, models.SignalBearishEntry, change.ChangeType)
	assert.Equal(t, 2, change.DaysSinceChange)
}

func TestLastStateChangeNone(t *testing.T) {
	assert.Nil(t, LastStateChange(seriesOf(1, 1, 1), t0))
	assert.Nil(t, LastStateChange(models.Series{}, t0))
}

func TestLastStateChangeSkipsMissing(t *testing.T) {
	codes := seriesOf(1, 1, models.Null(), 2, 2)
	assert.Nil(t, LastStateChange(codes, t0))
}

func TestLastStateChangeFutureClampsToZero(t *testing.T) {
	codes := seriesOf(0, 1)
	change := LastStateChange(codes, t0)
	require.NotNil(t, change)
	assert.Zero(t, change.DaysSinceChange)
}

func TestTrendDuration(t *testing.T) {
	codes := []float64{0, 0, 1, 1, 1, 3, 2, 2}
	assert.Equal(t, 2, TrendDuration(codes, 7))
	assert.Equal(t, 3, TrendDuration(codes, 4))
	assert.Equal(t, 1, TrendDuration(codes, 5))
	assert.Equal(t, 1, TrendDuration([]float64{1, models.Null(), 1}, 2))
	assert.Zero(t, TrendDuration([]float64{7}, 0))
}

func TestStrength(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	cases := []struct {
		name     string
		code     int
		value    *float64
		duration int
		want     models.RSIStrength
	}{
		{"bullish strong", 1, v(65), 3, models.RSIStrengthStrong},
		{"bullish too young", 1, v(65), 2, models.RSIStrengthModerate},
		{"bullish moderate", 1, v(55), 5, models.RSIStrengthModerate},
		{"bullish weak", 1, v(45), 5, models.RSIStrengthWeak},
		{"bearish strong", 2, v(35), 4, models.RSIStrengthStrong},
		{"bearish moderate", 2, v(45), 1, models.RSIStrengthModerate},
		{"transition", 3, nil, 1, models.RSIStrengthTransition},
		{"neutral", 0, v(50), 10, models.RSIStrengthWeak},
		{"missing value", 1, nil, 10, models.RSIStrengthWeak},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Strength(tc.code, tc.value, tc.duration))
		})
	}
}

func TestClassifyRSI(t *testing.T) {
	codes := seriesOf(0, 0, 1, 1, 1)
	values := seriesOf(40, 45, 70, 72, 68)
	r := ClassifyRSI(codes, values, codes.Dates[4])
	require.NotNil(t, r)
	assert.Equal(t, string(models.RSIBullish), r.State)
	assert.Equal(t, 2, r.StartIndex)
	assert.Equal(t, 3, r.DurationBars)
	assert.Equal(t, models.RSIStrengthStrong, r.Strength)
	assert.True(t, r.Valid)
	require.NotNil(t, r.LastChange)
	assert.Equal(t, models.SignalBullishEntry, r.LastChange.ChangeType)
}

func TestClassifyRSIInvalidCodes(t *testing.T) {
	assert.Nil(t, ClassifyRSI(seriesOf(1.5, 9, models.Null()), models.Series{}, t0))

	r := ClassifyRSI(seriesOf(2, 2, 9), models.Series{}, t0)
	require.NotNil(t, r)
	assert.Equal(t, 0, r.StartIndex)
	assert.Equal(t, 2, r.DurationBars)
	assert.Nil(t, r.Value)
	assert.False(t, r.Valid)
}

func TestClassifyZone(t *testing.T) {
	assert.Equal(t, models.ZoneOverbought, ClassifyZone(-20))
	assert.Equal(t, models.ZoneOverbought, ClassifyZone(0))
	assert.Equal(t, models.ZoneNearOverbought, ClassifyZone(-30))
	assert.Equal(t, models.ZoneNeutral, ClassifyZone(-50))
	assert.Equal(t, models.ZoneNearOversold, ClassifyZone(-70))
	assert.Equal(t, models.ZoneOversold, ClassifyZone(-80))
	assert.Equal(t, models.ZoneOversold, ClassifyZone(-100))
}

func TestClassifyExhaustionEntry(t *testing.T) {
	avg := seriesOf(-50, -85, -90, models.Null(), -82, models.Null())
	now := avg.Dates[4].Add(36 * time.Hour)
	r := ClassifyExhaustion(avg, now)
	require.NotNil(t, r)
	assert.Equal(t, models.ZoneOversold, r.Zone)
	assert.Equal(t, -82.0, r.Value)
	assert.Equal(t, 1, r.StartIndex)
	assert.Equal(t, 4, r.DurationBars)
	assert.Equal(t, 4, r.DaysInZone)
}

func TestClassifyExhaustionNoChange(t *testing.T) {
	avg := seriesOf(models.Null(), -40, -45, -50)
	r := ClassifyExhaustion(avg, avg.Dates[3])
	require.NotNil(t, r)
	assert.Equal(t, models.ZoneNeutral, r.Zone)
	assert.Equal(t, 1, r.StartIndex)
}

func TestClassifyAbsentFamilies(t *testing.T) {
	snap := models.NewSnapshot("X", daily(3))
	snap.Attach(models.ColClose, seriesOf(1, 2, 3))
	got := Classify(snap, t0)
	assert.Nil(t, got.Analyzer)
	assert.Nil(t, got.RSI)
	assert.Nil(t, got.Exhaustion)
}

func TestReadAnalyzer(t *testing.T) {
	wt1 := seriesOf(1, 5, models.Null())
	wt2 := seriesOf(2, 3, 4)
	r := ReadAnalyzer(wt1, wt2, seriesOf(-1, 2, 3))
	require.NotNil(t, r)
	assert.Equal(t, 1, r.Index)
	assert.True(t, r.Bullish())

	r = ReadAnalyzer(wt1, wt2, models.Series{})
	require.NotNil(t, r)
	assert.Nil(t, r.MoneyFlow)
	assert.False(t, r.Bullish())
}
