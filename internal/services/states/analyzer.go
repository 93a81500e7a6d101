package states

import (
	"time"

	"SignalFusion/internal/domain/models"
)

// ReadAnalyzer returns the latest bar with both wave-trend lines present.
// Money flow is attached when present at that bar.
func ReadAnalyzer(wt1, wt2, mf models.Series) *models.AnalyzerReading {
	for i := wt1.Len() - 1; i >= 0; i-- {
		a, ok := wt1.At(i)
		if !ok {
			continue
		}
		b, ok := wt2.At(i)
		if !ok {
			continue
		}
		r := &models.AnalyzerReading{Index: i, Date: wt1.Dates[i], WT1: a, WT2: b}
		if m, ok := mf.At(i); ok {
			r.MoneyFlow = &m
		}
		return r
	}
	return nil
}

// Classify reads the current state of every family carried by snap.
func Classify(snap *models.Snapshot, now time.Time) models.OscillatorStates {
	var out models.OscillatorStates
	if snap == nil {
		return out
	}
	series := func(col models.Column) models.Series {
		s, _ := snap.Series(col)
		return s
	}
	out.Analyzer = ReadAnalyzer(series(models.ColWT1), series(models.ColWT2), series(models.ColMoneyFlow))
	out.RSI = ClassifyRSI(series(models.ColRSIState), series(models.ColRSIValue), now)
	out.Exhaustion = ClassifyExhaustion(series(models.ColWRAvg), now)
	return out
}
