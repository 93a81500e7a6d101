// Package features turns provider bars into the engine's input snapshot.
package features

import (
	"sort"
	"time"

	"SignalFusion/internal/domain/models"
)

// SnapshotFromBars builds a snapshot whose date axis is the bar timestamps in
// ascending order. Bars with a zero timestamp are dropped and duplicate
// timestamps keep the last bar. A column is attached only when at least one
// bar carries it, so a family the provider never delivered stays absent.
func SnapshotFromBars(symbol string, bars []models.Bar) *models.Snapshot {
	axis := normalize(bars)

	dates := make([]time.Time, len(axis))
	for i, b := range axis {
		dates[i] = b.Time
	}

	snap := models.NewSnapshot(symbol, dates)
	for _, col := range models.Columns {
		vals, ok := column(axis, col)
		if !ok {
			continue
		}
		snap.Attach(col, models.Series{Dates: dates, Values: vals})
	}
	return snap
}

func normalize(bars []models.Bar) []models.Bar {
	out := make([]models.Bar, 0, len(bars))
	for _, b := range bars {
		if !b.Time.IsZero() {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	// stable sort keeps input order among equal times, so the last one wins
	dedup := out[:0]
	for i, b := range out {
		if i+1 < len(out) && out[i+1].Time.Equal(b.Time) {
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup
}

func column(bars []models.Bar, col models.Column) ([]float64, bool) {
	vals := make([]float64, len(bars))
	present := false
	for i := range bars {
		p := bars[i].Field(col)
		if p == nil {
			vals[i] = models.Null()
			continue
		}
		vals[i] = *p
		present = true
	}
	return vals, present
}
