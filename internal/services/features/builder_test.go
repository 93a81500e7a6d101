package features

import (
	"testing"
	"time"

	"SignalFusion/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotFromBars(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	bars := []models.Bar{
		{Time: d(3), Close: models.Float(103), WT1: models.Float(1)},
		{Time: d(1), Close: models.Float(101)},
		{Time: d(2), Close: models.Float(999)},
		{Time: d(2), Close: models.Float(102)},
		{Close: models.Float(1)},
	}

	snap := SnapshotFromBars("ACME", bars)
	require.Equal(t, 3, snap.Len())
	assert.Equal(t, []time.Time{d(1), d(2), d(3)}, snap.Dates)
	assert.Equal(t, []float64{101, 102, 103}, snap.Values(models.ColClose))

	wt1 := snap.Values(models.ColWT1)
	require.Len(t, wt1, 3)
	assert.True(t, models.IsNull(wt1[0]))
	assert.Equal(t, 1.0, wt1[2])

	assert.Nil(t, snap.Values(models.ColMoneyFlow))
	assert.NotContains(t, snap.Present(), models.ColRSIState)
}

func TestSnapshotFromNoBars(t *testing.T) {
	snap := SnapshotFromBars("X", nil)
	assert.Equal(t, 0, snap.Len())
	assert.Empty(t, snap.Present())
}
