package repository

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"SignalFusion/internal/domain/models"
	domrepo "SignalFusion/internal/domain/repository"
	pkgch "SignalFusion/pkg/clickhouse"
	pkgkafka "SignalFusion/pkg/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var barCols = []string{
	"ts", "open", "high", "low", "close", "volume",
	"wt1", "wt2", "money_flow", "rsi_value", "rsi_state", "rsi_ma", "wr_short", "wr_long", "wr_avg",
}

func barRow(ts time.Time, close float64, wt1 interface{}) []driver.Value {
	return []driver.Value{ts, close, close, close, close, 1000.0, wt1, nil, nil, nil, nil, nil, nil, nil, nil}
}

func newMock(t *testing.T) (*pkgch.Client, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return pkgch.NewFromDB(db), mock
}

func TestGetLatestNBarsReturnsAscending(t *testing.T) {
	ch, mock := newMock(t)
	store, err := NewCHBarStore(ch, "market.bars", nil)
	require.NoError(t, err)

	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	rows := sqlmock.NewRows(barCols).
		AddRow(barRow(d2, 102, -12.5)...).
		AddRow(barRow(d1, 101, nil)...)
	mock.ExpectQuery(regexp.QuoteMeta("FROM market.bars FINAL")).
		WithArgs("ACME", "1d", 2).
		WillReturnRows(rows)

	bars, err := store.GetLatestNBars(context.Background(), "ACME", 2, domrepo.Interval1d)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, d1, bars[0].Time)
	assert.Equal(t, 101.0, *bars[0].Close)
	assert.Nil(t, bars[0].WT1)
	require.NotNil(t, bars[1].WT1)
	assert.Equal(t, -12.5, *bars[1].WT1)
	assert.Nil(t, bars[1].MoneyFlow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBarsQueryError(t *testing.T) {
	ch, mock := newMock(t)
	store, err := NewCHBarStore(ch, "bars", nil)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection refused"))
	_, err = store.GetBars(context.Background(), "ACME", time.Time{}, time.Now(), domrepo.Interval1h)
	assert.ErrorContains(t, err, "get bars")
}

func TestTableNameValidated(t *testing.T) {
	ch, _ := newMock(t)
	_, err := NewCHBarStore(ch, "bars; DROP TABLE x", nil)
	assert.Error(t, err)
	_, err = NewCHSignalStorage(ch, "1signals", nil)
	assert.Error(t, err)
}

func TestStoreTimeline(t *testing.T) {
	ch, mock := newMock(t)
	st, err := NewCHSignalStorage(ch, "signal_timeline", nil)
	require.NoError(t, err)
	stored := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return stored }

	d := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	entries := []models.TimelineEntry{
		{Signal: models.Signal{Date: d, Index: 4, Family: models.FamilyAnalyzer, Type: models.SignalGoldBuy, Strength: models.StrengthVeryStrong, NumericContext: -55}},
		{Signal: models.Signal{Date: d, Index: 4, Family: models.FamilyRSI, Type: models.SignalBullishEntry, Strength: models.StrengthStrong, NumericContext: 68}},
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO signal_timeline")).
		WithArgs(
			"ACME", "1d", d, int32(4), "Analyzer", "GoldBuy", "VeryStrong", -55.0, stored,
			"ACME", "1d", d, int32(4), "RSI", "BullishEntry", "Strong", 68.0, stored,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, st.StoreTimeline(context.Background(), "ACME", domrepo.Interval1d, entries))
	require.NoError(t, st.StoreTimeline(context.Background(), "ACME", domrepo.Interval1d, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryTimeline(t *testing.T) {
	ch, mock := newMock(t)
	st, err := NewCHSignalStorage(ch, "signal_timeline", nil)
	require.NoError(t, err)

	d := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM signal_timeline FINAL")).
		WillReturnRows(sqlmock.NewRows([]string{"date", "idx", "family", "type", "strength", "numeric_context"}).
			AddRow(d, int64(7), "Volume", "VolumeBreakout", "Strong", 2.4))

	got, err := st.QueryTimeline(context.Background(), "ACME", domrepo.Interval1d, d.AddDate(0, -1, 0), d, 50)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.FamilyVolume, got[0].Family)
	assert.Equal(t, models.SignalVolumeBreakout, got[0].Type)
	assert.Equal(t, 7, got[0].Index)
}

type capturePublisher struct {
	topic string
	msg   pkgkafka.Message
	err   error
}

func (c *capturePublisher) Publish(_ context.Context, topic string, m pkgkafka.Message) error {
	c.topic, c.msg = topic, m
	return c.err
}

func (c *capturePublisher) Close() error { return nil }

func TestKafkaBundlePublisher(t *testing.T) {
	cp := &capturePublisher{}
	p := NewKafkaBundlePublisher(cp, "analysis.bundles")

	ctx := pkgkafka.WithTraceID(context.Background(), "trace-1")
	require.NoError(t, p.PublishBundle(ctx, &models.Bundle{Symbol: "ACME", Interval: "1d"}))
	assert.Equal(t, "analysis.bundles", cp.topic)
	assert.Equal(t, "ACME", string(cp.msg.Key))
	assert.Equal(t, "trace-1", cp.msg.Headers[pkgkafka.TraceHeader])

	env, ok := cp.msg.Value.(models.BundleEnvelope)
	require.True(t, ok)
	assert.Len(t, env.RequestID, 36)
	b, err := json.Marshal(env)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"requestId"`)

	require.NoError(t, p.PublishBundle(context.Background(), nil))

	cp.err = errors.New("broker down")
	assert.Error(t, p.PublishBundle(context.Background(), &models.Bundle{Symbol: "X"}))
}
