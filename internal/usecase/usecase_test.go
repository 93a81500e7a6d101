package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"SignalFusion/internal/domain/models"
	domrepo "SignalFusion/internal/domain/repository"
	"SignalFusion/internal/services/engine"
	"SignalFusion/internal/services/timeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func makeBars(n int) []models.Bar {
	out := make([]models.Bar, n)
	price := 100.0
	for i := range out {
		if i%3 == 0 {
			price += 1.5
		} else {
			price -= 0.5
		}
		out[i] = models.Bar{
			Time:   day0.AddDate(0, 0, i),
			Open:   models.Float(price - 0.2),
			High:   models.Float(price + 1),
			Low:    models.Float(price - 1),
			Close:  models.Float(price),
			Volume: models.Float(1000 + float64(i)),
		}
	}
	return out
}

type fakeBars struct {
	bars  map[string][]models.Bar
	err   error
	calls int
	mu    sync.Mutex
}

func (f *fakeBars) GetBars(ctx context.Context, symbol string, from, to time.Time, iv domrepo.Interval) ([]models.Bar, error) {
	return f.GetLatestNBars(ctx, symbol, 0, iv)
}

func (f *fakeBars) GetLatestNBars(_ context.Context, symbol string, _ int, _ domrepo.Interval) ([]models.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.bars[symbol], nil
}

type fakePrediction struct {
	pred *models.Prediction
	err  error
}

func (f fakePrediction) Predict(context.Context, string, string) (*models.Prediction, error) {
	return f.pred, f.err
}

type fakeStorage struct {
	stored  map[string][]models.TimelineEntry
	history []models.Signal
	err     error
}

func (f *fakeStorage) Init(context.Context) error { return nil }
func (f *fakeStorage) Close() error               { return nil }

func (f *fakeStorage) StoreTimeline(_ context.Context, symbol string, _ domrepo.Interval, entries []models.TimelineEntry) error {
	if f.stored == nil {
		f.stored = make(map[string][]models.TimelineEntry)
	}
	f.stored[symbol] = entries
	return f.err
}

func (f *fakeStorage) QueryTimeline(context.Context, string, domrepo.Interval, time.Time, time.Time, int) ([]models.Signal, error) {
	return f.history, f.err
}

type fakePublisher struct {
	mu      sync.Mutex
	bundles []*models.Bundle
}

func (f *fakePublisher) PublishBundle(_ context.Context, b *models.Bundle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bundles = append(f.bundles, b)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	mu       sync.Mutex
	analyses int
	errors   map[string]int
}

func (m *fakeMetrics) RecordAnalysis(string, string) {
	m.mu.Lock()
	m.analyses++
	m.mu.Unlock()
}
func (m *fakeMetrics) RecordSignals(string, int)     {}
func (m *fakeMetrics) RecordConfluence(string, int)  {}
func (m *fakeMetrics) RecordLatency(string, float64) {}
func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errors == nil {
		m.errors = make(map[string]int)
	}
	m.errors[kind]++
}

func newAnalysis(opts ...AnalysisOption) *AnalysisUseCase {
	base := []AnalysisOption{WithClock(func() time.Time { return day0.AddDate(0, 0, 60) })}
	return NewAnalysisUseCase(engine.New(engine.DefaultConfig()), append(base, opts...)...)
}

func TestAnalyzeRequiresSymbol(t *testing.T) {
	_, err := newAnalysis().Analyze(context.Background(), AnalyzeParams{Symbol: "  "})
	assert.ErrorIs(t, err, ErrSymbolRequired)
}

func TestAnalyzeWithoutBarStoreHasNoData(t *testing.T) {
	_, err := newAnalysis().Analyze(context.Background(), AnalyzeParams{Symbol: "acme"})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAnalyzeEmptyStore(t *testing.T) {
	store := &fakeBars{bars: map[string][]models.Bar{}}
	_, err := newAnalysis(WithBarStore(store)).Analyze(context.Background(), AnalyzeParams{Symbol: "ACME"})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAnalyzeStoreError(t *testing.T) {
	m := &fakeMetrics{}
	store := &fakeBars{err: errors.New("boom")}
	_, err := newAnalysis(WithBarStore(store), WithMetrics(m)).Analyze(context.Background(), AnalyzeParams{Symbol: "ACME"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, m.errors["bar_store"])
}

func TestAnalyzeFromStore(t *testing.T) {
	store := &fakeBars{bars: map[string][]models.Bar{"ACME": makeBars(60)}}
	storage := &fakeStorage{}
	pub := &fakePublisher{}
	m := &fakeMetrics{}
	uc := newAnalysis(
		WithBarStore(store),
		WithPredictionProvider(fakePrediction{pred: &models.Prediction{Prediction: "Bullish", Confidence: 0.8}}),
		WithSignalStorage(storage),
		WithPublisher(pub, false),
		WithMetrics(m),
	)

	b, err := uc.Analyze(context.Background(), AnalyzeParams{Symbol: "acme", Interval: "garbage"})
	require.NoError(t, err)
	assert.Equal(t, "ACME", b.Symbol)
	assert.Equal(t, "1d", b.Interval)
	assert.Equal(t, 60, b.Bars)
	assert.Equal(t, day0.AddDate(0, 0, 60), b.GeneratedAt)
	assert.NotNil(t, b.Confluence.Alignment[models.ConfluencePrediction])
	assert.Contains(t, storage.stored, "ACME")
	assert.Empty(t, pub.bundles)
	assert.Equal(t, 1, m.analyses)
}

func TestAnalyzePredictionFailureIsNotFatal(t *testing.T) {
	m := &fakeMetrics{}
	uc := newAnalysis(
		WithPredictionProvider(fakePrediction{err: errors.New("down")}),
		WithMetrics(m),
	)
	b, err := uc.Analyze(context.Background(), AnalyzeParams{Symbol: "ACME", Inline: makeBars(40)})
	require.NoError(t, err)
	assert.Nil(t, b.Confluence.Alignment[models.ConfluencePrediction])
	assert.Equal(t, 1, m.errors["prediction"])
}

func TestAnalyzePublishes(t *testing.T) {
	pub := &fakePublisher{}
	uc := newAnalysis(WithPublisher(pub, false))

	_, err := uc.Analyze(context.Background(), AnalyzeParams{Symbol: "ACME", Inline: makeBars(40), Publish: true})
	require.NoError(t, err)
	assert.Len(t, pub.bundles, 1)

	all := newAnalysis(WithPublisher(pub, true))
	_, err = all.Analyze(context.Background(), AnalyzeParams{Symbol: "ACME", Inline: makeBars(40)})
	require.NoError(t, err)
	assert.Len(t, pub.bundles, 2)
}

func TestAnalyzeSnapshot(t *testing.T) {
	uc := newAnalysis()
	snap := models.NewSnapshot("SNAP", nil)
	b := uc.AnalyzeSnapshot(snap, nil, "", time.Time{})
	assert.Equal(t, "1d", b.Interval)
	assert.Equal(t, day0.AddDate(0, 0, 60), b.GeneratedAt)
	assert.Empty(t, b.Timeline)
}

func TestTimelineFromStorage(t *testing.T) {
	now := day0.AddDate(0, 0, 10)
	storage := &fakeStorage{history: []models.Signal{
		{Date: day0.AddDate(0, 0, 9), Family: models.FamilyAnalyzer, Type: models.SignalBuy, Strength: models.StrengthStrong},
		{Date: day0.AddDate(0, 0, 5), Family: models.FamilyRSI, Type: models.SignalSell, Strength: models.StrengthModerate},
	}}
	uc := newAnalysis(WithSignalStorage(storage), WithTimelineMerger(timeline.NewMerger(timeline.DefaultConfig())))

	entries, err := uc.Timeline(context.Background(), TimelineParams{Symbol: "acme", Now: now})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.SignalBuy, entries[0].Type)
	assert.Equal(t, 1, entries[0].DaysSince)
}

func TestTimelineFallsBackToAnalysis(t *testing.T) {
	store := &fakeBars{bars: map[string][]models.Bar{"ACME": makeBars(60)}}
	uc := newAnalysis(WithBarStore(store))
	_, err := uc.Timeline(context.Background(), TimelineParams{Symbol: "ACME"})
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)

	_, err = uc.Timeline(context.Background(), TimelineParams{})
	assert.ErrorIs(t, err, ErrSymbolRequired)
}

func TestMultiTicker(t *testing.T) {
	store := &fakeBars{bars: map[string][]models.Bar{
		"AAA": makeBars(50),
		"BBB": makeBars(70),
	}}
	uc := NewMultiTickerUseCase(newAnalysis(WithBarStore(store)), 2, nil)

	res, err := uc.Analyze(context.Background(), []string{"AAA", "BBB", "MISSING"}, "1d", 300, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "1d", res.Interval)
	require.Len(t, res.Bundles, 2)
	assert.Equal(t, 70, res.Bundles["BBB"].Bars)
	require.Contains(t, res.Errors, "MISSING")
	assert.Contains(t, res.Errors["MISSING"], ErrNoData.Error())
}

func TestMultiTickerAllSucceed(t *testing.T) {
	store := &fakeBars{bars: map[string][]models.Bar{"AAA": makeBars(40)}}
	res, err := NewMultiTickerUseCase(newAnalysis(WithBarStore(store)), 0, nil).
		Analyze(context.Background(), []string{"AAA"}, "", 0, time.Time{})
	require.NoError(t, err)
	assert.Nil(t, res.Errors)

	_, err = NewMultiTickerUseCase(newAnalysis(), 1, nil).Analyze(context.Background(), nil, "1d", 0, time.Time{})
	assert.ErrorIs(t, err, ErrSymbolRequired)
}

func TestAnalysisRequestHandler(t *testing.T) {
	pub := &fakePublisher{}
	h := NewAnalysisRequestHandler("analysis.requests", newAnalysis(WithPublisher(pub, false)), nil, nil)
	assert.Equal(t, "analysis.requests", h.Topic())

	payload, err := json.Marshal(models.AnalysisRequestMessage{
		Symbol:   "acme",
		Interval: "1d",
		Now:      "2024-05-01",
		Bars:     makeBars(40),
	})
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(), payload))
	require.Len(t, pub.bundles, 1)
	assert.Equal(t, "ACME", pub.bundles[0].Symbol)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), pub.bundles[0].GeneratedAt)
}

func TestAnalysisRequestHandlerRejects(t *testing.T) {
	m := &fakeMetrics{}
	h := NewAnalysisRequestHandler("t", newAnalysis(), m, nil)

	assert.Error(t, h.Handle(context.Background(), []byte("{not json")))
	assert.ErrorIs(t, h.Handle(context.Background(), []byte(`{"interval":"1d"}`)), ErrSymbolRequired)
	assert.Error(t, h.Handle(context.Background(), []byte(`{"symbol":"A","now":"yesterday"}`)))
	assert.Error(t, h.Handle(context.Background(), []byte(`{"symbol":"A","n":5}`)))
	assert.Equal(t, 4, m.errors["kafka_decode"])
}
