package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"SignalFusion/internal/domain/models"
	domrepo "SignalFusion/internal/domain/repository"
	domsvc "SignalFusion/internal/domain/service"
	"SignalFusion/internal/services/features"
	"SignalFusion/internal/services/timeline"
	applogger "SignalFusion/pkg/logger"
)

var (
	// ErrSymbolRequired is returned when a request names no instrument.
	ErrSymbolRequired = errors.New("symbol required")
	// ErrNoData is returned when neither the request nor the bar store
	// provides any bars.
	ErrNoData = errors.New("no bars available")
)

// AnalyzeParams describes one analysis request. Inline bars, when given,
// replace the bar store lookup. A zero Now means the wall clock.
type AnalyzeParams struct {
	Symbol   string
	Interval string
	Bars     int
	Now      time.Time
	Inline   []models.Bar
	Publish  bool
}

// TimelineParams describes a timeline lookup.
type TimelineParams struct {
	Symbol   string
	Interval string
	Bars     int
	Now      time.Time
	Limit    int
}

// AnalysisUseCase loads bars and the external prediction, runs the engine and
// hands the bundle to the optional storage and publisher.
type AnalysisUseCase struct {
	engine      domsvc.Analyzer
	bars        domrepo.BarStore
	prediction  domsvc.PredictionProvider
	storage     domrepo.SignalStorage
	publisher   domrepo.BundlePublisher
	publishAll  bool
	merger      *timeline.Merger
	metrics     domrepo.Metrics
	l           *applogger.Logger
	timeout     time.Duration
	defaultBars int
	clock       func() time.Time
}

// AnalysisOption configures AnalysisUseCase.
type AnalysisOption func(*AnalysisUseCase)

func WithBarStore(s domrepo.BarStore) AnalysisOption {
	return func(uc *AnalysisUseCase) { uc.bars = s }
}

func WithPredictionProvider(p domsvc.PredictionProvider) AnalysisOption {
	return func(uc *AnalysisUseCase) { uc.prediction = p }
}

func WithSignalStorage(s domrepo.SignalStorage) AnalysisOption {
	return func(uc *AnalysisUseCase) { uc.storage = s }
}

// WithPublisher sets the bundle publisher. With publishAll every analysis is
// published, otherwise only those that ask for it.
func WithPublisher(p domrepo.BundlePublisher, publishAll bool) AnalysisOption {
	return func(uc *AnalysisUseCase) {
		uc.publisher = p
		uc.publishAll = publishAll
	}
}

// WithTimelineMerger enables timeline reads from signal storage.
func WithTimelineMerger(m *timeline.Merger) AnalysisOption {
	return func(uc *AnalysisUseCase) { uc.merger = m }
}

func WithMetrics(m domrepo.Metrics) AnalysisOption {
	return func(uc *AnalysisUseCase) { uc.metrics = m }
}

func WithLogger(l *applogger.Logger) AnalysisOption {
	return func(uc *AnalysisUseCase) { uc.l = l }
}

func WithTimeout(d time.Duration) AnalysisOption {
	return func(uc *AnalysisUseCase) { uc.timeout = d }
}

func WithDefaultBars(n int) AnalysisOption {
	return func(uc *AnalysisUseCase) { uc.defaultBars = n }
}

func WithClock(clock func() time.Time) AnalysisOption {
	return func(uc *AnalysisUseCase) { uc.clock = clock }
}

func NewAnalysisUseCase(engine domsvc.Analyzer, opts ...AnalysisOption) *AnalysisUseCase {
	uc := &AnalysisUseCase{
		engine:      engine,
		metrics:     nopMetrics{},
		l:           applogger.Nop(),
		timeout:     15 * time.Second,
		defaultBars: 500,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Analyze runs the full pipeline for one instrument.
func (uc *AnalysisUseCase) Analyze(ctx context.Context, p AnalyzeParams) (*models.Bundle, error) {
	p.Symbol = strings.ToUpper(strings.TrimSpace(p.Symbol))
	if p.Symbol == "" {
		return nil, ErrSymbolRequired
	}
	iv := domrepo.NormalizeInterval(p.Interval)
	if p.Bars <= 0 {
		p.Bars = uc.defaultBars
	}
	if p.Now.IsZero() {
		p.Now = uc.clock()
	}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	bars, pred, err := uc.load(ctx, p, iv)
	if err != nil {
		return nil, err
	}

	snap := features.SnapshotFromBars(p.Symbol, bars)
	bundle := uc.engine.Analyze(snap, pred, p.Now, string(iv))
	uc.record(bundle, time.Since(start))

	if uc.storage != nil {
		if err := uc.storage.StoreTimeline(ctx, p.Symbol, iv, bundle.Timeline); err != nil {
			uc.metrics.RecordError("signal_storage")
			uc.l.Warn("store timeline failed", applogger.String("symbol", p.Symbol), applogger.Error(err))
		}
	}
	if uc.publisher != nil && (uc.publishAll || p.Publish) {
		if err := uc.publisher.PublishBundle(ctx, bundle); err != nil {
			uc.metrics.RecordError("publish")
			uc.l.Warn("publish bundle failed", applogger.String("symbol", p.Symbol), applogger.Error(err))
		}
	}

	uc.l.Info("analysis done",
		applogger.String("symbol", p.Symbol),
		applogger.String("interval", string(iv)),
		applogger.Int("bars", bundle.Bars),
		applogger.Int("signals", len(bundle.Timeline)),
		applogger.Int("confluence", bundle.Confluence.TotalScore),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return bundle, nil
}

// load fetches bars and the prediction concurrently. A failed prediction only
// leaves that family absent.
func (uc *AnalysisUseCase) load(ctx context.Context, p AnalyzeParams, iv domrepo.Interval) ([]models.Bar, *models.Prediction, error) {
	var (
		wg      sync.WaitGroup
		pred    *models.Prediction
		predErr error
	)
	if uc.prediction != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pred, predErr = uc.prediction.Predict(ctx, p.Symbol, string(iv))
		}()
	}

	bars := p.Inline
	var barsErr error
	if len(bars) == 0 {
		bars, barsErr = uc.fetchBars(ctx, p.Symbol, p.Bars, iv)
	}
	wg.Wait()

	if predErr != nil {
		uc.metrics.RecordError("prediction")
		uc.l.Warn("prediction unavailable", applogger.String("symbol", p.Symbol), applogger.Error(predErr))
		pred = nil
	}
	if barsErr != nil {
		return nil, nil, barsErr
	}
	return bars, pred, nil
}

func (uc *AnalysisUseCase) fetchBars(ctx context.Context, symbol string, n int, iv domrepo.Interval) ([]models.Bar, error) {
	if uc.bars == nil {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}
	start := time.Now()
	bars, err := uc.bars.GetLatestNBars(ctx, symbol, n, iv)
	uc.metrics.RecordLatency("bar_store", time.Since(start).Seconds())
	if err != nil {
		uc.metrics.RecordError("bar_store")
		return nil, fmt.Errorf("load bars %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}
	return bars, nil
}

// AnalyzeSnapshot runs the engine on a snapshot the caller already holds.
func (uc *AnalysisUseCase) AnalyzeSnapshot(snap *models.Snapshot, pred *models.Prediction, interval string, now time.Time) *models.Bundle {
	if now.IsZero() {
		now = uc.clock()
	}
	start := time.Now()
	bundle := uc.engine.Analyze(snap, pred, now, string(domrepo.NormalizeInterval(interval)))
	uc.record(bundle, time.Since(start))
	return bundle
}

// Timeline returns the merged timeline for an instrument. With signal
// storage configured it reads stored history; otherwise it analyses anew.
func (uc *AnalysisUseCase) Timeline(ctx context.Context, p TimelineParams) ([]models.TimelineEntry, error) {
	p.Symbol = strings.ToUpper(strings.TrimSpace(p.Symbol))
	if p.Symbol == "" {
		return nil, ErrSymbolRequired
	}
	if p.Now.IsZero() {
		p.Now = uc.clock()
	}
	iv := domrepo.NormalizeInterval(p.Interval)

	if uc.storage != nil && uc.merger != nil {
		if p.Limit <= 0 {
			p.Limit = 500
		}
		signals, err := uc.storage.QueryTimeline(ctx, p.Symbol, iv, time.Time{}, p.Now, p.Limit)
		if err != nil {
			uc.metrics.RecordError("signal_storage")
			return nil, fmt.Errorf("query timeline %s: %w", p.Symbol, err)
		}
		if len(signals) > 0 {
			return uc.merger.Merge(signals, p.Now, iv), nil
		}
	}

	bundle, err := uc.Analyze(ctx, AnalyzeParams{Symbol: p.Symbol, Interval: string(iv), Bars: p.Bars, Now: p.Now})
	if err != nil {
		return nil, err
	}
	return bundle.Timeline, nil
}

func (uc *AnalysisUseCase) record(b *models.Bundle, d time.Duration) {
	uc.metrics.RecordAnalysis(b.Symbol, b.Interval)
	uc.metrics.RecordConfluence(b.Symbol, b.Confluence.TotalScore)
	uc.metrics.RecordLatency("analyze", d.Seconds())
	counts := make(map[models.Family]int)
	for _, e := range b.Timeline {
		counts[e.Family]++
	}
	for fam, n := range counts {
		uc.metrics.RecordSignals(string(fam), n)
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordAnalysis(string, string) {}
func (nopMetrics) RecordSignals(string, int)     {}
func (nopMetrics) RecordConfluence(string, int)  {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordLatency(string, float64) {}
