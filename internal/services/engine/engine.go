// Package engine runs the full indicator and signal-fusion pipeline over one
// snapshot. It is pure: the only notion of time is the injected now.
package engine

import (
	"time"

	"SignalFusion/internal/domain/models"
	domrepo "SignalFusion/internal/domain/repository"
	"SignalFusion/internal/services/backtest"
	"SignalFusion/internal/services/confluence"
	"SignalFusion/internal/services/detectors"
	"SignalFusion/internal/services/indicators"
	"SignalFusion/internal/services/states"
	"SignalFusion/internal/services/timeline"
)

// Config holds the tunable constants of the pipeline.
type Config struct {
	DeriveMissingOscillators bool               `yaml:"derive_missing_oscillators"`
	BacktestHoldBars         int                `yaml:"backtest_hold_bars"`
	AdviceLookback           int                `yaml:"advice_lookback"`
	Timeline                 timeline.Config    `yaml:"timeline"`
	Confluence               confluence.Weights `yaml:"confluence"`
}

func DefaultConfig() Config {
	return Config{
		BacktestHoldBars: backtest.DefaultHoldBars,
		AdviceLookback:   5,
		Timeline:         timeline.DefaultConfig(),
		Confluence:       confluence.DefaultWeights(),
	}
}

type Engine struct {
	cfg       Config
	detectors []detectors.Detector
	merger    *timeline.Merger
	scorer    *confluence.Scorer
}

type Option func(*Engine)

// WithDetectors replaces the default detector set.
func WithDetectors(ds ...detectors.Detector) Option {
	return func(e *Engine) { e.detectors = ds }
}

func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		detectors: detectors.Default(),
		merger:    timeline.NewMerger(cfg.Timeline),
		scorer:    confluence.NewScorer(cfg.Confluence),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze produces the output bundle for snap. pred may be nil. A nil or
// empty snapshot yields a neutral bundle, never an error.
func (e *Engine) Analyze(snap *models.Snapshot, pred *models.Prediction, now time.Time, interval string) *models.Bundle {
	if snap == nil {
		snap = models.NewSnapshot("", nil)
	}
	if e.cfg.DeriveMissingOscillators {
		snap = indicators.FillOscillators(snap, interval)
	}

	signals := detectors.DetectAll(snap, e.detectors)
	derived := indicators.Derive(snap)
	oscStates := states.Classify(snap, now)
	lastIndex := snap.Len() - 1

	return &models.Bundle{
		Symbol:            snap.Symbol,
		Interval:          interval,
		GeneratedAt:       now,
		Bars:              snap.Len(),
		DerivedIndicators: derived,
		OscillatorStates:  oscStates,
		Timeline:          e.merger.Merge(signals, now, domrepo.Interval(interval)),
		Backtest:          backtest.Run(signals, snap.Values(models.ColClose), e.cfg.BacktestHoldBars),
		Confluence: e.scorer.Score(confluence.Input{
			States:     oscStates,
			Signals:    signals,
			LastIndex:  lastIndex,
			Prediction: pred,
		}),
		Advice: confluence.Advise(confluence.AdviceInput{
			Signals:   signals,
			LastIndex: lastIndex,
			Lookback:  e.cfg.AdviceLookback,
			Close:     snap.Values(models.ColClose),
			RSI:       snap.Values(models.ColRSIValue),
			Derived:   derived,
		}),
	}
}

