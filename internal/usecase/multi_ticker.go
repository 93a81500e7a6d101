package usecase

import (
	"context"
	"sync"
	"time"

	"SignalFusion/internal/domain/models"
	domrepo "SignalFusion/internal/domain/repository"
	applogger "SignalFusion/pkg/logger"
)

// MultiTickerUseCase analyses several instruments concurrently.
type MultiTickerUseCase struct {
	analysis       *AnalysisUseCase
	maxConcurrency int
	l              *applogger.Logger
}

func NewMultiTickerUseCase(analysis *AnalysisUseCase, maxConcurrency int, l *applogger.Logger) *MultiTickerUseCase {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &MultiTickerUseCase{analysis: analysis, maxConcurrency: maxConcurrency, l: l}
}

// Analyze runs every symbol through the analysis pipeline. Per-symbol
// failures land in Errors; the call itself only fails on an empty list.
func (uc *MultiTickerUseCase) Analyze(ctx context.Context, symbols []string, interval string, bars int, now time.Time) (*models.MultiTickerResult, error) {
	if len(symbols) == 0 {
		return nil, ErrSymbolRequired
	}
	iv := domrepo.NormalizeInterval(interval)
	if now.IsZero() {
		now = uc.analysis.clock()
	}

	type item struct {
		symbol string
		bundle *models.Bundle
		err    error
	}

	results := make(chan item, len(symbols))
	sem := make(chan struct{}, uc.maxConcurrency)
	var wg sync.WaitGroup

	for _, sym := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results <- item{symbol: sym, err: ctx.Err()}
				return
			}
			defer func() { <-sem }()
			b, err := uc.analysis.Analyze(ctx, AnalyzeParams{Symbol: sym, Interval: string(iv), Bars: bars, Now: now})
			results <- item{symbol: sym, bundle: b, err: err}
		}(sym)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := &models.MultiTickerResult{
		Interval: string(iv),
		Bundles:  make(map[string]*models.Bundle, len(symbols)),
		Errors:   make(map[string]string),
	}
	for it := range results {
		if it.err != nil {
			out.Errors[it.symbol] = it.err.Error()
			uc.l.Warn("multi-ticker analysis failed", applogger.String("symbol", it.symbol), applogger.Error(it.err))
			continue
		}
		out.Bundles[it.symbol] = it.bundle
	}
	if len(out.Errors) == 0 {
		out.Errors = nil
	}
	return out, nil
}
