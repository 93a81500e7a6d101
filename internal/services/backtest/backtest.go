// Package backtest replays historical buy signals over a fixed forward
// holding window.
package backtest

import (
	"SignalFusion/internal/domain/models"

	"github.com/shopspring/decimal"
)

// DefaultHoldBars is the forward holding window in bars.
const DefaultHoldBars = 10

// Run computes the forward return of every Buy or GoldBuy signal that has at
// least holdBars of subsequent price. Signals whose entry price is missing
// or non-positive, or whose exit price is missing, are skipped.
func Run(signals []models.Signal, closes []float64, holdBars int) models.BacktestResult {
	if holdBars <= 0 {
		holdBars = DefaultHoldBars
	}
	res := models.BacktestResult{
		PerformanceTier: models.TierInsufficientData,
		HoldBars:        holdBars,
	}
	last := len(closes) - 1

	var (
		sum     float64
		wins    int
		count   int
		best    float64
		bestTyp models.SignalType
	)
	for _, s := range signals {
		if !s.Type.IsBuy() || s.Index < 0 || s.Index+holdBars > last {
			continue
		}
		entry := closes[s.Index]
		exit := closes[s.Index+holdBars]
		if models.IsNull(entry) || entry <= 0 || models.IsNull(exit) {
			continue
		}
		ret := (exit - entry) / entry * 100
		sum += ret
		if ret > 0 {
			wins++
		}
		if count == 0 || ret > best {
			best, bestTyp = ret, s.Type
		}
		count++
	}
	if count == 0 {
		return res
	}

	avg := decimal.NewFromFloat(sum / float64(count)).Round(2)
	winRate := decimal.NewFromInt(int64(wins)).
		Div(decimal.NewFromInt(int64(count))).
		Mul(decimal.NewFromInt(100)).
		Round(1)

	res.AvgReturnPct = avg.InexactFloat64()
	res.WinRatePct = winRate.InexactFloat64()
	res.SignalCount = count
	res.BestSignalType = bestTyp
	res.PerformanceTier = Tier(res.AvgReturnPct, res.WinRatePct)
	return res
}

// Tier grades an average return and win rate, both in percent.
func Tier(avgReturn, winRate float64) models.PerformanceTier {
	switch {
	case avgReturn > 5 && winRate > 70:
		return models.TierExcellent
	case avgReturn > 3 && winRate > 60:
		return models.TierGood
	case avgReturn > 1 && winRate > 50:
		return models.TierFair
	case avgReturn > 0:
		return models.TierWeak
	default:
		return models.TierPoor
	}
}
