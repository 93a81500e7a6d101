package confluence

import (
	"fmt"

	"SignalFusion/internal/domain/models"
)

// Trading actions.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionHold = "HOLD"
)

// adviceMaxScore is the most one action can collect: wave-trend buy, gold
// buy, wave-trend divergence, money-flow divergence, regime shift, RSI,
// MACD cross, histogram, band, ADX, fast money and zero-line rejection.
const adviceMaxScore = 3 + 5 + 2 + 2 + 2 + 1 + 2 + 1 + 1 + 2 + 1 + 1

const (
	adxTrendLevel = 25.0
	adviceRSILow  = 30.0
	adviceRSIHigh = 70.0
)

// AdviceInput carries the series the advisor reads at LastIndex.
type AdviceInput struct {
	Signals   []models.Signal
	LastIndex int
	Lookback  int
	Close     []float64
	RSI       []float64
	Derived   models.DerivedIndicators
}

// Advise scores the last Lookback bars into a BUY, SELL or HOLD call. The
// action is the strictly largest of the three scores, HOLD otherwise.
func Advise(in AdviceInput) models.TradingAdvice {
	if in.Lookback <= 0 {
		in.Lookback = 5
	}
	var (
		buy, sell, hold int
		reasons         = []string{}
	)

	var (
		hasBuy, hasGold, hasSell bool
		bullDiv, bearDiv         bool
		bullWave, bearWave       bool
		regime                   bool
		fastBuy, fastSell        bool
		zeroBuy, zeroSell        bool
	)
	for _, s := range in.Signals {
		if s.Index <= in.LastIndex-in.Lookback || s.Index > in.LastIndex {
			continue
		}
		switch s.Type {
		case models.SignalBuy:
			hasBuy = true
		case models.SignalGoldBuy:
			hasGold = true
		case models.SignalSell:
			hasSell = true
		case models.SignalBullishDivergence, models.SignalBullishPivotDivergence:
			bullDiv = true
		case models.SignalBearishDivergence, models.SignalBearishPivotDivergence:
			bearDiv = true
		case models.SignalRegularBullishDivergence, models.SignalHiddenBullishDivergence:
			bullWave = true
		case models.SignalRegularBearishDivergence, models.SignalHiddenBearishDivergence:
			bearWave = true
		case models.SignalRegimeShiftUp, models.SignalRegimeShiftDown:
			regime = true
		case models.SignalFastMoneyBuy:
			fastBuy = true
		case models.SignalFastMoneySell:
			fastSell = true
		case models.SignalZeroLineRejectBuy:
			zeroBuy = true
		case models.SignalZeroLineRejectSell:
			zeroSell = true
		}
	}
	if hasBuy {
		buy += 3
		reasons = append(reasons, "WaveTrend buy signal detected")
	}
	if hasGold {
		buy += 5
		reasons = append(reasons, "Strong gold buy signal detected")
	}
	if hasSell {
		sell += 3
		reasons = append(reasons, "WaveTrend sell signal detected")
	}
	if bullDiv {
		buy += 2
		reasons = append(reasons, "Bullish money flow divergence detected")
	}
	if bearDiv {
		sell += 2
		reasons = append(reasons, "Bearish money flow divergence detected")
	}
	if bullWave {
		buy += 2
		reasons = append(reasons, "Bullish WaveTrend divergence detected")
	}
	if bearWave {
		sell += 2
		reasons = append(reasons, "Bearish WaveTrend divergence detected")
	}
	if fastBuy {
		buy++
		reasons = append(reasons, "Fast money buy pattern")
	}
	if fastSell {
		sell++
		reasons = append(reasons, "Fast money sell pattern")
	}
	if zeroBuy {
		buy++
		reasons = append(reasons, "WaveTrend zero-line rejection (bullish)")
	}
	if zeroSell {
		sell++
		reasons = append(reasons, "WaveTrend zero-line rejection (bearish)")
	}

	last := in.LastIndex
	if regime {
		c0, ok0 := valueAt(in.Close, last)
		c2, ok2 := valueAt(in.Close, last-2)
		if ok0 && ok2 {
			if c0 > c2 {
				buy += 2
				reasons = append(reasons, "Upward regime change")
			} else {
				sell += 2
				reasons = append(reasons, "Downward regime change")
			}
		}
	}
	if v, ok := valueAt(in.RSI, last); ok {
		switch {
		case v < adviceRSILow:
			buy++
			reasons = append(reasons, fmt.Sprintf("RSI oversold at %.1f", v))
		case v > adviceRSIHigh:
			sell++
			reasons = append(reasons, fmt.Sprintf("RSI overbought at %.1f", v))
		default:
			hold++
		}
	}

	if m := in.Derived.MACD; m != nil {
		l0, ok0 := m.Line.At(last)
		l1, ok1 := m.Line.At(last - 1)
		s0, ok2 := m.Signal.At(last)
		s1, ok3 := m.Signal.At(last - 1)
		if ok0 && ok1 && ok2 && ok3 {
			switch {
			case l1 < s1 && l0 > s0:
				buy += 2
				reasons = append(reasons, "Bullish MACD crossover")
			case l1 > s1 && l0 < s0:
				sell += 2
				reasons = append(reasons, "Bearish MACD crossover")
			}
		}
		h0, ok0 := m.Histogram.At(last)
		h1, ok1 := m.Histogram.At(last - 1)
		if ok0 && ok1 {
			switch {
			case h0 > 0 && h0 > h1:
				buy++
			case h0 < 0 && h0 < h1:
				sell++
			}
		}
	}

	if b := in.Derived.Bollinger; b != nil {
		c, okC := valueAt(in.Close, last)
		lo, okL := b.Lower.At(last)
		up, okU := b.Upper.At(last)
		if okC && okL && okU {
			switch {
			case c <= lo:
				buy++
				reasons = append(reasons, "Price at or below lower Bollinger band")
			case c >= up:
				sell++
				reasons = append(reasons, "Price at or above upper Bollinger band")
			}
		}
	}

	if a := in.Derived.ADX; a != nil {
		adx, okA := a.ADX.At(last)
		plus, okP := a.PlusDI.At(last)
		minus, okM := a.MinusDI.At(last)
		if okA && okP && okM {
			switch {
			case adx > adxTrendLevel && plus > minus:
				buy += 2
				reasons = append(reasons, fmt.Sprintf("Strong uptrend (ADX: %.1f)", adx))
			case adx > adxTrendLevel:
				sell += 2
				reasons = append(reasons, fmt.Sprintf("Strong downtrend (ADX: %.1f)", adx))
			default:
				hold++
				reasons = append(reasons, fmt.Sprintf("Weak trend (ADX: %.1f)", adx))
			}
		}
	}

	advice := models.TradingAdvice{
		BuyScore:  buy,
		SellScore: sell,
		HoldScore: hold,
		Reasons:   reasons,
	}
	switch {
	case buy > sell && buy > hold:
		advice.Action, advice.Confidence = ActionBuy, confidence(buy)
	case sell > buy && sell > hold:
		advice.Action, advice.Confidence = ActionSell, confidence(sell)
	default:
		advice.Action, advice.Confidence = ActionHold, confidence(hold)
	}
	return advice
}

func confidence(score int) int {
	return min(score*100/adviceMaxScore, 100)
}

func valueAt(values []float64, i int) (float64, bool) {
	if i < 0 || i >= len(values) || models.IsNull(values[i]) {
		return 0, false
	}
	return values[i], true
}
