package models

import "time"

// Family identifies the oscillator family that produced a signal.
type Family string

const (
	FamilyAnalyzer    Family = "Analyzer"
	FamilyRSI         Family = "RSI"
	FamilyExhaustion  Family = "Exhaustion"
	FamilyVolume      Family = "Volume"
	FamilyPriceAction Family = "PriceAction"
	FamilyMoneyFlow   Family = "MoneyFlow"
	FamilyDivergence  Family = "Divergence"
	FamilyRegime      Family = "Regime"
)

// SignalType is the concrete event a detector recognised.
type SignalType string

const (
	SignalBuy     SignalType = "Buy"
	SignalGoldBuy SignalType = "GoldBuy"
	SignalSell    SignalType = "Sell"

	SignalFastMoneyBuy       SignalType = "FastMoneyBuy"
	SignalFastMoneySell      SignalType = "FastMoneySell"
	SignalZeroLineRejectBuy  SignalType = "ZeroLineRejectBuy"
	SignalZeroLineRejectSell SignalType = "ZeroLineRejectSell"

	SignalBullishEntry      SignalType = "BullishEntry"
	SignalBearishEntry      SignalType = "BearishEntry"
	SignalTransitionPhase   SignalType = "TransitionPhase"
	SignalNeutralPhase      SignalType = "NeutralPhase"
	SignalOversoldTurn      SignalType = "OversoldTurn"
	SignalOverboughtTurn    SignalType = "OverboughtTurn"
	SignalBullishTrendBreak SignalType = "BullishTrendBreak"
	SignalBearishTrendBreak SignalType = "BearishTrendBreak"

	SignalOversoldReversal   SignalType = "OversoldReversal"
	SignalOverboughtReversal SignalType = "OverboughtReversal"
	SignalBullishCross       SignalType = "BullishCross"
	SignalBearishCross       SignalType = "BearishCross"

	SignalBullishDivergence      SignalType = "BullishDivergence"
	SignalBearishDivergence      SignalType = "BearishDivergence"
	SignalBullishPivotDivergence SignalType = "BullishPivotDivergence"
	SignalBearishPivotDivergence SignalType = "BearishPivotDivergence"

	SignalRegularBullishDivergence SignalType = "RegularBullishDivergence"
	SignalRegularBearishDivergence SignalType = "RegularBearishDivergence"
	SignalHiddenBullishDivergence  SignalType = "HiddenBullishDivergence"
	SignalHiddenBearishDivergence  SignalType = "HiddenBearishDivergence"

	SignalRegimeShiftUp   SignalType = "RegimeShiftUp"
	SignalRegimeShiftDown SignalType = "RegimeShiftDown"

	SignalVolumeBreakout  SignalType = "VolumeBreakout"
	SignalVolumeExplosion SignalType = "VolumeExplosion"

	SignalBreakout      SignalType = "Breakout"
	SignalBreakdown     SignalType = "Breakdown"
	SignalWeeklySurge   SignalType = "WeeklySurge"
	SignalWeeklyDecline SignalType = "WeeklyDecline"
)

// IsBuy reports whether the type opens a long position in the backtest.
func (t SignalType) IsBuy() bool { return t == SignalBuy || t == SignalGoldBuy }

// Strength grades a signal.
type Strength string

const (
	StrengthWeak       Strength = "Weak"
	StrengthModerate   Strength = "Moderate"
	StrengthStrong     Strength = "Strong"
	StrengthVeryStrong Strength = "VeryStrong"
	StrengthExtreme    Strength = "Extreme"
)

// Rank orders strengths from Weak (1) to Extreme (5). Unknown values rank 0.
func (s Strength) Rank() int {
	switch s {
	case StrengthWeak:
		return 1
	case StrengthModerate:
		return 2
	case StrengthStrong:
		return 3
	case StrengthVeryStrong:
		return 4
	case StrengthExtreme:
		return 5
	default:
		return 0
	}
}

// Signal is one dated event emitted by a detector.
type Signal struct {
	Date           time.Time  `json:"date"`
	Index          int        `json:"index"`
	Family         Family     `json:"family"`
	Type           SignalType `json:"type"`
	Strength       Strength   `json:"strength"`
	NumericContext float64    `json:"numericContext"`
}
