package models

// PerformanceTier grades a backtest.
type PerformanceTier string

const (
	TierExcellent        PerformanceTier = "Excellent"
	TierGood             PerformanceTier = "Good"
	TierFair             PerformanceTier = "Fair"
	TierWeak             PerformanceTier = "Weak"
	TierPoor             PerformanceTier = "Poor"
	TierInsufficientData PerformanceTier = "InsufficientData"
)

// BacktestResult summarizes the forward returns of historical buy signals.
type BacktestResult struct {
	AvgReturnPct    float64         `json:"avgReturnPct"`
	WinRatePct      float64         `json:"winRatePct"`
	SignalCount     int             `json:"signalCount"`
	BestSignalType  SignalType      `json:"bestSignalType"`
	PerformanceTier PerformanceTier `json:"performanceTier"`
	HoldBars        int             `json:"holdBars"`
}
