package models

// ConfluenceFamily keys the per-family maps of a ConfluenceResult.
type ConfluenceFamily string

const (
	ConfluenceAnalyzer   ConfluenceFamily = "analyzer"
	ConfluenceRSI        ConfluenceFamily = "rsi"
	ConfluenceExhaustion ConfluenceFamily = "exhaustion"
	ConfluencePrediction ConfluenceFamily = "prediction"
)

// ConfluenceFamilies lists the scored families in display order.
var ConfluenceFamilies = []ConfluenceFamily{
	ConfluenceAnalyzer, ConfluenceRSI, ConfluenceExhaustion, ConfluencePrediction,
}

// ConfluenceResult is the 0..100 agreement score across families.
// A nil alignment means the family had no data; false means it disagreed.
type ConfluenceResult struct {
	TotalScore     int                        `json:"totalScore"`
	PerFamilyScore map[ConfluenceFamily]int   `json:"perFamilyScore"`
	Alignment      map[ConfluenceFamily]*bool `json:"alignment"`
	ActiveFamilies int                        `json:"activeFamilies"`
	Recommendation string                     `json:"recommendation"`
	SummaryText    string                     `json:"summaryText"`
}

// TradingAdvice is the lookback-window BUY/SELL/HOLD recommendation.
type TradingAdvice struct {
	Action     string   `json:"action"`
	Confidence int      `json:"confidence"`
	BuyScore   int      `json:"buyScore"`
	SellScore  int      `json:"sellScore"`
	HoldScore  int      `json:"holdScore"`
	Reasons    []string `json:"reasons"`
}
