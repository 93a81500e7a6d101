package confluence

// Weights are the empirically chosen constants of the confluence score.
type Weights struct {
	RecentBars  int `yaml:"recent_bars"`
	GoldBuy     int `yaml:"gold_buy"`
	Buy         int `yaml:"buy"`
	Bullish     int `yaml:"bullish"`
	SellPenalty int `yaml:"sell_penalty"`

	RSIBullish    int `yaml:"rsi_bullish"`
	RSITransition int `yaml:"rsi_transition"`
	RSIBearish    int `yaml:"rsi_bearish"`
	RSINeutral    int `yaml:"rsi_neutral"`

	Oversold          int `yaml:"oversold"`
	NearOversold      int `yaml:"near_oversold"`
	NeutralZone       int `yaml:"neutral_zone"`
	NearOverbought    int `yaml:"near_overbought"`
	Overbought        int `yaml:"overbought"`
	ReversalBars      int `yaml:"reversal_bars"`
	BullishReversal   int `yaml:"bullish_reversal"`
	BearishReversal   int `yaml:"bearish_reversal"`
	ExhaustionDefault int `yaml:"exhaustion_default"`

	HighConfidence     float64 `yaml:"high_confidence"`
	ModerateConfidence float64 `yaml:"moderate_confidence"`
	PredStrongBull     int     `yaml:"pred_strong_bull"`
	PredBull           int     `yaml:"pred_bull"`
	PredStrongBear     int     `yaml:"pred_strong_bear"`
	PredBear           int     `yaml:"pred_bear"`
	PredNeutral        int     `yaml:"pred_neutral"`
	PredictionDefault  int     `yaml:"prediction_default"`

	AlignmentFloor int `yaml:"alignment_floor"`

	StrongBullish   int `yaml:"strong_bullish"`
	ModerateBullish int `yaml:"moderate_bullish"`
	Mixed           int `yaml:"mixed"`
	BearishBias     int `yaml:"bearish_bias"`
}

func DefaultWeights() Weights {
	return Weights{
		RecentBars:  5,
		GoldBuy:     25,
		Buy:         20,
		Bullish:     15,
		SellPenalty: 10,

		RSIBullish:    25,
		RSITransition: 12,
		RSIBearish:    0,
		RSINeutral:    10,

		Oversold:          25,
		NearOversold:      20,
		NeutralZone:       12,
		NearOverbought:    5,
		Overbought:        0,
		ReversalBars:      3,
		BullishReversal:   22,
		BearishReversal:   3,
		ExhaustionDefault: 12,

		HighConfidence:     0.7,
		ModerateConfidence: 0.5,
		PredStrongBull:     25,
		PredBull:           20,
		PredStrongBear:     0,
		PredBear:           5,
		PredNeutral:        12,
		PredictionDefault:  12,

		AlignmentFloor: 15,

		StrongBullish:   80,
		ModerateBullish: 60,
		Mixed:           40,
		BearishBias:     20,
	}
}
