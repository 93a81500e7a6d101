package models

import "time"

// RSIState is the discrete trend state of the RSI-variant family.
type RSIState string

const (
	RSINeutral    RSIState = "Neutral"
	RSIBullish    RSIState = "Bullish"
	RSIBearish    RSIState = "Bearish"
	RSITransition RSIState = "Transition"
)

// RSI state codes as delivered upstream.
const (
	RSICodeNeutral    = 0
	RSICodeBullish    = 1
	RSICodeBearish    = 2
	RSICodeTransition = 3
)

// RSIStateFromCode maps a state code onto its state. Unknown codes are neutral.
func RSIStateFromCode(code int) RSIState {
	switch code {
	case RSICodeBullish:
		return RSIBullish
	case RSICodeBearish:
		return RSIBearish
	case RSICodeTransition:
		return RSITransition
	default:
		return RSINeutral
	}
}

// RSIStrength grades the current RSI state.
type RSIStrength string

const (
	RSIStrengthStrong     RSIStrength = "Strong"
	RSIStrengthModerate   RSIStrength = "Moderate"
	RSIStrengthTransition RSIStrength = "Transition"
	RSIStrengthWeak       RSIStrength = "Weak"
)

// ExhaustionZone is the Williams %R zone of the exhaustion family.
type ExhaustionZone string

const (
	ZoneOversold       ExhaustionZone = "Oversold"
	ZoneNearOversold   ExhaustionZone = "NearOversold"
	ZoneNeutral        ExhaustionZone = "NeutralZone"
	ZoneNearOverbought ExhaustionZone = "NearOverbought"
	ZoneOverbought     ExhaustionZone = "Overbought"
)

// OscillatorState is a discrete state together with where it began.
type OscillatorState struct {
	State        string    `json:"state"`
	StartIndex   int       `json:"startIndex"`
	StartDate    time.Time `json:"startDate"`
	DurationBars int       `json:"durationBars"`
}

// StateChange describes the most recent RSI state-code transition.
type StateChange struct {
	Index           int        `json:"index"`
	Date            time.Time  `json:"date"`
	FromCode        int        `json:"fromCode"`
	ToCode          int        `json:"toCode"`
	ChangeType      SignalType `json:"changeType"`
	DaysSinceChange int        `json:"daysSinceChange"`
}

// RSIReading is the classified current state of the RSI family.
type RSIReading struct {
	OscillatorState
	Code       int          `json:"code"`
	Value      *float64     `json:"value"`
	Strength   RSIStrength  `json:"strength"`
	Valid      bool         `json:"valid"`
	LastChange *StateChange `json:"lastChange,omitempty"`
}

// ExhaustionReading is the classified current zone of the exhaustion family.
type ExhaustionReading struct {
	OscillatorState
	Zone       ExhaustionZone `json:"zone"`
	Value      float64        `json:"value"`
	DaysInZone int            `json:"daysInZone"`
}

// AnalyzerReading is the latest wave-trend reading.
type AnalyzerReading struct {
	Index     int       `json:"index"`
	Date      time.Time `json:"date"`
	WT1       float64   `json:"wt1"`
	WT2       float64   `json:"wt2"`
	MoneyFlow *float64  `json:"moneyFlow"`
}

// Bullish reports whether wt1 leads wt2 with positive money flow.
func (r *AnalyzerReading) Bullish() bool {
	return r != nil && r.WT1 > r.WT2 && r.MoneyFlow != nil && *r.MoneyFlow > 0
}

// OscillatorStates groups the current state of every classified family.
// A nil member means the family had no data.
type OscillatorStates struct {
	Analyzer   *AnalyzerReading   `json:"analyzer"`
	RSI        *RSIReading        `json:"rsi"`
	Exhaustion *ExhaustionReading `json:"exhaustion"`
}
