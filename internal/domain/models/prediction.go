package models

import "strings"

// Prediction is the opaque output of the external reinforcement-learning
// service. Only Prediction and Confidence feed the confluence score.
type Prediction struct {
	Prediction     string  `json:"prediction"`
	Confidence     float64 `json:"confidence"`
	Recommendation string  `json:"recommendation"`
	PositionSize   float64 `json:"positionSize"`
}

// Bullish reports whether the upstream call leans long.
func (p *Prediction) Bullish() bool {
	if p == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(p.Prediction)) {
	case "bullish", "buy", "long", "up":
		return true
	}
	return false
}

// Bearish reports whether the upstream call leans short.
func (p *Prediction) Bearish() bool {
	if p == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(p.Prediction)) {
	case "bearish", "sell", "short", "down":
		return true
	}
	return false
}
