// Package confluence scores how far the independent oscillator families
// agree on direction, and turns the recent bars into a trading advice.
package confluence

import (
	"fmt"

	"SignalFusion/internal/domain/models"
)

// Recommendation labels by descending score threshold.
const (
	RecStrongBullish   = "Strong bullish confluence"
	RecModerateBullish = "Moderate bullish"
	RecMixed           = "Mixed — wait"
	RecBearishBias     = "Bearish bias"
	RecStrongBearish   = "Strong bearish"
)

// Input is everything the scorer reads. LastIndex is the index of the most
// recent bar; signals are recent when they fall within the configured number
// of bars before it.
type Input struct {
	States     models.OscillatorStates
	Signals    []models.Signal
	LastIndex  int
	Prediction *models.Prediction
}

type Scorer struct {
	w Weights
}

func NewScorer(w Weights) *Scorer {
	return &Scorer{w: w}
}

// Score computes the per-family scores, their clamped total and the
// alignment map. A family without data scores its default and has a nil
// alignment.
func (s *Scorer) Score(in Input) models.ConfluenceResult {
	res := models.ConfluenceResult{
		PerFamilyScore: make(map[models.ConfluenceFamily]int, len(models.ConfluenceFamilies)),
		Alignment:      make(map[models.ConfluenceFamily]*bool, len(models.ConfluenceFamilies)),
	}
	scores := map[models.ConfluenceFamily]func(Input) (int, bool){
		models.ConfluenceAnalyzer:   s.analyzer,
		models.ConfluenceRSI:        s.rsi,
		models.ConfluenceExhaustion: s.exhaustion,
		models.ConfluencePrediction: s.prediction,
	}

	total := 0
	for _, fam := range models.ConfluenceFamilies {
		score, present := scores[fam](in)
		res.PerFamilyScore[fam] = score
		total += score
		if !present {
			res.Alignment[fam] = nil
			continue
		}
		aligned := score >= s.w.AlignmentFloor
		res.Alignment[fam] = &aligned
		res.ActiveFamilies++
	}

	res.TotalScore = clamp(total, 0, 100)
	res.Recommendation = s.Recommend(res.TotalScore)
	res.SummaryText = fmt.Sprintf("%s (%d/100), %d of %d families active",
		res.Recommendation, res.TotalScore, res.ActiveFamilies, len(models.ConfluenceFamilies))
	return res
}

// Recommend maps a total score onto its label.
func (s *Scorer) Recommend(total int) string {
	switch {
	case total >= s.w.StrongBullish:
		return RecStrongBullish
	case total >= s.w.ModerateBullish:
		return RecModerateBullish
	case total >= s.w.Mixed:
		return RecMixed
	case total >= s.w.BearishBias:
		return RecBearishBias
	default:
		return RecStrongBearish
	}
}

func (s *Scorer) analyzer(in Input) (int, bool) {
	recent := s.recent(in, models.FamilyAnalyzer, s.w.RecentBars)
	if in.States.Analyzer == nil && len(recent) == 0 {
		return 0, false
	}
	var gold, buy, sell bool
	for _, sig := range recent {
		switch sig.Type {
		case models.SignalGoldBuy:
			gold = true
		case models.SignalBuy:
			buy = true
		case models.SignalSell:
			sell = true
		}
	}
	score := 0
	switch {
	case gold:
		score = s.w.GoldBuy
	case buy:
		score = s.w.Buy
	case in.States.Analyzer.Bullish():
		score = s.w.Bullish
	}
	if sell {
		score -= s.w.SellPenalty
	}
	return score, true
}

func (s *Scorer) rsi(in Input) (int, bool) {
	r := in.States.RSI
	if r == nil {
		return s.w.RSINeutral, false
	}
	switch r.Code {
	case models.RSICodeBullish:
		return s.w.RSIBullish, true
	case models.RSICodeTransition:
		return s.w.RSITransition, true
	case models.RSICodeBearish:
		return s.w.RSIBearish, true
	default:
		return s.w.RSINeutral, true
	}
}

func (s *Scorer) exhaustion(in Input) (int, bool) {
	e := in.States.Exhaustion
	if e == nil {
		return s.w.ExhaustionDefault, false
	}
	var score int
	switch e.Zone {
	case models.ZoneOversold:
		score = s.w.Oversold
	case models.ZoneNearOversold:
		score = s.w.NearOversold
	case models.ZoneNearOverbought:
		score = s.w.NearOverbought
	case models.ZoneOverbought:
		score = s.w.Overbought
	default:
		score = s.w.NeutralZone
	}

	latest := -1
	var latestType models.SignalType
	for _, sig := range s.recent(in, models.FamilyExhaustion, s.w.ReversalBars) {
		if sig.Type != models.SignalOversoldReversal && sig.Type != models.SignalOverboughtReversal {
			continue
		}
		if sig.Index > latest {
			latest, latestType = sig.Index, sig.Type
		}
	}
	switch latestType {
	case models.SignalOversoldReversal:
		score = max(score, s.w.BullishReversal)
	case models.SignalOverboughtReversal:
		score = min(score, s.w.BearishReversal)
	}
	return score, true
}

func (s *Scorer) prediction(in Input) (int, bool) {
	p := in.Prediction
	if p == nil {
		return s.w.PredictionDefault, false
	}
	switch {
	case p.Bullish() && p.Confidence > s.w.HighConfidence:
		return s.w.PredStrongBull, true
	case p.Bullish() && p.Confidence > s.w.ModerateConfidence:
		return s.w.PredBull, true
	case p.Bearish() && p.Confidence > s.w.HighConfidence:
		return s.w.PredStrongBear, true
	case p.Bearish() && p.Confidence > s.w.ModerateConfidence:
		return s.w.PredBear, true
	default:
		return s.w.PredNeutral, true
	}
}

// recent returns the signals of family within the last bars bars.
func (s *Scorer) recent(in Input, family models.Family, bars int) []models.Signal {
	var out []models.Signal
	for _, sig := range in.Signals {
		if sig.Family == family && sig.Index > in.LastIndex-bars && sig.Index <= in.LastIndex {
			out = append(out, sig)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
