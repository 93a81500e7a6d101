package detectors

import "SignalFusion/internal/domain/models"

const (
	goldBuyLevel    = -50.0
	strongBuyLevel  = -30.0
	strongSellLevel = 30.0

	fastMoneyBars     = 3
	fastMoneyExtreme  = 75.0
	fastMoneyRecovery = 30.0
	zeroLineBand      = 10.0
)

// WaveTrend detects wt1/wt2 crossovers, confirmed by money flow for the
// gold buy. On bars without a crossover it also reports fast-money moves
// out of an extreme and rejections off the zero line.
type WaveTrend struct{}

func (WaveTrend) Family() models.Family { return models.FamilyAnalyzer }

func (d WaveTrend) Detect(snap *models.Snapshot) []models.Signal {
	wt1, wt2 := snap.Values(models.ColWT1), snap.Values(models.ColWT2)
	if wt1 == nil || wt2 == nil {
		return nil
	}
	mf := snap.Values(models.ColMoneyFlow)
	set := newSignalSet(d.Family(), snap)

	for i := 1; i < snap.Len(); i++ {
		p1, c1, ok := pair(wt1, i)
		if !ok {
			continue
		}
		p2, c2, ok := pair(wt2, i)
		if !ok {
			continue
		}
		switch {
		case p1 <= p2 && c1 > c2:
			flow, hasFlow := at(mf, i)
			switch {
			case hasFlow && flow > 0 && c1 < goldBuyLevel:
				set.emit(i, models.SignalGoldBuy, models.StrengthVeryStrong, c1)
			case c1 < strongBuyLevel:
				set.emit(i, models.SignalBuy, models.StrengthStrong, c1)
			default:
				set.emit(i, models.SignalBuy, models.StrengthModerate, c1)
			}
		case p1 >= p2 && c1 < c2:
			strength := models.StrengthModerate
			if c1 > strongSellLevel {
				strength = models.StrengthStrong
			}
			set.emit(i, models.SignalSell, strength, c1)
		}

		switch {
		case i >= fastMoneyBars && c2 > -fastMoneyRecovery && c1 > c2 && reached(wt2, i, -fastMoneyExtreme, true):
			set.fill(i, models.SignalFastMoneyBuy, models.StrengthStrong, c2)
		case i >= fastMoneyBars && c2 < fastMoneyRecovery && c1 < c2 && reached(wt2, i, fastMoneyExtreme, false):
			set.fill(i, models.SignalFastMoneySell, models.StrengthStrong, c2)
		case p2 > -zeroLineBand && p2 < 0 && c2 > 0 && c1 > c2:
			set.fill(i, models.SignalZeroLineRejectBuy, models.StrengthModerate, c2)
		case p2 > 0 && p2 < zeroLineBand && c2 < 0 && c1 < c2:
			set.fill(i, models.SignalZeroLineRejectSell, models.StrengthModerate, c2)
		}
	}
	return set.signals()
}

// reached reports whether any of the fastMoneyBars bars before i went
// beyond level: below it when below is set, above it otherwise.
func reached(values []float64, i int, level float64, below bool) bool {
	for j := 1; j <= fastMoneyBars; j++ {
		v, ok := at(values, i-j)
		if !ok {
			continue
		}
		if below && v < level || !below && v > level {
			return true
		}
	}
	return false
}
