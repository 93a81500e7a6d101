package indicators

import (
	"math"

	"SignalFusion/internal/domain/models"
)

const ADXPeriod = 14

// ADX returns the average directional index with +DI and -DI. True range
// and directional movement are averaged with a rolling mean over period
// bars; DX is averaged the same way. Outputs are clamped to [0, 100].
func ADX(high, low, close []float64, period int) (adx, plusDI, minusDI []float64) {
	n := len(close)
	if len(high) != n || len(low) != n || period <= 0 {
		return nulls(n), nulls(n), nulls(n)
	}

	tr, plusDM, minusDM := nulls(n), nulls(n), nulls(n)
	for i := 0; i < n; i++ {
		h, l := high[i], low[i]
		if models.IsNull(h) || models.IsNull(l) {
			continue
		}
		if i == 0 {
			tr[i] = h - l
			plusDM[i], minusDM[i] = 0, 0
			continue
		}
		pc, ph, pl := close[i-1], high[i-1], low[i-1]
		if models.IsNull(pc) || models.IsNull(ph) || models.IsNull(pl) {
			continue
		}
		tr[i] = math.Max(h-l, math.Max(math.Abs(h-pc), math.Abs(l-pc)))

		up, down := h-ph, pl-l
		plusDM[i], minusDM[i] = 0, 0
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	atr := SMA(tr, period)
	pdm := SMA(plusDM, period)
	mdm := SMA(minusDM, period)

	plusDI, minusDI = nulls(n), nulls(n)
	dx := nulls(n)
	for i := 0; i < n; i++ {
		if models.IsNull(atr[i]) || atr[i] == 0 || models.IsNull(pdm[i]) || models.IsNull(mdm[i]) {
			continue
		}
		p := clamp(100*pdm[i]/atr[i], 0, 100)
		m := clamp(100*mdm[i]/atr[i], 0, 100)
		plusDI[i], minusDI[i] = p, m
		if p+m == 0 {
			continue
		}
		dx[i] = 100 * math.Abs(p-m) / (p + m)
	}

	adx = SMA(dx, period)
	for i := range adx {
		if !models.IsNull(adx[i]) {
			adx[i] = clamp(adx[i], 0, 100)
		}
	}
	return adx, plusDI, minusDI
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
