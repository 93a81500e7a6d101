// Package detectors scans the aligned series of a snapshot for discrete
// events. Each oscillator family has its own Detector; all of them share
// the snapshot's date axis and skip any comparison that touches a missing
// value.
package detectors

import (
	"SignalFusion/internal/domain/models"
)

// Detector emits the signals of one family.
type Detector interface {
	Family() models.Family
	Detect(snap *models.Snapshot) []models.Signal
}

// Default returns one detector per family in a fixed order.
func Default() []Detector {
	return []Detector{
		WaveTrend{},
		RSI{},
		Exhaustion{},
		MoneyFlowDivergence{},
		Volume{},
		PriceAction{},
		Divergence{},
		Regime{},
	}
}

// DetectAll runs every detector against snap and concatenates the results
// in detector order.
func DetectAll(snap *models.Snapshot, detectors []Detector) []models.Signal {
	if snap == nil || snap.Len() == 0 {
		return nil
	}
	var out []models.Signal
	for _, d := range detectors {
		out = append(out, d.Detect(snap)...)
	}
	return out
}

// signalSet keeps at most one signal per date for a single family. A later
// signal on the same date replaces the kept one only when it is stronger.
type signalSet struct {
	family models.Family
	snap   *models.Snapshot
	out    []models.Signal
	byDate map[int64]int
}

func newSignalSet(family models.Family, snap *models.Snapshot) *signalSet {
	return &signalSet{family: family, snap: snap, byDate: make(map[int64]int)}
}

func (s *signalSet) emit(i int, typ models.SignalType, strength models.Strength, context float64) {
	date := s.snap.Dates[i]
	sig := models.Signal{
		Date:           date,
		Index:          i,
		Family:         s.family,
		Type:           typ,
		Strength:       strength,
		NumericContext: context,
	}
	key := date.UnixNano()
	if at, ok := s.byDate[key]; ok {
		if strength.Rank() > s.out[at].Strength.Rank() {
			s.out[at] = sig
		}
		return
	}
	s.byDate[key] = len(s.out)
	s.out = append(s.out, sig)
}

// fill emits only when the date holds no signal yet, so secondary patterns
// never displace a primary one.
func (s *signalSet) fill(i int, typ models.SignalType, strength models.Strength, context float64) {
	if _, taken := s.byDate[s.snap.Dates[i].UnixNano()]; taken {
		return
	}
	s.emit(i, typ, strength, context)
}

func (s *signalSet) signals() []models.Signal { return s.out }

// pair returns values[i-1] and values[i] when both are present.
func pair(values []float64, i int) (prev, cur float64, ok bool) {
	if i < 1 || i >= len(values) {
		return 0, 0, false
	}
	prev, cur = values[i-1], values[i]
	if models.IsNull(prev) || models.IsNull(cur) {
		return 0, 0, false
	}
	return prev, cur, true
}

// at returns values[i] when present.
func at(values []float64, i int) (float64, bool) {
	if i < 0 || i >= len(values) || models.IsNull(values[i]) {
		return 0, false
	}
	return values[i], true
}
