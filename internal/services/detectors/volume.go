package detectors

import "SignalFusion/internal/domain/models"

const (
	volumeLookback  = 20
	volumeBreakout  = 2.0
	volumeExplosion = 3.0
)

// Volume compares each bar's volume with the mean of the previous 20 bars.
type Volume struct{}

func (Volume) Family() models.Family { return models.FamilyVolume }

func (d Volume) Detect(snap *models.Snapshot) []models.Signal {
	vol := snap.Values(models.ColVolume)
	if vol == nil {
		return nil
	}
	set := newSignalSet(d.Family(), snap)

outer:
	for i := volumeLookback; i < snap.Len(); i++ {
		cur, ok := at(vol, i)
		if !ok {
			continue
		}
		var sum float64
		for j := i - volumeLookback; j < i; j++ {
			v, ok := at(vol, j)
			if !ok {
				continue outer
			}
			sum += v
		}
		avg := sum / volumeLookback
		if avg <= 0 {
			continue
		}
		ratio := cur / avg
		switch {
		case ratio > volumeExplosion:
			set.emit(i, models.SignalVolumeExplosion, models.StrengthVeryStrong, ratio)
		case ratio > volumeBreakout:
			set.emit(i, models.SignalVolumeBreakout, models.StrengthStrong, ratio)
		}
	}
	return set.signals()
}
