package tofsensor

import (
	"tinygo.org/x/drivers/vl53l1x"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/rangingsensor"
)

// Sample is one reading as the driver reports it.
type Sample struct {
	DistanceMM int32
	Status     vl53l1x.RangeStatus
	// Rates in counts per second.
	SignalCps  int32
	AmbientCps int32
	// Effective SPAD count, 8.8 fixed point.
	SPADs uint16
}

// HasTarget is false when the sensor produced no range at all. Failed ranges still count as a
// target with a non-zero status.
func (s Sample) HasTarget() bool {
	return s.Status != vl53l1x.None && s.Status != vl53l1x.HardwareFail
}

// PerSPAD converts a rate in cps into kcps per SPAD.
func (s Sample) PerSPAD(cps int32) float32 {
	if s.SPADs == 0 {
		return 0
	}
	return float32(cps) / 1000 / (float32(s.SPADs) / 256)
}

// Fill writes the sample into slot 0 of z. The driver's status codes already follow the ST
// range status numbering, so 0 is a valid range.
func (s Sample) Fill(z *rangingsensor.ZoneResult, profile rangingsensor.ProfileConfig) {
	z.Reset()
	if !s.HasTarget() {
		z.Status[0] = int(s.Status)
		return
	}
	z.NumberOfTargets = 1
	z.Status[0] = int(s.Status)
	z.DistanceMM[0] = int(s.DistanceMM)
	if profile.EnableAmbient {
		z.AmbientKcpsPerSpad[0] = s.PerSPAD(s.AmbientCps)
	}
	if profile.EnableSignal {
		z.SignalKcpsPerSpad[0] = s.PerSPAD(s.SignalCps)
	}
}
