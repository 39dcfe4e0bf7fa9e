package rangingsensor

import (
	"fmt"
	"strings"
)

const (
	// MaxTargetsPerZone is the number of target slots carried per zone, whatever the
	// device actually reports.
	MaxTargetsPerZone = 4

	MinTimingBudgetMs = 16
	MaxTimingBudgetMs = 500
)

type RangingProfile int

const (
	ProfileSingleTargetShortRange RangingProfile = iota + 1
	ProfileSingleTargetLongRange
	ProfileMultiTargetShortRange
	ProfileMultiTargetMediumRange
	ProfileMultiTargetLongRange
)

var profileNames = map[RangingProfile]string{
	ProfileSingleTargetShortRange: "single-target-short-range",
	ProfileSingleTargetLongRange:  "single-target-long-range",
	ProfileMultiTargetShortRange:  "multi-target-short-range",
	ProfileMultiTargetMediumRange: "multi-target-medium-range",
	ProfileMultiTargetLongRange:   "multi-target-long-range",
}

func (p RangingProfile) String() string {
	if name, ok := profileNames[p]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(p))
}

func (p RangingProfile) Valid() bool {
	_, ok := profileNames[p]
	return ok
}

// MultiTarget reports whether the profile asks the device for more than one target per zone.
func (p RangingProfile) MultiTarget() bool {
	switch p {
	case ProfileMultiTargetShortRange, ProfileMultiTargetMediumRange, ProfileMultiTargetLongRange:
		return true
	}
	return false
}

func ParseRangingProfile(s string) (RangingProfile, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range profileNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown profile %q", ErrInvalidProfile, s)
}

func (p RangingProfile) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("unknown ranging profile %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *RangingProfile) UnmarshalText(text []byte) error {
	parsed, err := ParseRangingProfile(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

type RangingMode int

const (
	ModeBlockingContinuous RangingMode = iota + 1
	ModeAsyncContinuous
	ModeBlockingOneShot
	ModeAsyncOneShot
)

func (m RangingMode) String() string {
	switch m {
	case ModeBlockingContinuous:
		return "blocking-continuous"
	case ModeAsyncContinuous:
		return "async-continuous"
	case ModeBlockingOneShot:
		return "blocking-one-shot"
	case ModeAsyncOneShot:
		return "async-one-shot"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ProfileConfig is fixed before ranging starts and must not change while the device is ranging.
type ProfileConfig struct {
	RangingProfile RangingProfile
	TimingBudgetMs int
	// Frequency induces an inter-measurement period; 0 means free-running.
	Frequency     int
	EnableAmbient bool
	EnableSignal  bool
}

// DefaultProfile is the profile the demo ranges with.
func DefaultProfile() ProfileConfig {
	return ProfileConfig{
		RangingProfile: ProfileMultiTargetLongRange,
		TimingBudgetMs: 30,
		Frequency:      0,
		EnableAmbient:  true,
		EnableSignal:   true,
	}
}

// Validate checks the profile against the driver's documented bounds.
// Both ends of the timing budget range are accepted.
func (p ProfileConfig) Validate() error {
	if !p.RangingProfile.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidProfile, int(p.RangingProfile))
	}
	if p.TimingBudgetMs < MinTimingBudgetMs || p.TimingBudgetMs > MaxTimingBudgetMs {
		return fmt.Errorf("%w: %d ms not in [%d, %d]",
			ErrInvalidTimingBudget, p.TimingBudgetMs, MinTimingBudgetMs, MaxTimingBudgetMs)
	}
	if p.Frequency < 0 {
		return fmt.Errorf("%w: frequency %d", ErrInvalidProfile, p.Frequency)
	}
	return nil
}

// ZoneResult is one zone of a measurement. Only the first NumberOfTargets slots are meaningful.
type ZoneResult struct {
	NumberOfTargets    int
	Status             [MaxTargetsPerZone]int
	DistanceMM         [MaxTargetsPerZone]int
	AmbientKcpsPerSpad [MaxTargetsPerZone]float32
	SignalKcpsPerSpad  [MaxTargetsPerZone]float32
}

// Reportable is true when the first target slot holds a valid measurement.
func (z *ZoneResult) Reportable() bool {
	return z.Status[0] == 0 && z.NumberOfTargets > 0
}

func (z *ZoneResult) Reset() {
	*z = ZoneResult{}
}

// RangingResult is a reusable measurement buffer, overwritten by every fetch.
type RangingResult struct {
	Zones []ZoneResult
}

func NewRangingResult(zones int) *RangingResult {
	if zones < 1 {
		zones = 1
	}
	return &RangingResult{Zones: make([]ZoneResult, zones)}
}

func (r *RangingResult) Reset() {
	for i := range r.Zones {
		r.Zones[i].Reset()
	}
}

type DeviceCapabilities struct {
	NumberOfZones             int
	MaxNumberOfTargetsPerZone int
	CustomROI                 bool
	ThresholdDetection        bool
	Profiles                  []RangingProfile
}

func (c DeviceCapabilities) Supports(p RangingProfile) bool {
	for _, s := range c.Profiles {
		if s == p {
			return true
		}
	}
	return false
}

// DeviceInfo is what the session learns about the device during initialisation.
type DeviceInfo struct {
	ID           uint32
	Capabilities DeviceCapabilities
}
