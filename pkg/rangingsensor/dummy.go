package rangingsensor

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/clock"
)

const (
	DummyID = 0xEACC

	// Status codes the dummy reports, matching the VL53L1X range status values.
	dummyStatusValid      = 0
	dummyStatusSignalFail = 2
)

type DummyConfig struct {
	Clock clock.Clock
	Zones int

	// The simulated target sweeps between MinMM and MaxMM and back over SweepPeriod.
	MinMM       int
	MaxMM       int
	SweepPeriod time.Duration

	// Distances beyond MaxRangeMM are reported as a signal failure with no target.
	MaxRangeMM int

	// Log receives the "DRS:" call trace. Defaults to stderr so it stays out of the records.
	Log io.Writer
}

// Dummy is a simulated ranging device. It produces one sample per timing budget (or per
// inter-measurement period, if longer) once started.
type Dummy struct {
	cfg DummyConfig

	inited  bool
	running bool
	profile ProfileConfig

	startedAt  time.Time
	nextSample time.Time
}

func NewDummy(cfg DummyConfig) *Dummy {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Zones <= 0 {
		cfg.Zones = 1
	}
	if cfg.MinMM <= 0 {
		cfg.MinMM = 100
	}
	if cfg.MaxMM <= cfg.MinMM {
		cfg.MaxMM = 2500
	}
	if cfg.SweepPeriod <= 0 {
		cfg.SweepPeriod = 4 * time.Second
	}
	if cfg.MaxRangeMM <= 0 {
		cfg.MaxRangeMM = 2000
	}
	if cfg.Log == nil {
		cfg.Log = os.Stderr
	}
	return &Dummy{cfg: cfg, profile: DefaultProfile()}
}

var _ Interface = (*Dummy)(nil)

func (d *Dummy) Init() error {
	fmt.Fprintln(d.cfg.Log, "DRS: Init")
	d.inited = true
	return nil
}

func (d *Dummy) ReadID() (uint32, error) {
	return DummyID, nil
}

func (d *Dummy) GetCapabilities() (DeviceCapabilities, error) {
	return DeviceCapabilities{
		NumberOfZones:             d.cfg.Zones,
		MaxNumberOfTargetsPerZone: MaxTargetsPerZone,
		Profiles: []RangingProfile{
			ProfileSingleTargetShortRange,
			ProfileSingleTargetLongRange,
			ProfileMultiTargetShortRange,
			ProfileMultiTargetMediumRange,
			ProfileMultiTargetLongRange,
		},
	}, nil
}

func (d *Dummy) ConfigProfile(profile ProfileConfig) error {
	fmt.Fprintf(d.cfg.Log, "DRS: ConfigProfile %v budget=%dms\n", profile.RangingProfile, profile.TimingBudgetMs)
	if d.running {
		return fmt.Errorf("dummy: cannot change profile while ranging")
	}
	d.profile = profile
	return nil
}

func (d *Dummy) Start(mode RangingMode) error {
	fmt.Fprintf(d.cfg.Log, "DRS: Start mode=%v\n", mode)
	if !d.inited {
		return fmt.Errorf("dummy: not initialised")
	}
	d.running = true
	d.startedAt = d.cfg.Clock.Now()
	d.nextSample = d.startedAt.Add(d.samplePeriod())
	return nil
}

func (d *Dummy) Stop() error {
	fmt.Fprintln(d.cfg.Log, "DRS: Stop")
	d.running = false
	return nil
}

func (d *Dummy) Close() error {
	d.running = false
	d.inited = false
	return nil
}

func (d *Dummy) samplePeriod() time.Duration {
	period := time.Duration(d.profile.TimingBudgetMs) * time.Millisecond
	if inter := time.Duration(d.profile.Frequency) * time.Millisecond; inter > period {
		period = inter
	}
	if period <= 0 {
		period = time.Millisecond
	}
	return period
}

func (d *Dummy) GetDistance(result *RangingResult) error {
	if !d.running {
		return fmt.Errorf("dummy: not ranging")
	}
	now := d.cfg.Clock.Now()
	if now.Before(d.nextSample) {
		return ErrNotReady
	}
	period := d.samplePeriod()
	for !d.nextSample.After(now) {
		d.nextSample = d.nextSample.Add(period)
	}

	result.Reset()
	elapsed := now.Sub(d.startedAt)
	for i := range result.Zones {
		d.fillZone(&result.Zones[i], elapsed, i)
	}
	return nil
}

func (d *Dummy) fillZone(z *ZoneResult, elapsed time.Duration, zone int) {
	// Each zone sees the same sweep, offset by a fraction of the period.
	phase := float64((elapsed+time.Duration(zone)*d.cfg.SweepPeriod/8)%d.cfg.SweepPeriod) /
		float64(d.cfg.SweepPeriod)
	tri := phase * 2
	if tri > 1 {
		tri = 2 - tri
	}
	mm := d.cfg.MinMM + int(tri*float64(d.cfg.MaxMM-d.cfg.MinMM))

	if mm > d.cfg.MaxRangeMM {
		z.NumberOfTargets = 0
		z.Status[0] = dummyStatusSignalFail
		return
	}

	z.NumberOfTargets = 1
	z.Status[0] = dummyStatusValid
	z.DistanceMM[0] = mm
	if d.profile.EnableAmbient {
		z.AmbientKcpsPerSpad[0] = 0.25 + float32(zone)*0.05
	}
	if d.profile.EnableSignal {
		// Return signal falls off with the square of distance.
		z.SignalKcpsPerSpad[0] = float32(4.0e6 / float64(mm*mm))
	}
}
