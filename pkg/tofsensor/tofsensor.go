package tofsensor

import (
	"fmt"

	"github.com/pkg/errors"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/vl53l1x"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/rangingsensor"
)

const (
	TOFAddr = vl53l1x.Address

	// Register addresses the driver doesn't expose.
	regWhoAmI   = 0x010F
	regGPIOStat = 0x0031

	// Driver timeout for blocking reads, in ms.
	readTimeoutMs = 500
)

var (
	ErrI2CInitFailed  = errors.New("I2C init failed")
	ErrDataInitFailed = errors.New("data init failed")
	ErrConfigFailed   = errors.New("profile config failed")
)

// VL53L1X drives a single VL53L1X over the tinygo driver. It reports one zone with at most one
// target.
type VL53L1X struct {
	bus     *errBus
	dev     vl53l1x.Device
	use2v8  bool
	profile rangingsensor.ProfileConfig

	running bool
	oneShot bool
	block   bool
}

var _ rangingsensor.Interface = (*VL53L1X)(nil)

func New(bus drivers.I2C, addr uint16, use2v8 bool) *VL53L1X {
	eb := &errBus{bus: bus}
	t := &VL53L1X{
		bus:    eb,
		dev:    vl53l1x.New(eb),
		use2v8: use2v8,
	}
	if addr != 0 {
		t.dev.Address = addr
	}
	t.dev.SetTimeout(readTimeoutMs)
	return t
}

func (t *VL53L1X) Init() error {
	t.bus.take()
	if !t.dev.Connected() {
		if err := t.bus.take(); err != nil {
			return errors.Wrap(ErrI2CInitFailed, err.Error())
		}
		return ErrI2CInitFailed
	}
	if !t.dev.Configure(t.use2v8) {
		fmt.Println("VL53L1X Configure failed")
		return ErrDataInitFailed
	}
	if err := t.bus.take(); err != nil {
		return errors.Wrap(ErrDataInitFailed, err.Error())
	}
	return nil
}

func (t *VL53L1X) ReadID() (uint32, error) {
	var buf [2]byte
	if err := t.bus.Tx(t.dev.Address, []byte{regWhoAmI >> 8, regWhoAmI & 0xFF}, buf[:]); err != nil {
		t.bus.take()
		return 0, errors.Wrap(err, "failed to read sensor ID")
	}
	return uint32(buf[0])<<8 | uint32(buf[1]), nil
}

func (t *VL53L1X) GetCapabilities() (rangingsensor.DeviceCapabilities, error) {
	return rangingsensor.DeviceCapabilities{
		NumberOfZones:             1,
		MaxNumberOfTargetsPerZone: 1,
		CustomROI:                 true,
		Profiles: []rangingsensor.RangingProfile{
			rangingsensor.ProfileSingleTargetShortRange,
			rangingsensor.ProfileSingleTargetLongRange,
			rangingsensor.ProfileMultiTargetShortRange,
			rangingsensor.ProfileMultiTargetMediumRange,
			rangingsensor.ProfileMultiTargetLongRange,
		},
	}, nil
}

// DistanceMode maps a ranging profile onto the sensor's distance mode. Multi-target profiles
// still range a single target on this part.
func DistanceMode(p rangingsensor.RangingProfile) (vl53l1x.DistanceMode, bool) {
	switch p {
	case rangingsensor.ProfileSingleTargetShortRange, rangingsensor.ProfileMultiTargetShortRange:
		return vl53l1x.SHORT, true
	case rangingsensor.ProfileMultiTargetMediumRange:
		return vl53l1x.MEDIUM, true
	case rangingsensor.ProfileSingleTargetLongRange, rangingsensor.ProfileMultiTargetLongRange:
		return vl53l1x.LONG, true
	}
	return 0, false
}

func (t *VL53L1X) ConfigProfile(profile rangingsensor.ProfileConfig) error {
	mode, ok := DistanceMode(profile.RangingProfile)
	if !ok {
		return rangingsensor.ErrUnsupportedProfile
	}
	if !t.dev.SetDistanceMode(mode) {
		return errors.Wrapf(ErrConfigFailed, "distance mode %v", profile.RangingProfile)
	}
	if !t.dev.SetMeasurementTimingBudget(uint32(profile.TimingBudgetMs) * 1000) {
		return errors.Wrapf(ErrConfigFailed, "timing budget %dms", profile.TimingBudgetMs)
	}
	if err := t.bus.take(); err != nil {
		return errors.Wrap(ErrConfigFailed, err.Error())
	}
	t.profile = profile
	return nil
}

// intermeasurementMs is the continuous-mode period: Frequency when set, otherwise back to
// back at the timing budget.
func intermeasurementMs(p rangingsensor.ProfileConfig) uint32 {
	if p.Frequency > p.TimingBudgetMs {
		return uint32(p.Frequency)
	}
	return uint32(p.TimingBudgetMs)
}

func (t *VL53L1X) Start(mode rangingsensor.RangingMode) error {
	switch mode {
	case rangingsensor.ModeBlockingContinuous, rangingsensor.ModeAsyncContinuous,
		rangingsensor.ModeBlockingOneShot, rangingsensor.ModeAsyncOneShot:
	default:
		return errors.Errorf("unknown ranging mode %v", mode)
	}
	t.dev.StartContinuous(intermeasurementMs(t.profile))
	if err := t.bus.take(); err != nil {
		return errors.Wrap(err, "failed to start ranging")
	}
	t.running = true
	t.oneShot = mode == rangingsensor.ModeBlockingOneShot || mode == rangingsensor.ModeAsyncOneShot
	t.block = mode == rangingsensor.ModeBlockingContinuous || mode == rangingsensor.ModeBlockingOneShot
	return nil
}

func (t *VL53L1X) Stop() error {
	if !t.running {
		return nil
	}
	t.dev.StopContinuous()
	t.running = false
	return t.bus.take()
}

func (t *VL53L1X) dataReady() (bool, error) {
	var buf [1]byte
	if err := t.bus.Tx(t.dev.Address, []byte{regGPIOStat >> 8, regGPIOStat & 0xFF}, buf[:]); err != nil {
		t.bus.take()
		return false, err
	}
	// Interrupt is active low.
	return buf[0]&0x01 == 0, nil
}

func (t *VL53L1X) GetDistance(result *rangingsensor.RangingResult) error {
	if !t.running {
		return rangingsensor.ErrBadState
	}
	if len(result.Zones) == 0 {
		return errors.New("result buffer has no zones")
	}
	if !t.block {
		ready, err := t.dataReady()
		if err != nil {
			return errors.Wrap(rangingsensor.ErrDevice, err.Error())
		}
		if !ready {
			return rangingsensor.ErrNotReady
		}
	}
	t.dev.Read(t.block)
	if err := t.bus.take(); err != nil {
		return errors.Wrap(rangingsensor.ErrDevice, err.Error())
	}

	s := Sample{
		DistanceMM: t.dev.Distance(),
		Status:     t.dev.Status(),
		SignalCps:  t.dev.SignalRate(),
		AmbientCps: t.dev.AmbientRate(),
		SPADs:      t.dev.EffectiveSPADCount(),
	}
	result.Reset()
	s.Fill(&result.Zones[0], t.profile)

	if t.oneShot {
		return t.Stop()
	}
	return nil
}

func (t *VL53L1X) Close() error {
	return t.Stop()
}

// errBus remembers the first I2C error since the last take. The driver drops them.
type errBus struct {
	bus drivers.I2C
	err error
}

func (b *errBus) Tx(addr uint16, w, r []byte) error {
	err := b.bus.Tx(addr, w, r)
	if err != nil && b.err == nil {
		b.err = err
	}
	return err
}

func (b *errBus) take() error {
	err := b.err
	b.err = nil
	return err
}
