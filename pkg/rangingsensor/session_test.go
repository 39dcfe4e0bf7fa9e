package rangingsensor

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/clock"
)

type fakeDevice struct {
	calls []string

	initErr, idErr, capsErr, configErr, startErr error
	distanceErrs                                 []error

	caps DeviceCapabilities
	fill func(*RangingResult)
}

func (f *fakeDevice) Init() error {
	f.calls = append(f.calls, "Init")
	return f.initErr
}

func (f *fakeDevice) ReadID() (uint32, error) {
	f.calls = append(f.calls, "ReadID")
	return 0xEACC, f.idErr
}

func (f *fakeDevice) GetCapabilities() (DeviceCapabilities, error) {
	f.calls = append(f.calls, "GetCapabilities")
	return f.caps, f.capsErr
}

func (f *fakeDevice) ConfigProfile(ProfileConfig) error {
	f.calls = append(f.calls, "ConfigProfile")
	return f.configErr
}

func (f *fakeDevice) Start(RangingMode) error {
	f.calls = append(f.calls, "Start")
	return f.startErr
}

func (f *fakeDevice) Stop() error {
	f.calls = append(f.calls, "Stop")
	return nil
}

func (f *fakeDevice) GetDistance(r *RangingResult) error {
	f.calls = append(f.calls, "GetDistance")
	if len(f.distanceErrs) > 0 {
		err := f.distanceErrs[0]
		f.distanceErrs = f.distanceErrs[1:]
		if err != nil {
			return err
		}
	}
	if f.fill != nil {
		f.fill(r)
	}
	return nil
}

func (f *fakeDevice) Close() error {
	f.calls = append(f.calls, "Close")
	return nil
}

func TestSessionHappyPath(t *testing.T) {
	dev := &fakeDevice{
		caps: DeviceCapabilities{NumberOfZones: 2, Profiles: []RangingProfile{ProfileMultiTargetLongRange}},
		fill: func(r *RangingResult) {
			r.Zones[0].NumberOfTargets = 1
			r.Zones[0].DistanceMM[0] = 250
		},
	}
	s := NewSession(dev)

	info, err := s.Initialize()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xEACC), info.ID)
	assert.Equal(t, StateInitialized, s.State())

	require.NoError(t, s.Configure(DefaultProfile()))
	assert.Equal(t, StateConfigured, s.State())

	require.NoError(t, s.Start())
	assert.Equal(t, StateRanging, s.State())

	res, err := s.Fetch()
	require.NoError(t, err)
	require.Len(t, res.Zones, 2)
	assert.Equal(t, 250, res.Zones[0].DistanceMM[0])

	assert.Equal(t, []string{"Init", "ReadID", "GetCapabilities", "ConfigProfile", "Start", "GetDistance"}, dev.calls)
}

func TestInitializeFailureIsInitError(t *testing.T) {
	cause := errors.New("bus fault")
	dev := &fakeDevice{initErr: cause}
	s := NewSession(dev)

	_, err := s.Initialize()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInit)
	assert.ErrorIs(t, err, cause)
	var ie *InitError
	assert.ErrorAs(t, err, &ie)
	assert.Equal(t, StateUninitialized, s.State())
	assert.Equal(t, []string{"Init"}, dev.calls)

	// Nothing else is allowed after a failed init.
	assert.ErrorIs(t, s.Configure(DefaultProfile()), ErrBadState)
	assert.ErrorIs(t, s.Start(), ErrBadState)
	_, err = s.Fetch()
	assert.ErrorIs(t, err, ErrBadState)
	assert.Equal(t, []string{"Init"}, dev.calls)
}

func TestCapabilitiesFailureIsInitError(t *testing.T) {
	dev := &fakeDevice{capsErr: errors.New("nack")}
	_, err := NewSession(dev).Initialize()
	assert.ErrorIs(t, err, ErrInit)
}

func TestReadIDFailureIsInitError(t *testing.T) {
	dev := &fakeDevice{idErr: errors.New("nack")}
	s := NewSession(dev)
	_, err := s.Initialize()
	assert.ErrorIs(t, err, ErrInit)
	assert.ErrorContains(t, err, "read id")
	assert.Equal(t, StateUninitialized, s.State())
}

func TestStartFailureIsStartError(t *testing.T) {
	dev := &fakeDevice{startErr: errors.New("timeout")}
	s := NewSession(dev)
	_, err := s.Initialize()
	require.NoError(t, err)
	require.NoError(t, s.Configure(DefaultProfile()))

	err = s.Start()
	assert.ErrorIs(t, err, ErrStart)
	assert.False(t, errors.Is(err, ErrInit))
	assert.Equal(t, StateConfigured, s.State())
}

func TestConfigureRejectsBadBudgetBeforeDevice(t *testing.T) {
	dev := &fakeDevice{}
	s := NewSession(dev)
	_, err := s.Initialize()
	require.NoError(t, err)

	p := DefaultProfile()
	p.TimingBudgetMs = 501
	assert.ErrorIs(t, s.Configure(p), ErrInvalidTimingBudget)
	assert.NotContains(t, dev.calls, "ConfigProfile")
	assert.Equal(t, StateInitialized, s.State())
}

func TestConfigureRejectsUnsupportedProfile(t *testing.T) {
	dev := &fakeDevice{caps: DeviceCapabilities{Profiles: []RangingProfile{ProfileSingleTargetShortRange}}}
	s := NewSession(dev)
	_, err := s.Initialize()
	require.NoError(t, err)
	assert.ErrorIs(t, s.Configure(DefaultProfile()), ErrUnsupportedProfile)
}

func TestConfigureDeviceErrorIsReturned(t *testing.T) {
	dev := &fakeDevice{configErr: errors.New("bad budget")}
	s := NewSession(dev)
	_, err := s.Initialize()
	require.NoError(t, err)
	assert.Error(t, s.Configure(DefaultProfile()))
	assert.Equal(t, StateInitialized, s.State())
}

func TestFetchErrorsAreClassified(t *testing.T) {
	devErr := errors.New("i2c nack")
	dev := &fakeDevice{distanceErrs: []error{ErrNotReady, devErr, nil}}
	s := NewSession(dev)
	_, err := s.Initialize()
	require.NoError(t, err)
	require.NoError(t, s.Configure(DefaultProfile()))
	require.NoError(t, s.Start())

	_, err = s.Fetch()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.False(t, errors.Is(err, ErrDevice))

	_, err = s.Fetch()
	assert.ErrorIs(t, err, ErrDevice)
	assert.ErrorIs(t, err, devErr)

	_, err = s.Fetch()
	assert.NoError(t, err)
}

func TestStopAndClose(t *testing.T) {
	dev := &fakeDevice{}
	s := NewSession(dev)
	_, err := s.Initialize()
	require.NoError(t, err)
	require.NoError(t, s.Configure(DefaultProfile()))
	require.NoError(t, s.Start())

	require.NoError(t, s.Close())
	assert.Equal(t, StateUninitialized, s.State())
	assert.Equal(t, []string{"Stop", "Close"}, dev.calls[len(dev.calls)-2:])
}

func TestDummySession(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	var trace bytes.Buffer
	s := NewSession(NewDummy(DummyConfig{Clock: c, Zones: 2, Log: &trace}))

	_, err := s.Initialize()
	require.NoError(t, err)
	require.NoError(t, s.Configure(DefaultProfile()))
	require.NoError(t, s.Start())

	_, err = s.Fetch()
	assert.ErrorIs(t, err, ErrNotReady, "no sample before one timing budget has passed")

	c.Advance(30 * time.Millisecond)
	res, err := s.Fetch()
	require.NoError(t, err)
	require.Len(t, res.Zones, 2)
	assert.True(t, res.Zones[0].Reportable())
	assert.Greater(t, res.Zones[0].DistanceMM[0], 0)

	_, err = s.Fetch()
	assert.ErrorIs(t, err, ErrNotReady, "the same sample is not returned twice")
	assert.Contains(t, trace.String(), "DRS: Init\n")
	assert.Contains(t, trace.String(), "DRS: Start mode=")
}

func TestSessionStartsAfterRejectedProfile(t *testing.T) {
	dev := &fakeDevice{configErr: errors.New("nack")}
	s := NewSession(dev)
	_, err := s.Initialize()
	require.NoError(t, err)

	assert.Error(t, s.Configure(DefaultProfile()))
	assert.Equal(t, StateInitialized, s.State())

	require.NoError(t, s.Start())
	assert.Equal(t, StateRanging, s.State())
}
