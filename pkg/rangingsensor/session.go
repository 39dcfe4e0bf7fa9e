package rangingsensor

import (
	"fmt"

	"github.com/pkg/errors"
)

type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateConfigured
	StateRanging
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateConfigured:
		return "configured"
	case StateRanging:
		return "ranging"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Session owns one ranging device from acquisition to continuous ranging.
// It is not safe for concurrent use; the polling loop is its only caller.
type Session struct {
	dev Interface

	state   State
	info    DeviceInfo
	profile ProfileConfig
	result  *RangingResult
}

func NewSession(dev Interface) *Session {
	return &Session{dev: dev}
}

func (s *Session) State() State { return s.state }

func (s *Session) Info() DeviceInfo { return s.info }

func (s *Session) Profile() ProfileConfig { return s.profile }

// Initialize acquires the device, reads its ID and capabilities and allocates the result buffer.
// Any failure is an *InitError, including a failed ID or capabilities read, which the
// firmware demo ignores; the result buffer cannot be sized without the capabilities.
func (s *Session) Initialize() (DeviceInfo, error) {
	if s.state != StateUninitialized {
		return DeviceInfo{}, errors.Wrapf(ErrBadState, "initialize in state %v", s.state)
	}
	if err := s.dev.Init(); err != nil {
		return DeviceInfo{}, &InitError{Err: err}
	}
	id, err := s.dev.ReadID()
	if err != nil {
		return DeviceInfo{}, &InitError{Err: errors.Wrap(err, "read id")}
	}
	caps, err := s.dev.GetCapabilities()
	if err != nil {
		return DeviceInfo{}, &InitError{Err: errors.Wrap(err, "get capabilities")}
	}

	s.info = DeviceInfo{ID: id, Capabilities: caps}
	s.result = NewRangingResult(caps.NumberOfZones)
	s.state = StateInitialized
	return s.info, nil
}

// Configure validates and applies the profile. It may be called again before Start.
func (s *Session) Configure(profile ProfileConfig) error {
	if s.state != StateInitialized && s.state != StateConfigured {
		return errors.Wrapf(ErrBadState, "configure in state %v", s.state)
	}
	if err := profile.Validate(); err != nil {
		return err
	}
	if len(s.info.Capabilities.Profiles) > 0 && !s.info.Capabilities.Supports(profile.RangingProfile) {
		return errors.Wrapf(ErrUnsupportedProfile, "%v", profile.RangingProfile)
	}
	if err := s.dev.ConfigProfile(profile); err != nil {
		return errors.Wrap(err, "config profile")
	}
	s.profile = profile
	s.state = StateConfigured
	return nil
}

// Start begins asynchronous continuous ranging. Starting from Initialized ranges with the
// device's own default profile, as when Configure was rejected. Any device failure is a
// *StartError.
func (s *Session) Start() error {
	if s.state != StateInitialized && s.state != StateConfigured {
		return errors.Wrapf(ErrBadState, "start in state %v", s.state)
	}
	if err := s.dev.Start(ModeAsyncContinuous); err != nil {
		return &StartError{Err: err}
	}
	s.state = StateRanging
	return nil
}

// Fetch reads the latest measurement into the session's buffer. The returned result is
// overwritten by the next successful Fetch.
func (s *Session) Fetch() (*RangingResult, error) {
	if s.state != StateRanging {
		return nil, errors.Wrapf(ErrBadState, "fetch in state %v", s.state)
	}
	err := s.dev.GetDistance(s.result)
	if err == nil {
		return s.result, nil
	}
	if errors.Is(err, ErrNotReady) {
		return nil, &FetchError{Kind: FetchNotReady}
	}
	return nil, &FetchError{Kind: FetchDevice, Err: err}
}

// Stop ends continuous ranging; the profile is kept so Start can be called again.
func (s *Session) Stop() error {
	if s.state != StateRanging {
		return nil
	}
	if err := s.dev.Stop(); err != nil {
		return errors.Wrap(err, "stop ranging")
	}
	s.state = StateConfigured
	return nil
}

func (s *Session) Close() error {
	stopErr := s.Stop()
	closeErr := s.dev.Close()
	s.state = StateUninitialized
	if stopErr != nil {
		return stopErr
	}
	return closeErr
}
