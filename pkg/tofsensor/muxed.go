package tofsensor

import (
	"tinygo.org/x/drivers"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/mux"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/rangingsensor"
)

// MuxedTOFSensor selects its mux port before every call so that several sensors can share
// one address.
type MuxedTOFSensor struct {
	Port int
	tof  rangingsensor.Interface
	mux  mux.Interface
}

var _ rangingsensor.Interface = (*MuxedTOFSensor)(nil)

func NewMuxed(bus drivers.I2C, addr uint16, use2v8 bool, m mux.Interface, muxPort int) (*MuxedTOFSensor, error) {
	if err := m.SelectSinglePort(muxPort); err != nil {
		return nil, err
	}
	return Muxed(New(bus, addr, use2v8), m, muxPort), nil
}

// Muxed wraps an existing device.
func Muxed(tof rangingsensor.Interface, m mux.Interface, muxPort int) *MuxedTOFSensor {
	return &MuxedTOFSensor{
		Port: muxPort,
		tof:  tof,
		mux:  m,
	}
}

func (m *MuxedTOFSensor) Init() error {
	if err := m.mux.SelectSinglePort(m.Port); err != nil {
		return err
	}
	return m.tof.Init()
}

func (m *MuxedTOFSensor) ReadID() (uint32, error) {
	if err := m.mux.SelectSinglePort(m.Port); err != nil {
		return 0, err
	}
	return m.tof.ReadID()
}

func (m *MuxedTOFSensor) GetCapabilities() (rangingsensor.DeviceCapabilities, error) {
	return m.tof.GetCapabilities()
}

func (m *MuxedTOFSensor) ConfigProfile(profile rangingsensor.ProfileConfig) error {
	if err := m.mux.SelectSinglePort(m.Port); err != nil {
		return err
	}
	return m.tof.ConfigProfile(profile)
}

func (m *MuxedTOFSensor) Start(mode rangingsensor.RangingMode) error {
	if err := m.mux.SelectSinglePort(m.Port); err != nil {
		return err
	}
	return m.tof.Start(mode)
}

func (m *MuxedTOFSensor) Stop() error {
	if err := m.mux.SelectSinglePort(m.Port); err != nil {
		return err
	}
	return m.tof.Stop()
}

func (m *MuxedTOFSensor) GetDistance(result *rangingsensor.RangingResult) error {
	if err := m.mux.SelectSinglePort(m.Port); err != nil {
		return err
	}
	return m.tof.GetDistance(result)
}

func (m *MuxedTOFSensor) Close() error {
	if err := m.mux.SelectSinglePort(m.Port); err != nil {
		return err
	}
	return m.tof.Close()
}
