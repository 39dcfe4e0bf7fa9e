//go:build !(rp2040 || rp2350)

package console

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// SerialMode converts the options into the mode go.bug.st/serial opens ports with.
func (o PortOptions) SerialMode() (*serial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	}
	if opts.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}
	switch opts.Parity {
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	}
	return mode, nil
}

// portOpener is replaced in tests.
var portOpener = func(path string, mode *serial.Mode) (io.WriteCloser, error) {
	return serial.Open(path, mode)
}

func openSerial(path string, opts PortOptions) (io.WriteCloser, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}
	port, err := portOpener(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial console %s: %w", path, err)
	}
	return port, nil
}
