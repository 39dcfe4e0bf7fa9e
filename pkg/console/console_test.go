//go:build !(rp2040 || rp2350)

package console

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestNormalizeDefaults(t *testing.T) {
	opts, err := PortOptions{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, PortOptions{BaudRate: 115200, DataBits: 8, StopBits: 1, Parity: "N"}, opts)
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	for _, o := range []PortOptions{
		{DataBits: 9},
		{StopBits: 3},
		{Parity: "mark"},
	} {
		_, err := o.Normalize()
		assert.Error(t, err, "%+v", o)
	}
}

func TestSerialMode(t *testing.T) {
	mode, err := PortOptions{BaudRate: 9600, DataBits: 7, StopBits: 2, Parity: "even"}.SerialMode()
	require.NoError(t, err)
	assert.Equal(t, &serial.Mode{
		BaudRate: 9600,
		DataBits: 7,
		Parity:   serial.EvenParity,
		StopBits: serial.TwoStopBits,
	}, mode)

	mode, err = PortOptions{}.SerialMode()
	require.NoError(t, err)
	assert.Equal(t, serial.OneStopBit, mode.StopBits)
	assert.Equal(t, serial.NoParity, mode.Parity)
}

type fakePort struct {
	bytes.Buffer
	closed bool
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestOpenSerialUsesOpener(t *testing.T) {
	port := &fakePort{}
	var gotPath string
	var gotMode *serial.Mode
	old := portOpener
	portOpener = func(path string, mode *serial.Mode) (io.WriteCloser, error) {
		gotPath, gotMode = path, mode
		return port, nil
	}
	defer func() { portOpener = old }()

	w, err := Open(Options{Kind: KindSerial, Path: "/dev/ttyACM0"})
	require.NoError(t, err)
	_, err = io.WriteString(w, "{plotter:0,  250,10.50,20.25,1000}\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "/dev/ttyACM0", gotPath)
	assert.Equal(t, 115200, gotMode.BaudRate)
	assert.Equal(t, "{plotter:0,  250,10.50,20.25,1000}\n", port.String())
	assert.True(t, port.closed)
}

func TestOpenSerialError(t *testing.T) {
	old := portOpener
	portOpener = func(string, *serial.Mode) (io.WriteCloser, error) {
		return nil, errors.New("no such device")
	}
	defer func() { portOpener = old }()

	_, err := Open(Options{Kind: KindSerial, Path: "/dev/ttyNOPE"})
	assert.ErrorContains(t, err, "/dev/ttyNOPE")

	_, err = Open(Options{Kind: KindSerial})
	assert.Error(t, err)
}

func TestOpenStdoutAndUnknown(t *testing.T) {
	w, err := Open(Options{})
	require.NoError(t, err)
	assert.NoError(t, w.Close())

	_, err = Open(Options{Kind: "carrier-pigeon"})
	assert.Error(t, err)

	_, err = Open(Options{Kind: KindUART})
	assert.ErrorIs(t, err, errNoUART)
}
