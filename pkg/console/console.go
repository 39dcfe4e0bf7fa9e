// Package console opens the line-oriented text sink that ranging records are printed to.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
)

type Kind string

const (
	KindStdout Kind = "stdout"
	KindSerial Kind = "serial"
	// KindUART is the MCU's own UART; only available in TinyGo builds for RP2040/RP2350.
	KindUART Kind = "uart"
)

type Options struct {
	Kind Kind
	// Path of the serial device for KindSerial, or "uart0"/"uart1" for KindUART.
	Path string
	Port PortOptions

	// UART pins for KindUART.
	TXPin, RXPin int
}

// Open returns the writer records should go to. Closing it releases the underlying port;
// closing the stdout console is a no-op.
func Open(opts Options) (io.WriteCloser, error) {
	switch Kind(strings.ToLower(string(opts.Kind))) {
	case "", KindStdout:
		return nopCloser{os.Stdout}, nil
	case KindSerial:
		if opts.Path == "" {
			return nil, fmt.Errorf("serial console needs a device path")
		}
		return openSerial(opts.Path, opts.Port)
	case KindUART:
		return openUART(opts)
	}
	return nil, fmt.Errorf("unknown console kind %q", opts.Kind)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
