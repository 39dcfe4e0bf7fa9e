//go:build rp2040 || rp2350

package console

import (
	"errors"
	"io"
)

var errNoSerial = errors.New("serial device console is not available on rp2040/rp2350 builds, use uart")

func openSerial(string, PortOptions) (io.WriteCloser, error) {
	return nil, errNoSerial
}
