//go:build !(rp2040 || rp2350)

package console

import (
	"errors"
	"io"
)

var errNoUART = errors.New("uart console is only available on rp2040/rp2350 builds")

func openUART(Options) (io.WriteCloser, error) {
	return nil, errNoUART
}
