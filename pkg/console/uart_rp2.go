//go:build rp2040 || rp2350

package console

import (
	"fmt"
	"io"
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"
)

type uartConsole struct{ u *uartx.UART }

func (c uartConsole) Write(b []byte) (int, error) { return c.u.Write(b) }

func (c uartConsole) Close() error { return nil }

func openUART(opts Options) (io.WriteCloser, error) {
	var hw *uartx.UART
	switch opts.Path {
	case "", "uart0":
		hw = uartx.UART0
	case "uart1":
		hw = uartx.UART1
	default:
		return nil, fmt.Errorf("unknown uart %q", opts.Path)
	}

	port, err := opts.Port.Normalize()
	if err != nil {
		return nil, err
	}
	// Defaults inside uartx apply to zero pins.
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: uint32(port.BaudRate),
		TX:       machine.Pin(opts.TXPin),
		RX:       machine.Pin(opts.RXPin),
	}); err != nil {
		return nil, err
	}

	var parity uartx.UARTParity
	switch port.Parity {
	case "E":
		parity = uartx.ParityEven
	case "O":
		parity = uartx.ParityOdd
	default:
		parity = uartx.ParityNone
	}
	if err := hw.SetFormat(uint8(port.DataBits), uint8(port.StopBits), parity); err != nil {
		return nil, err
	}
	return uartConsole{u: hw}, nil
}
