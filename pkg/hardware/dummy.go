package hardware

import (
	"context"
	"fmt"
	"io"
	"os"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/physic"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/button"
)

// Dummy stands in for the board on a development machine. Bus traffic is printed and reads
// return zeros.
type Dummy struct {
	out   io.Writer
	log   io.Writer
	latch button.Latch
}

// NewDummy prints records to out, or stdout if out is nil. Its own trace goes to stderr.
func NewDummy(out io.Writer) *Dummy {
	if out == nil {
		out = os.Stdout
	}
	return &Dummy{out: out, log: os.Stderr}
}

func (d *Dummy) Start(ctx context.Context) {
	fmt.Fprintln(d.log, "DHW: Start")
}

func (d *Dummy) I2CBus() i2c.Bus {
	return dummyBus{log: d.log}
}

func (d *Dummy) Console() io.Writer {
	return d.out
}

func (d *Dummy) Button() *button.Latch {
	return &d.latch
}

func (d *Dummy) Close() error {
	fmt.Fprintln(d.log, "DHW: Close")
	return nil
}

var _ Interface = (*Dummy)(nil)

type dummyBus struct {
	log io.Writer
}

func (dummyBus) String() string { return "dummy-i2c" }

func (b dummyBus) Tx(addr uint16, w, r []byte) error {
	fmt.Fprintf(b.log, "DHW: I2C tx addr=%#x w=%x r=%d\n", addr, w, len(r))
	for i := range r {
		r[i] = 0
	}
	return nil
}

func (b dummyBus) SetSpeed(f physic.Frequency) error {
	fmt.Fprintf(b.log, "DHW: I2C speed=%s\n", f)
	return nil
}
