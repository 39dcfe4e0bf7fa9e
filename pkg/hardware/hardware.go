package hardware

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/button"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/console"
)

// DefaultI2CSpeed is the fast-mode rate the sensor supports.
const DefaultI2CSpeed = 400 * physic.KiloHertz

type Options struct {
	// I2CBus is the periph bus name; empty picks the first bus.
	I2CBus   string
	I2CSpeed physic.Frequency

	// ButtonPin is a periph GPIO name. Empty disables the button.
	ButtonPin string

	Console console.Options
}

type Hardware struct {
	bus     i2c.BusCloser
	console io.WriteCloser
	button  gpio.PinIn
	latch   button.Latch

	cancel context.CancelFunc
	done   sync.WaitGroup
}

var _ Interface = (*Hardware)(nil)

func New(opts Options) (*Hardware, error) {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialise periph")
	}

	bus, err := i2creg.Open(opts.I2CBus)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open I2C bus %q", opts.I2CBus)
	}
	speed := opts.I2CSpeed
	if speed == 0 {
		speed = DefaultI2CSpeed
	}
	if err := bus.SetSpeed(speed); err != nil {
		// Not every bus driver can change speed; carry on at the default.
		fmt.Println("HW: Failed to set I2C speed: ", err)
	}

	var pin gpio.PinIn
	if opts.ButtonPin != "" {
		p := gpioreg.ByName(opts.ButtonPin)
		if p == nil {
			_ = bus.Close()
			return nil, errors.Errorf("unknown button GPIO %q", opts.ButtonPin)
		}
		pin = p
	}

	con, err := console.Open(opts.Console)
	if err != nil {
		_ = bus.Close()
		return nil, errors.Wrap(err, "failed to open console")
	}
	return newHardware(bus, con, pin), nil
}

func newHardware(bus i2c.BusCloser, con io.WriteCloser, pin gpio.PinIn) *Hardware {
	return &Hardware{
		bus:     bus,
		console: con,
		button:  pin,
	}
}

func (h *Hardware) Start(ctx context.Context) {
	if h.button == nil {
		return
	}
	ctx, h.cancel = context.WithCancel(ctx)
	h.done.Add(1)
	go func() {
		defer h.done.Done()
		err := button.Watch(ctx, h.button, &h.latch)
		if err != nil && ctx.Err() == nil {
			fmt.Println("HW: Button watcher failed: ", err)
		}
	}()
}

func (h *Hardware) I2CBus() i2c.Bus { return h.bus }

func (h *Hardware) Console() io.Writer { return h.console }

func (h *Hardware) Button() *button.Latch { return &h.latch }

func (h *Hardware) Close() error {
	if h.cancel != nil {
		fmt.Println("HW: Stopping button watcher")
		h.cancel()
		h.done.Wait()
		h.cancel = nil
	}
	var firstErr error
	if err := h.console.Close(); err != nil {
		firstErr = errors.Wrap(err, "failed to close console")
	}
	if err := h.bus.Close(); err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "failed to close I2C bus")
	}
	return firstErr
}
