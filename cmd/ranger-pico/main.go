//go:build rp2040 || rp2350

// ranger-pico is the firmware build of the ranging demo: the sensor on i2c0, records on
// uart0 and the user button on an interrupt.
package main

import (
	"context"
	"machine"
	"time"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/button"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/clock"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/console"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/rangingsensor"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/simpleranging"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/tofsensor"
)

const (
	buttonPin = machine.GP15
	use2v8    = true
)

func main() {
	// Give the USB console time to enumerate so the boot lines are not lost.
	time.Sleep(1500 * time.Millisecond)
	println("[ranger] boot")

	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		println("[ranger] i2c0 configure failed:", err.Error())
		halt()
	}

	out, err := console.Open(console.Options{
		Kind:  console.KindUART,
		Path:  "uart0",
		TXPin: int(machine.UART0_TX_PIN),
		RXPin: int(machine.UART0_RX_PIN),
	})
	if err != nil {
		println("[ranger] uart0 open failed:", err.Error())
		halt()
	}

	var latch button.Latch
	buttonPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	if err := buttonPin.SetInterrupt(machine.PinFalling, func(machine.Pin) { latch.Set() }); err != nil {
		println("[ranger] button irq failed:", err.Error())
	}

	app := simpleranging.New(simpleranging.Options{
		Device:  tofsensor.New(bus, tofsensor.TOFAddr, use2v8),
		Profile: rangingsensor.DefaultProfile(),
		Console: out,
		Sleeper: clock.Real{},
		Button:  &latch,
	})
	if err := app.Init(); err != nil {
		halt()
	}
	// Only a start failure gets us out of Process; the context is never cancelled.
	_ = app.Process(context.Background())
	halt()
}

func halt() {
	for {
		time.Sleep(time.Hour)
	}
}
