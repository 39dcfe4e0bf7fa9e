// Package button turns user button edges into a single-slot event the polling loop can
// check once per cycle.
package button

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"periph.io/x/periph/conn/gpio"
)

// Latch holds at most one pending press. Presses that arrive before the previous one was
// taken are merged into it.
type Latch struct {
	pending atomic.Bool
	presses atomic.Uint64
}

// Set records a press. It is safe to call from the edge watcher goroutine.
func (l *Latch) Set() {
	l.presses.Add(1)
	l.pending.Store(true)
}

// Take reports whether a press is pending and clears it.
func (l *Latch) Take() bool {
	return l.pending.Swap(false)
}

// Presses is the number of presses seen since start, including merged ones.
func (l *Latch) Presses() uint64 {
	return l.presses.Load()
}

// pollTimeout bounds each wait so cancellation is noticed.
const pollTimeout = 100 * time.Millisecond

// Watch configures pin as a pulled-up input and sets the latch on every falling edge
// until ctx is done. The button on the board pulls the line low when pressed.
func Watch(ctx context.Context, pin gpio.PinIn, latch *Latch) error {
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return fmt.Errorf("failed to configure button pin %s: %w", pin.Name(), err)
	}
	defer func() {
		_ = pin.In(gpio.PullUp, gpio.NoEdge)
	}()
	for ctx.Err() == nil {
		if pin.WaitForEdge(pollTimeout) {
			latch.Set()
		}
	}
	return ctx.Err()
}
