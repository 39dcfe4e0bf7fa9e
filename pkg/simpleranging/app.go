// Package simpleranging is the ranging demo's driver loop: bring the sensor up once, start
// continuous ranging and print every new measurement on the console.
package simpleranging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/button"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/clock"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/rangingsensor"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/report"
)

const (
	Banner         = "53L1A2 Simple Ranging demo application"
	InitFailedMsg  = "VL53L1A2_RANGING_SENSOR_Init failed"
	StartFailedMsg = "VL53L1A2_RANGING_SENSOR_Start failed"
	DefaultPeriod  = 30 * time.Millisecond
)

// Observer sees every successfully fetched result. It must not keep the pointer; the buffer
// is overwritten by the next fetch.
type Observer interface {
	Observe(result *rangingsensor.RangingResult)
}

type ObserverFunc func(result *rangingsensor.RangingResult)

func (f ObserverFunc) Observe(result *rangingsensor.RangingResult) { f(result) }

type Options struct {
	Device  rangingsensor.Interface
	Profile rangingsensor.ProfileConfig
	Policy  report.Policy

	// Console receives the banner, the failure lines and the records. Defaults to stdout.
	Console io.Writer
	// Period between polls. Defaults to DefaultPeriod.
	Period  time.Duration
	Sleeper clock.Sleeper
	Button  *button.Latch

	// StatsInterval, when non-zero, logs fetch statistics roughly this often.
	StatsInterval time.Duration
	Observers     []Observer
}

// FatalError is an init or start failure. The demo halts on it.
type FatalError struct {
	Msg string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

type App struct {
	opts     Options
	session  *rangingsensor.Session
	reporter *report.Reporter
	stats    report.Stats

	statsEvery int
	cycles     int
}

func New(opts Options) *App {
	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	if opts.Period <= 0 {
		opts.Period = DefaultPeriod
	}
	if opts.Sleeper == nil {
		opts.Sleeper = clock.Real{}
	}
	if opts.Button == nil {
		opts.Button = &button.Latch{}
	}
	a := &App{
		opts:     opts,
		session:  rangingsensor.NewSession(opts.Device),
		reporter: report.New(opts.Policy),
	}
	if opts.StatsInterval > 0 {
		a.statsEvery = max(1, int(opts.StatsInterval/opts.Period))
	}
	return a
}

func (a *App) Session() *rangingsensor.Session { return a.session }

func (a *App) Stats() report.Summary { return a.stats.Summary() }

// Init prints the banner and brings the sensor up.
func (a *App) Init() error {
	fmt.Fprintln(a.opts.Console, Banner)
	info, err := a.session.Initialize()
	if err != nil {
		fmt.Fprintln(a.opts.Console, InitFailedMsg)
		return &FatalError{Msg: InitFailedMsg, Err: err}
	}
	Logf("Sensor ID %#x, %d zone(s), up to %d target(s) per zone",
		info.ID, info.Capabilities.NumberOfZones, info.Capabilities.MaxNumberOfTargetsPerZone)
	return nil
}

// Process configures the profile, starts ranging and polls until ctx is done. It only
// returns early with a *FatalError if ranging cannot be started.
func (a *App) Process(ctx context.Context) error {
	if err := a.session.Configure(a.opts.Profile); err != nil {
		// The sensor keeps its default profile; carry on like the firmware does.
		Logf("Failed to configure profile %v: %v", a.opts.Profile.RangingProfile, err)
	}

	if err := a.session.Start(); err != nil {
		fmt.Fprintln(a.opts.Console, StartFailedMsg)
		return &FatalError{Msg: StartFailedMsg, Err: err}
	}
	defer func() {
		if err := a.session.Stop(); err != nil {
			Logf("Failed to stop ranging: %v", err)
		}
	}()

	for ctx.Err() == nil {
		a.Poll()
		a.opts.Sleeper.Sleep(a.opts.Period)
	}
	return ctx.Err()
}

// Poll runs one cycle of the loop without the delay.
func (a *App) Poll() {
	result, err := a.session.Fetch()
	switch {
	case err == nil:
		a.stats.Observe(result)
		if _, err := a.reporter.Emit(a.opts.Console, result, a.session.Profile()); err != nil {
			Logf("Failed to write record: %v", err)
		}
		for _, o := range a.opts.Observers {
			o.Observe(result)
		}
	case errors.Is(err, rangingsensor.ErrNotReady):
		a.stats.ObserveNotReady()
	default:
		a.stats.ObserveFault()
	}

	if a.opts.Button.Take() {
		Logf("Button pressed (%d so far)", a.opts.Button.Presses())
	}

	a.cycles++
	if a.statsEvery > 0 && a.cycles%a.statsEvery == 0 {
		Logf("Stats: %v", a.stats.Summary())
		a.stats.Reset()
	}
}
