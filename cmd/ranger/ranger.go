package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/clock"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/config"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/mux"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/rangingsensor"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/screen"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/simpleranging"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/tofsensor"
)

var CLI struct {
	Config string `help:"YAML config file." default:"/cfg/ranger.yaml" type:"path"`
	Dummy  bool   `help:"Use the simulated board and sensor."`

	Run  RunCmd  `cmd:"" default:"1" help:"Range continuously and print a record per measurement."`
	Info InfoCmd `cmd:"" help:"Print the sensor ID and capabilities."`
}

type Context struct {
	cfg        *config.Config
	configPath string
	dummy      bool
}

type RunCmd struct {
	Policy     string `help:"Record format, plotter or verbose. Overrides the config."`
	OnFatal    string `name:"on-fatal" help:"What to do when the sensor cannot be initialised or started." enum:"halt,exit" default:"halt"`
	WriteInUse bool   `help:"Write the effective config next to the config file."`
}

func (r *RunCmd) Run(c *Context) error {
	cfg := c.cfg
	if r.Policy != "" {
		cfg.Polling.Policy = r.Policy
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}
	profile, err := cfg.RangingProfile()
	if err != nil {
		return err
	}
	policy, err := cfg.ReportPolicy()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Using config: %#v\n", *cfg)
	if r.WriteInUse {
		if err := cfg.WriteInUse(c.configPath); err != nil {
			log.Println("Failed to write in-use config: ", err)
		}
	}

	// Our global context, we cancel it to trigger shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	registerSignalHandlers(cancel)

	hw, err := openBoard(c)
	if err != nil {
		return err
	}
	defer func() {
		if err := hw.Close(); err != nil {
			log.Println("Failed to shut down board: ", err)
		}
	}()
	hw.Start(ctx)

	dev, err := openDevice(c, hw)
	if err != nil {
		return err
	}

	var observers []simpleranging.Observer
	if cfg.Screen.Enabled {
		s := screen.New()
		go s.LoopUpdatingScreen(ctx, cfg.Screen.Framebuffer)
		observers = append(observers, s)
	}

	app := simpleranging.New(simpleranging.Options{
		Device:        dev,
		Profile:       profile,
		Policy:        policy,
		Console:       hw.Console(),
		Period:        cfg.PollingPeriod(),
		Sleeper:       clock.Real{},
		Button:        hw.Button(),
		StatsInterval: cfg.StatsInterval(),
		Observers:     observers,
	})
	defer func() {
		if err := app.Session().Close(); err != nil {
			log.Println("Failed to close sensor: ", err)
		}
	}()

	if err := app.Init(); err != nil {
		return onFatal(ctx, r.OnFatal, err)
	}
	err = app.Process(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return onFatal(ctx, r.OnFatal, err)
}

type InfoCmd struct{}

func (i *InfoCmd) Run(c *Context) error {
	hw, err := openBoard(c)
	if err != nil {
		return err
	}
	defer hw.Close()

	dev, err := openDevice(c, hw)
	if err != nil {
		return err
	}
	session := rangingsensor.NewSession(dev)
	defer session.Close()

	info, err := session.Initialize()
	if err != nil {
		return err
	}
	caps := info.Capabilities
	fmt.Printf("Sensor ID:          %#x\n", info.ID)
	fmt.Printf("Zones:              %d\n", caps.NumberOfZones)
	fmt.Printf("Targets per zone:   %d\n", caps.MaxNumberOfTargetsPerZone)
	fmt.Printf("Custom ROI:         %v\n", caps.CustomROI)
	fmt.Printf("Threshold detection %v\n", caps.ThresholdDetection)
	for _, p := range caps.Profiles {
		fmt.Printf("Profile:            %v\n", p)
	}
	return nil
}

func openBoard(c *Context) (hardware.Interface, error) {
	if c.dummy {
		return hardware.NewDummy(os.Stdout), nil
	}
	return hardware.New(c.cfg.HardwareOptions())
}

func openDevice(c *Context, hw hardware.Interface) (rangingsensor.Interface, error) {
	sc := c.cfg.Sensor
	if c.dummy || c.cfg.Backend() == config.BackendDummy {
		return rangingsensor.NewDummy(rangingsensor.DummyConfig{Clock: clock.Real{}}), nil
	}
	bus := hw.I2CBus()
	if sc.MuxPort == "" {
		return tofsensor.New(bus, sc.Address, sc.Use2v8), nil
	}
	port, err := mux.ParsePort(sc.MuxPort)
	if err != nil {
		return nil, err
	}
	return tofsensor.NewMuxed(bus, sc.Address, sc.Use2v8, mux.New(bus), port)
}

// onFatal applies the halt policy to an init or start failure. Other errors pass through.
func onFatal(ctx context.Context, policy string, err error) error {
	var fatal *simpleranging.FatalError
	if !errors.As(err, &fatal) || policy == "exit" {
		return err
	}
	log.Println("Halted: ", err)
	<-ctx.Done()
	return err
}

func main() {
	log.Println("---- ranger ----")
	log.Println("GOMAXPROCS", runtime.GOMAXPROCS(0))

	k := kong.Parse(&CLI,
		kong.Name("ranger"),
		kong.Description("Time-of-flight simple ranging demo."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(CLI.Config)
	k.FatalIfErrorf(err)

	err = k.Run(&Context{
		cfg:        cfg,
		configPath: CLI.Config,
		dummy:      CLI.Dummy,
	})
	k.FatalIfErrorf(err)
}

func registerSignalHandlers(cancelFunc context.CancelFunc) {
	// Hook Ctrl-C to cause shut down.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		log.Println("Signal: ", s)
		cancelFunc()
		time.Sleep(2 * time.Second)
		os.Exit(0)
	}()
}
