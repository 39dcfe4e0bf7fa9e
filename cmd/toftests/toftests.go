package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/config"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/mux"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/rangingsensor"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/tofsensor"
)

// Bench check for the sensors behind the mux: each port is initialised in turn and a few
// samples are printed.
var CLI struct {
	Config  string   `help:"YAML config file." default:"/cfg/ranger.yaml" type:"path"`
	Dummy   bool     `help:"Use the simulated board and mux."`
	Ports   []string `help:"Mux ports to check." default:"center,left,right"`
	Samples int      `help:"Samples to read per port." default:"5"`
}

func main() {
	k := kong.Parse(&CLI, kong.Name("toftests"))

	cfg, err := config.Load(CLI.Config)
	k.FatalIfErrorf(err)
	profile, err := cfg.RangingProfile()
	k.FatalIfErrorf(err)

	var hw hardware.Interface
	var m mux.Interface
	if CLI.Dummy {
		hw = hardware.NewDummy(os.Stdout)
		m = mux.Dummy()
	} else {
		hw, err = hardware.New(cfg.HardwareOptions())
		if err != nil {
			fmt.Println("Failed to open board ", err)
			os.Exit(1)
		}
		m = mux.New(hw.I2CBus())
	}

	failed := 0
	for _, name := range CLI.Ports {
		port, err := mux.ParsePort(name)
		if err != nil {
			fmt.Println(err)
			failed++
			continue
		}
		if err := rangePort(hw, m, port, cfg.Sensor, profile); err != nil {
			fmt.Printf("Port %s: %v\n", name, err)
			failed++
		}
	}
	_ = m.Close()
	_ = hw.Close()
	if failed > 0 {
		os.Exit(1)
	}
}

func rangePort(hw hardware.Interface, m mux.Interface, port int, sc config.SensorConfig, profile rangingsensor.ProfileConfig) error {
	tof, err := tofsensor.NewMuxed(hw.I2CBus(), sc.Address, sc.Use2v8, m, port)
	if err != nil {
		return err
	}
	session := rangingsensor.NewSession(tof)
	defer session.Close()

	info, err := session.Initialize()
	if err != nil {
		return err
	}
	fmt.Printf("Port %d: sensor %#x\n", port, info.ID)

	if err := session.Configure(profile); err != nil {
		return err
	}
	if err := session.Start(); err != nil {
		return err
	}

	deadline := time.Now().Add(2 * time.Second)
	for n := 0; n < CLI.Samples && time.Now().Before(deadline); {
		result, err := session.Fetch()
		if errors.Is(err, rangingsensor.ErrNotReady) {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return err
		}
		z := result.Zones[0]
		fmt.Printf("Port %d: status=%d distance=%dmm\n", port, z.Status[0], z.DistanceMM[0])
		n++
	}
	return nil
}
