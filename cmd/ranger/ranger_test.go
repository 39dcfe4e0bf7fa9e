package main

import (
	"io"
	"testing"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/config"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/rangingsensor"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/tofsensor"
)

func TestOpenDeviceBackend(t *testing.T) {
	hw := hardware.NewDummy(io.Discard)
	for backend, wantDummy := range map[string]bool{
		"dummy":   true,
		"Dummy":   true,
		"DUMMY ":  true,
		"vl53l1x": false,
		"VL53L1X": false,
	} {
		cfg := config.Default()
		cfg.Sensor.Backend = backend
		if err := config.Validate(cfg); err != nil {
			t.Fatalf("%q: %v", backend, err)
		}
		dev, err := openDevice(&Context{cfg: cfg}, hw)
		if err != nil {
			t.Fatalf("%q: %v", backend, err)
		}
		switch dev.(type) {
		case *rangingsensor.Dummy:
			if !wantDummy {
				t.Errorf("%q opened the simulated sensor", backend)
			}
		case *tofsensor.VL53L1X:
			if wantDummy {
				t.Errorf("%q opened the VL53L1X", backend)
			}
		default:
			t.Errorf("%q: unexpected device %T", backend, dev)
		}
	}
}
