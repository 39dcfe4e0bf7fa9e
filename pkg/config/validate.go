package config

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/console"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/mux"
)

// ErrInvalidPeriod means the polling period is shorter than the sensor's timing budget, so
// most polls would find nothing new.
var ErrInvalidPeriod = errors.New("polling period shorter than timing budget")

// Validate checks the configuration. It does not modify it.
func Validate(cfg *Config) error {
	switch cfg.Backend() {
	case BackendVL53L1X, BackendDummy:
	default:
		return fmt.Errorf("sensor: unknown backend %q", cfg.Sensor.Backend)
	}
	if cfg.Sensor.I2CSpeedKHz < 0 {
		return fmt.Errorf("sensor: negative i2c_speed_khz %d", cfg.Sensor.I2CSpeedKHz)
	}
	if cfg.Sensor.Address > 0x7F {
		return fmt.Errorf("sensor: address %#x is not a 7-bit I2C address", cfg.Sensor.Address)
	}
	if cfg.Sensor.MuxPort != "" {
		if _, err := mux.ParsePort(cfg.Sensor.MuxPort); err != nil {
			return errors.Wrap(err, "sensor")
		}
	}

	profile, err := cfg.RangingProfile()
	if err != nil {
		return errors.Wrap(err, "profile")
	}
	if err := profile.Validate(); err != nil {
		return errors.Wrap(err, "profile")
	}

	if cfg.Polling.PeriodMs < profile.TimingBudgetMs {
		return errors.Wrapf(ErrInvalidPeriod, "polling: period_ms %d < timing_budget_ms %d",
			cfg.Polling.PeriodMs, profile.TimingBudgetMs)
	}
	if _, err := cfg.ReportPolicy(); err != nil {
		return errors.Wrap(err, "polling")
	}

	switch cfg.ConsoleOptions().Kind {
	case "", console.KindStdout:
	case console.KindSerial:
		if cfg.Console.Path == "" {
			return fmt.Errorf("console: serial console needs a path")
		}
		fallthrough
	case console.KindUART:
		if _, err := cfg.Console.PortOptions.Normalize(); err != nil {
			return errors.Wrap(err, "console")
		}
	default:
		return fmt.Errorf("console: unknown kind %q", cfg.Console.Kind)
	}

	if cfg.Screen.Enabled && cfg.Screen.Framebuffer == "" {
		return fmt.Errorf("screen: enabled without a framebuffer")
	}
	if cfg.Stats.IntervalS < 0 {
		return fmt.Errorf("stats: negative interval_s %d", cfg.Stats.IntervalS)
	}
	return nil
}
