// Package config loads the ranger's YAML configuration over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
	"periph.io/x/periph/conn/physic"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/console"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/rangingsensor"
	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/report"
)

const (
	BackendVL53L1X = "vl53l1x"
	BackendDummy   = "dummy"
)

type Config struct {
	Sensor  SensorConfig  `yaml:"sensor"`
	Profile ProfileConfig `yaml:"profile"`
	Polling PollingConfig `yaml:"polling"`
	Console ConsoleConfig `yaml:"console"`
	Button  ButtonConfig  `yaml:"button"`
	Screen  ScreenConfig  `yaml:"screen"`
	Stats   StatsConfig   `yaml:"stats"`
}

type SensorConfig struct {
	Backend     string `yaml:"backend"`
	I2CBus      string `yaml:"i2c_bus"`
	I2CSpeedKHz int    `yaml:"i2c_speed_khz"`
	Address     uint16 `yaml:"address"`
	// MuxPort selects the sensor behind the I2C mux: center, left, right or a port number.
	// Empty means the sensor is wired directly.
	MuxPort string `yaml:"mux_port"`
	Use2v8  bool   `yaml:"use_2v8"`
}

type ProfileConfig struct {
	RangingProfile string `yaml:"ranging_profile"`
	TimingBudgetMs int    `yaml:"timing_budget_ms"`
	// FrequencyMs is the inter-measurement period; 0 ranges back to back.
	FrequencyMs   int  `yaml:"frequency_ms"`
	EnableAmbient bool `yaml:"enable_ambient"`
	EnableSignal  bool `yaml:"enable_signal"`
}

type PollingConfig struct {
	PeriodMs int    `yaml:"period_ms"`
	Policy   string `yaml:"policy"`
}

type ConsoleConfig struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`

	console.PortOptions `yaml:",inline"`

	TXPin int `yaml:"tx_pin"`
	RXPin int `yaml:"rx_pin"`
}

type ButtonConfig struct {
	Pin string `yaml:"pin"`
}

type ScreenConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Framebuffer string `yaml:"framebuffer"`
}

type StatsConfig struct {
	// IntervalS is how often fetch statistics are logged; 0 disables them.
	IntervalS int `yaml:"interval_s"`
}

func Default() *Config {
	p := rangingsensor.DefaultProfile()
	return &Config{
		Sensor: SensorConfig{
			Backend:     BackendVL53L1X,
			I2CSpeedKHz: 400,
			Address:     0x29,
		},
		Profile: ProfileConfig{
			RangingProfile: p.RangingProfile.String(),
			TimingBudgetMs: p.TimingBudgetMs,
			FrequencyMs:    p.Frequency,
			EnableAmbient:  p.EnableAmbient,
			EnableSignal:   p.EnableSignal,
		},
		Polling: PollingConfig{
			PeriodMs: 30,
			Policy:   report.PolicyPlotter.String(),
		},
		Console: ConsoleConfig{
			Kind: string(console.KindStdout),
		},
		Screen: ScreenConfig{
			Framebuffer: "/dev/fb1",
		},
	}
}

// Load reads path over the defaults and validates the result. A missing file is not an
// error; the defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, "failed to read config %s", path)
			}
			fmt.Println(err)
		} else if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config %s", path)
		}
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InUsePath is where WriteInUse puts the effective config for path.
func InUsePath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-in-use" + ext
}

// WriteInUse writes the effective config next to the file it was loaded from.
func (c *Config) WriteInUse(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(InUsePath(path), data, 0666)
}

// RangingProfile converts the profile section. Call Validate first.
func (c *Config) RangingProfile() (rangingsensor.ProfileConfig, error) {
	rp, err := rangingsensor.ParseRangingProfile(c.Profile.RangingProfile)
	if err != nil {
		return rangingsensor.ProfileConfig{}, err
	}
	return rangingsensor.ProfileConfig{
		RangingProfile: rp,
		TimingBudgetMs: c.Profile.TimingBudgetMs,
		Frequency:      c.Profile.FrequencyMs,
		EnableAmbient:  c.Profile.EnableAmbient,
		EnableSignal:   c.Profile.EnableSignal,
	}, nil
}

// Backend is the sensor backend in its canonical lower-case form.
func (c *Config) Backend() string {
	return strings.ToLower(strings.TrimSpace(c.Sensor.Backend))
}

func (c *Config) ReportPolicy() (report.Policy, error) {
	return report.ParsePolicy(c.Polling.Policy)
}

func (c *Config) PollingPeriod() time.Duration {
	return time.Duration(c.Polling.PeriodMs) * time.Millisecond
}

func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.Stats.IntervalS) * time.Second
}

func (c *Config) ConsoleOptions() console.Options {
	return console.Options{
		Kind:  console.Kind(strings.ToLower(strings.TrimSpace(c.Console.Kind))),
		Path:  c.Console.Path,
		Port:  c.Console.PortOptions,
		TXPin: c.Console.TXPin,
		RXPin: c.Console.RXPin,
	}
}

func (c *Config) HardwareOptions() hardware.Options {
	return hardware.Options{
		I2CBus:    c.Sensor.I2CBus,
		I2CSpeed:  physic.Frequency(c.Sensor.I2CSpeedKHz) * physic.KiloHertz,
		ButtonPin: c.Button.Pin,
		Console:   c.ConsoleOptions(),
	}
}
