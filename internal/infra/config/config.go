// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Banks    BanksConfig    `yaml:"banks"`
	State    StateConfig    `yaml:"state"`
	Player   PlayerConfig   `yaml:"player"`
	Loop     LoopConfig     `yaml:"loop"`
	Buttons  ButtonsConfig  `yaml:"buttons"`
	Display  DeviceConfig   `yaml:"display"`
	Strip    StripConfig    `yaml:"strip"`
	PowerLED PowerLEDConfig `yaml:"power_led"`
}

// AppConfig represents the application home.
type AppConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// BanksConfig represents the clip bank layout.
type BanksConfig struct {
	Path            string `yaml:"path" validate:"required"`
	Count           int    `yaml:"count" validate:"required,gte=1,lte=99"`
	WatchDebounceMs int    `yaml:"watch_debounce_ms" default:"500" validate:"gte=0,lte=10000"`
}

// StateConfig represents the persisted settings file.
type StateConfig struct {
	File string `yaml:"file" default:"state.json" validate:"required"`
}

// PlayerConfig represents the external player process.
type PlayerConfig struct {
	Path              string   `yaml:"path" default:"/usr/bin/mplayer" validate:"required"`
	Args              []string `yaml:"args" default:"[\"-fs\",\"-vo\",\"fbdev2\",\"-osdlevel\",\"0\",\"-nosound\",\"-vf\",\"scale=720:480\",\"-loop\",\"0\",\"-slave\",\"-quiet\"]"`
	ResponseTimeoutMs int      `yaml:"response_timeout_ms" default:"2000" validate:"gte=100,lte=30000"`
	GracefulTimeoutMs int      `yaml:"graceful_timeout_ms" default:"3000" validate:"gte=0,lte=30000"`
}

// LoopConfig represents the polling loop.
type LoopConfig struct {
	IntervalMs     int      `yaml:"interval_ms" default:"100" validate:"gte=10,lte=5000"`
	CommandDelayMs int      `yaml:"command_delay_ms" default:"100" validate:"gte=0,lte=5000"`
	EndThreshold   int      `yaml:"end_threshold" default:"99" validate:"gte=1,lte=100"`
	EndPolicies    []string `yaml:"end_policies" default:"[\"hold\",\"shuffle\",\"advance\"]" validate:"dive,oneof=hold shuffle advance"`
}

// ButtonsConfig represents the input buttons.
type ButtonsConfig struct {
	Driver     string           `yaml:"driver" default:"gpio" validate:"oneof=gpio none"`
	DebounceMs int              `yaml:"debounce_ms" default:"80" validate:"gte=0,lte=1000"`
	Pins       ButtonPinsConfig `yaml:"pins"`
}

// ButtonPinsConfig maps each button to a GPIO pin name.
type ButtonPinsConfig struct {
	Mode      string `yaml:"mode" default:"GPIO22"`
	Previous  string `yaml:"previous" default:"GPIO5"`
	PlayPause string `yaml:"play_pause" default:"GPIO6"`
	Next      string `yaml:"next" default:"GPIO13"`
	Hold      string `yaml:"hold" default:"GPIO19"`
	Shift     string `yaml:"shift" default:"GPIO26"`
}

// DeviceConfig represents an output device with driver-specific settings.
type DeviceConfig struct {
	Driver   string         `yaml:"driver" default:"ht16k33" validate:"oneof=ht16k33 log"`
	Settings map[string]any `yaml:"settings"`
}

// StripConfig represents the LED strip.
type StripConfig struct {
	Driver        string         `yaml:"driver" default:"sk6812" validate:"oneof=sk6812 log"`
	Count         int            `yaml:"count" default:"12" validate:"gte=1,lte=1024"`
	MaxBrightness int            `yaml:"max_brightness" default:"50" validate:"gte=1,lte=255"`
	PlayheadFloor int            `yaml:"playhead_floor" default:"1" validate:"gte=0,lte=255"`
	Settings      map[string]any `yaml:"settings"`
}

// PowerLEDConfig represents the power indicator.
type PowerLEDConfig struct {
	Driver   string         `yaml:"driver" default:"gpio" validate:"oneof=gpio log"`
	Settings map[string]any `yaml:"settings"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
// A missing file is not an error; the environment alone may configure the kiosk.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, errors.Wrap(err, "failed to parse config file")
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	// Override with environment variables
	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() error {
	if v := os.Getenv("APP_PATH"); v != "" {
		c.App.Path = v
	}
	if v := os.Getenv("BANKS_PATH"); v != "" {
		c.Banks.Path = v
	}
	if v := os.Getenv("BANK_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "failed to parse BANK_COUNT %q", v)
		}
		c.Banks.Count = n
	}
	if v := os.Getenv("KIOSK_STATE_FILE"); v != "" {
		c.State.File = v
	}
	if v := os.Getenv("KIOSK_PLAYER_PATH"); v != "" {
		c.Player.Path = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.Strip.PlayheadFloor > c.Strip.MaxBrightness {
		return errors.Newf("strip.playhead_floor (%d) must not exceed strip.max_brightness (%d)",
			c.Strip.PlayheadFloor, c.Strip.MaxBrightness)
	}

	return nil
}

// StatePath returns the settings file path. Relative paths resolve against app.path.
func (c *Config) StatePath() string {
	if filepath.IsAbs(c.State.File) {
		return c.State.File
	}
	return filepath.Join(c.App.Path, c.State.File)
}

func (c *LoopConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

func (c *LoopConfig) CommandDelay() time.Duration {
	return time.Duration(c.CommandDelayMs) * time.Millisecond
}

func (c *PlayerConfig) ResponseTimeout() time.Duration {
	return time.Duration(c.ResponseTimeoutMs) * time.Millisecond
}

func (c *PlayerConfig) GracefulTimeout() time.Duration {
	return time.Duration(c.GracefulTimeoutMs) * time.Millisecond
}

func (c *ButtonsConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

func (c *BanksConfig) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMs) * time.Millisecond
}
