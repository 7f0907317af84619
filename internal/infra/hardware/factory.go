package hardware

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/osa030/clipkiosk/internal/infra/config"
)

// HT16K33Settings configures the "ht16k33" display driver.
type HT16K33Settings struct {
	Bus        string `mapstructure:"bus"` // empty selects the first bus
	Address    uint16 `mapstructure:"address" default:"112" validate:"gte=3,lte=119"`
	Brightness uint8  `mapstructure:"brightness" default:"15" validate:"lte=15"`
}

// SK6812Settings configures the "sk6812" strip driver.
type SK6812Settings struct {
	Port    string `mapstructure:"port"` // empty selects the first port
	SpeedHz int64  `mapstructure:"speed_hz" default:"2400000" validate:"gte=2000000,lte=3200000"`
}

// GPIOIndicatorSettings configures the "gpio" power LED driver.
type GPIOIndicatorSettings struct {
	Pin string `mapstructure:"pin" default:"GPIO17" validate:"required"`
}

// Board holds the opened devices.
type Board struct {
	Display Display
	Strip   Strip
	Power   Indicator
	Inputs  []*Input

	closers []io.Closer
}

// Open opens every device named by cfg. Devices with the "log" driver need no hardware.
func Open(cfg *config.Config) (*Board, error) {
	if needsHost(cfg) {
		if _, err := host.Init(); err != nil {
			return nil, errors.Wrap(err, "failed to initialize periph host")
		}
	}

	b := &Board{}
	if err := b.open(cfg); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

func needsHost(cfg *config.Config) bool {
	return cfg.Display.Driver == "ht16k33" ||
		cfg.Strip.Driver == "sk6812" ||
		cfg.PowerLED.Driver == "gpio" ||
		cfg.Buttons.Driver == "gpio"
}

func (b *Board) open(cfg *config.Config) error {
	var err error
	if b.Display, err = b.openDisplay(cfg.Display); err != nil {
		return err
	}
	if b.Strip, err = b.openStrip(cfg.Strip); err != nil {
		return err
	}
	if b.Power, err = b.openPower(cfg.PowerLED); err != nil {
		return err
	}
	if b.Inputs, err = openInputs(cfg.Buttons); err != nil {
		return err
	}
	zlog.Info().Msgf("hardware: display=%s strip=%s(%d) power=%s buttons=%s",
		cfg.Display.Driver, cfg.Strip.Driver, cfg.Strip.Count, cfg.PowerLED.Driver, cfg.Buttons.Driver)
	return nil
}

func (b *Board) openDisplay(cfg config.DeviceConfig) (Display, error) {
	switch cfg.Driver {
	case "log":
		return NewLogDisplay(), nil
	case "ht16k33":
		var s HT16K33Settings
		if err := DecodeSettings(cfg.Settings, &s); err != nil {
			return nil, errors.Wrap(err, "display")
		}
		bus, err := i2creg.Open(s.Bus)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open i2c bus %q", s.Bus)
		}
		b.closers = append(b.closers, bus)
		return NewHT16K33(bus, s.Address, s.Brightness)
	default:
		return nil, errors.Newf("unknown display driver %q", cfg.Driver)
	}
}

func (b *Board) openStrip(cfg config.StripConfig) (Strip, error) {
	switch cfg.Driver {
	case "log":
		return NewLogStrip(cfg.Count), nil
	case "sk6812":
		var s SK6812Settings
		if err := DecodeSettings(cfg.Settings, &s); err != nil {
			return nil, errors.Wrap(err, "strip")
		}
		port, err := spireg.Open(s.Port)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open spi port %q", s.Port)
		}
		b.closers = append(b.closers, port)
		return NewSK6812(port, cfg.Count, physic.Frequency(s.SpeedHz)*physic.Hertz)
	default:
		return nil, errors.Newf("unknown strip driver %q", cfg.Driver)
	}
}

func (b *Board) openPower(cfg config.PowerLEDConfig) (Indicator, error) {
	switch cfg.Driver {
	case "log":
		return NewLogIndicator("power"), nil
	case "gpio":
		var s GPIOIndicatorSettings
		if err := DecodeSettings(cfg.Settings, &s); err != nil {
			return nil, errors.Wrap(err, "power_led")
		}
		pin := gpioreg.ByName(s.Pin)
		if pin == nil {
			return nil, errors.Newf("unknown gpio pin %q", s.Pin)
		}
		return NewGPIOIndicator(pin)
	default:
		return nil, errors.Newf("unknown power_led driver %q", cfg.Driver)
	}
}

// ButtonPins returns the configured pin of every button by name.
func ButtonPins(p config.ButtonPinsConfig) [][2]string {
	return [][2]string{
		{"mode", p.Mode},
		{"previous", p.Previous},
		{"play_pause", p.PlayPause},
		{"next", p.Next},
		{"hold", p.Hold},
		{"shift", p.Shift},
	}
}

func openInputs(cfg config.ButtonsConfig) ([]*Input, error) {
	if cfg.Driver == "none" {
		return nil, nil
	}

	inputs := make([]*Input, 0, 6)
	for _, bp := range ButtonPins(cfg.Pins) {
		name, pinName := bp[0], bp[1]
		pin := gpioreg.ByName(pinName)
		if pin == nil {
			return nil, errors.Newf("unknown gpio pin %q for %s button", pinName, name)
		}
		// Shift reports press and release; its level is read as-is.
		in, err := NewInput(name, pin, cfg.Debounce(), name == "shift")
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// Close releases the buses opened by Open.
func (b *Board) Close() error {
	var errs error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
	}
	b.closers = nil
	return errs
}

// DecodeSettings decodes driver settings into out, then applies defaults and validation.
func DecodeSettings(settings map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	validate := validator.New()
	if err := validate.Struct(out); err != nil {
		return errors.Wrap(err, "invalid settings")
	}

	return nil
}
