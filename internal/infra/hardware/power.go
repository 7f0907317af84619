package hardware

import (
	"github.com/cockroachdb/errors"
	"periph.io/x/conn/v3/gpio"
)

// GPIOIndicator is an LED on a GPIO output.
type GPIOIndicator struct {
	pin gpio.PinOut
}

// NewGPIOIndicator configures pin as an output, initially off.
func NewGPIOIndicator(pin gpio.PinOut) (*GPIOIndicator, error) {
	if err := pin.Out(gpio.Low); err != nil {
		return nil, errors.Wrapf(err, "failed to configure indicator on %s", pin)
	}
	return &GPIOIndicator{pin: pin}, nil
}

func (i *GPIOIndicator) Set(on bool) error {
	if err := i.pin.Out(gpio.Level(on)); err != nil {
		return errors.Wrapf(err, "failed to set indicator on %s", i.pin)
	}
	return nil
}
