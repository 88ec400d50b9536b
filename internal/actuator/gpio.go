package actuator

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// GPIO drives a fixture through a Raspberry Pi GPIO pin (active high, the
// relay boards the deployment uses switch on a high level).
type GPIO struct {
	pin gpio.PinIO
}

// NewGPIO resolves a pin by name ("GPIO13", "GPIO19", ...) and drives it
// low so the channel starts de-energized.
func NewGPIO(name string) (*GPIO, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("gpio pin %q: %w", name, err)
	}
	return &GPIO{pin: pin}, nil
}

// On implements Actuator.
func (g *GPIO) On() error {
	return g.pin.Out(gpio.High)
}

// Off implements Actuator.
func (g *GPIO) Off() error {
	return g.pin.Out(gpio.Low)
}

// IsOn implements Actuator. The BCM283x driver reads back the driven level
// of output pins, so this reflects actual hardware state, not a cache.
func (g *GPIO) IsOn() (bool, error) {
	return g.pin.Read() == gpio.High, nil
}
