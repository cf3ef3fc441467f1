// Package gpio drives board pins from a Linux host through periph.io.
// It lets a single board computer take the place of the MCU pins the
// panel firmware toggles at boot and reads while leveling.
package gpio

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"kobrafw/core"
)

// Driver implements core.GPIODriver on top of periph pins
type Driver struct {
	mu     sync.Mutex
	lookup func(name string) gpio.PinIO
	pins   map[core.GPIOPin]gpio.PinIO
}

// Open initializes the periph host drivers
func Open() (*Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	return NewDriver(gpioreg.ByName), nil
}

// NewDriver resolves pins through lookup, which receives "GPIO<n>"
func NewDriver(lookup func(name string) gpio.PinIO) *Driver {
	return &Driver{
		lookup: lookup,
		pins:   make(map[core.GPIOPin]gpio.PinIO),
	}
}

func (d *Driver) pin(p core.GPIOPin) (gpio.PinIO, error) {
	if !p.Valid() {
		return nil, core.ErrInvalidPin
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if pin, ok := d.pins[p]; ok {
		return pin, nil
	}
	name := fmt.Sprintf("GPIO%d", p)
	pin := d.lookup(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio %s not found: %w", name, core.ErrInvalidPin)
	}
	d.pins[p] = pin
	return pin, nil
}

// ConfigureOutput configures a pin as a low output
func (d *Driver) ConfigureOutput(p core.GPIOPin) error {
	pin, err := d.pin(p)
	if err != nil {
		return err
	}
	return pin.Out(gpio.Low)
}

// ConfigureInputPullUp configures a pin as an input with pull-up
func (d *Driver) ConfigureInputPullUp(p core.GPIOPin) error {
	return d.input(p, gpio.PullUp)
}

// ConfigureInputPullDown configures a pin as an input with pull-down
func (d *Driver) ConfigureInputPullDown(p core.GPIOPin) error {
	return d.input(p, gpio.PullDown)
}

func (d *Driver) input(p core.GPIOPin, pull gpio.Pull) error {
	pin, err := d.pin(p)
	if err != nil {
		return err
	}
	return pin.In(pull, gpio.NoEdge)
}

// SetPin drives an output pin
func (d *Driver) SetPin(p core.GPIOPin, value bool) error {
	pin, err := d.pin(p)
	if err != nil {
		return err
	}
	return pin.Out(gpio.Level(value))
}

// GetPin reads the pin level
func (d *Driver) GetPin(p core.GPIOPin) (bool, error) {
	pin, err := d.pin(p)
	if err != nil {
		return false, err
	}
	return bool(pin.Read()), nil
}

// ReadPin reads the pin level, false on error
func (d *Driver) ReadPin(p core.GPIOPin) bool {
	v, err := d.GetPin(p)
	return err == nil && v
}
