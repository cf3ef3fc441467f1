//go:build rp2040

package main

import (
	"machine"

	"kobrafw/core"
)

// PWMMax is the duty resolution exposed to the HAL
const PWMMax = 255

// pwmPeripheral abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// RP2040PWMDriver implements core.PWMDriver on the 8 PWM slices
type RP2040PWMDriver struct {
	// slice number (0-7) to configured period in nanoseconds
	slices map[uint8]uint64

	// pin to PWM channel
	channels map[core.GPIOPin]uint8

	peripherals map[uint8]pwmPeripheral
}

// NewRP2040PWMDriver creates a new RP2040 PWM driver
func NewRP2040PWMDriver() *RP2040PWMDriver {
	return &RP2040PWMDriver{
		slices:      make(map[uint8]uint64),
		channels:    make(map[core.GPIOPin]uint8),
		peripherals: make(map[uint8]pwmPeripheral),
	}
}

// GetMaxValue returns the maximum duty value
func (d *RP2040PWMDriver) GetMaxValue() uint32 {
	return PWMMax
}

// sliceOf maps GPIO N to slice (N >> 1) & 7, the channel is N & 1
func sliceOf(pin core.GPIOPin) uint8 {
	return uint8((pin >> 1) & 0x7)
}

// ConfigureHardwarePWM configures a pin for hardware PWM output.
// Both pins of a slice share its period, the last call wins.
func (d *RP2040PWMDriver) ConfigureHardwarePWM(pin core.GPIOPin, periodNs uint32) (uint32, error) {
	if !pin.Valid() || pin > 29 {
		return 0, core.ErrInvalidPin
	}
	slice := sliceOf(pin)

	pwm, exists := d.peripherals[slice]
	if !exists {
		pwm = getPWMPeripheral(slice)
		d.peripherals[slice] = pwm
	}

	if err := pwm.Configure(machine.PWMConfig{Period: uint64(periodNs)}); err != nil {
		return 0, err
	}
	channel, err := pwm.Channel(machine.Pin(pin))
	if err != nil {
		return 0, err
	}

	d.slices[slice] = uint64(periodNs)
	d.channels[pin] = channel
	return periodNs, nil
}

// SetDutyCycle sets the duty, 0 (off) to PWMMax (fully on)
func (d *RP2040PWMDriver) SetDutyCycle(pin core.GPIOPin, value core.PWMValue) error {
	channel, exists := d.channels[pin]
	if !exists {
		return core.ErrInvalidPin
	}
	pwm := d.peripherals[sliceOf(pin)]

	if value > PWMMax {
		value = PWMMax
	}
	pwm.Set(channel, uint32(value)*pwm.Top()/PWMMax)
	return nil
}

// DisablePWM drives the pin low and forgets it.
// TinyGo has no way to hand the pin back to GPIO mode.
func (d *RP2040PWMDriver) DisablePWM(pin core.GPIOPin) error {
	channel, exists := d.channels[pin]
	if !exists {
		return nil
	}
	d.peripherals[sliceOf(pin)].Set(channel, 0)
	delete(d.channels, pin)
	return nil
}

// getPWMPeripheral returns the PWM peripheral for a given slice number
func getPWMPeripheral(slice uint8) pwmPeripheral {
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}
