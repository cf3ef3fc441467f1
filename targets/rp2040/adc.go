//go:build rp2040

package main

import (
	"machine"
	"sync"

	"kobrafw/core"
)

// RPADCDriver implements core.ADCDriver using TinyGo's machine.ADC.
// Each sample table slot is bound to one analog pin.
type RPADCDriver struct {
	mu       sync.Mutex
	pins     map[core.GPIOPin]*machine.ADC
	channels map[core.ADCChannel]*machine.ADC
}

// NewRPADCDriver binds the sample table to the board's analog pins
func NewRPADCDriver(cfg core.Pins) *RPADCDriver {
	machine.InitADC()
	d := &RPADCDriver{
		pins:     make(map[core.GPIOPin]*machine.ADC),
		channels: make(map[core.ADCChannel]*machine.ADC),
	}
	for ch, pin := range map[core.ADCChannel]core.GPIOPin{
		core.ADCBed:          cfg.TempBed,
		core.ADCHotend:       cfg.TempHotend,
		core.ADCPowerMonitor: cfg.PowerMonitor,
	} {
		if !pin.Valid() {
			continue
		}
		adc := &machine.ADC{Pin: machine.Pin(pin)}
		d.pins[pin] = adc
		d.channels[ch] = adc
	}
	return d
}

// EnablePin switches a bound pin to analog mode
func (d *RPADCDriver) EnablePin(pin core.GPIOPin) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	adc, ok := d.pins[pin]
	if !ok {
		return core.ErrInvalidPin
	}
	return adc.Configure(machine.ADCConfig{})
}

// Sample returns the latest 12-bit conversion (0-4095)
func (d *RPADCDriver) Sample(ch core.ADCChannel) (core.ADCValue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	adc, ok := d.channels[ch]
	if !ok {
		return 0, core.ErrUnsupported
	}
	// machine.ADC scales to 16 bits
	return core.ADCValue(adc.Get() >> 4), nil
}
