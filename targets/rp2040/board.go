//go:build rp2040

package main

import (
	"machine"

	"kobrafw/core"
)

// Pico wiring of the panel controller
const (
	panelTX = machine.GP0
	panelRX = machine.GP1

	sdSCK = machine.GP18
	sdSDO = machine.GP19
	sdSDI = machine.GP16
	sdCS  = machine.GP17

	beeperPin = machine.GP15
	runoutPin = machine.GP14
	probePin  = machine.GP13
	levelTX   = machine.GP12

	tempBedPin    = machine.ADC0 // GP26
	tempHotendPin = machine.ADC1 // GP27
	powerPin      = machine.ADC2 // GP28
)

func boardConfig() core.HALConfig {
	return core.HALConfig{
		Pins: core.Pins{
			SDSS:         core.GPIOPin(sdCS),
			LED:          core.GPIOPin(machine.LED),
			AutoLevelTX:  core.GPIOPin(levelTX),
			TempBed:      core.GPIOPin(tempBedPin),
			TempHotend:   core.GPIOPin(tempHotendPin),
			PowerMonitor: core.GPIOPin(powerPin),
		},
		WatchdogEnabled: true,
	}
}
