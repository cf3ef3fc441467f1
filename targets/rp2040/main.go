//go:build rp2040

package main

import (
	"machine"
	"time"

	"kobrafw/core"
	"kobrafw/dgus"
	"kobrafw/protocol"
	"kobrafw/sim"
	"kobrafw/targets/pio"
)

// loopPeriod paces the main loop, the panel reader is serviced in between
const loopPeriod = 5 * time.Millisecond

// rxReportPeriod spaces the dropped byte warning
const rxReportPeriod = 10 * time.Second

// debugLog turns on Debugf output, set with -ldflags "-X main.debugLog=true"
var debugLog = "false"

var panics uint32

func main() {
	// Read the reset reason before the watchdog is touched
	reset := newRPReset()

	// Disable the watchdog left over from a previous boot
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	core.SetDebugWriter(func(s string) { println(s) })
	core.SetDebugEnabled(debugLog == "true")
	log := core.Log()
	log.Infof("kobrafw %s", protocol.Version)
	clock := hardwareClock{}

	cfg := boardConfig()
	gpio := NewRPGPIODriver()
	core.SetGPIODriver(gpio)
	core.SetADCDriver(NewRPADCDriver(cfg.Pins))
	core.SetPWMDriver(NewRP2040PWMDriver())
	core.SetWatchdogDriver(rpWatchdog{})
	core.SetResetDriver(reset)

	hal := core.NewHAL(cfg, core.WithClock(clock), core.WithLogger(log))
	if err := hal.Init(); err != nil {
		log.Errorf("hal init: %v", err)
	}
	log.Infof("reset cause: %s", hal.GetResetSource())
	hal.ClearResetSource()

	for _, pin := range []core.GPIOPin{cfg.Pins.TempBed, cfg.Pins.TempHotend, cfg.Pins.PowerMonitor} {
		if err := hal.ADCEnable(pin); err != nil {
			log.Warnf("adc pin %d: %v", pin, err)
		}
	}
	if err := hal.WatchdogInit(); err != nil {
		log.Errorf("watchdog: %v", err)
	}

	sd := core.NewSDIO(newSPICard(),
		core.WithWatchdogRefresh(hal.WatchdogRefresh),
		core.WithSDIOLogger(log),
	)
	if sd.Init() {
		log.Infof("sd card: %d bytes", sd.CardSize())
	}

	if err := gpio.ConfigureInputPullUp(core.GPIOPin(runoutPin)); err != nil {
		log.Warnf("runout pin: %v", err)
	}

	port, err := openPanelPort(log)
	if err != nil {
		log.Errorf("panel uart: %v", err)
		for {
			hal.WatchdogRefresh()
			time.Sleep(time.Second)
		}
	}

	beeper := pio.NewBeeper(beeperPin, 0, log)
	if err := beeper.Init(); err != nil {
		log.Errorf("beeper: %v", err)
	}

	printer := sim.New(sim.WithClock(clock), sim.WithLogger(log))
	reader := protocol.NewFrameReader(port.Source(), clock.Millis)
	panel := dgus.New(port, reader, printer,
		dgus.WithClock(clock),
		dgus.WithLogger(log),
		dgus.WithBeeper(beeper),
		dgus.WithRunoutSensor(gpio, core.GPIOPin(runoutPin)),
	)
	printer.SetEvents(panel)
	panel.Startup()

	var reported uint32
	nextReport := time.Now().Add(rxReportPeriod)

	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					panics++
					log.Errorf("main loop panic %d: %v", panics, r)
					beeper.Stop()
					port.Source().Reset()
				}
			}()

			hal.IdleTask()
			panel.IdleLoop()
			printer.Tick()

			if now := time.Now(); now.After(nextReport) {
				nextReport = now.Add(rxReportPeriod)
				if d := port.Source().Dropped(); d != reported {
					log.Warnf("panel rx: %d bytes dropped", d-reported)
					reported = d
				}
			}
		}()

		time.Sleep(loopPeriod)
	}
}
