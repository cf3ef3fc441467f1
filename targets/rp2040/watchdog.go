//go:build rp2040

package main

import (
	"device/rp"
	"machine"
	"time"

	"kobrafw/core"
)

// rpWatchdog implements core.WatchdogDriver on machine.Watchdog
type rpWatchdog struct{}

func (rpWatchdog) Configure(timeoutMs uint32) error {
	return machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: timeoutMs})
}

func (rpWatchdog) Start() error { return machine.Watchdog.Start() }
func (rpWatchdog) Update()      { machine.Watchdog.Update() }

// rpReset implements core.ResetDriver. The REASON register only tells
// watchdog resets apart, everything else reads as no flag set.
type rpReset struct {
	flags core.ResetFlags
}

// newRPReset snapshots the reset reason before the watchdog is reconfigured
func newRPReset() *rpReset {
	reason := rp.WATCHDOG.REASON.Get()
	return &rpReset{flags: core.ResetFlags{
		Software: reason&rp.WATCHDOG_REASON_FORCE != 0,
		Watchdog: reason&rp.WATCHDOG_REASON_TIMER != 0,
	}}
}

func (r *rpReset) Flags() core.ResetFlags { return r.flags }
func (r *rpReset) ClearFlags()            { r.flags = core.ResetFlags{} }

// Reboot resets through a 1ms watchdog, which is more reliable on the
// RP2040 than SYSRESETREQ.
func (r *rpReset) Reboot() {
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1}); err != nil {
		return
	}
	if err := machine.Watchdog.Start(); err != nil {
		return
	}
	for {
		time.Sleep(time.Millisecond)
	}
}
