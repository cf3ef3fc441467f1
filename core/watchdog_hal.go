package core

// Watchdog timing of the reference board: 65536 counts at PCLK3/8192, PCLK3 = 50 MHz
const (
	WatchdogCountCycle = 65536
	WatchdogClockDiv   = 8192
	WatchdogPCLK3      = 50000000

	// WatchdogTimeoutMs is the resulting feed interval, about 10.7 s
	WatchdogTimeoutMs = WatchdogCountCycle * WatchdogClockDiv / (WatchdogPCLK3 / 1000)
)

// WatchdogDriver controls the independent watchdog
type WatchdogDriver interface {
	Configure(timeoutMs uint32) error
	Start() error
	Update()
}

var watchdogDriver WatchdogDriver

// SetWatchdogDriver is called by target-specific code to register its driver.
func SetWatchdogDriver(d WatchdogDriver) {
	watchdogDriver = d
}
