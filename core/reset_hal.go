package core

// ResetCause is the reset reason in the encoding the firmware reports
type ResetCause uint8

const (
	ResetUnknown  ResetCause = 0x00
	ResetPowerOn  ResetCause = 0x01
	ResetExternal ResetCause = 0x02
	ResetBrownOut ResetCause = 0x04
	ResetWatchdog ResetCause = 0x08
	ResetJTAG     ResetCause = 0x10
	ResetSoftware ResetCause = 0x20
	ResetBackup   ResetCause = 0x40
)

func (c ResetCause) String() string {
	switch c {
	case ResetPowerOn:
		return "power-on"
	case ResetExternal:
		return "external"
	case ResetBrownOut:
		return "brown-out"
	case ResetWatchdog:
		return "watchdog"
	case ResetJTAG:
		return "jtag"
	case ResetSoftware:
		return "software"
	case ResetBackup:
		return "backup"
	}
	return "unknown"
}

// ResetFlags mirrors the vendor reset cause register
type ResetFlags struct {
	Software bool
	Watchdog bool
	Pin      bool
	PowerOn  bool
	BrownOut bool
}

// ResetDriver reads and clears reset flags and triggers resets
type ResetDriver interface {
	Flags() ResetFlags
	ClearFlags()
	Reboot()
}

var resetDriver ResetDriver

// SetResetDriver is called by target-specific code to register its driver.
func SetResetDriver(d ResetDriver) {
	resetDriver = d
}

// Cause maps the flags to a single cause. Software wins over watchdog,
// watchdog over the reset pin. No flag set yields ResetUnknown.
func (f ResetFlags) Cause() ResetCause {
	switch {
	case f.Software:
		return ResetSoftware
	case f.Watchdog:
		return ResetWatchdog
	case f.Pin:
		return ResetExternal
	case f.PowerOn:
		return ResetPowerOn
	case f.BrownOut:
		return ResetBrownOut
	}
	return ResetUnknown
}
