package dgus

// PrinterState tracks the print job as seen by the panel
type PrinterState uint8

const (
	PrinterIdle PrinterState = iota
	PrinterProbing
	PrinterPrinting
	PrinterPausing
	PrinterPaused
	PrinterStopping
	PrinterStoppingMediaRemoved
	PrinterResumingFromOutage
)

func (s PrinterState) String() string {
	switch s {
	case PrinterIdle:
		return "idle"
	case PrinterProbing:
		return "probing"
	case PrinterPrinting:
		return "printing"
	case PrinterPausing:
		return "pausing"
	case PrinterPaused:
		return "paused"
	case PrinterStopping:
		return "stopping"
	case PrinterStoppingMediaRemoved:
		return "stopping (media removed)"
	case PrinterResumingFromOutage:
		return "resuming from power outage"
	}
	return "unknown"
}

// PauseState is the reason a print is held
type PauseState uint8

const (
	PauseIdle PauseState = iota
	PauseHeaterTimedOut
	PauseFilamentLack
	PausePurgingFilament
)

// HeaterState tracks heating progress reported through status messages
type HeaterState uint8

const (
	HeaterOff HeaterState = iota
	HeaterTempSet
	HeaterTempReached
)

// MediaEvent reports card changes
type MediaEvent uint8

const (
	MediaInserted MediaEvent = iota
	MediaRemoved
	MediaError
)

// TimerEvent reports print job timer changes
type TimerEvent uint8

const (
	TimerStarted TimerEvent = iota
	TimerPaused
	TimerStopped
)

// ProbeState is the mesh probing progress of one point
type ProbeState uint8

const (
	ProbePointStart ProbeState = iota
	ProbePointFinish
)

type filamentCmd uint8

const (
	filamentNone filamentCmd = iota
	filamentIn
	filamentOut
)
