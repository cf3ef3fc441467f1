package dgus

// Heater selects a heated element
type Heater uint8

const (
	HeaterE0 Heater = iota
	HeaterBed
)

func (h Heater) String() string {
	if h == HeaterBed {
		return "bed"
	}
	return "hotend"
}

// Axis selects a motion axis
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	return [...]string{"X", "Y", "Z"}[a]
}

// PrintStats are the lifetime print counters
type PrintStats struct {
	TotalPrints    uint16
	FinishedPrints uint16
	PrintTime      uint32  // seconds
	LongestPrint   uint32  // seconds
	FilamentUsed   float32 // mm
}

// Printer is the motion firmware surface the panel drives.
// All methods are called from the idle loop goroutine.
type Printer interface {
	ActualTemp(h Heater) float32
	TargetTemp(h Heater) float32
	SetTargetTemp(h Heater, celsius float32)

	ActualFan() float32
	TargetFan() float32
	SetTargetFan(percent float32)

	FeedratePercent() float32
	SetFeedratePercent(percent float32)

	ProgressPercent() uint8
	ElapsedSeconds() uint32

	InjectCommands(gcode string)
	CommandsInQueue() bool
	CanMoveExtruder() bool

	IsPrinting() bool
	IsPrintingFromMedia() bool
	IsMoving() bool
	IsMediaInserted() bool

	PrintFile(path string)
	PausePrint()
	ResumePrint()
	StopPrint()
	SetUserConfirmed()

	FilamentRunoutState() bool
	SetFilamentRunoutState(runout bool)

	ZOffset() float32
	SetZOffset(mm float32)
	BabystepZ(mm float32)

	CaseLight() bool
	SetCaseLight(on bool)

	AxisPosition(a Axis) float32
	SetAxisPosition(mm float32, a Axis, feedrate float32)
	AxisTrusted(a Axis) bool
	DisableSteppers()
	SetAllUnhomed()
	SetSoftEndstops(on bool)

	ResetPrintTimer()
	Stats() PrintStats
	RecoveryFilename() string

	ProbeTare()
	ProbeTriggered() bool
}

// Beeper plays tunes without blocking the caller
type Beeper interface {
	PlayTune(t Tune)
}
