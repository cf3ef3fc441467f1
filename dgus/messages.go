package dgus

// Status and confirmation messages raised by the motion firmware
const (
	MsgPrintPaused     = "Print Paused"
	MsgNozzleParked    = "Nozzle Parked"
	MsgHeaterTimeout   = "Heater Timeout"
	MsgReheating       = "Reheating..."
	MsgReheatDone      = "Reheat finished."
	MsgFilamentPurging = "Filament Purging..."
	MsgMediaRemoved    = "Media Removed"
	MsgPrintAborted    = "Print Aborted"
	MsgExtruderHeating = "E Heating..."
	MsgBedHeating      = "Bed Heating..."
	MsgProbingFailed   = "Probing Failed"
	MsgHeatingFailed   = "Heating Failed"
	MsgThermalRunaway  = "THERMAL RUNAWAY"
	MsgErrMinTemp      = "Err: MINTEMP"
	MsgErrMaxTemp      = "Err: MAXTEMP"
	MsgHomingFailed    = "Homing Failed"
	ComponentBed       = "Bed"
	ComponentHotend    = "E1"
	ComponentX         = "X"
	ComponentY         = "Y"
	ComponentZ         = "Z"
)

// Text lines sent to the panel in plain serial mode
const (
	lineMainBoardReset = "J12"
	lineReady          = "J17"
)

// G-code injected on behalf of the panel
const (
	cmdEnableLeveling     = "M420 S1 V1"
	cmdSaveSettings       = "M500"
	cmdContinue           = "M108"
	cmdRecoverResume      = "M1000"
	cmdRecoverCancel      = "M1000 C"
	cmdRecoverResumeLight = "M355 S1\nM1000"
	cmdRecoverCancelLight = "M355 S0\nM1000 C"
	cmdLoadFilament       = "M83\nG1 E50 F700\nM82"
	cmdUnloadFilament     = "M83\nG1 E-50 F1200\nM82"
	cmdUnloadFirstIn      = "M83\nG1 E15 F200\nG1 E-50 F1200\nM82"
	cmdProbeFailedLift    = "G1 Z50 F500"
	cmdProbeAndLevel      = "M851 Z0\nG28\nG29"
	cmdHomeX              = "G28 X"
	cmdHomeY              = "G28 Y"
	cmdHomeZ              = "G28 Z"
	cmdHomeAll            = "G28"
)

// autoOffsetCommands maps keys of the auto offset page to M1024 steps
var autoOffsetCommands = map[uint16]string{
	2: "M1024 S3", // -1
	3: "M1024 S4", // +1
	4: "M1024 S1", // -0.1
	5: "M1024 S2", // +0.1
	6: "M1024 S0", // park XY at the center
	7: "M1024 S5",
}

// DeviceInfo is shown on the about page
type DeviceInfo struct {
	Name        string
	Firmware    string
	BuildVolume string
	Support     string
}

// DefaultDeviceInfo describes the Kobra Max
func DefaultDeviceInfo() DeviceInfo {
	return DeviceInfo{
		Name:        "Anycubic Kobra Max",
		Firmware:    "Kobra Max V3.1",
		BuildVolume: "406*406*450 (mm)",
		Support:     "https://www.anycubic.com",
	}
}
