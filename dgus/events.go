package dgus

import (
	"strings"

	"kobrafw/protocol"
)

// killPages maps a kill reason and component to the abnormal page shown for it
var killPages = []struct {
	err       string
	component string
	page      Page
	hint      string
}{
	{MsgHeatingFailed, ComponentBed, PageAbnormalBedHeater, "check bed heater"},
	{MsgHeatingFailed, ComponentHotend, PageAbnormalHotHeater, "check E1 heater"},
	{MsgErrMinTemp, ComponentBed, PageAbnormalBedNTC, "check bed thermistor"},
	{MsgErrMinTemp, ComponentHotend, PageAbnormalHotNTC, "check E1 thermistor"},
	{MsgErrMaxTemp, ComponentBed, PageAbnormalBedNTC, "check bed thermistor"},
	{MsgErrMaxTemp, ComponentHotend, PageAbnormalHotNTC, "check E1 thermistor"},
	{MsgThermalRunaway, ComponentBed, PageAbnormalBedHeater, "check bed thermal runaway"},
	{MsgThermalRunaway, ComponentHotend, PageAbnormalHotHeater, "check E1 thermal runaway"},
	{MsgHomingFailed, ComponentX, PageAbnormalXEndstop, "check X endstop"},
	{MsgHomingFailed, ComponentY, PageAbnormalYEndstop, "check Y endstop"},
	{MsgHomingFailed, ComponentZ, PageAbnormalZEndstop, "check Z endstop"},
}

// PrinterKilled shows the abnormal page for a fatal error
func (d *Driver) PrinterKilled(err, component string) {
	d.log.Errorf("printer killed: %s (%s)", err, component)
	for _, k := range killPages {
		if strings.HasPrefix(err, k.err) && strings.HasPrefix(component, k.component) {
			d.log.Errorf("%s", k.hint)
			d.ChangePage(k.page)
			return
		}
	}
}

// MediaEvent refreshes the file list when the card changes
func (d *Driver) MediaEvent(ev MediaEvent) {
	d.log.Debugf("media event %d", ev)
	switch ev {
	case MediaInserted, MediaRemoved:
		if d.files != nil {
			d.files.Reset()
		}
		d.boxPage = 0
		d.deselectFile()
		d.sendFileList(0)
	case MediaError:
		d.log.Warnf("media error")
	}
}

// TimerEvent follows the print job timer
func (d *Driver) TimerEvent(ev TimerEvent) {
	d.log.Debugf("timer event %d in state %s", ev, d.printerState)
	switch ev {
	case TimerStarted:
		d.liveZOffset = 0
		d.printer.SetSoftEndstops(false)
		d.printerState = PrinterPrinting
	case TimerStopped:
		if d.printerState != PrinterIdle {
			if d.printerState == PrinterStoppingMediaRemoved {
				d.ChangePage(PageNoSD)
			} else {
				d.printerState = PrinterStopping
				d.sendText(TxtFinishTime, protocol.FormatHoursMinutes(d.printer.ElapsedSeconds()/60))
				d.ChangePage(PagePrintFinish)
			}
		}
		d.printer.SetSoftEndstops(true)
	}
}

// runoutSensed reads the runout sensor. High means no filament.
func (d *Driver) runoutSensed() bool {
	if d.runoutGPIO != nil && d.runoutPin.Valid() {
		return d.runoutGPIO.ReadPin(d.runoutPin)
	}
	return d.printer.FilamentRunoutState()
}

// FilamentRunout raises the filament popup and pauses a media print
func (d *Driver) FilamentRunout() {
	d.log.Infof("filament runout in state %s", d.printerState)
	d.popup = PopupFilamentLack

	if !d.runoutSensed() {
		return
	}
	d.playTune(TuneFilamentOut)
	if d.printer.IsPrintingFromMedia() {
		d.printer.PausePrint()
		d.printerState = PrinterPausing
		d.pauseState = PauseFilamentLack
	}
}

// ConfirmationRequest answers the prompts raised while pausing or printing
func (d *Driver) ConfirmationRequest(msg string) {
	d.log.Debugf("confirmation %q in state %s", msg, d.printerState)
	switch d.printerState {
	case PrinterPausing:
		if msg == MsgPrintPaused || msg == MsgNozzleParked {
			if d.pauseState != PauseFilamentLack {
				d.ChangePage(PageStatus1)
			}
			d.printerState = PrinterPaused
		}

	case PrinterResumingFromOutage, PrinterPrinting, PrinterPaused:
		switch msg {
		case MsgHeaterTimeout:
			d.pauseState = PauseHeaterTimedOut
			d.playTune(TuneHeaterTimedOut)
		case MsgReheatDone, MsgNozzleParked:
			d.printer.InjectCommands(cmdContinue)
			if d.pauseState != PauseFilamentLack {
				d.pauseState = PauseIdle
			}
		case MsgFilamentPurging:
			d.pauseState = PausePurgingFilament
		}
	}
}

// StatusChange follows the job through the status line messages
func (d *Driver) StatusChange(msg string) {
	d.log.Debugf("status %q in state %s", msg, d.printerState)
	matched := false

	switch d.printerState {
	case PrinterProbing:
		if msg == MsgProbingFailed {
			d.playTune(TuneBeepBeepBeeep)
			d.printer.InjectCommands(cmdProbeFailedLift)
			d.ChangePage(PageAbnormalProbe)
			d.printerState = PrinterIdle
		}
		matched = true
		fallthrough

	case PrinterPrinting:
		switch msg {
		case MsgReheating:
			d.ChangePage(PageStatus2)
			matched = true
		case MsgMediaRemoved:
			matched = true
			d.printerState = PrinterStoppingMediaRemoved
		default:
			d.printer.SetFilamentRunoutState(false)
		}

	case PrinterPausing, PrinterPaused:
		if msg == MsgPrintPaused {
			if d.pauseState != PauseFilamentLack {
				d.ChangePage(PageStatus1)
				d.pauseState = PauseIdle
			}
			d.printerState = PrinterPaused
			matched = true
		}

	case PrinterStopping:
		if msg == MsgPrintAborted {
			d.ChangePage(PageMain)
			d.printerState = PrinterIdle
			matched = true
		}
	}

	if matched {
		return
	}
	switch msg {
	case MsgExtruderHeating:
		d.hotendState = HeaterTempSet
	case MsgBedHeating:
		d.bedState = HeaterTempSet
	}
}

// PowerLoss tells the panel main power dropped
func (d *Driver) PowerLoss() {
	d.write(protocol.PowerLossFrame())
}

// PowerLossRecovery marks a job that can be resumed after an outage
func (d *Driver) PowerLossRecovery() {
	d.printerState = PrinterResumingFromOutage
}

// HomingStart shows the homing page unless a media print is running
func (d *Driver) HomingStart() {
	if !d.printer.IsPrintingFromMedia() {
		d.ChangePage(PageHoming)
	}
}

// HomingComplete returns to the page that asked for homing
func (d *Driver) HomingComplete() {
	if d.printer.IsPrintingFromMedia() {
		return
	}
	if d.homeOwnerPage > 120 {
		d.ChangePage(d.homeOwnerPage)
		d.homeOwnerPage = 0
		return
	}
	d.ChangePage(d.pageLast)
}

// LevelingStart marks an automatic leveling run
func (d *Driver) LevelingStart() {
	d.autoLeveling = true
}

// LevelingDone stores the fresh mesh and leaves the leveling page
func (d *Driver) LevelingDone() {
	d.printer.SetZOffset(0.05)
	d.printer.InjectCommands(cmdSaveSettings)
	d.printerState = PrinterIdle
	d.autoLeveling = false
	d.popup = PopupLevelingDone
	if d.preheatLeveling {
		d.printer.SetTargetTemp(HeaterE0, 0)
		d.printer.SetTargetTemp(HeaterBed, 0)
	}
}

// MeshUpdate reports the progress of one probe point
func (d *Driver) MeshUpdate(x, y int8, state ProbeState) {
	if state == ProbePointStart {
		d.log.Debugf("probing point %d,%d", x, y)
	}
}

// Leveling reports whether an automatic leveling run is in progress
func (d *Driver) Leveling() bool {
	return d.autoLeveling
}
