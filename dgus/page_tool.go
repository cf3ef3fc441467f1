package dgus

import "kobrafw/protocol"

// Move distances selectable on the move page and their indicator values
var moveDistances = map[uint16]struct {
	mm        float32
	indicator uint16
}{
	3:  {0.1, 1},
	7:  {1, 2},
	11: {10, 3},
}

// Feedrates used by the move page, mm/s
const (
	moveFeedrateXY = 50
	moveFeedrateZ  = 8
)

// showTools opens the tool page variant matching the case light option
func (d *Driver) showTools() {
	if d.caseLight {
		d.ChangePage(PageToolCaseLight)
		d.sendValue(AddrSystemLEDStatus, boolWord(d.printer.CaseLight()))
		return
	}
	d.ChangePage(PageTool)
}

func (d *Driver) showSystem() {
	if d.audio {
		d.ChangePage(PageSystemAudioOn)
	} else {
		d.ChangePage(PageSystemAudioOff)
	}
}

// Tool page without the case light
func (d *Driver) pageTool() {
	switch d.key {
	case 5:
		if !d.printer.IsMoving() {
			d.printer.DisableSteppers()
			d.printer.SetAllUnhomed()
		}
	default:
		d.toolKeys()
	}
}

// Tool page with the case light
func (d *Driver) pageToolCaseLight() {
	switch d.key {
	case 5:
		if !d.printer.IsMoving() {
			d.printer.DisableSteppers()
		}
	default:
		d.toolKeys()
	}
}

func (d *Driver) toolKeys() {
	switch d.key {
	case 1:
		d.ChangePage(PageMain)
	case 2:
		d.ChangePage(PageMove)
	case 3:
		d.ChangePage(PageTemp)
		d.sendValue(TxtHotendNow, uint16(whole(d.printer.ActualTemp(HeaterE0))))
		d.sendValue(TxtHotendTarget, uint16(whole(d.printer.TargetTemp(HeaterE0))))
		d.sendValue(TxtBedNow, uint16(whole(d.printer.ActualTemp(HeaterBed))))
		d.sendValue(TxtBedTarget, uint16(whole(d.printer.TargetTemp(HeaterBed))))
	case 4:
		d.ChangePage(PageSpeed)
		d.sendValue(TxtFanSpeedNow, uint16(whole(d.printer.ActualFan())))
		d.sendValue(TxtFanSpeedTarget, uint16(whole(d.printer.TargetFan())))
		d.sendValue(TxtPrintSpeedNow, uint16(whole(d.printer.FeedratePercent())))
		d.sendValue(TxtPrintSpeedTarget, uint16(whole(d.printer.FeedratePercent())))
	case 6:
		d.toggleCaseLight(AddrSystemLEDStatus)
	}
}

// Move page
func (d *Driver) pageMove() {
	p := d.printer
	switch d.key {
	case 2, 4, 6, 8, 10, 12:
		// never jog from below the bed
		if (d.key != 12 || !p.IsMoving()) && p.AxisPosition(AxisZ) < 0 {
			p.SetAxisPosition(0, AxisZ, moveFeedrateZ)
		}
	}

	switch d.key {
	case 1:
		d.showToolsFromMove()
	case 5:
		d.home(cmdHomeX)
	case 9:
		d.home(cmdHomeY)
	case 13:
		if p.AxisTrusted(AxisX) && p.AxisTrusted(AxisY) {
			d.home(cmdHomeZ)
		} else {
			d.home(cmdHomeAll)
		}
	case 17:
		d.home(cmdHomeAll)
	case 2:
		d.jog(AxisX, -d.moveDistance, moveFeedrateXY)
	case 4:
		d.jog(AxisX, d.moveDistance, moveFeedrateXY)
	case 6:
		d.jog(AxisY, d.moveDistance, moveFeedrateXY)
	case 8:
		d.jog(AxisY, -d.moveDistance, moveFeedrateXY)
	case 10:
		d.jog(AxisZ, -d.moveDistance, moveFeedrateZ)
	case 12:
		d.jog(AxisZ, d.moveDistance, moveFeedrateZ)
	case 3, 7, 11:
		dist := moveDistances[d.key]
		d.moveDistance = dist.mm
		d.sendValue(AddrMoveDistance, dist.indicator)
	}
}

func (d *Driver) showToolsFromMove() {
	if d.caseLight {
		d.ChangePage(PageToolCaseLight)
		return
	}
	d.ChangePage(PageTool)
}

// home queues a homing command and brings the panel back to the move page afterwards
func (d *Driver) home(gcode string) {
	if d.printer.IsMoving() {
		return
	}
	d.homeOwnerPage = PageMove
	d.printer.InjectCommands(gcode)
}

func (d *Driver) jog(a Axis, delta, feedrate float32) {
	if d.printer.IsMoving() {
		return
	}
	d.printer.SetAxisPosition(d.printer.AxisPosition(a)+delta, a, feedrate)
}

// Temperature page
func (d *Driver) pageTemp() {
	switch d.key {
	case 1:
		d.showTools()
	case 6: // cool down
		d.printer.SetTargetTemp(HeaterE0, 0)
		d.printer.SetTargetTemp(HeaterBed, 0)
		d.showTools()
	case 7: // apply targets
		d.requestValue(TxtHotendTarget)
		d.requestValue(TxtBedTarget)
		d.showTools()
	}

	if !d.pageEvery(PageTemp, pagePeriod) {
		return
	}
	d.sendValue(TxtHotendNow, uint16(whole(d.printer.ActualTemp(HeaterE0))))
	d.sendValue(TxtBedNow, uint16(whole(d.printer.ActualTemp(HeaterBed))))
}

// Speed page
func (d *Driver) pageSpeed() {
	switch d.key {
	case 1:
		d.showTools()
	case 6: // apply
		d.requestValue(TxtFanSpeedTarget)
		d.requestValue(TxtPrintSpeedTarget)
		d.showTools()
	}

	if !d.pageEvery(PageSpeed, pagePeriod) {
		return
	}
	d.sendValue(TxtFanSpeedNow, uint16(whole(d.printer.ActualFan())))
	d.sendValue(TxtPrintSpeedNow, uint16(whole(d.printer.FeedratePercent())))
}

// System page, both audio variants
func (d *Driver) pageSystem() {
	switch d.key {
	case 1:
		d.ChangePage(PageMain)
		if d.audioSaved != d.audio {
			d.audioSaved = d.audio
			d.printer.InjectCommands(cmdSaveSettings)
		}
	case 2:
		d.sendPrinterStats()
		d.ChangePage(PagePrinterStats)
	case 4:
		d.audio = !d.audio
		d.showSystem()
		d.sendAudio(d.audio)
	case 5:
		d.sendText(TxtAboutDeviceName, d.device.Name)
		d.sendText(TxtAboutFWVersion, d.device.Firmware)
		d.sendText(TxtAboutPrintVolume, d.device.BuildVolume)
		d.sendText(TxtAboutTechSupport, d.device.Support)
		d.ChangePage(PageAbout)
	case 6:
		d.ChangePage(PageRecord)
	}
}

// About page
func (d *Driver) pageAbout() {
	if d.key == 1 {
		d.showSystem()
	}
}

// statsReturnKey is the value the statistics page reports for its return button
const statsReturnKey = 0x0999

// Printer statistics
func (d *Driver) pagePrinterStats() {
	if d.key == statsReturnKey {
		d.showSystem()
	}
}

func (d *Driver) sendPrinterStats() {
	s := d.printer.Stats()
	d.sendText(TxtStatsTotal, "Total: "+protocol.Utoa(uint32(s.TotalPrints)))
	d.sendText(TxtStatsFinished, "Finished: "+protocol.Utoa(uint32(s.FinishedPrints)))
	d.sendText(TxtStatsFailed, "Failed: "+protocol.Itoa(int(s.TotalPrints)-int(s.FinishedPrints)))
	d.sendText(TxtStatsTime, "Time: "+protocol.FormatDuration(s.PrintTime))
	d.sendText(TxtStatsLongest, "Longest: "+protocol.FormatDuration(s.LongestPrint))

	used := s.FilamentUsed
	if used < 0 {
		used = 0
	}
	metres := int32(used / 1000)
	rest := int32(used/100) % 10
	d.sendText(TxtStatsFilament, "Filament Used: "+protocol.Itoa(int(metres))+"."+protocol.Itoa(int(rest))+"m")
}
