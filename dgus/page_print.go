package dgus

import "kobrafw/protocol"

// Main page
func (d *Driver) pageMain() {
	switch d.key {
	case 1: // print
		d.boxPage = 0
		d.deselectFile()
		d.ChangePage(PageFile)
		d.sendFileList(0)
	case 2:
		d.showTools()
	case 3:
		d.ChangePage(PagePrepare)
	case 4:
		d.showSystem()
	}
}

// File list
func (d *Driver) pageFile() {
	switch d.key {
	case 1: // return
		d.ChangePage(PageMain)
		d.deselectFile()

	case 2: // page up
		if d.boxPage > 0 {
			d.boxPage--
			d.deselectFile()
			d.sendFileList(d.boxPage * FilesPerPage)
		}

	case 3: // page down
		if (d.boxPage+1)*FilesPerPage < d.fileCount() {
			d.boxPage++
			d.deselectFile()
			d.sendFileList(d.boxPage * FilesPerPage)
		}

	case 4: // refresh
		if !d.printer.IsMediaInserted() {
			d.clock.Sleep(500)
		}
		if d.files != nil {
			d.files.Reset()
		}
		d.boxPage = 0
		d.deselectFile()
		d.sendFileList(0)

	case 6: // start print
		d.openSelected()

	case 7, 8, 9, 10, 11:
		d.selectFile(int(d.key) - 6)
	}
}

// selectFile highlights box (1..5) when it holds an entry
func (d *Driver) selectFile(box int) {
	if d.boxPage*FilesPerPage+box-1 >= d.fileCount() {
		return
	}
	d.boxIndex = box
	d.sendColor(descriptAddr(box-1), ColorRed)
	if d.boxIndexLast != 0 && d.boxIndexLast != box {
		d.sendColor(descriptAddr(d.boxIndexLast-1), ColorBlue)
	}
	d.boxIndexLast = box
}

func (d *Driver) deselectFile() {
	if d.boxIndex > 0 {
		d.sendColor(descriptAddr(d.boxIndex-1), ColorBlue)
		d.boxIndex = 0
	}
}

// navigator returns the file navigator while a card is inserted
func (d *Driver) navigator() *Navigator {
	if d.files == nil || !d.printer.IsMediaInserted() {
		return nil
	}
	return d.files
}

func (d *Driver) fileCount() int {
	nav := d.navigator()
	if nav == nil {
		return 0
	}
	return nav.Count()
}

func (d *Driver) sendFileList(start int) {
	var window []Entry
	if nav := d.navigator(); nav != nil {
		window = nav.Window(start)
		if err := nav.Err(); err != nil {
			d.log.Warnf("media listing of %s failed: %v", nav.Dir(), err)
		}
	}
	for i := 0; i < FilesPerPage; i++ {
		name := ""
		if i < len(window) {
			name = window[i].DisplayName()
		}
		d.sendText(fileTextAddr(i), name)
	}
}

// openSelected enters the selected folder or starts printing the selected file
func (d *Driver) openSelected() {
	nav := d.navigator()
	if d.boxIndex < 1 || d.boxIndex > FilesPerPage || nav == nil {
		return
	}
	e, ok := nav.Entry(d.boxPage*FilesPerPage + d.boxIndex - 1)
	if !ok {
		return
	}

	if e.Dir {
		d.deselectFile()
		if e.IsUp {
			nav.UpDir()
		} else {
			nav.ChangeDir(e.Name)
		}
		d.boxPage = 0
		d.sendFileList(0)
		return
	}

	d.sendColor(descriptAddr(d.boxIndex-1), ColorBlue)

	// starting a new job drops the pending recovery
	if d.printerState == PrinterResumingFromOutage {
		d.printer.InjectCommands(cmdRecoverCancel)
		d.printerState = PrinterIdle
	}
	if d.caseLight {
		d.printer.SetCaseLight(true)
	}

	d.log.Infof("printing %s", e.Path)
	d.printer.PrintFile(e.Path)

	d.sendText(TxtPrintName, truncate(e.Name, 17))
	d.sendText(TxtPrintSpeed, protocol.Utoa(whole(d.printer.FeedratePercent())))
	d.sendText(TxtPrintProgress, protocol.Utoa(uint32(d.printer.ProgressPercent())))
	d.sendText(TxtPrintTime, protocol.FormatHoursMinutes(0))
	d.ChangePage(PageStatus2)
}

// Print status, paused. Shows resume.
func (d *Driver) pageStatusPaused() {
	v := &d.paused
	switch d.key {
	case 1:
		d.statusReturn()
	case 2: // resume
		if d.pauseState == PauseIdle || d.pauseState == PauseFilamentLack {
			if !d.printer.FilamentRunoutState() {
				d.printerState = PrinterPrinting
				d.pauseState = PauseIdle
				d.printer.ResumePrint()
				d.ChangePage(PageStatus2)
			} else {
				d.popup = PopupFilamentLack
			}
			v.flash = d.clock.Millis()
		} else {
			d.printer.SetUserConfirmed()
		}
	case 3:
		d.statusStop()
	case 4:
		d.statusSettings(v)
	}
	d.statusRefresh(v)
}

// Print status, printing. Shows pause.
func (d *Driver) pageStatusPrinting() {
	v := &d.printing
	switch d.key {
	case 1:
		d.statusReturn()
	case 2: // pause
		if d.printer.IsPrintingFromMedia() {
			d.printer.PausePrint()
			d.printerState = PrinterPausing
			d.pauseState = PauseIdle
			d.ChangePage(PageWaitPause)
		}
	case 3:
		d.statusStop()
	case 4:
		d.statusSettings(v)
	}
	d.statusRefresh(v)
}

func (d *Driver) statusReturn() {
	if !d.printer.IsPrintingFromMedia() {
		d.ChangePage(PageFile)
	}
}

func (d *Driver) statusStop() {
	if d.printer.IsPrintingFromMedia() {
		d.ChangePage(PageStopConfirm)
	}
}

func (d *Driver) statusSettings(v *printView) {
	if d.caseLight {
		d.ChangePage(PagePrintingSetting)
		d.sendValue(AddrPrintSettingLEDState, boolWord(d.printer.CaseLight()))
	} else {
		d.ChangePage(PageAdjust)
	}
	d.sendValue(TxtAdjustHotend, uint16(whole(d.printer.TargetTemp(HeaterE0))))
	d.sendValue(TxtAdjustBed, uint16(whole(d.printer.TargetTemp(HeaterBed))))
	v.feedrate = uint16(whole(d.printer.FeedratePercent()))
	d.sendValue(TxtAdjustSpeed, v.feedrate)
}

func (d *Driver) statusRefresh(v *printView) {
	if !d.every(&v.flash, pagePeriod) {
		return
	}
	if fr := uint16(whole(d.printer.FeedratePercent())); fr != v.feedrate {
		v.feedrate = fr
		d.sendText(TxtPrintSpeed, protocol.Utoa(uint32(fr)))
	}
	if p := d.printer.ProgressPercent(); p != v.progress {
		v.progress = p
		d.sendText(TxtPrintProgress, protocol.Utoa(uint32(p)))
	}
	d.sendText(TxtPrintTime, protocol.FormatHoursMinutes(d.printer.ElapsedSeconds()/60))
}

// Print adjust page, used without the case light
func (d *Driver) pageAdjust() {
	switch d.key {
	case 1, 7:
		d.adjustSaveAndBack()
	case 2:
		d.nudgeZOffset(false)
	case 3:
		d.nudgeZOffset(true)
	case 4:
		d.toggleCaseLight(AddrPrintSettingLEDState)
	case 5:
		d.ChangePage(PageDone)
	}
}

// Print settings page, used with the case light
func (d *Driver) pagePrintingSetting() {
	switch d.key {
	case 1:
		d.showPrintStatus()
	case 2:
		d.nudgeZOffset(false)
	case 3:
		d.nudgeZOffset(true)
	case 4:
		d.toggleCaseLight(AddrPrintSettingLEDState)
	case 5:
		d.ChangePage(PageDone)
	case 7:
		d.adjustSaveAndBack()
	}
}

// adjustSaveAndBack pulls the edited values from the panel, saves a changed offset and returns
func (d *Driver) adjustSaveAndBack() {
	d.requestValue(TxtAdjustBed)
	d.requestValue(TxtAdjustSpeed)
	d.requestValue(TxtAdjustHotend)
	d.requestValue(TxtFanSpeedTarget)
	d.saveZOffset()
	d.showPrintStatus()
}

// showPrintStatus returns to the status page matching the job state
func (d *Driver) showPrintStatus() {
	switch d.printerState {
	case PrinterPrinting:
		d.ChangePage(PageStatus2)
	case PrinterPaused:
		d.ChangePage(PageStatus1)
	}
}

func (d *Driver) nudgeZOffset(up bool) {
	var ok bool
	if up {
		ok = d.raiseZOffset()
	} else {
		ok = d.lowerZOffset()
	}
	if ok {
		d.zOffsetDirty = true
	}
}

// toggleCaseLight flips the case light and mirrors it to the indicator at addr
func (d *Driver) toggleCaseLight(addr uint16) {
	if !d.caseLight {
		return
	}
	on := !d.printer.CaseLight()
	d.printer.SetCaseLight(on)
	d.sendValue(addr, boolWord(on))
}

// Print finished
func (d *Driver) pagePrintFinish() {
	if d.key != 1 {
		return
	}
	if d.caseLight {
		d.printer.SetCaseLight(false)
	}
	d.ChangePage(PageMain)
	d.printer.SetFeedratePercent(100)
	d.printer.ResetPrintTimer()
}

// Filament ran out
func (d *Driver) pageFilamentLack() {
	if d.key == 1 {
		d.showPrintStatus()
	}
}

// Confirm stopping the current print
func (d *Driver) pageStopConfirm() {
	switch d.key {
	case 1:
		if d.printer.IsPrintingFromMedia() {
			d.printerState = PrinterStopping
			d.printer.StopPrint()
			d.messageIndex = 6
			d.ChangePage(PageMain)
		} else {
			if d.printerState == PrinterResumingFromOutage {
				d.printer.InjectCommands(cmdRecoverCancel)
			}
			d.printerState = PrinterIdle
		}
		d.printer.SetFeedratePercent(100)
		d.printer.ResetPrintTimer()
	case 2:
		d.showPrintStatus()
	}
}

// No media found
func (d *Driver) pageNoSD() {
	if d.key != 1 {
		return
	}
	if d.caseLight {
		d.printer.SetCaseLight(false)
	}
	d.ChangePage(PageMain)
}

// Power outage recovery prompt
func (d *Driver) pageOutageRecovery() {
	switch d.key {
	case 1: // resume
		d.ChangePage(PageOutageRecovery)
		d.sendText(TxtOutageRecoveryFile, truncate(d.printer.RecoveryFilename(), 17))
		d.sendText(TxtPrintSpeed, protocol.Utoa(whole(d.printer.FeedratePercent())))
		d.sendText(TxtPrintProgress, protocol.Utoa(uint32(d.printer.ProgressPercent())))
		d.ChangePage(PageStatus2)
		if d.caseLight {
			d.printer.InjectCommands(cmdRecoverResumeLight)
		} else {
			d.printer.InjectCommands(cmdRecoverResume)
		}
	case 2: // cancel
		d.printerState = PrinterIdle
		d.ChangePage(PageMain)
		if d.caseLight {
			d.printer.InjectCommands(cmdRecoverCancelLight)
		} else {
			d.printer.InjectCommands(cmdRecoverCancel)
		}
	}
}

// pageReturn serves the popups whose only button goes back
func (d *Driver) pageReturn() {
	if d.key == 1 {
		d.ChangePage(d.pageLast)
	}
}

// pageReturnAny serves the popups where both buttons go back
func (d *Driver) pageReturnAny() {
	if d.key == 1 || d.key == 2 {
		d.ChangePage(d.pageLast)
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
