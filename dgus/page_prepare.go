package dgus

import "kobrafw/protocol"

// Filament change temperatures
const (
	filamentMinTemp    = 220
	filamentTargetTemp = 230
)

// Prepare page
func (d *Driver) pagePrepare() {
	switch d.key {
	case 1:
		d.ChangePage(PageMain)
	case 2:
		d.ChangePage(PageLevelingSettings)
	case 3:
		d.ChangePage(PagePreheat)
		d.sendText(TxtPreheatHotend, d.tempPair(HeaterE0))
		d.sendText(TxtPreheatBed, d.tempPair(HeaterBed))
	case 4:
		d.sendText(TxtFilamentTemp, d.tempPair(HeaterE0))
		d.ChangePage(PageFilament)
	}
}

// Auto offset page, drives the M1024 offset wizard
func (d *Driver) pageAutoOffset() {
	if d.key == 1 {
		d.ChangePage(PageLevelingSettings)
		return
	}
	if gcode, ok := autoOffsetCommands[d.key]; ok {
		d.printer.InjectCommands(gcode)
	}
}

// Leveling settings page
func (d *Driver) pageLevelingSettings() {
	switch d.key {
	case 1:
		d.ChangePage(PagePrepare)
	case 2:
		if !d.printer.IsPrinting() {
			d.ChangePage(PageLevelEnsure)
		}
	case 3:
		d.sendText(TxtLevelOffset, protocol.FormatFloat(d.printer.ZOffset()))
		d.ChangePage(PageZOffset)
	}
}

// Z offset page
func (d *Driver) pageZOffset() {
	switch d.key {
	case 1:
		d.ChangePage(PageLevelingSettings)
	case 2:
		d.nudgeZOffset(false)
	case 3:
		d.nudgeZOffset(true)
	case 4:
		d.log.Debugf("z offset %s", protocol.FormatFloat(d.printer.ZOffset()))
		d.saveZOffset()
		d.ChangePage(PagePrepare)
	}
}

// Preheat page
func (d *Driver) pagePreheat() {
	switch d.key {
	case 1:
		d.ChangePage(PagePrepare)
	case 2:
		d.preheat(d.limits.PLA)
	case 3:
		d.preheat(d.limits.ABS)
	}

	if !d.pageEvery(PagePreheat, pagePeriod) {
		return
	}
	d.sendText(TxtPreheatHotend, d.tempPair(HeaterE0))
	d.sendText(TxtPreheatBed, d.tempPair(HeaterBed))
}

func (d *Driver) preheat(p Preset) {
	d.printer.SetTargetTemp(HeaterE0, float32(p.Hotend))
	d.printer.SetTargetTemp(HeaterBed, float32(p.Bed))
	d.ChangePage(PagePreheat)
}

// Filament change page
func (d *Driver) pageFilament() {
	p := d.printer
	switch d.key {
	case 1:
		d.filament = filamentNone
		d.ChangePage(PagePrepare)
	case 2: // load
		if p.ActualTemp(HeaterE0) < filamentMinTemp {
			d.filament = filamentNone
			d.ChangePage(PageFilamentHeat)
			break
		}
		d.raiseFilamentTemp()
		d.filament = filamentIn
	case 3: // unload
		if p.ActualTemp(HeaterE0) < filamentMinTemp {
			d.filament = filamentNone
			d.ChangePage(PageFilamentHeat)
			break
		}
		d.raiseFilamentTemp()
		if d.filament == filamentNone {
			p.InjectCommands(cmdUnloadFirstIn)
		}
		d.filament = filamentOut
	case 4: // stop
		p.SetTargetTemp(HeaterE0, 0)
		d.filament = filamentNone
	}

	if !d.pageEvery(PageFilament, filamentPeriod) {
		return
	}
	d.sendText(TxtFilamentTemp, d.tempPair(HeaterE0))

	if p.IsPrinting() || !p.CanMoveExtruder() || p.CommandsInQueue() {
		return
	}
	switch d.filament {
	case filamentIn:
		p.InjectCommands(cmdLoadFilament)
	case filamentOut:
		p.InjectCommands(cmdUnloadFilament)
	}
}

func (d *Driver) raiseFilamentTemp() {
	if d.printer.TargetTemp(HeaterE0) < filamentTargetTemp {
		d.printer.SetTargetTemp(HeaterE0, filamentTargetTemp)
	}
}

// Nozzle too cold for a filament change
func (d *Driver) pageFilamentHeat() {
	if d.key == 1 {
		d.printer.SetTargetTemp(HeaterE0, filamentTargetTemp)
		d.ChangePage(PageFilament)
	}
}

// Auto leveling confirmation
func (d *Driver) pageLevelEnsure() {
	switch d.key {
	case 1:
		d.printerState = PrinterProbing
		if d.preheatLeveling &&
			(d.printer.TargetTemp(HeaterE0) < d.limits.LevelingNozzleTemp ||
				d.printer.TargetTemp(HeaterBed) < d.limits.LevelingBedTemp) {
			d.printer.SetTargetTemp(HeaterE0, d.limits.LevelingNozzleTemp)
			d.printer.SetTargetTemp(HeaterBed, d.limits.LevelingBedTemp)
			d.ChangePage(PageProbePreheating)
			return
		}
		d.ChangePage(PageLeveling)
	case 2:
		d.ChangePage(PageLevelingSettings)
	}
}

// Probe preheating, waits for both heaters to settle at the leveling temperatures
func (d *Driver) pageProbePreheating() {
	if !d.pageEvery(PageProbePreheating, probeHeatPeriod) {
		return
	}
	if near(d.printer.ActualTemp(HeaterE0), d.limits.LevelingNozzleTemp) &&
		near(d.printer.ActualTemp(HeaterBed), d.limits.LevelingBedTemp) {
		d.ChangePage(PageProbePrecheck)
	}
}

func near(actual, target float32) bool {
	diff := actual - target
	return diff > -2 && diff < 2
}

// Leveling failed, nozzle too high above the bed
func (d *Driver) pageLevelingFailed() {
	if d.key == 1 {
		d.ChangePage(PageLevelingSettings)
	}
}

// Probe precheck. The user taps the probe and the panel waits for the trigger.
func (d *Driver) pageProbePrecheck() {
	p := d.printer
	if !d.probeTared {
		p.ProbeTare()
		if p.ProbeTriggered() {
			d.log.Warnf("probe triggered before the precheck")
			d.endProbeCheck(PageProbePrecheckFail)
			return
		}
		d.probeTared = true
	}

	if d.key == 1 {
		d.endProbeCheck(PageLevelingSettings)
		return
	}

	if !d.every(&d.probeCheckTime, probeCheckPeriod) {
		return
	}
	triggered := p.ProbeTriggered()
	if !d.probeLast && triggered {
		d.probeLast = triggered
		d.endProbeCheck(PageProbePrecheckOK)
		return
	}
	d.probeLast = triggered

	d.probeCounter++
	if d.probeCounter > probeCheckPolls {
		d.log.Warnf("probe precheck timed out")
		d.endProbeCheck(PageProbePrecheckFail)
	}
}

func (d *Driver) endProbeCheck(next Page) {
	d.probeCounter = 0
	d.probeTared = false
	d.ChangePage(next)
}

// Probe precheck passed, start probing
func (d *Driver) pageProbePrecheckOK() {
	d.ChangePage(PageLeveling)
	d.printer.InjectCommands(cmdProbeAndLevel)
}

// Probe precheck failed
func (d *Driver) pageProbePrecheckFailed() {
	if d.key == 1 {
		d.ChangePage(PageLevelingSettings)
	}
}
