package dgus

import (
	"testing"
	"testing/fstest"

	"kobrafw/core"
	"kobrafw/protocol"
)

func TestPrinterKilled(t *testing.T) {
	tests := []struct {
		err       string
		component string
		want      Page
	}{
		{MsgHeatingFailed, ComponentBed, PageAbnormalBedHeater},
		{MsgHeatingFailed, ComponentHotend, PageAbnormalHotHeater},
		{MsgThermalRunaway, ComponentBed, PageAbnormalBedHeater},
		{MsgThermalRunaway, ComponentHotend, PageAbnormalHotHeater},
		{MsgErrMinTemp, ComponentBed, PageAbnormalBedNTC},
		{MsgErrMaxTemp, ComponentHotend, PageAbnormalHotNTC},
		{MsgHomingFailed, ComponentX, PageAbnormalXEndstop},
		{MsgHomingFailed, ComponentY, PageAbnormalYEndstop},
		{MsgHomingFailed, ComponentZ, PageAbnormalZEndstop},
		{"Something else", ComponentZ, PageMain},
	}

	for _, tt := range tests {
		h := newHarness(t)
		h.goTo(PageMain)
		h.d.PrinterKilled(tt.err, tt.component)
		if h.d.Page() != tt.want {
			t.Errorf("%s/%s: expected page %d, got %d", tt.err, tt.component, tt.want, h.d.Page())
		}
	}
}

func TestTimerEvents(t *testing.T) {
	h := newHarness(t)
	h.d.TimerEvent(TimerStarted)
	if h.d.State() != PrinterPrinting || h.p.endstops {
		t.Fatalf("Expected printing with soft endstops off, got %s/%v", h.d.State(), h.p.endstops)
	}

	h.p.elapsed = 65 * 60
	h.d.TimerEvent(TimerStopped)
	h.expectPage(t, PagePrintFinish)
	if !h.sent(protocol.TextFrame(TxtFinishTime, "  1 H   5 M")) {
		t.Error("Expected finish time")
	}
	if h.d.State() != PrinterStopping || !h.p.endstops {
		t.Errorf("Expected stopping with soft endstops on, got %s/%v", h.d.State(), h.p.endstops)
	}

	h.press(1)
	h.expectPage(t, PageMain)
	if h.p.timerRest != 1 {
		t.Error("Expected print timer reset")
	}
}

func TestMediaRemovedDuringPrint(t *testing.T) {
	h := newHarness(t)
	h.d.TimerEvent(TimerStarted)
	h.d.StatusChange(MsgMediaRemoved)
	if h.d.State() != PrinterStoppingMediaRemoved {
		t.Fatalf("Expected media removed state, got %s", h.d.State())
	}
	h.d.TimerEvent(TimerStopped)
	h.expectPage(t, PageNoSD)

	h.press(1)
	h.expectPage(t, PageMain)
}

func TestMediaRemovedClearsFileList(t *testing.T) {
	fsys := fstest.MapFS{"cube.gcode": {Data: []byte("G28")}}
	h := newHarness(t, WithMedia(fsys))
	h.goTo(PageMain)

	h.press(1)
	h.expectPage(t, PageFile)
	if !h.sent(protocol.TextFrame(fileTextAddr(0), "cube.gcode")) {
		t.Fatal("Expected cube.gcode listed")
	}

	h.p.media = false
	h.link.Reset()
	h.d.MediaEvent(MediaRemoved)
	if h.sent(protocol.TextFrame(fileTextAddr(0), "cube.gcode")) {
		t.Error("Expected no files listed after removal")
	}
	if !h.sent(protocol.TextFrame(fileTextAddr(0), "")) {
		t.Error("Expected the first file box cleared")
	}

	h.link.Reset()
	h.press(7)
	if h.sent(protocol.ColorFrame(descriptAddr(0), ColorRed)) {
		t.Error("Expected no selection without a card")
	}
	h.press(6)
	if len(h.p.printed) != 0 {
		t.Errorf("Expected nothing printed, got %v", h.p.printed)
	}
	h.expectPage(t, PageFile)

	h.p.media = true
	h.link.Reset()
	h.d.MediaEvent(MediaInserted)
	if !h.sent(protocol.TextFrame(fileTextAddr(0), "cube.gcode")) {
		t.Error("Expected cube.gcode listed again after insertion")
	}
}

func TestTimerStoppedWhileIdle(t *testing.T) {
	h := newHarness(t)
	h.goTo(PageTool)
	h.d.TimerEvent(TimerStopped)
	h.expectPage(t, PageTool)
}

func TestFilamentRunout(t *testing.T) {
	t.Run("sensor pin", func(t *testing.T) {
		gpio := &pinGPIO{level: true}
		h := newHarness(t, WithRunoutSensor(gpio, 7))
		h.p.fromMedia = true
		h.d.TimerEvent(TimerStarted)
		h.goTo(PageStatus2)

		h.d.FilamentRunout()
		if h.p.paused != 1 || h.d.State() != PrinterPausing || h.d.Pause() != PauseFilamentLack {
			t.Fatalf("Expected filament pause, got %s paused=%d", h.d.State(), h.p.paused)
		}
		if len(h.beeper.played) != 1 || h.beeper.played[0] != TuneFilamentOut.Name {
			t.Errorf("Expected filament out tune, got %v", h.beeper.played)
		}

		h.d.IdleLoop()
		h.expectPage(t, PageFilamentLack)

		// popup fires once
		h.d.ChangePage(PageStatus1)
		h.d.IdleLoop()
		h.expectPage(t, PageStatus1)

		// pausing with filament lack keeps the lack page up
		h.d.StatusChange(MsgPrintPaused)
		h.expectPage(t, PageStatus1)
		if h.d.State() != PrinterPaused {
			t.Errorf("Expected paused, got %s", h.d.State())
		}
	})

	t.Run("sensor reports filament", func(t *testing.T) {
		gpio := &pinGPIO{level: false}
		h := newHarness(t, WithRunoutSensor(gpio, 7))
		h.p.fromMedia = true
		h.d.FilamentRunout()
		if h.p.paused != 0 || len(h.beeper.played) != 0 {
			t.Error("Expected no pause when the sensor sees filament")
		}
	})

	t.Run("printer state fallback", func(t *testing.T) {
		h := newHarness(t)
		h.p.runout = true
		h.p.fromMedia = true
		h.d.FilamentRunout()
		if h.p.paused != 1 {
			t.Error("Expected pause from the printer runout state")
		}
	})
}

func TestConfirmationRequest(t *testing.T) {
	h := newHarness(t)
	h.p.fromMedia = true
	h.d.TimerEvent(TimerStarted)
	h.goTo(PageStatus2)
	h.press(2)

	h.d.ConfirmationRequest(MsgNozzleParked)
	h.expectPage(t, PageStatus1)
	if h.d.State() != PrinterPaused {
		t.Fatalf("Expected paused, got %s", h.d.State())
	}

	h.d.ConfirmationRequest(MsgHeaterTimeout)
	if h.d.Pause() != PauseHeaterTimedOut {
		t.Errorf("Expected heater timeout, got %d", h.d.Pause())
	}
	if len(h.beeper.played) != 1 || h.beeper.played[0] != TuneHeaterTimedOut.Name {
		t.Errorf("Expected heater timeout tune, got %v", h.beeper.played)
	}

	// resume while timed out confirms the reheat instead
	h.press(2)
	if h.p.confirmed != 1 || h.p.resumed != 0 {
		t.Errorf("Expected user confirmation, got confirmed=%d resumed=%d", h.p.confirmed, h.p.resumed)
	}

	h.d.ConfirmationRequest(MsgReheatDone)
	if h.p.lastInjected() != "M108" || h.d.Pause() != PauseIdle {
		t.Errorf("Expected M108 and idle pause, got %q/%d", h.p.lastInjected(), h.d.Pause())
	}

	h.d.ConfirmationRequest(MsgFilamentPurging)
	if h.d.Pause() != PausePurgingFilament {
		t.Errorf("Expected purging, got %d", h.d.Pause())
	}
}

func TestStatusChangeProbing(t *testing.T) {
	h := newHarness(t)
	h.goTo(PageLevelEnsure)
	h.press(1)
	if h.d.State() != PrinterProbing {
		t.Fatalf("Expected probing, got %s", h.d.State())
	}
	h.expectPage(t, PageLeveling)

	h.p.runout = true
	h.d.StatusChange(MsgProbingFailed)
	h.expectPage(t, PageAbnormalProbe)
	if h.p.lastInjected() != "G1 Z50 F500" {
		t.Errorf("Expected probe lift, got %q", h.p.lastInjected())
	}
	if h.d.State() != PrinterIdle {
		t.Errorf("Expected idle, got %s", h.d.State())
	}
	if h.p.runout {
		t.Error("Probing falls through to the printing case and clears the runout state")
	}

	// heater messages are ignored while probing
	h.d.printerState = PrinterProbing
	h.d.StatusChange(MsgExtruderHeating)
	if h.d.hotendState != HeaterOff {
		t.Error("Probing marks every message as matched")
	}
}

func TestStatusChangeHeaters(t *testing.T) {
	h := newHarness(t)
	h.d.StatusChange(MsgExtruderHeating)
	h.d.StatusChange(MsgBedHeating)
	if h.d.hotendState != HeaterTempSet || h.d.bedState != HeaterTempSet {
		t.Errorf("Expected both heaters set, got %d/%d", h.d.hotendState, h.d.bedState)
	}
}

func TestStatusChangeReheating(t *testing.T) {
	h := newHarness(t)
	h.d.TimerEvent(TimerStarted)
	h.goTo(PageStatus1)
	h.d.StatusChange(MsgReheating)
	h.expectPage(t, PageStatus2)
}

func TestLeveling(t *testing.T) {
	h := newHarness(t, WithPreheatBeforeLeveling(true))
	h.goTo(PageLevelEnsure)

	h.press(1)
	h.expectPage(t, PageProbePreheating)
	if h.p.target != [2]float32{120, 60} {
		t.Fatalf("Expected leveling targets, got %v", h.p.target)
	}

	h.p.actual = [2]float32{110, 60}
	h.clock.Set(500)
	h.d.IdleLoop()
	h.expectPage(t, PageProbePreheating)

	h.p.actual = [2]float32{121.5, 59}
	h.clock.Set(1000)
	h.d.IdleLoop()
	h.expectPage(t, PageProbePrecheck)
	if h.p.tares != 0 {
		t.Error("Tare happens on the precheck page")
	}

	h.clock.Set(1100)
	h.d.IdleLoop()
	if h.p.tares != 1 {
		t.Fatalf("Expected one tare, got %d", h.p.tares)
	}

	h.p.triggered = true
	h.clock.Set(1400)
	h.d.IdleLoop()
	h.expectPage(t, PageProbePrecheckOK)

	h.d.IdleLoop()
	h.expectPage(t, PageLeveling)
	if h.p.lastInjected() != "M851 Z0\nG28\nG29" {
		t.Errorf("Expected probe and level, got %q", h.p.lastInjected())
	}

	h.d.LevelingStart()
	if !h.d.Leveling() {
		t.Error("Expected leveling in progress")
	}
	h.d.LevelingDone()
	if h.d.Leveling() || h.p.zOffset != 0.05 || h.p.lastInjected() != "M500" {
		t.Errorf("Expected offset 0.05 saved, got %v %q", h.p.zOffset, h.p.lastInjected())
	}
	if h.p.target != [2]float32{0, 0} {
		t.Errorf("Expected heaters off after leveling, got %v", h.p.target)
	}
	h.d.IdleLoop()
	h.expectPage(t, PageLevelingSettings)
}

func TestLevelingWithoutPreheat(t *testing.T) {
	h := newHarness(t)
	h.goTo(PageLevelEnsure)
	h.press(1)
	h.expectPage(t, PageLeveling)
	if h.p.target != [2]float32{0, 0} {
		t.Errorf("Expected no preheat, got %v", h.p.target)
	}
}

func TestProbePrecheckFailures(t *testing.T) {
	t.Run("triggered early", func(t *testing.T) {
		h := newHarness(t)
		h.p.triggered = true
		h.goTo(PageProbePrecheck)
		h.d.IdleLoop()
		h.expectPage(t, PageProbePrecheckFail)

		h.press(1)
		h.expectPage(t, PageLevelingSettings)

		// the next visit tares again
		h.p.triggered = false
		h.goTo(PageProbePrecheck)
		h.d.IdleLoop()
		if h.p.tares != 2 {
			t.Errorf("Expected a second tare, got %d", h.p.tares)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		h := newHarness(t)
		h.goTo(PageProbePrecheck)
		for i := 1; i <= probeCheckPolls; i++ {
			h.clock.Set(uint32(i * probeCheckPeriod))
			h.d.IdleLoop()
		}
		h.expectPage(t, PageProbePrecheck)

		h.clock.Advance(probeCheckPeriod)
		h.d.IdleLoop()
		h.expectPage(t, PageProbePrecheckFail)
	})

	t.Run("cancel", func(t *testing.T) {
		h := newHarness(t)
		h.goTo(PageProbePrecheck)
		h.d.IdleLoop()
		h.press(1)
		h.expectPage(t, PageLevelingSettings)
		if h.d.probeTared || h.d.probeCounter != 0 {
			t.Error("Cancel should reset the precheck")
		}
	})
}

func TestPopups(t *testing.T) {
	h := newHarness(t)
	h.goTo(PageMain)

	h.d.RaisePopup(PopupT0Error)
	h.d.IdleLoop()
	h.expectPage(t, PageAbnormal)
	h.press(1)
	h.expectPage(t, PageMain)

	h.d.RaisePopup(PopupStopWait)
	h.d.IdleLoop()
	h.expectPage(t, PageWaitStop)
	h.press(2)
	h.expectPage(t, PageMain)

	h.p.elapsed = 3 * 3600
	h.d.RaisePopup(PopupPrintFinish)
	h.d.IdleLoop()
	h.expectPage(t, PagePrintFinish)
	if !h.sent(protocol.TextFrame(TxtFinishTime, "  3 H   0 M")) {
		t.Error("Expected finish time")
	}
}

func TestOutageRecoveryPage(t *testing.T) {
	h := newHarness(t, WithCaseLight(true))
	h.p.recovery = "a_very_long_model_name.gcode"
	h.d.PowerLossRecovery()
	h.goTo(PageOutageRecovery)

	h.press(1)
	h.expectPage(t, PageStatus2)
	if h.p.lastInjected() != "M355 S1\nM1000" {
		t.Errorf("Expected recovery with light, got %q", h.p.lastInjected())
	}
	if !h.sent(protocol.TextFrame(TxtOutageRecoveryFile, "a_very_long_model")) {
		t.Error("Expected the filename cut to 17 characters")
	}

	h = newHarness(t)
	h.d.PowerLossRecovery()
	h.goTo(PageOutageRecovery)
	h.press(2)
	h.expectPage(t, PageMain)
	if h.p.lastInjected() != "M1000 C" || h.d.State() != PrinterIdle {
		t.Errorf("Expected recovery cancelled, got %q %s", h.p.lastInjected(), h.d.State())
	}
}

func TestPowerLossFrame(t *testing.T) {
	h := newHarness(t)
	h.d.PowerLoss()
	want := []byte{0x5A, 0xA5, 0x05, 0x82, 0x00, 0x82, 0x00, 0x00}
	if !h.sent(want) {
		t.Errorf("Expected % X, got % X", want, h.link.Bytes())
	}
}

func TestHeaterFaultValidation(t *testing.T) {
	h := newHarness(t)
	h.p.actual = [2]float32{300, 25}
	for i := 1; i <= HeaterFaultValidation; i++ {
		h.clock.Set(uint32(i * heaterCheckPeriod))
		h.d.IdleLoop()
	}
	found := false
	for _, e := range h.hook.AllEntries() {
		if e.Message == "extruder temperature abnormal: 300.0" {
			found = true
		}
	}
	if !found {
		t.Error("Expected extruder warning after five bad reads")
	}
}

// pinGPIO is a GPIO driver with one input level
type pinGPIO struct {
	level bool
}

func (g *pinGPIO) ConfigureOutput(core.GPIOPin) error        { return nil }
func (g *pinGPIO) ConfigureInputPullUp(core.GPIOPin) error   { return nil }
func (g *pinGPIO) ConfigureInputPullDown(core.GPIOPin) error { return nil }
func (g *pinGPIO) SetPin(core.GPIOPin, bool) error           { return nil }
func (g *pinGPIO) GetPin(core.GPIOPin) (bool, error)         { return g.level, nil }
func (g *pinGPIO) ReadPin(core.GPIOPin) bool                 { return g.level }
