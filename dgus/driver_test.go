package dgus

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"kobrafw/core"
	"kobrafw/protocol"
)

type harness struct {
	d      *Driver
	p      *fakePrinter
	link   *bytes.Buffer
	rx     *protocol.FifoBuffer
	clock  *core.ManualClock
	hook   *test.Hook
	beeper *fakeBeeper
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	h := &harness{
		p:      newFakePrinter(),
		link:   &bytes.Buffer{},
		rx:     protocol.NewFifoBuffer(256),
		clock:  &core.ManualClock{},
		hook:   hook,
		beeper: &fakeBeeper{},
	}
	reader := protocol.NewFrameReader(h.rx, h.clock.Millis)
	base := []Option{WithClock(h.clock), WithLogger(logger), WithBeeper(h.beeper)}
	h.d = New(h.link, reader, h.p, append(base, opts...)...)
	return h
}

// press delivers a key report and runs one idle pass
func (h *harness) press(key uint16) {
	h.report(KeyAddress, key)
	h.d.IdleLoop()
}

// report queues a panel read report for addr
func (h *harness) report(addr, value uint16) {
	hi, lo := protocol.EncodeAddress(addr)
	h.rx.Write([]byte{0x5A, 0xA5, 0x06, 0x83, hi, lo, 0x01, byte(value >> 8), byte(value)})
}

// goTo puts the driver on page p without sending anything
func (h *harness) goTo(p Page) {
	h.d.FakeChangePage(p)
	h.link.Reset()
}

func (h *harness) sent(frame []byte) bool {
	return bytes.Contains(h.link.Bytes(), frame)
}

func (h *harness) expectPage(t *testing.T, want Page) {
	t.Helper()
	if got := h.d.Page(); got != want {
		t.Errorf("Expected page %d, got %d", want, got)
	}
}

func TestPageHistory(t *testing.T) {
	h := newHarness(t)

	if last, last2 := h.d.History(); h.d.Page() != 1 || last != 1 || last2 != 1 {
		t.Fatalf("Expected initial history 1/1/1, got %d/%d/%d", h.d.Page(), last, last2)
	}

	h.d.ChangePage(PageMain)
	h.d.ChangePage(PageTool)
	h.d.ChangePage(PageMove)

	last, last2 := h.d.History()
	if h.d.Page() != PageMove || last != PageTool || last2 != PageMain {
		t.Errorf("Expected 128/127/121, got %d/%d/%d", h.d.Page(), last, last2)
	}
	if !h.sent(protocol.PageFrame(uint16(PageMove))) {
		t.Error("ChangePage should send the page switch frame")
	}

	h.link.Reset()
	h.d.FakeChangePage(PageTemp)
	if h.link.Len() != 0 {
		t.Errorf("FakeChangePage should not send, got % X", h.link.Bytes())
	}
	if last, _ := h.d.History(); last != PageMove {
		t.Errorf("Expected last page %d, got %d", PageMove, last)
	}
}

func TestStartup(t *testing.T) {
	h := newHarness(t)
	h.d.Startup()

	want := "J12\r\nJ17\r\n"
	if h.link.String() != want {
		t.Errorf("Expected %q, got %q", want, h.link.String())
	}
	if h.p.lastInjected() != "M420 S1 V1" {
		t.Errorf("Expected leveling enabled, got %v", h.p.injected)
	}
	if h.d.State() != PrinterIdle {
		t.Errorf("Expected idle, got %s", h.d.State())
	}
}

func TestMainTemperatureRefresh(t *testing.T) {
	h := newHarness(t)
	h.p.actual = [2]float32{25.7, 60.2}
	h.p.target = [2]float32{200, 60}

	h.clock.Set(1000)
	h.d.IdleLoop()
	if h.sent(protocol.TextFrame(TxtMainHotend, "25/200")) {
		t.Error("Temperatures should not refresh before 1500ms")
	}

	h.clock.Set(1500)
	h.d.IdleLoop()
	if !h.sent(protocol.TextFrame(TxtMainHotend, "25/200")) {
		t.Error("Expected hotend act/target text")
	}
	if !h.sent(protocol.TextFrame(TxtMainBed, "60/60")) {
		t.Error("Expected bed act/target text")
	}
}

func TestPanelRequests(t *testing.T) {
	tests := []struct {
		name  string
		addr  uint16
		value uint16
		check func(*harness) bool
	}{
		{"hotend target clamps", TxtHotendTarget, 400, func(h *harness) bool { return h.p.target[HeaterE0] == 275 }},
		{"adjust hotend", TxtAdjustHotend, 210, func(h *harness) bool { return h.p.target[HeaterE0] == 210 }},
		{"preheat hotend", TxtPreheatHotendInput, 190, func(h *harness) bool { return h.p.target[HeaterE0] == 190 }},
		{"bed target clamps", TxtBedTarget, 200, func(h *harness) bool { return h.p.target[HeaterBed] == 120 }},
		{"preheat bed", TxtPreheatBedInput, 70, func(h *harness) bool { return h.p.target[HeaterBed] == 70 }},
		{"fan clamps", TxtFanSpeedTarget, 150, func(h *harness) bool {
			return h.p.fanTarget == 100 && h.sent(protocol.ValueFrame(TxtFanSpeedNow, 100))
		}},
		{"speed clamps low", TxtPrintSpeedTarget, 10, func(h *harness) bool {
			return h.p.feedrate == 40 && h.sent(protocol.TextFrame(TxtPrintSpeed, "40"))
		}},
		{"adjust speed clamps high", TxtAdjustSpeed, 1500, func(h *harness) bool {
			return h.p.feedrate == 999 && h.sent(protocol.ValueFrame(TxtPrintSpeedTarget, 999))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.report(tt.addr, tt.value)
			h.d.IdleLoop()
			if !tt.check(h) {
				t.Errorf("Request %#04x=%d not applied", tt.addr, tt.value)
			}
		})
	}
}

func TestKeyIsClearedAfterPass(t *testing.T) {
	h := newHarness(t)
	h.goTo(PageMain)
	h.press(3)
	h.expectPage(t, PagePrepare)

	// same key is not replayed on the next pass
	h.d.IdleLoop()
	h.expectPage(t, PagePrepare)
}

func TestLCDReady(t *testing.T) {
	t.Run("last boot frame", func(t *testing.T) {
		h := newHarness(t, WithCaseLight(true), WithAudio(false))
		h.p.light = true
		h.rx.Write([]byte{0x5A, 0xA5, 0x06, 0x83, 0x00, 0x14, 0x01, 0x00, 0x72})
		h.d.IdleLoop()

		h.expectPage(t, PageMain)
		if !h.sent(protocol.AudioFrame(false)) {
			t.Error("Expected audio off frame")
		}
		if !h.sent(protocol.ValueFrame(AddrMoveDistance, 2)) {
			t.Error("Expected move distance indicator")
		}
		if !h.sent(protocol.ValueFrame(AddrSystemLEDStatus, 1)) {
			t.Error("Expected case light indicator")
		}
	})

	t.Run("outage recovery", func(t *testing.T) {
		h := newHarness(t)
		h.p.recovery = "benchy.gcode"
		h.d.PowerLossRecovery()
		h.rx.Write([]byte{0x5A, 0xA5, 0x06, 0x83, 0x00, 0x14, 0x01, 0x00, 0x72})
		h.d.IdleLoop()

		h.expectPage(t, PageOutageRecovery)
		if !h.sent(protocol.TextFrame(TxtOutageRecoveryFile, "benchy.gcode")) {
			t.Error("Expected recovery filename")
		}
		if len(h.beeper.played) != 1 || h.beeper.played[0] != TuneSOS.Name {
			t.Errorf("Expected SOS tune, got %v", h.beeper.played)
		}
	})

	t.Run("first boot frame", func(t *testing.T) {
		h := newHarness(t)
		h.rx.Write([]byte{0x5A, 0xA5, 0x06, 0x83, 0x00, 0x14, 0x01, 0x00, 0x00})
		h.d.IdleLoop()
		if len(h.beeper.played) != 1 || h.beeper.played[0] != TunePowerOn.Name {
			t.Errorf("Expected power on tune, got %v", h.beeper.played)
		}
	})
}

func TestUnmappedPageLoggedOnce(t *testing.T) {
	h := newHarness(t)
	h.goTo(155)
	h.d.IdleLoop()
	h.d.IdleLoop()

	warnings := 0
	for _, e := range h.hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	if warnings != 1 {
		t.Errorf("Expected one warning for page 155, got %d", warnings)
	}

	h.hook.Reset()
	h.goTo(PageHoming)
	h.d.IdleLoop()
	for _, e := range h.hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			t.Errorf("Homing page should be quiet, got %q", e.Message)
		}
	}
}

func TestHandlerTableCoversPanelPages(t *testing.T) {
	h := newHarness(t)
	for p := Page(121); p <= 154; p++ {
		if _, ok := h.d.handlers[p]; !ok {
			t.Errorf("Page %d has no handler", p)
		}
	}
	for _, p := range []Page{120, 155, 156} {
		if _, ok := h.d.handlers[p]; ok {
			t.Errorf("Page %d should not have a handler", p)
		}
	}
}

func TestFileSelectionAndPrint(t *testing.T) {
	fsys := fstest.MapFS{
		"a.gcode":        {Data: []byte("G28")},
		"b.gcode":        {Data: []byte("G28")},
		"models/c.gcode": {Data: []byte("G28")},
		"notes.txt":      {Data: []byte("x")},
		"z.gcode":        {Data: []byte("G28")},
	}
	h := newHarness(t, WithMedia(fsys))
	h.goTo(PageMain)

	h.press(1)
	h.expectPage(t, PageFile)
	if !h.sent(protocol.TextFrame(fileTextAddr(0), "models/")) {
		t.Error("Expected the folder listed first")
	}
	if !h.sent(protocol.TextFrame(fileTextAddr(1), "a.gcode")) {
		t.Error("Expected a.gcode in the second box")
	}

	h.link.Reset()
	h.press(8) // box 2
	if !h.sent(protocol.ColorFrame(descriptAddr(1), ColorRed)) {
		t.Error("Expected box 2 highlighted")
	}
	h.press(9) // box 3
	if !h.sent(protocol.ColorFrame(descriptAddr(1), ColorBlue)) {
		t.Error("Expected box 2 cleared when box 3 is picked")
	}

	h.link.Reset()
	h.press(11) // box 5 is empty, four entries listed
	if h.link.Len() != 0 {
		t.Errorf("Empty box should not highlight, got % X", h.link.Bytes())
	}

	h.press(6)
	if len(h.p.printed) != 1 || h.p.printed[0] != "b.gcode" {
		t.Fatalf("Expected b.gcode printing, got %v", h.p.printed)
	}
	h.expectPage(t, PageStatus2)
	if !h.sent(protocol.TextFrame(TxtPrintTime, "  0 H   0 M")) {
		t.Error("Expected zero print time")
	}
}

func TestFileFolderNavigation(t *testing.T) {
	fsys := fstest.MapFS{
		"models/c.gcode": {Data: []byte("G28")},
		"z.gcode":        {Data: []byte("G28")},
	}
	h := newHarness(t, WithMedia(fsys))
	h.goTo(PageFile)

	h.press(7)
	h.press(6)
	if len(h.p.printed) != 0 {
		t.Fatalf("Opening a folder should not print, got %v", h.p.printed)
	}
	if !h.sent(protocol.TextFrame(fileTextAddr(0), "..")) {
		t.Error("Expected the up entry inside the folder")
	}
	if !h.sent(protocol.TextFrame(fileTextAddr(1), "c.gcode")) {
		t.Error("Expected c.gcode inside the folder")
	}

	h.press(7)
	h.press(6)
	if h.d.files.Dir() != "." {
		t.Errorf("Expected root after the up entry, got %s", h.d.files.Dir())
	}
}

func TestFilePaging(t *testing.T) {
	fsys := fstest.MapFS{}
	for _, n := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		fsys[n+".gcode"] = &fstest.MapFile{Data: []byte("G28")}
	}
	h := newHarness(t, WithMedia(fsys))
	h.goTo(PageFile)

	h.press(3)
	if !h.sent(protocol.TextFrame(fileTextAddr(0), "6.gcode")) {
		t.Error("Expected the second page to start at 6.gcode")
	}
	if !h.sent(protocol.TextFrame(fileTextAddr(2), "")) {
		t.Error("Expected empty boxes past the end")
	}

	h.link.Reset()
	h.press(3)
	if h.link.Len() != 0 {
		t.Error("Paging past the end should do nothing")
	}

	h.press(2)
	if !h.sent(protocol.TextFrame(fileTextAddr(0), "1.gcode")) {
		t.Error("Expected the first page again")
	}
}

func TestMovePage(t *testing.T) {
	h := newHarness(t)
	h.goTo(PageMove)

	h.p.pos[AxisZ] = -0.4
	h.press(4)
	if h.p.pos[AxisZ] != 0 {
		t.Errorf("Expected Z raised to 0, got %v", h.p.pos[AxisZ])
	}
	if h.p.pos[AxisX] != 1 {
		t.Errorf("Expected X moved 1mm, got %v", h.p.pos[AxisX])
	}

	h.press(11)
	if !h.sent(protocol.ValueFrame(AddrMoveDistance, 3)) {
		t.Error("Expected distance indicator 3")
	}
	h.press(12)
	if h.p.pos[AxisZ] != 10 {
		t.Errorf("Expected Z at 10, got %v", h.p.pos[AxisZ])
	}

	h.p.moving = true
	h.press(2)
	if h.p.pos[AxisX] != 1 {
		t.Error("Jog should be ignored while moving")
	}
	h.p.moving = false

	h.press(13)
	if h.p.lastInjected() != "G28" {
		t.Errorf("Expected full home with untrusted XY, got %q", h.p.lastInjected())
	}
	h.p.trusted = [3]bool{true, true, false}
	h.press(13)
	if h.p.lastInjected() != "G28 Z" {
		t.Errorf("Expected Z home, got %q", h.p.lastInjected())
	}

	h.d.HomingStart()
	h.expectPage(t, PageHoming)
	h.d.HomingComplete()
	h.expectPage(t, PageMove)
}

func TestHomingCompleteReturnsToLastPage(t *testing.T) {
	h := newHarness(t)
	h.goTo(PageLevelingSettings)
	h.d.HomingStart()
	h.d.HomingComplete()
	h.expectPage(t, PageLevelingSettings)

	h.p.fromMedia = true
	h.goTo(PageStatus2)
	h.d.HomingStart()
	h.expectPage(t, PageStatus2)
}

func TestZOffsetSavedOnce(t *testing.T) {
	h := newHarness(t)
	h.goTo(PageZOffset)

	h.press(3)
	h.press(3)
	if len(h.p.babysteps) != 2 || h.p.babysteps[0] != 0.05 {
		t.Errorf("Expected two babysteps of 0.05, got %v", h.p.babysteps)
	}
	if !h.sent(protocol.TextFrame(TxtLevelOffset, "0.10")) {
		t.Error("Expected offset text 0.10")
	}

	h.press(4)
	h.expectPage(t, PagePrepare)
	if h.p.lastInjected() != "M500" {
		t.Errorf("Expected M500, got %v", h.p.injected)
	}

	h.goTo(PageZOffset)
	n := len(h.p.injected)
	h.press(4)
	if len(h.p.injected) != n {
		t.Errorf("Unchanged offset should not save, got %v", h.p.injected[n:])
	}
}

func TestZOffsetBounds(t *testing.T) {
	h := newHarness(t)
	h.goTo(PagePrintingSetting)
	h.p.zOffset = 5

	h.press(3)
	if len(h.p.babysteps) != 0 {
		t.Errorf("Expected no babystep at the upper bound, got %v", h.p.babysteps)
	}
	h.press(7)
	for _, c := range h.p.injected {
		if c == "M500" {
			t.Error("Rejected offset change should not save")
		}
	}
}

func TestAdjustSaveAndBack(t *testing.T) {
	h := newHarness(t)
	h.d.TimerEvent(TimerStarted)
	h.goTo(PageAdjust)

	h.press(2)
	h.press(1)
	h.expectPage(t, PageStatus2)
	for _, addr := range []uint16{TxtAdjustBed, TxtAdjustSpeed, TxtAdjustHotend, TxtFanSpeedTarget} {
		if !h.sent(protocol.RequestFrame(addr)) {
			t.Errorf("Expected read request for %#04x", addr)
		}
	}
	if h.p.lastInjected() != "M500" {
		t.Errorf("Expected M500, got %v", h.p.injected)
	}
}

func TestPrintStatusPages(t *testing.T) {
	h := newHarness(t)
	h.p.fromMedia = true
	h.d.TimerEvent(TimerStarted)
	h.goTo(PageStatus2)

	h.press(2)
	h.expectPage(t, PageWaitPause)
	if h.p.paused != 1 || h.d.State() != PrinterPausing {
		t.Fatalf("Expected pausing, got %s paused=%d", h.d.State(), h.p.paused)
	}

	h.d.StatusChange(MsgPrintPaused)
	h.expectPage(t, PageStatus1)
	if h.d.State() != PrinterPaused {
		t.Errorf("Expected paused, got %s", h.d.State())
	}

	h.p.runout = true
	h.press(2)
	h.expectPage(t, PageFilamentLack)
	if h.p.resumed != 0 {
		t.Error("Should not resume with filament out")
	}

	h.p.runout = false
	h.goTo(PageStatus1)
	h.press(2)
	h.expectPage(t, PageStatus2)
	if h.p.resumed != 1 || h.d.State() != PrinterPrinting {
		t.Errorf("Expected printing after resume, got %s", h.d.State())
	}
}

func TestPrintStatusRefresh(t *testing.T) {
	h := newHarness(t)
	h.goTo(PageStatus2)
	h.p.feedrate = 120
	h.p.progress = 42
	h.p.elapsed = 2*3600 + 5*60

	h.clock.Set(1500)
	h.d.IdleLoop()
	if !h.sent(protocol.TextFrame(TxtPrintSpeed, "120")) {
		t.Error("Expected speed text")
	}
	if !h.sent(protocol.TextFrame(TxtPrintProgress, "42")) {
		t.Error("Expected progress text")
	}
	if !h.sent(protocol.TextFrame(TxtPrintTime, "  2 H   5 M")) {
		t.Error("Expected elapsed time text")
	}

	h.link.Reset()
	h.clock.Set(3000)
	h.d.IdleLoop()
	if h.sent(protocol.TextFrame(TxtPrintProgress, "42")) {
		t.Error("Unchanged progress should not be resent")
	}
}

func TestStopConfirm(t *testing.T) {
	h := newHarness(t)
	h.p.fromMedia = true
	h.goTo(PageStopConfirm)

	h.press(1)
	h.expectPage(t, PageMain)
	if h.p.stopped != 1 || h.d.State() != PrinterStopping {
		t.Errorf("Expected stopping, got %s", h.d.State())
	}
	if h.p.feedrate != 100 || h.p.timerRest != 1 {
		t.Error("Expected feedrate and timer reset")
	}

	h.d.StatusChange(MsgPrintAborted)
	if h.d.State() != PrinterIdle {
		t.Errorf("Expected idle after abort, got %s", h.d.State())
	}
}

func TestFilamentPage(t *testing.T) {
	h := newHarness(t)
	h.goTo(PageFilament)

	h.p.actual[HeaterE0] = 150
	h.press(2)
	h.expectPage(t, PageFilamentHeat)

	h.press(1)
	h.expectPage(t, PageFilament)
	if h.p.target[HeaterE0] != 230 {
		t.Errorf("Expected 230 target, got %v", h.p.target[HeaterE0])
	}

	h.p.actual[HeaterE0] = 228
	h.press(3)
	if h.p.lastInjected() != cmdUnloadFirstIn {
		t.Errorf("Expected first unload, got %q", h.p.lastInjected())
	}

	h.clock.Set(1000)
	h.d.IdleLoop()
	if h.p.lastInjected() != cmdUnloadFilament {
		t.Errorf("Expected unload repeat, got %q", h.p.lastInjected())
	}
	if !h.sent(protocol.TextFrame(TxtFilamentTemp, "228/230")) {
		t.Error("Expected filament temperature text")
	}

	h.press(4)
	if h.p.target[HeaterE0] != 0 {
		t.Error("Stop should turn the heater off")
	}
	n := len(h.p.injected)
	h.clock.Set(2000)
	h.d.IdleLoop()
	if len(h.p.injected) != n {
		t.Error("No filament move expected after stop")
	}
}

func TestSystemPage(t *testing.T) {
	h := newHarness(t, WithDeviceInfo(DeviceInfo{Name: "Bench", Firmware: "1.0", BuildVolume: "1x1", Support: "none"}))
	h.goTo(PageSystemAudioOn)

	h.press(4)
	h.expectPage(t, PageSystemAudioOff)
	if h.d.Audio() || !h.sent(protocol.AudioFrame(false)) {
		t.Error("Expected audio muted")
	}

	h.press(1)
	h.expectPage(t, PageMain)
	if h.p.lastInjected() != "M500" {
		t.Errorf("Expected audio change saved, got %v", h.p.injected)
	}

	h.goTo(PageSystemAudioOff)
	h.press(5)
	h.expectPage(t, PageAbout)
	if !h.sent(protocol.TextFrame(TxtAboutDeviceName, "Bench")) {
		t.Error("Expected device name")
	}
	h.press(1)
	h.expectPage(t, PageSystemAudioOff)
}

func TestPrinterStats(t *testing.T) {
	h := newHarness(t)
	h.p.stats = PrintStats{TotalPrints: 12, FinishedPrints: 9, PrintTime: 90061, LongestPrint: 3600, FilamentUsed: 12345}
	h.goTo(PageSystemAudioOn)

	h.press(2)
	h.expectPage(t, PagePrinterStats)
	for _, want := range []struct {
		addr uint16
		text string
	}{
		{TxtStatsTotal, "Total: 12"},
		{TxtStatsFinished, "Finished: 9"},
		{TxtStatsFailed, "Failed: 3"},
		{TxtStatsTime, "Time: 1d 1h 1m 1s"},
		{TxtStatsLongest, "Longest: 1h 0m 0s"},
		{TxtStatsFilament, "Filament Used: 12.3m"},
	} {
		if !h.sent(protocol.TextFrame(want.addr, want.text)) {
			t.Errorf("Expected %q", want.text)
		}
	}

	h.press(1)
	h.expectPage(t, PagePrinterStats)
	h.press(statsReturnKey)
	h.expectPage(t, PageSystemAudioOn)
}

func TestToolPages(t *testing.T) {
	h := newHarness(t)
	h.goTo(PageTool)
	h.press(5)
	if h.p.disabled != 1 || h.p.unhomed != 1 {
		t.Errorf("Expected steppers off and unhomed, got %d/%d", h.p.disabled, h.p.unhomed)
	}

	h = newHarness(t, WithCaseLight(true))
	h.goTo(PageToolCaseLight)
	h.press(5)
	if h.p.disabled != 1 || h.p.unhomed != 0 {
		t.Errorf("Expected steppers off only, got %d/%d", h.p.disabled, h.p.unhomed)
	}
	h.press(6)
	if !h.p.light || !h.sent(protocol.ValueFrame(AddrSystemLEDStatus, 1)) {
		t.Error("Expected case light on")
	}
}
