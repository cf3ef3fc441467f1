// Package dgus drives the Anycubic Kobra DGUS touch panel
package dgus

import (
	"io"

	"kobrafw/core"
	"kobrafw/protocol"
)

// HeaterFaultValidation is the number of consecutive out of range reads before a heater is reported
const HeaterFaultValidation = 5

// Handler periods in milliseconds
const (
	mainTempPeriod    = 1500
	heaterCheckPeriod = 500
	pagePeriod        = 1500
	filamentPeriod    = 1000
	probeHeatPeriod   = 500
	probeCheckPeriod  = 300
	probeCheckPolls   = 200
)

// printView holds the refresh state of one print status page
type printView struct {
	flash    uint32
	progress uint8
	feedrate uint16
}

// Driver owns the panel link and every piece of UI state
type Driver struct {
	link    io.Writer
	reader  *protocol.FrameReader
	printer Printer

	clock      core.Clock
	log        core.Logger
	beeper     Beeper
	files      *Navigator
	runoutGPIO core.GPIODriver
	runoutPin  core.GPIOPin

	limits          Limits
	device          DeviceInfo
	caseLight       bool
	preheatLeveling bool

	handlers map[Page]func()

	printerState PrinterState
	pauseState   PauseState
	hotendState  HeaterState
	bedState     HeaterState
	liveZOffset  float32

	pageNow      Page
	pageLast     Page
	pageLast2    Page
	pageNotFound Page
	popup        Popup
	messageIndex uint8

	keyAddr uint16
	key     uint16

	boxPage      int
	boxIndex     int
	boxIndexLast int

	audio      bool
	audioSaved bool

	homeOwnerPage Page
	autoLeveling  bool
	moveDistance  float32
	zOffsetDirty  bool
	filament      filamentCmd

	mainTempFlash   uint32
	heaterCheckLast uint32
	pageFlash       map[Page]uint32
	paused          printView
	printing        printView
	faultE0         uint8
	faultBed        uint8

	probeCheckTime uint32
	probeCounter   int
	probeLast      bool
	probeTared     bool

	writeFailed bool
}

// New creates a driver writing frames to link and reading panel reports from reader
func New(link io.Writer, reader *protocol.FrameReader, printer Printer, opts ...Option) *Driver {
	d := &Driver{
		link:         link,
		reader:       reader,
		printer:      printer,
		runoutPin:    core.NoPin,
		limits:       DefaultLimits(),
		device:       DefaultDeviceInfo(),
		audio:        true,
		audioSaved:   true,
		pageNow:      1,
		pageLast:     1,
		pageLast2:    1,
		popup:        PopupNone,
		messageIndex: 100,
		moveDistance: 1.0,
		pageFlash:    make(map[Page]uint32),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.clock == nil {
		d.clock = core.NewSystemClock()
	}
	if d.log == nil {
		d.log = core.Log()
	}
	if d.reader == nil {
		d.reader = protocol.NewFrameReader(nil, d.clock.Millis)
	}
	d.buildHandlers()
	return d
}

func (d *Driver) buildHandlers() {
	nop := func() {}
	d.handlers = map[Page]func(){
		PageAutoOffset:        d.pageAutoOffset,
		PageMain:              d.pageMain,
		PageFile:              d.pageFile,
		PageStatus1:           d.pageStatusPaused,
		PageStatus2:           d.pageStatusPrinting,
		PageAdjust:            d.pageAdjust,
		PageKeyboard:          nop,
		PageTool:              d.pageTool,
		PageMove:              d.pageMove,
		PageTemp:              d.pageTemp,
		PageSpeed:             d.pageSpeed,
		PageSystemAudioOn:     d.pageSystem,
		PageWifi:              nop,
		PageAbout:             d.pageAbout,
		PageRecord:            nop,
		PagePrepare:           d.pagePrepare,
		PageLevelingSettings:  d.pageLevelingSettings,
		PageZOffset:           d.pageZOffset,
		PagePreheat:           d.pagePreheat,
		PageFilament:          d.pageFilament,
		PageDone:              d.pageReturn,
		PageAbnormal:          d.pageReturn,
		PagePrintFinish:       d.pagePrintFinish,
		PageWaitStop:          d.pageReturnAny,
		PageStopFailed:        d.pageReturnAny,
		PageFilamentLack:      d.pageFilamentLack,
		PageForbid:            d.pageReturn,
		PageStopConfirm:       d.pageStopConfirm,
		PagePauseFailed:       d.pageReturn,
		PageNoSD:              d.pageNoSD,
		PageFilamentHeat:      d.pageFilamentHeat,
		PageStopWaiting:       nop,
		PageWaitPause:         nop,
		PageLevelEnsure:       d.pageLevelEnsure,
		PageLeveling:          nop,
		PageSystemAudioOff:    d.pageSystem,
		PageOutageRecovery:    d.pageOutageRecovery,
		PageProbePreheating:   d.pageProbePreheating,
		PageProbePreheating2:  d.pageProbePreheating,
		PageLevelingFailed:    d.pageLevelingFailed,
		PageProbePrecheck:     d.pageProbePrecheck,
		PageProbePrecheckOK:   d.pageProbePrecheckOK,
		PageProbePrecheckFail: d.pageProbePrecheckFailed,
		PageToolCaseLight:     d.pageToolCaseLight,
		PagePrintingSetting:   d.pagePrintingSetting,
		PagePrinterStats:      d.pagePrinterStats,
	}
}

// quietPage reports pages the panel shows without any panel side logic
func quietPage(p Page) bool {
	switch {
	case p >= 157 && p <= 159, p >= 161 && p <= 169, p >= 189 && p <= 196:
		return true
	case p == 174, p == 208, p == 210, p == 214:
		return true
	}
	return false
}

// Startup resets the UI state and announces the main board to the panel
func (d *Driver) Startup() {
	d.printerState = PrinterIdle
	d.pauseState = PauseIdle
	d.hotendState = HeaterOff
	d.bedState = HeaterOff
	d.liveZOffset = 0
	if d.files != nil {
		d.files.Reset()
	}

	d.sendLine(lineMainBoardReset)
	d.printer.InjectCommands(cmdEnableLeveling)
	d.sendLine(lineReady)
	d.log.Infof("panel driver started")
}

// IdleLoop services the panel once. Call it from the firmware idle task.
func (d *Driver) IdleLoop() {
	if f, ok := d.reader.Next(); ok {
		d.processPanelRequest(f)
	}

	if d.key != 0 {
		d.log.Debugf("page %d key %d", d.pageNow, d.key)
	}

	if d.every(&d.mainTempFlash, mainTempPeriod) {
		d.sendText(TxtMainHotend, d.tempPair(HeaterE0))
		d.sendText(TxtMainBed, d.tempPair(HeaterBed))
	}

	d.dispatch()
	d.popupManager()
	d.key = 0

	d.checkHeaters()
}

func (d *Driver) dispatch() {
	if h, ok := d.handlers[d.pageNow]; ok {
		h()
		return
	}
	if quietPage(d.pageNow) || d.pageNotFound == d.pageNow {
		return
	}
	d.pageNotFound = d.pageNow
	d.log.Warnf("no handler for page %d (last %d, last2 %d)", d.pageNow, d.pageLast, d.pageLast2)
}

// ChangePage switches the panel to p and records the history
func (d *Driver) ChangePage(p Page) {
	d.write(protocol.PageFrame(uint16(p)))
	d.FakeChangePage(p)
}

// FakeChangePage records a page change the panel made on its own
func (d *Driver) FakeChangePage(p Page) {
	d.log.Debugf("page %d -> %d", d.pageNow, p)
	d.pageLast2 = d.pageLast
	d.pageLast = d.pageNow
	d.pageNow = p
}

// Page returns the page the panel shows
func (d *Driver) Page() Page {
	return d.pageNow
}

// History returns the two previous pages
func (d *Driver) History() (last, last2 Page) {
	return d.pageLast, d.pageLast2
}

// State returns the print job state as tracked by the panel
func (d *Driver) State() PrinterState {
	return d.printerState
}

// Pause returns the reason the job is held
func (d *Driver) Pause() PauseState {
	return d.pauseState
}

// Audio reports whether panel touch sounds are on
func (d *Driver) Audio() bool {
	return d.audio
}

func (d *Driver) write(b []byte) {
	if _, err := d.link.Write(b); err != nil {
		if !d.writeFailed {
			d.log.Warnf("panel write failed: %v", err)
		}
		d.writeFailed = true
		return
	}
	d.writeFailed = false
}

func (d *Driver) sendValue(addr, value uint16) {
	d.write(protocol.ValueFrame(addr, value))
}

func (d *Driver) sendText(addr uint16, text string) {
	d.write(protocol.TextFrame(addr, text))
}

func (d *Driver) sendColor(addr, color uint16) {
	d.write(protocol.ColorFrame(addr, color))
}

func (d *Driver) requestValue(addr uint16) {
	d.write(protocol.RequestFrame(addr))
}

func (d *Driver) sendAudio(on bool) {
	d.write(protocol.AudioFrame(on))
}

// sendLine writes a plain text line as the panel firmware loader expects
func (d *Driver) sendLine(s string) {
	d.write([]byte(s + "\r\n"))
}

func (d *Driver) playTune(t Tune) {
	if d.beeper != nil {
		d.beeper.PlayTune(t)
	}
}

// every reports whether period ms passed since *last and restarts the window
func (d *Driver) every(last *uint32, period uint32) bool {
	now := d.clock.Millis()
	if now-*last < period {
		return false
	}
	*last = now
	return true
}

// pageEvery is every with a per page timer
func (d *Driver) pageEvery(p Page, period uint32) bool {
	last := d.pageFlash[p]
	ok := d.every(&last, period)
	d.pageFlash[p] = last
	return ok
}

func (d *Driver) processPanelRequest(f protocol.Frame) {
	if f.Command() != protocol.CmdRead {
		return
	}
	addr := f.Address()
	value := f.Word()

	switch {
	case addr&keyMask == KeyAddress:
		d.keyAddr = addr
		d.key = value

	case addr == TxtHotendTarget, addr == TxtAdjustHotend, addr == TxtPreheatHotendInput:
		d.printer.SetTargetTemp(HeaterE0, float32(clampWord(value, 0, whole(d.limits.HotendMaxTemp))))

	case addr == TxtBedTarget, addr == TxtAdjustBed, addr == TxtPreheatBedInput:
		d.printer.SetTargetTemp(HeaterBed, float32(clampWord(value, 0, whole(d.limits.BedMaxTemp))))

	case addr == TxtFanSpeedTarget:
		v := clampWord(value, 0, 100)
		d.sendValue(TxtFanSpeedNow, v)
		d.sendValue(TxtFanSpeedTarget, v)
		d.printer.SetTargetFan(float32(v))

	case addr == TxtPrintSpeedTarget, addr == TxtAdjustSpeed:
		v := clampWord(value, 40, 999)
		d.sendText(TxtPrintSpeed, protocol.Utoa(uint32(v)))
		d.sendValue(TxtPrintSpeedNow, v)
		d.sendValue(TxtPrintSpeedTarget, v)
		d.printer.SetFeedratePercent(float32(v))

	case addr == RegLCDReady:
		d.lcdReady(f.Word24())
	}
}

func (d *Driver) lcdReady(state uint32) {
	switch state & 0xFFFFFF {
	case lcdBootLastFrame:
		d.sendAudio(d.audio)
		d.sendValue(AddrMoveDistance, 2)
		if d.caseLight {
			light := boolWord(d.printer.CaseLight())
			d.sendValue(AddrSystemLEDStatus, light)
			d.sendValue(AddrPrintSettingLEDState, light)
		}
		if d.printerState == PrinterResumingFromOutage {
			d.ChangePage(PageOutageRecovery)
			d.sendText(TxtOutageRecoveryFile, d.printer.RecoveryFilename())
			d.playTune(TuneSOS)
		} else {
			d.ChangePage(PageMain)
		}
	case lcdBootFirstFrame:
		d.playTune(TunePowerOn)
	}
}

func (d *Driver) checkHeaters() {
	if !d.every(&d.heaterCheckLast, heaterCheckPeriod) {
		return
	}

	t := d.printer.ActualTemp(HeaterE0)
	if t < d.limits.HotendMinTemp || t > d.limits.HotendMaxTemp {
		d.faultE0++
		if d.faultE0 >= HeaterFaultValidation {
			d.log.Warnf("extruder temperature abnormal: %.1f", t)
			d.faultE0 = 0
		}
	} else {
		d.faultE0 = 0
	}

	t = d.printer.ActualTemp(HeaterBed)
	if t < d.limits.BedMinTemp || t > d.limits.BedMaxTemp {
		d.faultBed++
		if d.faultBed >= HeaterFaultValidation {
			d.log.Warnf("bed temperature abnormal: %.1f", t)
			d.faultBed = 0
		}
	} else {
		d.faultBed = 0
	}
}

// lowerZOffset babysteps down one increment. It fails at the lower bound.
func (d *Driver) lowerZOffset() bool {
	z := d.printer.ZOffset()
	if z <= d.limits.ZOffsetMin {
		return false
	}
	d.printer.BabystepZ(-d.limits.Babystep)
	d.printer.SetZOffset(z - d.limits.Babystep)
	d.sendText(TxtLevelOffset, protocol.FormatFloat(d.printer.ZOffset()))
	return true
}

// raiseZOffset babysteps up one increment. It fails at the upper bound.
func (d *Driver) raiseZOffset() bool {
	z := d.printer.ZOffset()
	if z >= d.limits.ZOffsetMax {
		return false
	}
	d.printer.BabystepZ(d.limits.Babystep)
	d.printer.SetZOffset(z + d.limits.Babystep)
	d.sendText(TxtLevelOffset, protocol.FormatFloat(d.printer.ZOffset()))
	return true
}

func (d *Driver) saveZOffset() {
	if d.zOffsetDirty {
		d.printer.InjectCommands(cmdSaveSettings)
		d.zOffsetDirty = false
	}
}

func (d *Driver) tempPair(h Heater) string {
	return protocol.Ratio(int(whole(d.printer.ActualTemp(h))), int(whole(d.printer.TargetTemp(h))))
}

// whole truncates a reading for display. Negative readings show as zero.
func whole(v float32) uint32 {
	if v <= 0 {
		return 0
	}
	return uint32(v)
}

func clampWord(v uint16, lo, hi uint32) uint16 {
	switch {
	case uint32(v) < lo:
		return uint16(lo)
	case uint32(v) > hi:
		return uint16(hi)
	}
	return v
}

func boolWord(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
