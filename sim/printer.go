// Package sim is a bench printer. It implements the motion firmware
// surface the panel driver consumes so the panel can be exercised on a
// desk without a machine attached.
package sim

import (
	"io/fs"
	"path"

	"kobrafw/core"
	"kobrafw/dgus"
)

// Events receives the firmware callbacks. *dgus.Driver implements it.
type Events interface {
	StatusChange(msg string)
	ConfirmationRequest(msg string)
	TimerEvent(ev dgus.TimerEvent)
	MediaEvent(ev dgus.MediaEvent)
	FilamentRunout()
	HomingStart()
	HomingComplete()
	LevelingStart()
	LevelingDone()
	MeshUpdate(x, y int8, state dgus.ProbeState)
	PrinterKilled(err, component string)
}

// Bench tuning
const (
	AmbientTemp      = 25
	ExtrudeMinTemp   = 170
	HotendRate       = 4.0 // degrees per second
	BedRate          = 1.5
	DefaultPrintRate = 2000 // gcode bytes per second at 100% feedrate
	MeshPoints       = 5
	moveTimeMs       = 200
)

type job struct {
	path      string
	size      int64
	done      float64
	elapsedMs uint32
}

// Printer is a simulated machine. Methods must be called from one
// goroutine, the same one that runs Tick and the panel idle loop.
type Printer struct {
	clock  core.Clock
	log    core.Logger
	events Events

	media   fs.FS
	present bool

	actual [2]float32
	target [2]float32
	fan    float32
	feed   float32

	queue   []string
	pending []func(Events)

	pos       [3]float32
	trusted   [3]bool
	relative  bool
	relativeE bool
	extruded  float32
	moveUntil uint32

	job       *job
	paused    bool
	lastJob   uint32 // elapsed ms of the last finished or stopped job
	printRate float64

	runout       bool
	zOffset      float32
	light        bool
	softEndstops bool
	leveling     bool
	confirmed    int
	saves        int

	stats    dgus.PrintStats
	recovery string

	probeTriggered bool
	tares          int

	lastTick uint32
}

// Option configures a Printer
type Option func(*Printer)

// WithClock sets the time source
func WithClock(c core.Clock) Option {
	return func(p *Printer) { p.clock = c }
}

// WithLogger sets the logger
func WithLogger(l core.Logger) Option {
	return func(p *Printer) { p.log = l }
}

// WithEvents sets the callback receiver
func WithEvents(e Events) Option {
	return func(p *Printer) { p.events = e }
}

// WithMedia inserts a card holding fsys
func WithMedia(fsys fs.FS) Option {
	return func(p *Printer) {
		p.media = fsys
		p.present = fsys != nil
	}
}

// WithPrintRate sets how many gcode bytes a job consumes per second
func WithPrintRate(bytesPerSecond float64) Option {
	return func(p *Printer) { p.printRate = bytesPerSecond }
}

// WithRecovery leaves a power loss job behind
func WithRecovery(path string) Option {
	return func(p *Printer) { p.recovery = path }
}

// New creates a cold, unhomed printer
func New(opts ...Option) *Printer {
	p := &Printer{
		actual:       [2]float32{AmbientTemp, AmbientTemp},
		feed:         100,
		softEndstops: true,
		printRate:    DefaultPrintRate,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.clock == nil {
		p.clock = core.NewSystemClock()
	}
	if p.log == nil {
		p.log = core.Log()
	}
	p.lastTick = p.clock.Millis()
	return p
}

// SetEvents sets the callback receiver after construction, which breaks
// the cycle between the driver and the printer it is built around.
func (p *Printer) SetEvents(e Events) {
	p.events = e
}

// Tick advances heaters, runs queued gcode, moves the job forward and
// delivers pending callbacks
func (p *Printer) Tick() {
	now := p.clock.Millis()
	dt := now - p.lastTick
	p.lastTick = now

	p.heat(dgus.HeaterE0, HotendRate, dt)
	p.heat(dgus.HeaterBed, BedRate, dt)

	queue := p.queue
	p.queue = nil
	for _, gcode := range queue {
		p.execute(gcode)
	}

	p.advanceJob(dt)
	p.deliver()
}

func (p *Printer) heat(h dgus.Heater, rate float32, dt uint32) {
	goal := p.target[h]
	if goal < AmbientTemp {
		goal = AmbientTemp
	}
	step := rate * float32(dt) / 1000
	switch {
	case p.actual[h] < goal:
		p.actual[h] = min(p.actual[h]+step, goal)
	case p.actual[h] > goal:
		p.actual[h] = max(p.actual[h]-step, goal)
	}
}

func (p *Printer) advanceJob(dt uint32) {
	if p.job == nil || p.paused {
		return
	}
	p.job.elapsedMs += dt
	p.job.done += p.printRate * float64(p.feed) / 100 * float64(dt) / 1000
	if p.job.done >= float64(p.job.size) {
		p.finishJob()
	}
}

func (p *Printer) finishJob() {
	j := p.job
	p.job = nil
	p.lastJob = j.elapsedMs

	secs := j.elapsedMs / 1000
	p.stats.FinishedPrints++
	p.stats.PrintTime += secs
	if secs > p.stats.LongestPrint {
		p.stats.LongestPrint = secs
	}
	// roughly one millimetre of filament per 20 bytes of gcode
	p.stats.FilamentUsed += float32(j.size) / 20

	p.log.Infof("print of %s finished after %ds", j.path, secs)
	p.emit(func(e Events) { e.TimerEvent(dgus.TimerStopped) })
}

// emit queues a callback for the next Tick so the driver never sees
// its own call re-enter it
func (p *Printer) emit(fn func(Events)) {
	p.pending = append(p.pending, fn)
}

func (p *Printer) deliver() {
	for len(p.pending) > 0 {
		fn := p.pending[0]
		p.pending = p.pending[1:]
		if p.events != nil {
			fn(p.events)
		}
	}
}

func (p *Printer) ActualTemp(h dgus.Heater) float32 {
	return p.actual[h]
}

func (p *Printer) TargetTemp(h dgus.Heater) float32 {
	return p.target[h]
}

func (p *Printer) SetTargetTemp(h dgus.Heater, celsius float32) {
	p.target[h] = max(celsius, 0)
}

func (p *Printer) ActualFan() float32           { return p.fan }
func (p *Printer) TargetFan() float32           { return p.fan }
func (p *Printer) SetTargetFan(percent float32) { p.fan = percent }

func (p *Printer) FeedratePercent() float32           { return p.feed }
func (p *Printer) SetFeedratePercent(percent float32) { p.feed = percent }

// ProgressPercent reports how much of the current job has run
func (p *Printer) ProgressPercent() uint8 {
	if p.job == nil || p.job.size == 0 {
		return 0
	}
	pct := p.job.done * 100 / float64(p.job.size)
	if pct > 100 {
		pct = 100
	}
	return uint8(pct)
}

// ElapsedSeconds is the running job time, or the last job's once it ends
func (p *Printer) ElapsedSeconds() uint32 {
	if p.job != nil {
		return p.job.elapsedMs / 1000
	}
	return p.lastJob / 1000
}

// InjectCommands queues gcode for the next Tick
func (p *Printer) InjectCommands(gcode string) {
	p.log.Debugf("inject %q", gcode)
	p.queue = append(p.queue, gcode)
}

func (p *Printer) CommandsInQueue() bool {
	return len(p.queue) > 0
}

func (p *Printer) CanMoveExtruder() bool {
	return p.actual[dgus.HeaterE0] >= ExtrudeMinTemp
}

func (p *Printer) IsPrinting() bool {
	return p.job != nil && !p.paused
}

func (p *Printer) IsPrintingFromMedia() bool {
	return p.job != nil && !p.paused
}

func (p *Printer) IsMoving() bool {
	return int32(p.moveUntil-p.clock.Millis()) > 0
}

func (p *Printer) IsMediaInserted() bool {
	return p.present
}

// InsertMedia puts a card holding fsys in the slot
func (p *Printer) InsertMedia(fsys fs.FS) {
	p.media = fsys
	p.present = true
	p.emit(func(e Events) { e.MediaEvent(dgus.MediaInserted) })
}

// RemoveMedia pulls the card. A running job is aborted.
func (p *Printer) RemoveMedia() {
	p.present = false
	if p.job != nil {
		p.log.Warnf("media removed during print of %s", p.job.path)
		p.emit(func(e Events) { e.StatusChange(dgus.MsgMediaRemoved) })
		p.abortJob()
	}
	p.emit(func(e Events) { e.MediaEvent(dgus.MediaRemoved) })
}

// PrintFile starts a job from the card
func (p *Printer) PrintFile(name string) {
	if !p.present || p.media == nil {
		p.log.Errorf("print %s: no media", name)
		p.emit(func(e Events) { e.MediaEvent(dgus.MediaError) })
		return
	}
	info, err := fs.Stat(p.media, path.Clean(name))
	if err != nil {
		p.log.Errorf("print %s: %v", name, err)
		p.emit(func(e Events) { e.MediaEvent(dgus.MediaError) })
		return
	}

	p.job = &job{path: name, size: info.Size()}
	p.paused = false
	p.stats.TotalPrints++
	p.log.Infof("printing %s (%d bytes)", name, info.Size())
	p.emit(func(e Events) { e.TimerEvent(dgus.TimerStarted) })
}

// PausePrint parks the job
func (p *Printer) PausePrint() {
	if p.job == nil || p.paused {
		return
	}
	p.paused = true
	p.emit(func(e Events) {
		e.TimerEvent(dgus.TimerPaused)
		e.StatusChange(dgus.MsgPrintPaused)
	})
}

// ResumePrint continues a paused job
func (p *Printer) ResumePrint() {
	if p.job == nil || !p.paused {
		return
	}
	p.paused = false
	p.emit(func(e Events) { e.TimerEvent(dgus.TimerStarted) })
}

// StopPrint aborts the job
func (p *Printer) StopPrint() {
	if p.job == nil {
		return
	}
	p.emit(func(e Events) { e.StatusChange(dgus.MsgPrintAborted) })
	p.abortJob()
}

func (p *Printer) abortJob() {
	p.log.Infof("print of %s aborted", p.job.path)
	p.lastJob = p.job.elapsedMs
	p.job = nil
	p.paused = false
	p.target = [2]float32{}
	p.emit(func(e Events) { e.TimerEvent(dgus.TimerStopped) })
}

func (p *Printer) SetUserConfirmed() {
	p.confirmed++
}

func (p *Printer) FilamentRunoutState() bool          { return p.runout }
func (p *Printer) SetFilamentRunoutState(runout bool) { p.runout = runout }

// TriggerRunout flags missing filament and reports it
func (p *Printer) TriggerRunout() {
	p.runout = true
	p.emit(func(e Events) { e.FilamentRunout() })
}

func (p *Printer) ZOffset() float32      { return p.zOffset }
func (p *Printer) SetZOffset(mm float32) { p.zOffset = mm }

// BabystepZ nudges the nozzle without changing the stored offset
func (p *Printer) BabystepZ(mm float32) {
	p.pos[dgus.AxisZ] += mm
}

func (p *Printer) CaseLight() bool      { return p.light }
func (p *Printer) SetCaseLight(on bool) { p.light = on }

func (p *Printer) AxisPosition(a dgus.Axis) float32 {
	return p.pos[a]
}

// SetAxisPosition moves one axis
func (p *Printer) SetAxisPosition(mm float32, a dgus.Axis, feedrate float32) {
	p.log.Debugf("move %s to %.2f at %.0f", a, mm, feedrate)
	p.pos[a] = mm
	p.moveUntil = p.clock.Millis() + moveTimeMs
}

func (p *Printer) AxisTrusted(a dgus.Axis) bool {
	return p.trusted[a]
}

func (p *Printer) DisableSteppers() {
	p.log.Debugf("steppers off")
}

func (p *Printer) SetAllUnhomed() {
	p.trusted = [3]bool{}
}

func (p *Printer) SetSoftEndstops(on bool) {
	p.softEndstops = on
}

func (p *Printer) ResetPrintTimer() {
	p.lastJob = 0
}

func (p *Printer) Stats() dgus.PrintStats {
	return p.stats
}

func (p *Printer) RecoveryFilename() string {
	return p.recovery
}

func (p *Printer) ProbeTare() {
	p.tares++
	p.probeTriggered = false
}

func (p *Printer) ProbeTriggered() bool {
	return p.probeTriggered
}

// SetProbeTriggered simulates the nozzle touching the bed
func (p *Printer) SetProbeTriggered(on bool) {
	p.probeTriggered = on
}

// Kill reports a fatal error the way the firmware would
func (p *Printer) Kill(err, component string) {
	p.log.Errorf("kill: %s %s", err, component)
	if p.job != nil {
		p.job = nil
	}
	p.target = [2]float32{}
	p.emit(func(e Events) { e.PrinterKilled(err, component) })
}

// Saves counts M500 requests
func (p *Printer) Saves() int {
	return p.saves
}

// SoftEndstops reports whether travel limits are enforced
func (p *Printer) SoftEndstops() bool {
	return p.softEndstops
}
