package dgus

// fakePrinter records what the driver asks of the motion firmware
type fakePrinter struct {
	actual [2]float32
	target [2]float32

	fanActual float32
	fanTarget float32
	feedrate  float32
	progress  uint8
	elapsed   uint32

	injected []string
	queued   bool
	canMoveE bool

	printing  bool
	fromMedia bool
	moving    bool
	media     bool

	printed   []string
	paused    int
	resumed   int
	stopped   int
	confirmed int

	runout bool

	zOffset   float32
	babysteps []float32

	light bool

	pos       [3]float32
	trusted   [3]bool
	moves     int
	disabled  int
	unhomed   int
	endstops  bool
	timerRest int

	stats    PrintStats
	recovery string

	tares     int
	triggered bool
}

func newFakePrinter() *fakePrinter {
	return &fakePrinter{feedrate: 100, canMoveE: true, media: true, endstops: true}
}

func (p *fakePrinter) ActualTemp(h Heater) float32        { return p.actual[h] }
func (p *fakePrinter) TargetTemp(h Heater) float32        { return p.target[h] }
func (p *fakePrinter) SetTargetTemp(h Heater, c float32)  { p.target[h] = c }
func (p *fakePrinter) ActualFan() float32                 { return p.fanActual }
func (p *fakePrinter) TargetFan() float32                 { return p.fanTarget }
func (p *fakePrinter) SetTargetFan(percent float32)       { p.fanTarget = percent }
func (p *fakePrinter) FeedratePercent() float32           { return p.feedrate }
func (p *fakePrinter) SetFeedratePercent(percent float32) { p.feedrate = percent }
func (p *fakePrinter) ProgressPercent() uint8             { return p.progress }
func (p *fakePrinter) ElapsedSeconds() uint32             { return p.elapsed }
func (p *fakePrinter) InjectCommands(gcode string)        { p.injected = append(p.injected, gcode) }
func (p *fakePrinter) CommandsInQueue() bool              { return p.queued }
func (p *fakePrinter) CanMoveExtruder() bool              { return p.canMoveE }
func (p *fakePrinter) IsPrinting() bool                   { return p.printing }
func (p *fakePrinter) IsPrintingFromMedia() bool          { return p.fromMedia }
func (p *fakePrinter) IsMoving() bool                     { return p.moving }
func (p *fakePrinter) IsMediaInserted() bool              { return p.media }
func (p *fakePrinter) PrintFile(path string)              { p.printed = append(p.printed, path) }
func (p *fakePrinter) PausePrint()                        { p.paused++ }
func (p *fakePrinter) ResumePrint()                       { p.resumed++ }
func (p *fakePrinter) StopPrint()                         { p.stopped++ }
func (p *fakePrinter) SetUserConfirmed()                  { p.confirmed++ }
func (p *fakePrinter) FilamentRunoutState() bool          { return p.runout }
func (p *fakePrinter) SetFilamentRunoutState(runout bool) { p.runout = runout }
func (p *fakePrinter) ZOffset() float32                   { return p.zOffset }
func (p *fakePrinter) SetZOffset(mm float32)              { p.zOffset = mm }
func (p *fakePrinter) BabystepZ(mm float32)               { p.babysteps = append(p.babysteps, mm) }
func (p *fakePrinter) CaseLight() bool                    { return p.light }
func (p *fakePrinter) SetCaseLight(on bool)               { p.light = on }
func (p *fakePrinter) AxisPosition(a Axis) float32        { return p.pos[a] }
func (p *fakePrinter) AxisTrusted(a Axis) bool            { return p.trusted[a] }
func (p *fakePrinter) DisableSteppers()                   { p.disabled++ }
func (p *fakePrinter) SetAllUnhomed()                     { p.unhomed++ }
func (p *fakePrinter) SetSoftEndstops(on bool)            { p.endstops = on }
func (p *fakePrinter) ResetPrintTimer()                   { p.timerRest++ }
func (p *fakePrinter) Stats() PrintStats                  { return p.stats }
func (p *fakePrinter) RecoveryFilename() string           { return p.recovery }
func (p *fakePrinter) ProbeTare()                         { p.tares++ }
func (p *fakePrinter) ProbeTriggered() bool               { return p.triggered }

func (p *fakePrinter) SetAxisPosition(mm float32, a Axis, feedrate float32) {
	p.pos[a] = mm
	p.moves++
}

func (p *fakePrinter) lastInjected() string {
	if len(p.injected) == 0 {
		return ""
	}
	return p.injected[len(p.injected)-1]
}

type fakeBeeper struct {
	played []string
}

func (b *fakeBeeper) PlayTune(t Tune) {
	b.played = append(b.played, t.Name)
}
