package sim

import (
	"kobrafw/dgus"
)

// execute runs one injected gcode block
func (p *Printer) execute(gcode string) {
	cmds, err := ParseLines(gcode)
	if err != nil {
		p.log.Warnf("gcode %q: %v", gcode, err)
	}
	for _, cmd := range cmds {
		switch cmd.Type {
		case 'G':
			p.executeG(cmd)
		case 'M':
			p.executeM(cmd)
		default:
			p.log.Debugf("ignored %s", cmd)
		}
	}
}

func (p *Printer) executeG(cmd *Command) {
	switch cmd.Number {
	case 0, 1: // G0/G1 - Linear move
		p.doMove(cmd)
	case 28: // G28 - Home
		p.doHome(cmd)
	case 29: // G29 - Probe the bed mesh
		p.doLevel()
	case 90: // G90 - Absolute positioning
		p.relative = false
	case 91: // G91 - Relative positioning
		p.relative = true
	default:
		p.log.Debugf("ignored %s", cmd)
	}
}

func (p *Printer) executeM(cmd *Command) {
	switch cmd.Number {
	case 18, 84: // M18/M84 - Disable steppers
		p.DisableSteppers()
	case 82: // M82 - Absolute extrusion
		p.relativeE = false
	case 83: // M83 - Relative extrusion
		p.relativeE = true
	case 104, 109: // M104/M109 - Set extruder temperature
		if cmd.Has('S') {
			p.SetTargetTemp(dgus.HeaterE0, float32(cmd.Get('S', 0)))
		}
	case 140, 190: // M140/M190 - Set bed temperature
		if cmd.Has('S') {
			p.SetTargetTemp(dgus.HeaterBed, float32(cmd.Get('S', 0)))
		}
	case 106: // M106 - Fan on, S is 0..255
		p.fan = float32(cmd.Get('S', 255)) * 100 / 255
	case 107: // M107 - Fan off
		p.fan = 0
	case 108: // M108 - Continue after a wait
		p.log.Debugf("continue")
	case 220: // M220 - Feedrate percentage
		if cmd.Has('S') {
			p.feed = float32(cmd.Get('S', 100))
		}
	case 355: // M355 - Case light
		p.light = cmd.Get('S', 0) != 0
	case 420: // M420 - Bed leveling state
		p.leveling = cmd.Get('S', 0) != 0
	case 500: // M500 - Save settings
		p.saves++
		p.log.Infof("settings saved")
	case 851: // M851 - Probe Z offset
		if cmd.Has('Z') {
			p.zOffset = float32(cmd.Get('Z', 0))
		}
	case 1000: // M1000 - Power loss recovery, C cancels
		p.doRecovery(cmd)
	default:
		p.log.Debugf("ignored %s", cmd)
	}
}

func (p *Printer) doMove(cmd *Command) {
	moved := false
	for a, letter := range []byte{'X', 'Y', 'Z'} {
		if !cmd.Has(letter) {
			continue
		}
		v := float32(cmd.Get(letter, 0))
		if p.relative {
			v += p.pos[a]
		}
		p.SetAxisPosition(v, dgus.Axis(a), float32(cmd.Get('F', 0)))
		moved = true
	}

	if cmd.Has('E') {
		if !p.CanMoveExtruder() {
			p.log.Warnf("cold extrusion prevented")
			return
		}
		e := float32(cmd.Get('E', 0))
		if !p.relativeE {
			e -= p.extruded
		}
		p.extruded += e
		if !moved {
			p.moveUntil = p.clock.Millis() + moveTimeMs
		}
	}
}

func (p *Printer) doHome(cmd *Command) {
	axes := []byte{'X', 'Y', 'Z'}
	if cmd.Has('X') || cmd.Has('Y') || cmd.Has('Z') {
		axes = axes[:0]
		for _, letter := range []byte{'X', 'Y', 'Z'} {
			if cmd.Has(letter) {
				axes = append(axes, letter)
			}
		}
	}

	p.emit(func(e Events) { e.HomingStart() })
	for _, letter := range axes {
		a := letter - 'X'
		p.pos[a] = 0
		p.trusted[a] = true
	}
	p.emit(func(e Events) { e.HomingComplete() })
}

func (p *Printer) doLevel() {
	p.emit(func(e Events) { e.LevelingStart() })
	for y := int8(0); y < MeshPoints; y++ {
		for x := int8(0); x < MeshPoints; x++ {
			p.emit(func(e Events) {
				e.MeshUpdate(x, y, dgus.ProbePointStart)
				e.MeshUpdate(x, y, dgus.ProbePointFinish)
			})
		}
	}
	p.leveling = true
	p.emit(func(e Events) { e.LevelingDone() })
}

func (p *Printer) doRecovery(cmd *Command) {
	name := p.recovery
	p.recovery = ""
	if cmd.Has('C') || name == "" {
		p.log.Infof("recovery cancelled")
		return
	}
	p.PrintFile(name)
}
