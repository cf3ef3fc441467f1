//go:build rp2040

package pio

import (
	"machine"
	"time"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"kobrafw/core"
	"kobrafw/dgus"
)

// buildToneProgram creates the square wave program.
// Command word layout is documented on toneCommand.
func buildToneProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),        // 0: pull block
		asm.Out(rp2pio.OutDestX, 16).Encode(), // 1: out x, 16 (periods - 1)
		// period:
		asm.Mov(rp2pio.MovDestY, rp2pio.MovSrcOSR).Encode(), // 2: mov y, osr
		asm.Set(rp2pio.SetDestPins, 1).Encode(),             // 3: set pins, 1
		asm.Jmp(4, rp2pio.JmpYNZeroDec).Encode(),            // 4: jmp y--, 4
		asm.Mov(rp2pio.MovDestY, rp2pio.MovSrcOSR).Encode(), // 5: mov y, osr
		asm.Set(rp2pio.SetDestPins, 0).Encode(),             // 6: set pins, 0
		asm.Jmp(7, rp2pio.JmpYNZeroDec).Encode(),            // 7: jmp y--, 7
		asm.Jmp(2, rp2pio.JmpXNZeroDec).Encode(),            // 8: jmp x--, 2
		// .wrap
	}
}

const toneOrigin = 0

// Beeper plays panel tunes on a passive buzzer from one PIO state machine
type Beeper struct {
	pio *rp2pio.PIO
	sm  rp2pio.StateMachine
	pin machine.Pin
	log core.Logger

	queue *tuneQueue
}

// NewBeeper claims state machine smNum of PIO0
func NewBeeper(pin machine.Pin, smNum uint8, log core.Logger) *Beeper {
	return &Beeper{
		pio:   rp2pio.PIO0,
		sm:    rp2pio.PIO0.StateMachine(smNum),
		pin:   pin,
		log:   log,
		queue: newTuneQueue(),
	}
}

// Init loads the program and starts the player goroutine
func (b *Beeper) Init() error {
	b.sm.TryClaim()

	program := buildToneProgram()
	offset, err := b.pio.AddProgram(program, toneOrigin)
	if err != nil {
		return err
	}

	b.pin.Configure(machine.PinConfig{Mode: b.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(b.pin, 1)
	// shift right so the delay sits in the low half of OSR after out x, 16
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1000, 0)

	b.sm.Init(offset, cfg)
	b.sm.SetPindirsConsecutive(b.pin, 1, true)
	b.sm.SetPinsConsecutive(b.pin, 1, false)
	b.sm.SetEnabled(true)

	go b.player()
	return nil
}

// PlayTune hands a tune to the player. A tune arriving while another plays is dropped.
func (b *Beeper) PlayTune(t dgus.Tune) {
	if !b.queue.offer(t) {
		b.log.Debugf("beeper busy, dropped %s", t.Name)
	}
}

func (b *Beeper) player() {
	b.queue.run(func(n dgus.Note) {
		if cmd, ok := toneCommand(n.Hz, n.Ms); ok {
			for b.sm.IsTxFIFOFull() {
				time.Sleep(time.Millisecond)
			}
			b.sm.TxPut(cmd)
		}
		time.Sleep(time.Duration(n.Ms) * time.Millisecond)
	})
}

// Stop silences the buzzer, discards notes already in the FIFO and ends the
// current tune
func (b *Beeper) Stop() {
	b.queue.cancel()
	b.sm.SetEnabled(false)
	b.sm.ClearFIFOs()
	b.sm.Restart()
	b.sm.SetPinsConsecutive(b.pin, 1, false)
	b.sm.SetEnabled(true)
}
