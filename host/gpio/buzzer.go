package gpio

import (
	"sync/atomic"

	"kobrafw/core"
	"kobrafw/dgus"
)

// Buzzer plays tunes on an active buzzer. The buzzer sets its own pitch,
// so each note only keeps the pin high for its duration.
type Buzzer struct {
	out   core.GPIODriver
	pin   core.GPIOPin
	clock core.Clock
	log   core.Logger

	busy atomic.Bool
}

// NewBuzzer configures pin as a low output
func NewBuzzer(out core.GPIODriver, pin core.GPIOPin, clock core.Clock, log core.Logger) (*Buzzer, error) {
	if err := out.ConfigureOutput(pin); err != nil {
		return nil, err
	}
	return &Buzzer{out: out, pin: pin, clock: clock, log: log}, nil
}

// PlayTune plays t in the background. A tune arriving while another
// plays is dropped.
func (b *Buzzer) PlayTune(t dgus.Tune) {
	if !b.busy.CompareAndSwap(false, true) {
		b.log.Debugf("buzzer busy, dropped %s", t.Name)
		return
	}
	go func() {
		defer b.busy.Store(false)
		b.play(t)
	}()
}

func (b *Buzzer) play(t dgus.Tune) {
	for _, n := range t.Notes {
		if err := b.out.SetPin(b.pin, n.Hz != 0); err != nil {
			b.log.Warnf("buzzer: %v", err)
			return
		}
		b.clock.Sleep(uint32(n.Ms))
	}
	if err := b.out.SetPin(b.pin, false); err != nil {
		b.log.Warnf("buzzer: %v", err)
	}
}
