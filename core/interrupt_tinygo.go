//go:build tinygo

package core

import "runtime/interrupt"

// irqState keeps the state saved by the outermost disable
type irqState struct {
	saved    interrupt.State
	disabled bool
}

func (s *irqState) disable() {
	if s.disabled {
		return
	}
	s.saved = interrupt.Disable()
	s.disabled = true
}

func (s *irqState) enable() {
	if !s.disabled {
		return
	}
	s.disabled = false
	interrupt.Restore(s.saved)
}

func (s *irqState) enabled() bool {
	return !s.disabled
}
