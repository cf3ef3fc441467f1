//go:build !tinygo

package core

import "sync/atomic"

// irqState stands in for PRIMASK on regular Go
type irqState struct {
	disabled atomic.Bool
}

func (s *irqState) disable() {
	s.disabled.Store(true)
}

func (s *irqState) enable() {
	s.disabled.Store(false)
}

func (s *irqState) enabled() bool {
	return !s.disabled.Load()
}
