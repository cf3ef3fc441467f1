package core

import (
	"sync/atomic"
	"time"
)

// Clock provides milliseconds since boot and a blocking delay
type Clock interface {
	Millis() uint32
	Sleep(ms uint32)
}

type systemClock struct {
	boot time.Time
}

// NewSystemClock returns a clock counting from now
func NewSystemClock() Clock {
	return &systemClock{boot: time.Now()}
}

func (c *systemClock) Millis() uint32 {
	return uint32(time.Since(c.boot) / time.Millisecond)
}

func (c *systemClock) Sleep(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// ManualClock only moves when told to. Sleep advances it.
type ManualClock struct {
	ms uint32
}

func (c *ManualClock) Millis() uint32 {
	return atomic.LoadUint32(&c.ms)
}

func (c *ManualClock) Sleep(ms uint32) {
	c.Advance(ms)
}

// Advance moves the clock forward
func (c *ManualClock) Advance(ms uint32) {
	atomic.AddUint32(&c.ms, ms)
}

// Set jumps the clock to ms
func (c *ManualClock) Set(ms uint32) {
	atomic.StoreUint32(&c.ms, ms)
}
