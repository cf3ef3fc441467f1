package pio

// BeeperClockHz is the state machine clock: 125 MHz system clock over a 1000 divider
const BeeperClockHz = 125000

// Cycles spent per square wave period outside the two delay loops
const periodOverhead = 7

// MinToneHz and MaxToneHz bound what one command word can encode
const (
	MinToneHz = 2
	MaxToneHz = BeeperClockHz / (periodOverhead + 2)
)

// toneCommand builds the FIFO word for a note.
//
//	Bits 0-15:  period count minus one
//	Bits 16-31: half period delay loop count
//
// A rest or a note too short for one period returns ok false.
func toneCommand(hz, ms uint16) (cmd uint32, ok bool) {
	if hz < MinToneHz || ms == 0 {
		return 0, false
	}
	if hz > MaxToneHz {
		hz = MaxToneHz
	}
	periods := uint32(hz) * uint32(ms) / 1000
	if periods == 0 {
		return 0, false
	}
	if periods > 0x10000 {
		periods = 0x10000
	}
	delay := (BeeperClockHz/uint32(hz) - periodOverhead) / 2
	if delay > 0xFFFF {
		delay = 0xFFFF
	}
	return (periods - 1) | delay<<16, true
}

// toneHz returns the frequency a command word actually plays
func toneHz(cmd uint32) uint32 {
	delay := cmd >> 16
	return BeeperClockHz / (2*delay + periodOverhead)
}
