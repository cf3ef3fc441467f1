// Package protocol implements the DGUS display panel wire format
package protocol

// Version represents the kobrafw firmware version
const Version = "0.1.0"

// Frame markers and commands
const (
	FrameHeader1 = 0x5A
	FrameHeader2 = 0xA5

	CmdWrite = 0x82 // write variable to the panel
	CmdRead  = 0x83 // read request, also used by panel reports
)

// Frame sizes
const (
	// FramePayloadMax is the largest payload the reader accepts.
	// A frame reaching this bound is dropped.
	FramePayloadMax = 63

	// FrameMax is the largest outgoing frame.
	FrameMax = 128

	// frameOverhead is header + length byte
	frameOverhead = 3
)

// Panel system registers
const (
	RegPageSwitch = 0x0084 // page switch register
	RegAudio      = 0x0080 // system audio register
	RegPowerLoss  = 0x0082 // power loss indicator register

	// DescriptorColorOffset locates the color word inside a text descriptor
	DescriptorColorOffset = 3
)

// Audio register values
const (
	audioOn  = 0x1A
	audioOff = 0x12
)
