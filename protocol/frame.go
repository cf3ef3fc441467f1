package protocol

// Frame is one received frame without its header and length byte:
// cmd addr_hi addr_lo payload...
type Frame []byte

// Command returns the frame command byte
func (f Frame) Command() byte {
	if len(f) == 0 {
		return 0
	}
	return f[0]
}

// Address returns the VP address carried by the frame
func (f Frame) Address() uint16 {
	if len(f) < 3 {
		return 0
	}
	return DecodeAddress(f[1], f[2])
}

// Word returns the first 16-bit data word of a read report
func (f Frame) Word() uint16 {
	if len(f) < 6 {
		return 0
	}
	return uint16(f[4])<<8 | uint16(f[5])
}

// Word24 returns the 24-bit value formed by the word count byte and the first word.
// The panel reports its boot animation state this way.
func (f Frame) Word24() uint32 {
	if len(f) < 6 {
		return 0
	}
	return uint32(f[3])<<16 | uint32(f[4])<<8 | uint32(f[5])
}

// ValueFrame writes a 16-bit value to a VP address
func ValueFrame(addr, value uint16) []byte {
	var b FrameBuilder
	b.Begin(CmdWrite, addr)
	b.Word(value)
	return b.Finish()
}

// RequestFrame asks the panel to report one word from a VP address
func RequestFrame(addr uint16) []byte {
	var b FrameBuilder
	b.Begin(CmdRead, addr)
	b.Byte(0x01)
	return b.Finish()
}

// TextFrame writes a string to a text VP, terminated with FF FF.
// Text longer than a frame can carry is truncated.
func TextFrame(addr uint16, text string) []byte {
	var b FrameBuilder
	b.Begin(CmdWrite, addr)
	if max := FrameMax - b.CurPosition() - 2; len(text) > max {
		text = text[:max]
	}
	b.Output([]byte(text))
	b.Word(0xFFFF)
	return b.Finish()
}

// ColorFrame writes an RGB565 color to the text descriptor at addr.
// The color word sits at offset 3 of the descriptor.
func ColorFrame(addr, color uint16) []byte {
	return ValueFrame(addr+DescriptorColorOffset, color)
}

// PageFrame switches the panel to the given page
func PageFrame(page uint16) []byte {
	var b FrameBuilder
	b.Begin(CmdWrite, RegPageSwitch)
	b.Byte(0x5A)
	b.Byte(0x01)
	b.Word(page)
	return b.Finish()
}

// AudioFrame enables or mutes the panel touch sound
func AudioFrame(on bool) []byte {
	var b FrameBuilder
	b.Begin(CmdWrite, RegAudio)
	b.Output([]byte{0x5A, 0x00, 0x00})
	if on {
		b.Byte(audioOn)
	} else {
		b.Byte(audioOff)
	}
	return b.Finish()
}

// PowerLossFrame tells the panel that main power dropped
func PowerLossFrame() []byte {
	var b FrameBuilder
	b.Begin(CmdWrite, RegPowerLoss)
	b.Word(0x0000)
	return b.Finish()
}
