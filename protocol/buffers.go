package protocol

import (
	"io"
	"sync"
)

// ByteSource is anything the frame reader can pull single bytes from
type ByteSource interface {
	// Available returns the number of bytes ready to read without blocking
	Available() int

	// ReadByte returns the next byte
	ReadByte() (byte, error)
}

// FrameBuilder assembles one outgoing frame in a fixed scratch buffer
type FrameBuilder struct {
	buf [FrameMax]byte
	pos int
}

// Begin resets the builder and writes header, length placeholder, command and address
func (b *FrameBuilder) Begin(cmd byte, addr uint16) {
	b.pos = 0
	hi, lo := EncodeAddress(addr)
	b.Output([]byte{FrameHeader1, FrameHeader2, 0, cmd, hi, lo})
}

// Output appends raw bytes, dropping what does not fit
func (b *FrameBuilder) Output(data []byte) {
	n := copy(b.buf[b.pos:], data)
	b.pos += n
}

// Byte appends a single byte
func (b *FrameBuilder) Byte(v byte) {
	b.Output([]byte{v})
}

// Word appends a 16-bit value high byte first
func (b *FrameBuilder) Word(v uint16) {
	b.Output([]byte{byte(v >> 8), byte(v)})
}

// CurPosition returns the current write position
func (b *FrameBuilder) CurPosition() int {
	return b.pos
}

// Update modifies a byte at a specific position
func (b *FrameBuilder) Update(pos int, val byte) {
	if pos < len(b.buf) {
		b.buf[pos] = val
	}
}

// Finish patches the length byte and returns a copy of the frame
func (b *FrameBuilder) Finish() []byte {
	if b.pos < frameOverhead {
		return nil
	}
	b.Update(2, byte(b.pos-frameOverhead))
	out := make([]byte, b.pos)
	copy(out, b.buf[:b.pos])
	return out
}

// FifoBuffer is a circular buffer between a serial reader goroutine and the idle loop
type FifoBuffer struct {
	mu    sync.Mutex
	buf   []byte
	read  int
	write int
	size  int

	dropped uint32
}

// NewFifoBuffer creates a new FifoBuffer with the specified capacity
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{
		buf:  make([]byte, capacity),
		size: capacity,
	}
}

// Write appends data to the FIFO buffer and returns how much fit
func (f *FifoBuffer) Write(data []byte) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	written := 0
	for _, b := range data {
		nextWrite := (f.write + 1) % f.size
		if nextWrite == f.read {
			f.dropped += uint32(len(data) - written)
			break
		}
		f.buf[f.write] = b
		f.write = nextWrite
		written++
	}
	return written
}

// Read reads up to len(data) bytes from the FIFO buffer
func (f *FifoBuffer) Read(data []byte) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	read := 0
	for i := range data {
		if f.read == f.write {
			break
		}
		data[i] = f.buf[f.read]
		f.read = (f.read + 1) % f.size
		read++
	}
	return read
}

// ReadByte pops one byte, returning io.EOF when empty
func (f *FifoBuffer) ReadByte() (byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.read == f.write {
		return 0, io.EOF
	}
	b := f.buf[f.read]
	f.read = (f.read + 1) % f.size
	return b, nil
}

// Available returns the number of bytes available for reading
func (f *FifoBuffer) Available() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available()
}

func (f *FifoBuffer) available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}

// Dropped counts bytes Write could not store since creation
func (f *FifoBuffer) Dropped() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

// Reset clears the buffer
func (f *FifoBuffer) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.read = 0
	f.write = 0
}
