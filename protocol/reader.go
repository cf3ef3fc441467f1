package protocol

// HeaderTimeout is how long the reader waits for the second header byte, in milliseconds
const HeaderTimeout = 500

// Drop reasons reported through FrameReader.OnDrop
const (
	DropHeaderTimeout = "header timeout"
	DropBadHeader     = "bad header"
	DropBadLength     = "bad length"
	DropOverflow      = "payload overflow"
)

type readerState uint8

const (
	stateSync readerState = iota
	stateSync2
	stateLength
	statePayload
)

// FrameReader reassembles panel frames from a byte source.
// It never blocks: each Poll consumes at most one byte.
type FrameReader struct {
	src    ByteSource
	millis func() uint32

	// OnDrop is called when a partially received frame is discarded
	OnDrop func(reason string)

	state  readerState
	since  uint32
	length int
	buf    [FramePayloadMax]byte
	n      int

	frames  uint32
	dropped uint32
}

// NewFrameReader creates a reader over src. millis supplies a millisecond clock.
func NewFrameReader(src ByteSource, millis func() uint32) *FrameReader {
	return &FrameReader{src: src, millis: millis}
}

// Poll consumes at most one byte and returns a frame when one completes
func (r *FrameReader) Poll() (Frame, bool) {
	if r.src == nil {
		return nil, false
	}
	if r.src.Available() == 0 {
		if r.state == stateSync2 && r.expired() {
			r.drop(DropHeaderTimeout)
		}
		return nil, false
	}
	b, err := r.src.ReadByte()
	if err != nil {
		return nil, false
	}
	return r.Feed(b)
}

// Next drains the source until a frame completes or no byte is left
func (r *FrameReader) Next() (Frame, bool) {
	for r.src != nil && r.src.Available() > 0 {
		if f, ok := r.Poll(); ok {
			return f, true
		}
	}
	return r.Poll()
}

// Feed advances the state machine by one byte
func (r *FrameReader) Feed(b byte) (Frame, bool) {
	switch r.state {
	case stateSync:
		if b != FrameHeader1 {
			return nil, false
		}
		r.state = stateSync2
		r.since = r.now()

	case stateSync2:
		if r.expired() {
			r.drop(DropHeaderTimeout)
			return r.Feed(b)
		}
		if b != FrameHeader2 {
			r.drop(DropBadHeader)
			return nil, false
		}
		r.state = stateLength

	case stateLength:
		if b == 0 {
			r.drop(DropBadLength)
			return nil, false
		}
		r.length = int(b)
		r.n = 0
		r.state = statePayload

	case statePayload:
		if r.n >= FramePayloadMax {
			r.drop(DropOverflow)
			return nil, false
		}
		r.buf[r.n] = b
		r.n++
		if r.n >= r.length {
			frame := make(Frame, r.n)
			copy(frame, r.buf[:r.n])
			r.reset()
			r.frames++
			return frame, true
		}
	}
	return nil, false
}

// Pending reports whether a frame is partially received
func (r *FrameReader) Pending() bool {
	return r.state != stateSync
}

// Buffered returns the number of payload bytes held for the current frame
func (r *FrameReader) Buffered() int {
	return r.n
}

// Stats returns completed and dropped frame counts
func (r *FrameReader) Stats() (frames, dropped uint32) {
	return r.frames, r.dropped
}

func (r *FrameReader) expired() bool {
	return r.now()-r.since > HeaderTimeout
}

func (r *FrameReader) now() uint32 {
	if r.millis == nil {
		return 0
	}
	return r.millis()
}

func (r *FrameReader) drop(reason string) {
	r.reset()
	r.dropped++
	if r.OnDrop != nil {
		r.OnDrop(reason)
	}
}

func (r *FrameReader) reset() {
	r.state = stateSync
	r.length = 0
	r.n = 0
}
