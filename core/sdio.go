package core

import (
	"context"
	"math"
	"time"
)

// BlockSize is the SD block length
const BlockSize = 512

// BlockDevice is the vendor card driver
type BlockDevice interface {
	Init() error
	ReadBlocks(ctx context.Context, block, count uint32, dst []byte) error
	WriteBlocks(ctx context.Context, block, count uint32, src []byte) error
	// Ready reports the card READY_FOR_DATA status
	Ready() bool
	Capacity() (blocks, blockSize uint32)
}

// SDIO settings
const (
	DefaultReadRetries  = 3
	DefaultWriteRetries = 1
	DefaultSDIOTimeout  = 100 * time.Millisecond
)

// SDIO performs single block transfers with a bounded retry count.
// Failures are logged and reported as false.
type SDIO struct {
	dev      BlockDevice
	watchdog func()
	log      Logger

	ReadRetries  int
	WriteRetries int
	Timeout      time.Duration
}

// SDIOOption configures an SDIO
type SDIOOption func(*SDIO)

// WithRetries sets the attempt counts for reads and writes
func WithRetries(read, write int) SDIOOption {
	return func(s *SDIO) {
		s.ReadRetries = read
		s.WriteRetries = write
	}
}

// WithTimeout sets the per attempt timeout
func WithTimeout(d time.Duration) SDIOOption {
	return func(s *SDIO) { s.Timeout = d }
}

// WithWatchdogRefresh sets the function called before each attempt
func WithWatchdogRefresh(fn func()) SDIOOption {
	return func(s *SDIO) { s.watchdog = fn }
}

// WithSDIOLogger sets the logger
func WithSDIOLogger(l Logger) SDIOOption {
	return func(s *SDIO) { s.log = l }
}

// NewSDIO wraps dev
func NewSDIO(dev BlockDevice, opts ...SDIOOption) *SDIO {
	s := &SDIO{
		dev:          dev,
		ReadRetries:  DefaultReadRetries,
		WriteRetries: DefaultWriteRetries,
		Timeout:      DefaultSDIOTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = Log()
	}
	return s
}

// Init initializes the card
func (s *SDIO) Init() bool {
	if err := s.dev.Init(); err != nil {
		s.log.Errorf("SDIO init error: %v", err)
		return false
	}
	return true
}

// ReadBlock reads one block into dst
func (s *SDIO) ReadBlock(block uint32, dst []byte) bool {
	if len(dst) != BlockSize {
		s.log.Errorf("SDIO read block %d: %v (%d)", block, ErrBufferSize, len(dst))
		return false
	}
	return s.withRetry(s.ReadRetries, "read", block, func(ctx context.Context) error {
		return s.dev.ReadBlocks(ctx, block, 1, dst)
	})
}

// WriteBlock writes one block from src
func (s *SDIO) WriteBlock(block uint32, src []byte) bool {
	if len(src) != BlockSize {
		s.log.Errorf("SDIO write block %d: %v (%d)", block, ErrBufferSize, len(src))
		return false
	}
	return s.withRetry(s.WriteRetries, "write", block, func(ctx context.Context) error {
		return s.dev.WriteBlocks(ctx, block, 1, src)
	})
}

func (s *SDIO) withRetry(retries int, op string, block uint32, fn func(context.Context) error) bool {
	for attempt := 0; attempt < retries; attempt++ {
		if s.watchdog != nil {
			s.watchdog()
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
		err := fn(ctx)
		cancel()
		if err == nil {
			return true
		}
		s.log.Errorf("SDIO %s block %d error (attempt %d/%d): %v", op, block, attempt+1, retries, err)
	}
	return false
}

// IsReady reports whether the card accepts data
func (s *SDIO) IsReady() bool {
	return s.dev.Ready()
}

// CardSize returns the capacity in bytes, clamped to 32 bits
func (s *SDIO) CardSize() uint32 {
	blocks, size := s.dev.Capacity()
	total := uint64(blocks) * uint64(size)
	if total > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(total)
}
