package core

import "errors"

var (
	// ErrUnsupported marks a capability the board or driver does not provide
	ErrUnsupported = errors.New("unsupported")
	// ErrTimeout is returned when a device does not answer in time
	ErrTimeout = errors.New("timeout")
	// ErrNoDriver is returned when no driver was registered for a peripheral
	ErrNoDriver = errors.New("no_driver")
	// ErrInvalidPin is returned for pins that are absent or not usable
	ErrInvalidPin = errors.New("invalid_pin")
	// ErrBufferSize is returned when a buffer does not match the block size
	ErrBufferSize = errors.New("buffer_size")
)
