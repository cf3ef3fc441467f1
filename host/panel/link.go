// Package panel connects the DGUS driver to a touch panel on a host serial port
package panel

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"kobrafw/core"
	"kobrafw/host/serial"
	"kobrafw/protocol"
)

// RxBufferSize holds a few hundred milliseconds of panel traffic
const RxBufferSize = 1024

// Link is the serial connection to a panel. A reader goroutine moves
// received bytes into a FIFO the idle loop drains.
type Link struct {
	port serial.Port
	rx   *protocol.FifoBuffer
	log  core.Logger

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
	wg        sync.WaitGroup

	mu  sync.Mutex
	err error
}

// Connect opens device with the default panel settings
func Connect(device string, log core.Logger) (*Link, error) {
	return ConnectWithConfig(serial.DefaultConfig(device), log)
}

// ConnectWithConfig opens the port described by cfg
func ConnectWithConfig(cfg *serial.Config, log core.Logger) (*Link, error) {
	if log == nil {
		log = core.Log()
	}
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open panel link: %w", err)
	}
	if err := port.Flush(); err != nil {
		log.Warnf("flush %s: %v", cfg.Device, err)
	}
	return NewLink(port, log), nil
}

// NewLink starts reading from an already open port
func NewLink(port serial.Port, log core.Logger) *Link {
	if log == nil {
		log = core.Log()
	}
	l := &Link{
		port: port,
		rx:   protocol.NewFifoBuffer(RxBufferSize),
		log:  log,
		done: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.readLoop()
	return l
}

func (l *Link) readLoop() {
	defer l.wg.Done()
	buf := make([]byte, 64)
	for {
		n, err := l.port.Read(buf)
		if n > 0 {
			if w := l.rx.Write(buf[:n]); w < n {
				l.log.Warnf("panel rx overflow, dropped %d bytes", n-w)
			}
		}

		if l.closing() {
			return
		}
		// tarm reports a read timeout as EOF
		if err == nil || errors.Is(err, io.EOF) {
			continue
		}
		l.mu.Lock()
		l.err = err
		l.mu.Unlock()
		l.log.Errorf("panel read: %v", err)
		return
	}
}

func (l *Link) closing() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// Write sends bytes to the panel
func (l *Link) Write(b []byte) (int, error) {
	return l.port.Write(b)
}

// Source returns the received byte FIFO for a frame reader
func (l *Link) Source() *protocol.FifoBuffer {
	return l.rx
}

// Err returns the error that stopped the reader, if any
func (l *Link) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Dropped returns how many received bytes did not fit the FIFO
func (l *Link) Dropped() int {
	return int(l.rx.Dropped())
}

// Close stops the reader and closes the port. Later calls return the first result.
func (l *Link) Close() error {
	l.closeOnce.Do(func() {
		close(l.done)
		l.closeErr = l.port.Close()
		l.wg.Wait()
	})
	return l.closeErr
}
