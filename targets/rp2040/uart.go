//go:build rp2040

package main

import (
	"context"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"kobrafw/core"
	"kobrafw/protocol"
)

// panelBaud is the DGUS panel's fixed serial rate
const panelBaud = 115200

// panelPort adapts uartx to the panel driver's link and byte source
type panelPort struct {
	u   *uartx.UART
	rx  *protocol.FifoBuffer
	log core.Logger
}

func openPanelPort(log core.Logger) (*panelPort, error) {
	u := uartx.UART0
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: panelBaud,
		TX:       panelTX,
		RX:       panelRX,
	}); err != nil {
		return nil, err
	}
	p := &panelPort{
		u:   u,
		rx:  protocol.NewFifoBuffer(256),
		log: log,
	}
	go p.readLoop()
	return p, nil
}

// readLoop moves received bytes into the FIFO the frame reader polls
func (p *panelPort) readLoop() {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("panel reader: %v", r)
			time.Sleep(100 * time.Millisecond)
			go p.readLoop()
		}
	}()

	buf := make([]byte, 64)
	for {
		n, err := p.u.RecvSomeContext(context.Background(), buf)
		if err != nil {
			time.Sleep(time.Millisecond)
			continue
		}
		p.rx.Write(buf[:n])
	}
}

func (p *panelPort) Write(b []byte) (int, error) {
	return p.u.Write(b)
}

func (p *panelPort) Source() *protocol.FifoBuffer {
	return p.rx
}
