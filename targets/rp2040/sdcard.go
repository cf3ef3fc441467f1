//go:build rp2040

package main

import (
	"context"
	"errors"
	"machine"

	"tinygo.org/x/drivers/sdcard"
)

const sdBlockSize = 512

var errShortTransfer = errors.New("sdcard: short transfer")

// spiCard exposes a tinygo SPI SD card as a core.BlockDevice
type spiCard struct {
	dev   sdcard.Device
	ready bool
}

func newSPICard() *spiCard {
	return &spiCard{dev: sdcard.New(machine.SPI0, sdSCK, sdSDO, sdSDI, sdCS)}
}

func (c *spiCard) Init() error {
	if err := c.dev.Configure(); err != nil {
		c.ready = false
		return err
	}
	c.ready = true
	return nil
}

func (c *spiCard) ReadBlocks(ctx context.Context, block, count uint32, dst []byte) error {
	for i := uint32(0); i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		buf := dst[i*sdBlockSize : (i+1)*sdBlockSize]
		n, err := c.dev.ReadAt(buf, int64(block+i)*sdBlockSize)
		if err != nil {
			return err
		}
		if n != sdBlockSize {
			return errShortTransfer
		}
	}
	return nil
}

func (c *spiCard) WriteBlocks(ctx context.Context, block, count uint32, src []byte) error {
	for i := uint32(0); i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		buf := src[i*sdBlockSize : (i+1)*sdBlockSize]
		n, err := c.dev.WriteAt(buf, int64(block+i)*sdBlockSize)
		if err != nil {
			return err
		}
		if n != sdBlockSize {
			return errShortTransfer
		}
	}
	return nil
}

// Ready is true once the card answered its init sequence. SPI mode
// blocks until a transfer completes, so there is no busy state to poll.
func (c *spiCard) Ready() bool { return c.ready }

func (c *spiCard) Capacity() (blocks, blockSize uint32) {
	if !c.ready {
		return 0, sdBlockSize
	}
	return uint32(c.dev.Size() / sdBlockSize), sdBlockSize
}
