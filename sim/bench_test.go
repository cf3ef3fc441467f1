package sim

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/sirupsen/logrus/hooks/test"

	"kobrafw/core"
	"kobrafw/dgus"
	"kobrafw/protocol"
)

// bench wires a panel driver to the simulated printer
type bench struct {
	d     *dgus.Driver
	p     *Printer
	link  *bytes.Buffer
	rx    *protocol.FifoBuffer
	clock *core.ManualClock
}

func newPanelBench(t *testing.T, fsys fstest.MapFS) *bench {
	t.Helper()
	logger, _ := test.NewNullLogger()
	b := &bench{
		link:  &bytes.Buffer{},
		rx:    protocol.NewFifoBuffer(256),
		clock: &core.ManualClock{},
	}
	b.p = New(WithClock(b.clock), WithLogger(logger), WithMedia(fsys), WithPrintRate(1000))
	reader := protocol.NewFrameReader(b.rx, b.clock.Millis)
	b.d = dgus.New(b.link, reader, b.p,
		dgus.WithClock(b.clock),
		dgus.WithLogger(logger),
		dgus.WithMedia(fsys),
	)
	b.p.SetEvents(b.d)
	return b
}

// press sends a key report and runs the panel and the printer once
func (b *bench) press(key uint16) {
	hi, lo := protocol.EncodeAddress(dgus.KeyAddress)
	b.rx.Write([]byte{0x5A, 0xA5, 0x06, 0x83, hi, lo, 0x01, byte(key >> 8), byte(key)})
	b.step(0)
}

func (b *bench) step(ms uint32) {
	b.clock.Advance(ms)
	b.d.IdleLoop()
	b.p.Tick()
}

func TestBenchPrintFromPanel(t *testing.T) {
	fsys := fstest.MapFS{"cube.gcode": {Data: make([]byte, 3000)}}
	b := newPanelBench(t, fsys)
	b.d.FakeChangePage(dgus.PageMain)

	b.press(1) // files
	if b.d.Page() != dgus.PageFile {
		t.Fatalf("Expected file page, got %d", b.d.Page())
	}
	b.press(7) // first box
	b.press(6) // open

	if !b.p.IsPrinting() {
		t.Fatal("Expected the printer to run the job")
	}
	if b.d.State() != dgus.PrinterPrinting {
		t.Errorf("Expected printing state, got %s", b.d.State())
	}
	if b.d.Page() != dgus.PageStatus2 {
		t.Errorf("Expected status page, got %d", b.d.Page())
	}

	b.step(1000)
	if b.p.ProgressPercent() != 33 {
		t.Errorf("Expected 33%% after one second, got %d%%", b.p.ProgressPercent())
	}

	b.step(2000)
	b.d.IdleLoop()
	if b.d.Page() != dgus.PagePrintFinish {
		t.Errorf("Expected finish page, got %d", b.d.Page())
	}
	if b.p.Stats().FinishedPrints != 1 {
		t.Errorf("Expected one finished print, got %d", b.p.Stats().FinishedPrints)
	}
}

func TestBenchHomeFromMovePage(t *testing.T) {
	b := newPanelBench(t, fstest.MapFS{})
	b.d.FakeChangePage(dgus.PageMove)

	b.press(13)

	for _, a := range []dgus.Axis{dgus.AxisX, dgus.AxisY, dgus.AxisZ} {
		if !b.p.AxisTrusted(a) {
			t.Errorf("Expected %s homed", a)
		}
	}
	if b.d.Page() != dgus.PageMove {
		t.Errorf("Expected back on the move page, got %d", b.d.Page())
	}
	if last, _ := b.d.History(); last != dgus.PageHoming {
		t.Errorf("Expected the homing page shown in between, got %d", last)
	}
}

func TestBenchStopFromPrinter(t *testing.T) {
	fsys := fstest.MapFS{"cube.gcode": {Data: make([]byte, 30000)}}
	b := newPanelBench(t, fsys)

	b.p.PrintFile("cube.gcode")
	b.step(0)
	if b.d.State() != dgus.PrinterPrinting {
		t.Fatalf("Expected printing state, got %s", b.d.State())
	}

	b.p.StopPrint()
	b.step(0)
	if b.p.IsPrinting() {
		t.Error("Expected the job stopped")
	}
	if b.d.Page() != dgus.PagePrintFinish {
		t.Errorf("Expected the finish page, got %d", b.d.Page())
	}
}
