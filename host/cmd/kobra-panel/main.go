package main

import (
	"bufio"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"kobrafw/config"
	"kobrafw/core"
	"kobrafw/dgus"
	hostgpio "kobrafw/host/gpio"
	"kobrafw/host/panel"
	"kobrafw/host/serial"
	"kobrafw/protocol"
	"kobrafw/sim"
)

var (
	configPath = flag.String("config", "", "JSON configuration file")
	device     = flag.String("device", "", "Panel serial device, overrides the configuration")
	baud       = flag.Int("baud", 0, "Panel baud rate, overrides the configuration")
	mediaDir   = flag.String("media", "", "Directory served as the SD card")
	useGPIO    = flag.Bool("gpio", false, "Drive board pins through periph.io")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
	loopPeriod = flag.Duration("period", 10*time.Millisecond, "Idle loop period")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Level()
	if *verbose {
		level = logrus.DebugLevel
	}
	log := core.NewLogger(level)
	core.SetLogger(log)

	if err := run(cfg, log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultKobraMaxConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			return nil, err
		}
	}
	if *device != "" {
		cfg.Panel.Device = *device
	}
	if *baud != 0 {
		cfg.Panel.Baud = *baud
	}
	if cfg.Panel.Device == "" {
		cfg.Panel.Device = "/dev/ttyUSB0"
	}
	return cfg, nil
}

func run(cfg *config.Config, log *logrus.Logger) error {
	link, err := panel.ConnectWithConfig(&serial.Config{
		Device:      cfg.Panel.Device,
		Baud:        cfg.Panel.Baud,
		ReadTimeout: cfg.Panel.ReadTimeout,
	}, log.WithField("prefix", "link"))
	if err != nil {
		return err
	}
	defer link.Close()
	log.Infof("kobrafw %s, panel on %s at %d baud", protocol.Version, cfg.Panel.Device, cfg.Panel.Baud)

	clock := core.NewSystemClock()

	var media fs.FS
	if *mediaDir != "" {
		media = os.DirFS(*mediaDir)
	}

	printer := sim.New(
		sim.WithClock(clock),
		sim.WithLogger(log.WithField("prefix", "sim")),
		sim.WithMedia(media),
	)

	opts := append(cfg.PanelOptions(),
		dgus.WithClock(clock),
		dgus.WithLogger(log.WithField("prefix", "dgus")),
	)
	if media != nil {
		opts = append(opts, dgus.WithMedia(media))
	}

	var board *boardIO
	if *useGPIO {
		if board, err = setupGPIO(cfg, clock, log); err != nil {
			return err
		}
		opts = append(opts, board.opts...)
	}

	reader := protocol.NewFrameReader(link.Source(), clock.Millis)
	driver := dgus.New(link, reader, printer, opts...)
	printer.SetEvents(driver)
	driver.Startup()

	commands := make(chan []string)
	go readCommands(commands)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	ticker := time.NewTicker(*loopPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-interrupt:
			log.Infof("interrupted")
			return nil
		case args, ok := <-commands:
			if !ok || !handleCommand(args, driver, printer, media, log) {
				return nil
			}
		case <-ticker.C:
			driver.IdleLoop()
			printer.Tick()
			if board != nil {
				board.poll(printer)
			}
			if err := link.Err(); err != nil {
				return fmt.Errorf("panel link lost: %w", err)
			}
		}
	}
}

// boardIO holds the pins driven through periph.io
type boardIO struct {
	hal   *core.HAL
	gpio  core.GPIODriver
	probe core.GPIOPin
	opts  []dgus.Option
}

// poll runs once per loop pass
func (b *boardIO) poll(p *sim.Printer) {
	b.hal.IdleTask()
	if b.probe.Valid() {
		p.SetProbeTriggered(b.gpio.ReadPin(b.probe))
	}
}

// setupGPIO brings up the board pins, the runout sensor, the probe input
// and the buzzer
func setupGPIO(cfg *config.Config, clock core.Clock, log *logrus.Logger) (*boardIO, error) {
	gp, err := hostgpio.Open()
	if err != nil {
		return nil, err
	}

	halCfg, err := cfg.HALConfig()
	if err != nil {
		return nil, err
	}
	pins, err := cfg.PanelPins()
	if err != nil {
		return nil, err
	}

	hal := core.NewHAL(halCfg,
		core.WithGPIO(gp),
		core.WithClock(clock),
		core.WithLogger(log.WithField("prefix", "hal")),
	)
	if err := hal.Init(); err != nil {
		return nil, fmt.Errorf("board init: %w", err)
	}
	b := &boardIO{hal: hal, gpio: gp, probe: pins.Probe}

	if pins.Runout.Valid() {
		if err := gp.ConfigureInputPullUp(pins.Runout); err != nil {
			return nil, fmt.Errorf("runout pin: %w", err)
		}
		b.opts = append(b.opts, dgus.WithRunoutSensor(gp, pins.Runout))
	}
	if pins.Probe.Valid() {
		if err := gp.ConfigureInputPullDown(pins.Probe); err != nil {
			return nil, fmt.Errorf("probe pin: %w", err)
		}
	}
	if pins.Beeper.Valid() {
		buzzer, err := hostgpio.NewBuzzer(gp, pins.Beeper, clock, log.WithField("prefix", "buzzer"))
		if err != nil {
			return nil, fmt.Errorf("beeper pin: %w", err)
		}
		b.opts = append(b.opts, dgus.WithBeeper(buzzer))
	}
	return b, nil
}

func readCommands(out chan<- []string) {
	defer close(out)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		out <- strings.Fields(line)
	}
}

// handleCommand runs one console command, false quits
func handleCommand(args []string, d *dgus.Driver, p *sim.Printer, media fs.FS, log *logrus.Logger) bool {
	switch args[0] {
	case "quit", "exit", "q":
		return false

	case "help", "?":
		printHelp()

	case "status":
		last, last2 := d.History()
		fmt.Printf("page %d (last %d, %d) state %s\n", d.Page(), last, last2, d.State())
		fmt.Printf("hotend %.1f/%.0f bed %.1f/%.0f progress %d%%\n",
			p.ActualTemp(dgus.HeaterE0), p.TargetTemp(dgus.HeaterE0),
			p.ActualTemp(dgus.HeaterBed), p.TargetTemp(dgus.HeaterBed),
			p.ProgressPercent())

	case "gcode":
		p.InjectCommands(strings.Join(args[1:], " "))

	case "runout":
		p.TriggerRunout()

	case "eject":
		p.RemoveMedia()

	case "insert":
		if media == nil {
			fmt.Println("no media directory given")
			break
		}
		p.InsertMedia(media)

	case "probe":
		// a configured probe pin overrides this on the next pass
		p.SetProbeTriggered(len(args) > 1 && args[1] == "on")

	case "kill":
		if len(args) < 3 {
			fmt.Println("usage: kill <error> <component>")
			break
		}
		p.Kill(strings.Join(args[1:len(args)-1], " "), args[len(args)-1])

	case "powerloss":
		d.PowerLoss()

	default:
		log.Warnf("unknown command: %s (type 'help' for available commands)", args[0])
	}
	return true
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  help              - Show this help message")
	fmt.Println("  status            - Print page, state and temperatures")
	fmt.Println("  gcode <line>      - Queue gcode on the bench printer")
	fmt.Println("  runout            - Report a filament runout")
	fmt.Println("  eject / insert    - Remove or insert the SD card")
	fmt.Println("  probe on|off      - Set the probe trigger state")
	fmt.Println("  kill <err> <comp> - Raise a fatal printer error")
	fmt.Println("  powerloss         - Tell the panel main power dropped")
	fmt.Println("  quit/exit/q       - Exit the program")
	fmt.Println()
}
