package dgus

import (
	"io/fs"

	"kobrafw/core"
)

// Preset is a material preheat pair
type Preset struct {
	Hotend uint16
	Bed    uint16
}

// Limits bounds the values the panel may set and the heater fault window
type Limits struct {
	HotendMinTemp float32
	HotendMaxTemp float32
	BedMinTemp    float32
	BedMaxTemp    float32

	PLA Preset
	ABS Preset

	LevelingNozzleTemp float32
	LevelingBedTemp    float32

	Babystep   float32
	ZOffsetMin float32
	ZOffsetMax float32
}

// DefaultLimits returns the Kobra Max values
func DefaultLimits() Limits {
	return Limits{
		HotendMinTemp:      5,
		HotendMaxTemp:      275,
		BedMinTemp:         5,
		BedMaxTemp:         120,
		PLA:                Preset{Hotend: 200, Bed: 60},
		ABS:                Preset{Hotend: 240, Bed: 80},
		LevelingNozzleTemp: 120,
		LevelingBedTemp:    60,
		Babystep:           0.05,
		ZOffsetMin:         -5,
		ZOffsetMax:         5,
	}
}

// Option configures a Driver
type Option func(*Driver)

// WithClock sets the millisecond clock
func WithClock(c core.Clock) Option {
	return func(d *Driver) { d.clock = c }
}

// WithLogger sets the logger
func WithLogger(l core.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithBeeper sets the tune player
func WithBeeper(b Beeper) Option {
	return func(d *Driver) { d.beeper = b }
}

// WithMedia sets the file tree shown on the file page
func WithMedia(fsys fs.FS) Option {
	return func(d *Driver) { d.files = NewNavigator(fsys) }
}

// WithRunoutSensor reads the filament sensor pin directly. High means no filament.
func WithRunoutSensor(gpio core.GPIODriver, pin core.GPIOPin) Option {
	return func(d *Driver) {
		d.runoutGPIO = gpio
		d.runoutPin = pin
	}
}

// WithLimits sets temperature and offset limits
func WithLimits(l Limits) Option {
	return func(d *Driver) { d.limits = l }
}

// WithDeviceInfo sets the about page strings
func WithDeviceInfo(info DeviceInfo) Option {
	return func(d *Driver) { d.device = info }
}

// WithCaseLight enables the case light pages and controls
func WithCaseLight(enabled bool) Option {
	return func(d *Driver) { d.caseLight = enabled }
}

// WithPreheatBeforeLeveling heats to the leveling temperatures before probing
func WithPreheatBeforeLeveling(enabled bool) Option {
	return func(d *Driver) { d.preheatLeveling = enabled }
}

// WithAudio sets the initial panel touch sound state
func WithAudio(on bool) Option {
	return func(d *Driver) {
		d.audio = on
		d.audioSaved = on
	}
}
