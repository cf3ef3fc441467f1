// Package config loads the board and panel settings
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"kobrafw/core"
	"kobrafw/dgus"
)

// PanelConfig describes the serial link to the touch panel
type PanelConfig struct {
	Device      string `json:"device"`
	Baud        int    `json:"baud"`
	ReadTimeout int    `json:"read_timeout_ms"` // 0 blocks
}

// TempConfig bounds heater targets and the fault window
type TempConfig struct {
	HotendMin float32 `json:"hotend_min"`
	HotendMax float32 `json:"hotend_max"`
	BedMin    float32 `json:"bed_min"`
	BedMax    float32 `json:"bed_max"`
}

// PresetConfig is one material preheat pair
type PresetConfig struct {
	Hotend uint16 `json:"hotend"`
	Bed    uint16 `json:"bed"`
}

// LevelingConfig covers probing and Z offset adjustment
type LevelingConfig struct {
	NozzleTemp   float32 `json:"nozzle_temp"`
	BedTemp      float32 `json:"bed_temp"`
	PreheatFirst bool    `json:"preheat_first"`
	Babystep     float32 `json:"babystep"`
	ZOffsetMin   float32 `json:"z_offset_min"`
	ZOffsetMax   float32 `json:"z_offset_max"`
}

// SDIOConfig tunes the block storage retries
type SDIOConfig struct {
	Onboard      bool `json:"onboard"`
	ReadRetries  int  `json:"read_retries"`
	WriteRetries int  `json:"write_retries"`
	TimeoutMs    int  `json:"timeout_ms"`
}

// PinConfig names board pins as "gpioN", "N" or "" when not fitted
type PinConfig struct {
	SDSS         string `json:"sdss"`
	LED          string `json:"led"`
	AutoLevelTX  string `json:"auto_level_tx"`
	Runout       string `json:"runout"`
	Beeper       string `json:"beeper"`
	Probe        string `json:"probe"`
	TempBed      string `json:"temp_bed"`
	TempHotend   string `json:"temp_hotend"`
	PowerMonitor string `json:"power_monitor"`
}

// DeviceConfig is shown on the about page
type DeviceConfig struct {
	Name        string `json:"name"`
	Firmware    string `json:"firmware"`
	BuildVolume string `json:"build_volume"`
	Support     string `json:"support"`
}

// Config is the complete board configuration
type Config struct {
	Panel    PanelConfig    `json:"panel"`
	Temps    TempConfig     `json:"temps"`
	PLA      PresetConfig   `json:"pla"`
	ABS      PresetConfig   `json:"abs"`
	Leveling LevelingConfig `json:"leveling"`
	SDIO     SDIOConfig     `json:"sdio"`
	Pins     PinConfig      `json:"pins"`
	Device   DeviceConfig   `json:"device"`

	Mute      bool   `json:"mute"`
	CaseLight bool   `json:"case_light"`
	Watchdog  bool   `json:"watchdog"`
	LogLevel  string `json:"log_level"`
}

// LoadConfig parses a JSON configuration over the Kobra Max defaults.
// Omitted keys keep their default, zero numbers fall back to it.
func LoadConfig(jsonData []byte) (*Config, error) {
	config := DefaultKobraMaxConfig()

	err := json.Unmarshal(jsonData, config)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFile reads and parses a JSON configuration file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return LoadConfig(data)
}

// applyDefaults fills in missing values with the Kobra Max settings
func applyDefaults(config *Config) {
	def := DefaultKobraMaxConfig()

	if config.Panel.Baud == 0 {
		config.Panel.Baud = def.Panel.Baud
	}
	if config.Panel.ReadTimeout == 0 {
		config.Panel.ReadTimeout = def.Panel.ReadTimeout
	}

	if config.Temps.HotendMin == 0 {
		config.Temps.HotendMin = def.Temps.HotendMin
	}
	if config.Temps.HotendMax == 0 {
		config.Temps.HotendMax = def.Temps.HotendMax
	}
	if config.Temps.BedMin == 0 {
		config.Temps.BedMin = def.Temps.BedMin
	}
	if config.Temps.BedMax == 0 {
		config.Temps.BedMax = def.Temps.BedMax
	}

	if config.PLA == (PresetConfig{}) {
		config.PLA = def.PLA
	}
	if config.ABS == (PresetConfig{}) {
		config.ABS = def.ABS
	}

	if config.Leveling.NozzleTemp == 0 {
		config.Leveling.NozzleTemp = def.Leveling.NozzleTemp
	}
	if config.Leveling.BedTemp == 0 {
		config.Leveling.BedTemp = def.Leveling.BedTemp
	}
	if config.Leveling.Babystep == 0 {
		config.Leveling.Babystep = def.Leveling.Babystep
	}
	if config.Leveling.ZOffsetMin == 0 && config.Leveling.ZOffsetMax == 0 {
		config.Leveling.ZOffsetMin = def.Leveling.ZOffsetMin
		config.Leveling.ZOffsetMax = def.Leveling.ZOffsetMax
	}

	if config.SDIO.ReadRetries == 0 {
		config.SDIO.ReadRetries = def.SDIO.ReadRetries
	}
	if config.SDIO.WriteRetries == 0 {
		config.SDIO.WriteRetries = def.SDIO.WriteRetries
	}
	if config.SDIO.TimeoutMs == 0 {
		config.SDIO.TimeoutMs = def.SDIO.TimeoutMs
	}

	if config.Device == (DeviceConfig{}) {
		config.Device = def.Device
	}
	if config.LogLevel == "" {
		config.LogLevel = def.LogLevel
	}
}

// DefaultKobraMaxConfig returns the stock Anycubic Kobra Max settings
func DefaultKobraMaxConfig() *Config {
	info := dgus.DefaultDeviceInfo()
	lim := dgus.DefaultLimits()
	return &Config{
		Panel: PanelConfig{
			Baud:        115200,
			ReadTimeout: 50,
		},
		Temps: TempConfig{
			HotendMin: lim.HotendMinTemp,
			HotendMax: lim.HotendMaxTemp,
			BedMin:    lim.BedMinTemp,
			BedMax:    lim.BedMaxTemp,
		},
		PLA: PresetConfig{Hotend: lim.PLA.Hotend, Bed: lim.PLA.Bed},
		ABS: PresetConfig{Hotend: lim.ABS.Hotend, Bed: lim.ABS.Bed},
		Leveling: LevelingConfig{
			NozzleTemp:   lim.LevelingNozzleTemp,
			BedTemp:      lim.LevelingBedTemp,
			PreheatFirst: true,
			Babystep:     lim.Babystep,
			ZOffsetMin:   lim.ZOffsetMin,
			ZOffsetMax:   lim.ZOffsetMax,
		},
		SDIO: SDIOConfig{
			ReadRetries:  core.DefaultReadRetries,
			WriteRetries: core.DefaultWriteRetries,
			TimeoutMs:    int(core.DefaultSDIOTimeout / time.Millisecond),
		},
		Device: DeviceConfig{
			Name:        info.Name,
			Firmware:    info.Firmware,
			BuildVolume: info.BuildVolume,
			Support:     info.Support,
		},
		CaseLight: true,
		Watchdog:  true,
		LogLevel:  "info",
	}
}

// Validate rejects inconsistent settings
func (c *Config) Validate() error {
	if c.Temps.HotendMin >= c.Temps.HotendMax {
		return fmt.Errorf("hotend min temp %.0f must be below max %.0f", c.Temps.HotendMin, c.Temps.HotendMax)
	}
	if c.Temps.BedMin >= c.Temps.BedMax {
		return fmt.Errorf("bed min temp %.0f must be below max %.0f", c.Temps.BedMin, c.Temps.BedMax)
	}
	for name, p := range map[string]PresetConfig{"pla": c.PLA, "abs": c.ABS} {
		if float32(p.Hotend) > c.Temps.HotendMax || float32(p.Bed) > c.Temps.BedMax {
			return fmt.Errorf("%s preset %d/%d exceeds the heater limits", name, p.Hotend, p.Bed)
		}
	}
	if c.Leveling.NozzleTemp > c.Temps.HotendMax || c.Leveling.BedTemp > c.Temps.BedMax {
		return fmt.Errorf("leveling temperatures exceed the heater limits")
	}
	if c.Leveling.Babystep <= 0 {
		return fmt.Errorf("babystep must be positive")
	}
	if c.Leveling.ZOffsetMin >= c.Leveling.ZOffsetMax {
		return fmt.Errorf("z offset min %.2f must be below max %.2f", c.Leveling.ZOffsetMin, c.Leveling.ZOffsetMax)
	}
	if c.SDIO.ReadRetries < 1 || c.SDIO.WriteRetries < 1 {
		return fmt.Errorf("sdio retries must be at least 1")
	}
	if c.Panel.Baud <= 0 {
		return fmt.Errorf("panel baud must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if _, err := c.HALConfig(); err != nil {
		return err
	}
	if _, err := c.PanelPins(); err != nil {
		return err
	}
	return nil
}

// ParsePin converts "gpio12", "GP12" or "12" into a pin number.
// An empty string or "none" means the pin is not fitted.
func ParsePin(s string) (core.GPIOPin, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" || name == "none" {
		return core.NoPin, nil
	}
	for _, prefix := range []string{"gpio", "gp"} {
		if strings.HasPrefix(name, prefix) {
			name = name[len(prefix):]
			break
		}
	}
	n, err := strconv.ParseUint(name, 10, 16)
	if err != nil {
		return core.NoPin, fmt.Errorf("%w: %q", core.ErrInvalidPin, s)
	}
	return core.GPIOPin(n), nil
}

type pinField struct {
	name string
	val  string
	dst  *core.GPIOPin
}

func parsePins(fields []pinField) error {
	for _, p := range fields {
		pin, err := ParsePin(p.val)
		if err != nil {
			return fmt.Errorf("pin %s: %w", p.name, err)
		}
		*p.dst = pin
	}
	return nil
}

// HALConfig converts the pin and storage settings for the hardware shim
func (c *Config) HALConfig() (core.HALConfig, error) {
	cfg := core.HALConfig{
		Pins:            core.NoPins(),
		OnboardSDIO:     c.SDIO.Onboard,
		WatchdogEnabled: c.Watchdog,
	}
	err := parsePins([]pinField{
		{"sdss", c.Pins.SDSS, &cfg.Pins.SDSS},
		{"led", c.Pins.LED, &cfg.Pins.LED},
		{"auto_level_tx", c.Pins.AutoLevelTX, &cfg.Pins.AutoLevelTX},
		{"temp_bed", c.Pins.TempBed, &cfg.Pins.TempBed},
		{"temp_hotend", c.Pins.TempHotend, &cfg.Pins.TempHotend},
		{"power_monitor", c.Pins.PowerMonitor, &cfg.Pins.PowerMonitor},
	})
	return cfg, err
}

// PanelPins are the pins the panel side reads or drives itself
type PanelPins struct {
	Runout core.GPIOPin // high means no filament
	Beeper core.GPIOPin // active buzzer, high sounds
	Probe  core.GPIOPin // high means triggered
}

// PanelPins parses the runout, beeper and probe pins
func (c *Config) PanelPins() (PanelPins, error) {
	pins := PanelPins{Runout: core.NoPin, Beeper: core.NoPin, Probe: core.NoPin}
	err := parsePins([]pinField{
		{"runout", c.Pins.Runout, &pins.Runout},
		{"beeper", c.Pins.Beeper, &pins.Beeper},
		{"probe", c.Pins.Probe, &pins.Probe},
	})
	return pins, err
}

// Limits returns the panel limits
func (c *Config) Limits() dgus.Limits {
	return dgus.Limits{
		HotendMinTemp:      c.Temps.HotendMin,
		HotendMaxTemp:      c.Temps.HotendMax,
		BedMinTemp:         c.Temps.BedMin,
		BedMaxTemp:         c.Temps.BedMax,
		PLA:                dgus.Preset{Hotend: c.PLA.Hotend, Bed: c.PLA.Bed},
		ABS:                dgus.Preset{Hotend: c.ABS.Hotend, Bed: c.ABS.Bed},
		LevelingNozzleTemp: c.Leveling.NozzleTemp,
		LevelingBedTemp:    c.Leveling.BedTemp,
		Babystep:           c.Leveling.Babystep,
		ZOffsetMin:         c.Leveling.ZOffsetMin,
		ZOffsetMax:         c.Leveling.ZOffsetMax,
	}
}

// DeviceInfo returns the about page strings
func (c *Config) DeviceInfo() dgus.DeviceInfo {
	return dgus.DeviceInfo{
		Name:        c.Device.Name,
		Firmware:    c.Device.Firmware,
		BuildVolume: c.Device.BuildVolume,
		Support:     c.Device.Support,
	}
}

// SDIOOptions returns the storage shim options
func (c *Config) SDIOOptions() []core.SDIOOption {
	return []core.SDIOOption{
		core.WithRetries(c.SDIO.ReadRetries, c.SDIO.WriteRetries),
		core.WithTimeout(time.Duration(c.SDIO.TimeoutMs) * time.Millisecond),
	}
}

// Level returns the configured log level, info when unparsable
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// PanelOptions returns the driver options derived from the configuration
func (c *Config) PanelOptions() []dgus.Option {
	return []dgus.Option{
		dgus.WithLimits(c.Limits()),
		dgus.WithDeviceInfo(c.DeviceInfo()),
		dgus.WithCaseLight(c.CaseLight),
		dgus.WithPreheatBeforeLeveling(c.Leveling.PreheatFirst),
		dgus.WithAudio(!c.Mute),
	}
}
