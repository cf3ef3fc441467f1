package core

import (
	"fmt"
	"runtime"
)

// Pins lists the board pins the HAL drives at boot. Unfitted pins are NoPin.
type Pins struct {
	SDSS        GPIOPin
	LED         GPIOPin
	AutoLevelTX GPIOPin

	TempBed      GPIOPin
	TempHotend   GPIOPin
	PowerMonitor GPIOPin
}

// NoPins returns a pin set with nothing fitted
func NoPins() Pins {
	return Pins{
		SDSS:         NoPin,
		LED:          NoPin,
		AutoLevelTX:  NoPin,
		TempBed:      NoPin,
		TempHotend:   NoPin,
		PowerMonitor: NoPin,
	}
}

// HALConfig selects board features
type HALConfig struct {
	Pins            Pins
	OnboardSDIO     bool
	WatchdogEnabled bool
}

// HAL translates firmware lifecycle calls into driver operations
type HAL struct {
	cfg HALConfig

	gpio     GPIODriver
	adc      ADCDriver
	pwm      PWMDriver
	watchdog WatchdogDriver
	reset    ResetDriver

	clock Clock
	log   Logger

	irq       irqState
	adcResult ADCValue
}

// HALOption configures a HAL
type HALOption func(*HAL)

func WithGPIO(d GPIODriver) HALOption         { return func(h *HAL) { h.gpio = d } }
func WithADC(d ADCDriver) HALOption           { return func(h *HAL) { h.adc = d } }
func WithPWM(d PWMDriver) HALOption           { return func(h *HAL) { h.pwm = d } }
func WithWatchdog(d WatchdogDriver) HALOption { return func(h *HAL) { h.watchdog = d } }
func WithReset(d ResetDriver) HALOption       { return func(h *HAL) { h.reset = d } }
func WithClock(c Clock) HALOption             { return func(h *HAL) { h.clock = c } }
func WithLogger(l Logger) HALOption           { return func(h *HAL) { h.log = l } }

// NewHAL builds a HAL. Drivers not passed as options fall back to the
// ones registered through the SetXDriver functions.
func NewHAL(cfg HALConfig, opts ...HALOption) *HAL {
	h := &HAL{
		cfg:      cfg,
		gpio:     gpioDriver,
		adc:      adcDriver,
		pwm:      pwmDriver,
		watchdog: watchdogDriver,
		reset:    resetDriver,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.clock == nil {
		h.clock = NewSystemClock()
	}
	if h.log == nil {
		h.log = Log()
	}
	return h
}

// Clock returns the HAL time source
func (h *HAL) Clock() Clock {
	return h.clock
}

// Init brings up the board pins
func (h *HAL) Init() error {
	p := h.cfg.Pins

	if !h.cfg.OnboardSDIO && p.SDSS.Valid() {
		// deselect the card before other SPI users start up
		if err := h.outWrite(p.SDSS, true); err != nil {
			return fmt.Errorf("sdss: %w", err)
		}
	}

	if p.LED.Valid() {
		if err := h.outWrite(p.LED, false); err != nil {
			return fmt.Errorf("led: %w", err)
		}
	}

	if p.AutoLevelTX.Valid() {
		if err := h.outWrite(p.AutoLevelTX, true); err != nil {
			return fmt.Errorf("auto level tx: %w", err)
		}
		h.clock.Sleep(10)
		if err := h.gpio.SetPin(p.AutoLevelTX, false); err != nil {
			return fmt.Errorf("auto level tx: %w", err)
		}
		h.clock.Sleep(300)
		if err := h.gpio.SetPin(p.AutoLevelTX, true); err != nil {
			return fmt.Errorf("auto level tx: %w", err)
		}
	}
	return nil
}

func (h *HAL) outWrite(pin GPIOPin, value bool) error {
	if h.gpio == nil {
		return ErrNoDriver
	}
	if err := h.gpio.ConfigureOutput(pin); err != nil {
		return err
	}
	return h.gpio.SetPin(pin, value)
}

// WatchdogInit configures and starts the watchdog when enabled
func (h *HAL) WatchdogInit() error {
	if !h.cfg.WatchdogEnabled {
		return nil
	}
	if h.watchdog == nil {
		return ErrNoDriver
	}
	if err := h.watchdog.Configure(WatchdogTimeoutMs); err != nil {
		return fmt.Errorf("watchdog configure: %w", err)
	}
	return h.watchdog.Start()
}

// WatchdogRefresh feeds the watchdog
func (h *HAL) WatchdogRefresh() {
	if h.cfg.WatchdogEnabled && h.watchdog != nil {
		h.watchdog.Update()
	}
}

// IdleTask runs on every idle loop pass
func (h *HAL) IdleTask() {
	h.WatchdogRefresh()
}

// Reboot resets the MCU
func (h *HAL) Reboot() {
	if h.reset == nil {
		h.log.Errorf("reboot requested without a reset driver")
		return
	}
	h.reset.Reboot()
}

// DelayMs blocks for ms milliseconds
func (h *HAL) DelayMs(ms uint32) {
	h.clock.Sleep(ms)
}

func (h *HAL) ISROn()         { h.irq.enable() }
func (h *HAL) ISROff()        { h.irq.disable() }
func (h *HAL) ISRState() bool { return h.irq.enabled() }

// GetResetSource reports why the MCU last reset
func (h *HAL) GetResetSource() ResetCause {
	if h.reset == nil {
		return ResetUnknown
	}
	return h.reset.Flags().Cause()
}

// ClearResetSource clears the vendor reset flags
func (h *HAL) ClearResetSource() {
	if h.reset != nil {
		h.reset.ClearFlags()
	}
}

// FreeMemory returns the heap bytes currently unused
func (h *HAL) FreeMemory() int {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return int(ms.HeapIdle)
}

// ADCInit is a no-op, conversion runs continuously
func (h *HAL) ADCInit() {}

// ADCEnable puts a pin into analog mode
func (h *HAL) ADCEnable(pin GPIOPin) error {
	if h.adc == nil {
		return ErrNoDriver
	}
	return h.adc.EnablePin(pin)
}

func (h *HAL) adcChannel(pin GPIOPin) (ADCChannel, bool) {
	if !pin.Valid() {
		return 0, false
	}
	switch pin {
	case h.cfg.Pins.TempBed:
		return ADCBed, true
	case h.cfg.Pins.TempHotend:
		return ADCHotend, true
	case h.cfg.Pins.PowerMonitor:
		return ADCPowerMonitor, true
	}
	return 0, false
}

// ADCStart latches the latest sample of pin. Pins outside the sample
// table return ErrUnsupported and keep the previous value.
func (h *HAL) ADCStart(pin GPIOPin) error {
	ch, ok := h.adcChannel(pin)
	if !ok {
		return fmt.Errorf("adc pin %d: %w", pin, ErrUnsupported)
	}
	if h.adc == nil {
		return ErrNoDriver
	}
	v, err := h.adc.Sample(ch)
	if err != nil {
		return fmt.Errorf("adc channel %d: %w", ch, err)
	}
	h.adcResult = v
	return nil
}

// ADCReady always reports true, samples are latched synchronously
func (h *HAL) ADCReady() bool {
	return true
}

// ADCValue returns the value latched by the last ADCStart
func (h *HAL) ADCValue() uint16 {
	return uint16(h.adcResult)
}

// SetPWMDuty sets the duty of pin to value out of scale
func (h *HAL) SetPWMDuty(pin GPIOPin, value, scale uint16, invert bool) error {
	if h.pwm == nil {
		return ErrUnsupported
	}
	if scale == 0 {
		scale = 255
	}
	if value > scale {
		value = scale
	}
	if invert {
		value = scale - value
	}
	duty := uint64(value) * uint64(h.pwm.GetMaxValue()) / uint64(scale)
	return h.pwm.SetDutyCycle(pin, PWMValue(duty))
}

// SetPWMFrequency sets the PWM frequency of pin
func (h *HAL) SetPWMFrequency(pin GPIOPin, hz uint16) error {
	if h.pwm == nil {
		return ErrUnsupported
	}
	if hz == 0 {
		return h.pwm.DisablePWM(pin)
	}
	_, err := h.pwm.ConfigureHardwarePWM(pin, uint32(1e9/uint64(hz)))
	return err
}
