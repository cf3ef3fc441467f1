package core

// PWMValue is the duty cycle value (0 to GetMaxValue)
type PWMValue uint32

// PWMDriver is the abstract PWM interface that core code uses.
type PWMDriver interface {
	// ConfigureHardwarePWM configures a pin for hardware PWM output.
	// Returns the actual period used, which may be adjusted for the hardware.
	ConfigureHardwarePWM(pin GPIOPin, periodNs uint32) (uint32, error)

	// SetDutyCycle sets the duty cycle, 0 (off) to GetMaxValue() (fully on)
	SetDutyCycle(pin GPIOPin, value PWMValue) error

	// GetMaxValue returns the maximum duty value
	GetMaxValue() uint32

	// DisablePWM disables PWM on a pin and returns it to GPIO mode
	DisablePWM(pin GPIOPin) error
}

var pwmDriver PWMDriver

// SetPWMDriver is called by target-specific code to register its driver.
func SetPWMDriver(d PWMDriver) {
	pwmDriver = d
}

// MustPWM returns the configured driver or panics if missing.
func MustPWM() PWMDriver {
	if pwmDriver == nil {
		panic("PWM driver not configured")
	}
	return pwmDriver
}
