package core

// ADCChannel is the index of a converted channel in the sample table
type ADCChannel uint8

const (
	ADCBed ADCChannel = iota
	ADCHotend
	ADCPowerMonitor
)

// ADCValue is a raw conversion result
type ADCValue uint16

// ADCDriver exposes the continuously converted channels.
// Sampling is done by hardware or DMA; Sample only reads the latest result.
type ADCDriver interface {
	// EnablePin switches the pin to analog mode
	EnablePin(pin GPIOPin) error

	// Sample returns the latest conversion for the channel
	Sample(ch ADCChannel) (ADCValue, error)
}

var adcDriver ADCDriver

// SetADCDriver is called by target-specific code to register its driver.
func SetADCDriver(d ADCDriver) {
	adcDriver = d
}

// MustADC returns the configured driver or panics if missing.
func MustADC() ADCDriver {
	if adcDriver == nil {
		panic("ADC driver not configured")
	}
	return adcDriver
}
