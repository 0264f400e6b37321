package core

// AnalogDriver is the abstract analog input interface that core code uses.
// Platform-specific implementations handle the actual ADC peripheral.
type AnalogDriver interface {
	// AnalogRead performs a one-shot sample of the given line and
	// returns a 10-bit nominal value, 0 to 1023. Implementations with
	// wider converters scale down to this range.
	AnalogRead(line int) int
}

// Global singleton used by core code.
var analogDriver AnalogDriver

// SetAnalogDriver is called by target-specific code to register its driver.
func SetAnalogDriver(d AnalogDriver) {
	analogDriver = d
}

// MustAnalog returns the configured driver or panics if missing.
func MustAnalog() AnalogDriver {
	if analogDriver == nil {
		panic("analog driver not configured")
	}
	return analogDriver
}
