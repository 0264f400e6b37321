package core

// DigitalDriver is the abstract digital output interface that core code
// uses. Platform-specific implementations handle pin configuration.
type DigitalDriver interface {
	// DigitalWrite sets the line high (true) or low (false).
	DigitalWrite(line int, high bool)
}

// Global singleton used by core code.
var digitalDriver DigitalDriver

// SetDigitalDriver is called by target-specific code to register its driver.
func SetDigitalDriver(d DigitalDriver) {
	digitalDriver = d
}

// MustDigital returns the configured driver or panics if missing.
func MustDigital() DigitalDriver {
	if digitalDriver == nil {
		panic("digital driver not configured")
	}
	return digitalDriver
}
