package core

// ClockDriver is the abstract time source that core code uses. Stepped
// behavior never consults it: elapsed milliseconds arrive as arguments
// to the step entry points. The clock exists for the one permitted
// blocking routine, continuous-rotation servo calibration.
type ClockDriver interface {
	// Millis returns milliseconds since an arbitrary epoch.
	Millis() uint64

	// Sleep blocks the caller for the given number of milliseconds.
	// Simulated clocks advance their plant models here.
	Sleep(ms int)
}

// Global singleton used by core code.
var clockDriver ClockDriver

// SetClockDriver is called by target-specific code to register its driver.
func SetClockDriver(d ClockDriver) {
	clockDriver = d
}

// MustClock returns the configured driver or panics if missing.
func MustClock() ClockDriver {
	if clockDriver == nil {
		panic("clock driver not configured")
	}
	return clockDriver
}
