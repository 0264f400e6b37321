package core

// NVDriver is the abstract nonvolatile byte store that core code uses.
// Slots are fixed-size regions addressed deterministically from entity
// kind and id; only the continuous-rotation servos persist state.
type NVDriver interface {
	// NVRead fills buf from the given slot. Returns false if the slot
	// cannot be read; buf contents are then undefined.
	NVRead(slot int, buf []byte) bool

	// NVWrite stores buf to the given slot. Returns false on failure;
	// the previous slot contents may or may not survive a failed write.
	NVWrite(slot int, buf []byte) bool
}

// Global singleton used by core code.
var nvDriver NVDriver

// SetNVDriver is called by target-specific code to register its driver.
func SetNVDriver(d NVDriver) {
	nvDriver = d
}

// MustNV returns the configured driver or panics if missing.
func MustNV() NVDriver {
	if nvDriver == nil {
		panic("nonvolatile driver not configured")
	}
	return nvDriver
}
