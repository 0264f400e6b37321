package core

// ServoDriver is the abstract servo output interface that core code uses.
// Platform-specific implementations map the angle command to pulse width.
type ServoDriver interface {
	// ServoWrite commands the servo on the given line to an angle in
	// degrees, 0 to 180. Continuous-rotation lines interpret the value
	// as 90 plus a signed velocity magnitude: 90 is stopped, 0 and 180
	// are full speed in either direction.
	ServoWrite(line int, angle int)
}

// Global singleton used by core code.
var servoDriver ServoDriver

// SetServoDriver is called by target-specific code to register its driver.
func SetServoDriver(d ServoDriver) {
	servoDriver = d
}

// MustServo returns the configured driver or panics if missing.
func MustServo() ServoDriver {
	if servoDriver == nil {
		panic("servo driver not configured")
	}
	return servoDriver
}
