// Limited-rotation servo control
// An LRS takes an absolute angle command directly; there is no feedback
// and no per-device calibration.
package core

import "errors"

// LRS represents a limited-rotation servo on a servo output line.
type LRS struct {
	ID    int // Entity id
	Line  int // Servo output line
	angle int // Last commanded angle in degrees
}

// ConfigLRS creates the limited-rotation servo with the given id.
func ConfigLRS(id, line int) (*LRS, error) {
	if id < 0 || id >= MaxLRS {
		return nil, errors.New("lrs id out of range")
	}
	s := &LRS{ID: id, Line: line}
	lrss[id] = s
	return s, nil
}

// GetLRS returns the servo with the given id, or nil if never
// configured.
func GetLRS(id int) *LRS {
	if id < 0 || id >= MaxLRS {
		return nil
	}
	return lrss[id]
}

// SetAngle commands the servo to an absolute angle in degrees. Values
// outside [0, 180] are clamped; the write takes effect immediately.
func (s *LRS) SetAngle(deg int) {
	if deg < 0 {
		deg = 0
	} else if deg > 180 {
		deg = 180
	}
	s.angle = deg
	MustServo().ServoWrite(s.Line, deg)
}

// Angle returns the last commanded angle.
func (s *LRS) Angle() int {
	return s.angle
}

// Step is a no-op kept so driver loops can update every servo
// uniformly.
func (s *LRS) Step() {}
