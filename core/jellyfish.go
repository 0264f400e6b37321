// Jellyfish posture control
// A jellyfish pairs one limited-rotation servo with one LED. Lowered
// into view means lit, raised out of view means dark; the coupling is
// the invariant and these two moves are the only behaviors.
package core

import "errors"

// Jellyfish represents one jellyfish assembly.
type Jellyfish struct {
	ID      int
	ServoID int // LRS id
	LEDID   int // LED id
	lowered bool
}

// ConfigJellyfish creates the jellyfish with the given id over an LRS
// and an LED.
func ConfigJellyfish(id, servoID, ledID int) (*Jellyfish, error) {
	if id < 0 || id >= MaxJellyfish {
		return nil, errors.New("jellyfish id out of range")
	}
	j := &Jellyfish{ID: id, ServoID: servoID, LEDID: ledID}
	jellyfishes[id] = j
	return j, nil
}

// GetJellyfish returns the jellyfish with the given id, or nil if never
// configured.
func GetJellyfish(id int) *Jellyfish {
	if id < 0 || id >= MaxJellyfish {
		return nil
	}
	return jellyfishes[id]
}

// Lower brings the jellyfish into view and lights its LED. A missing
// servo freezes the posture but the LED still honors the command.
func (j *Jellyfish) Lower() {
	j.lowered = true
	if s := GetLRS(j.ServoID); s != nil {
		s.SetAngle(JellyfishLoweredAngle)
	}
	if l := GetLED(j.LEDID); l != nil {
		l.TurnOn()
	}
}

// Raise lifts the jellyfish out of view and darkens its LED.
func (j *Jellyfish) Raise() {
	j.lowered = false
	if s := GetLRS(j.ServoID); s != nil {
		s.SetAngle(JellyfishRaisedAngle)
	}
	if l := GetLED(j.LEDID); l != nil {
		l.TurnOff()
	}
}

// Lowered reports the commanded posture.
func (j *Jellyfish) Lowered() bool {
	return j.lowered
}
