// LED output latch
package core

import "errors"

// LED represents a single LED on a digital output line
type LED struct {
	ID   int  // Entity id
	Line int  // Digital output line
	on   bool // Current latch state
}

// ConfigLED creates the LED with the given id on a digital output line.
// The line is driven low so the latch starts in a known state.
func ConfigLED(id, line int) (*LED, error) {
	if id < 0 || id >= MaxLED {
		return nil, errors.New("led id out of range")
	}
	l := &LED{ID: id, Line: line}
	MustDigital().DigitalWrite(line, false)
	leds[id] = l
	return l, nil
}

// GetLED returns the LED with the given id, or nil if never configured.
func GetLED(id int) *LED {
	if id < 0 || id >= MaxLED {
		return nil
	}
	return leds[id]
}

// TurnOn latches the LED on.
func (l *LED) TurnOn() {
	l.on = true
	MustDigital().DigitalWrite(l.Line, true)
}

// TurnOff latches the LED off.
func (l *LED) TurnOff() {
	l.on = false
	MustDigital().DigitalWrite(l.Line, false)
}

// IsOn reports the current latch state.
func (l *LED) IsOn() bool {
	return l.on
}
