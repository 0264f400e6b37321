//go:build rp2040

package main

import "machine"

// DigitalDriver implements the digital output over machine.Pin. Pins
// configure lazily on first write.
type DigitalDriver struct {
	configured map[int]bool
}

func NewDigitalDriver() *DigitalDriver {
	return &DigitalDriver{configured: make(map[int]bool)}
}

func (d *DigitalDriver) DigitalWrite(line int, high bool) {
	pin := machine.Pin(line)
	if !d.configured[line] {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		d.configured[line] = true
	}
	pin.Set(high)
}
