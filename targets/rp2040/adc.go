//go:build rp2040

package main

import (
	"machine"
	"time"
)

// Analog line map. Lines 26 to 28 read the matching GPIO's on-chip
// converter directly. The RP2040 has only four ADC inputs and the tank
// needs seven, so lines muxBase and up go through a CD4051 analog
// multiplexer: three select GPIOs pick channel line-muxBase and the
// common output feeds the converter on GPIO29.
const (
	muxBase     = 40
	muxChannels = 8

	// CD4051 switch settling before the sample.
	muxSettle = 10 * time.Microsecond
)

var muxSelectPins = [3]machine.Pin{machine.GP10, machine.GP11, machine.GP12}

// AnalogDriver implements the analog input over TinyGo's machine.ADC.
type AnalogDriver struct {
	channels map[int]*machine.ADC
	muxADC   *machine.ADC
}

func NewAnalogDriver() *AnalogDriver {
	machine.InitADC()
	return &AnalogDriver{channels: make(map[int]*machine.ADC)}
}

// AnalogRead returns a 10-bit nominal sample. TinyGo's Get is
// left-justified 16-bit, so scale down.
func (d *AnalogDriver) AnalogRead(line int) int {
	if line >= muxBase && line < muxBase+muxChannels {
		return d.readMux(line - muxBase)
	}

	adc, ok := d.channels[line]
	if !ok {
		a := machine.ADC{Pin: machine.Pin(line)}
		if err := a.Configure(machine.ADCConfig{}); err != nil {
			return 0
		}
		adc = &a
		d.channels[line] = adc
	}

	return int(adc.Get() >> 6)
}

func (d *AnalogDriver) readMux(channel int) int {
	if d.muxADC == nil {
		for _, pin := range muxSelectPins {
			pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		}
		a := machine.ADC{Pin: machine.GP29}
		if err := a.Configure(machine.ADCConfig{}); err != nil {
			return 0
		}
		d.muxADC = &a
	}

	for bit, pin := range muxSelectPins {
		pin.Set(channel&(1<<bit) != 0)
	}
	time.Sleep(muxSettle)

	return int(d.muxADC.Get() >> 6)
}
