package halsim

import (
	"math"

	"goquarium/core"
)

// ServoRig is a noise-free continuous-rotation plant. The commanded raw
// velocity on the servo line integrates into pot counts that clamp at
// the swing extremes, modeling a mechanism whose full travel maps
// inside one pot sweep.
type ServoRig struct {
	ServoLine int
	PotLine   int
	PotMin    int     // Reading at the negative extreme
	PotMax    int     // Reading at the positive extreme
	Scale     float64 // Pot counts per second per raw velocity unit

	counts float64
	sim    *Sim
}

// NewServoRig attaches a plant between a servo line and a pot line,
// with a 100..900 swing at the core velocity scale, starting mid-swing.
func (s *Sim) NewServoRig(servoLine, potLine int) *ServoRig {
	r := &ServoRig{
		ServoLine: servoLine,
		PotLine:   potLine,
		PotMin:    100,
		PotMax:    900,
		Scale:     core.CountsPerSecPerRaw,
		sim:       s,
	}
	r.counts = float64(r.PotMin+r.PotMax) / 2
	s.rigs = append(s.rigs, r)
	s.analog[potLine] = r.Pot
	return r
}

// Pot returns the current pot reading.
func (r *ServoRig) Pot() int {
	return int(math.Round(r.counts))
}

// SetPot forces the pot to a reading, e.g. to start a test off-center.
func (r *ServoRig) SetPot(v int) {
	r.counts = float64(v)
}

func (r *ServoRig) advance(ms int) {
	raw := r.sim.Servo(r.ServoLine) - 90
	r.counts += float64(raw) * r.Scale * float64(ms) / 1000.0
	if r.counts < float64(r.PotMin) {
		r.counts = float64(r.PotMin)
	} else if r.counts > float64(r.PotMax) {
		r.counts = float64(r.PotMax)
	}
}
