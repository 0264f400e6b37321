// Package halsim is a simulated hardware layer for the aquarium core:
// scripted analog lines, recorded servo and digital writes, a fallible
// nonvolatile store, and a manual clock. Servo plant rigs close the
// loop between a commanded servo line and its feedback pot so the real
// control code runs unmodified against simulated mechanics.
//
// The simulator follows the core's single-threaded cooperative model
// and is not safe for concurrent use.
package halsim

import (
	"goquarium/core"
)

// Write records one servo line command.
type Write struct {
	AtMS  uint64
	Line  int
	Value int
}

// Sim implements every core HAL driver over in-memory state.
type Sim struct {
	millis uint64

	analog   map[int]func() int
	servo    map[int]int
	servoLog []Write
	digital  map[int]bool

	nv           map[int][]byte
	nvReadFails  int
	nvWriteFails int

	// NVWrites counts successful writes, for wear assertions.
	NVWrites int

	rigs []*ServoRig
}

// New returns an empty simulator.
func New() *Sim {
	return &Sim{
		analog:  make(map[int]func() int),
		servo:   make(map[int]int),
		digital: make(map[int]bool),
		nv:      make(map[int][]byte),
	}
}

// Install registers the simulator as every core HAL driver.
func (s *Sim) Install() {
	core.SetServoDriver(s)
	core.SetAnalogDriver(s)
	core.SetDigitalDriver(s)
	core.SetNVDriver(s)
	core.SetClockDriver(s)
}

// ServoWrite implements core.ServoDriver.
func (s *Sim) ServoWrite(line, angle int) {
	s.servo[line] = angle
	s.servoLog = append(s.servoLog, Write{AtMS: s.millis, Line: line, Value: angle})
}

// AnalogRead implements core.AnalogDriver. Unscripted lines read 0.
func (s *Sim) AnalogRead(line int) int {
	if src, ok := s.analog[line]; ok {
		return src()
	}
	return 0
}

// DigitalWrite implements core.DigitalDriver.
func (s *Sim) DigitalWrite(line int, high bool) {
	s.digital[line] = high
}

// NVRead implements core.NVDriver.
func (s *Sim) NVRead(slot int, buf []byte) bool {
	if s.nvReadFails > 0 {
		s.nvReadFails--
		return false
	}
	data, ok := s.nv[slot]
	if !ok || len(data) < len(buf) {
		return false
	}
	copy(buf, data)
	return true
}

// NVWrite implements core.NVDriver.
func (s *Sim) NVWrite(slot int, buf []byte) bool {
	if s.nvWriteFails > 0 {
		s.nvWriteFails--
		return false
	}
	s.nv[slot] = append([]byte(nil), buf...)
	s.NVWrites++
	return true
}

// Millis implements core.ClockDriver.
func (s *Sim) Millis() uint64 {
	return s.millis
}

// Sleep implements core.ClockDriver by advancing simulated time, so
// plant rigs keep integrating while the core busy-waits in calibration.
func (s *Sim) Sleep(ms int) {
	s.Advance(ms)
}

// Advance moves simulated time forward and integrates every rig. Call
// it before each core step with the same elapsed milliseconds.
func (s *Sim) Advance(ms int) {
	for _, r := range s.rigs {
		r.advance(ms)
	}
	s.millis += uint64(ms)
}

// SetAnalog fixes an analog line at a constant reading.
func (s *Sim) SetAnalog(line, value int) {
	s.analog[line] = func() int { return value }
}

// SetAnalogFunc drives an analog line from a function.
func (s *Sim) SetAnalogFunc(line int, src func() int) {
	s.analog[line] = src
}

// Servo returns the last write on a servo line; 90 (stopped) if the
// line was never written.
func (s *Sim) Servo(line int) int {
	if v, ok := s.servo[line]; ok {
		return v
	}
	return 90
}

// ServoLog returns every servo write so far, in order.
func (s *Sim) ServoLog() []Write {
	return s.servoLog
}

// Digital returns the state of a digital line.
func (s *Sim) Digital(line int) bool {
	return s.digital[line]
}

// Slot returns a copy of a nonvolatile slot, or nil if never written.
func (s *Sim) Slot(slot int) []byte {
	data, ok := s.nv[slot]
	if !ok {
		return nil
	}
	return append([]byte(nil), data...)
}

// SetSlot seeds a nonvolatile slot.
func (s *Sim) SetSlot(slot int, data []byte) {
	s.nv[slot] = append([]byte(nil), data...)
}

// CorruptSlot inverts one byte of a stored slot.
func (s *Sim) CorruptSlot(slot, index int) {
	if data, ok := s.nv[slot]; ok && index < len(data) {
		data[index] ^= 0xFF
	}
}

// FailNextNVReads arranges for the next n nonvolatile reads to fail.
func (s *Sim) FailNextNVReads(n int) {
	s.nvReadFails = n
}

// FailNextNVWrites arranges for the next n nonvolatile writes to fail.
func (s *Sim) FailNextNVWrites(n int) {
	s.nvWriteFails = n
}
