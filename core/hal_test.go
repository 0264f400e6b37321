package core

import (
	"math"
	"testing"
)

// testHAL is a mock implementation of every HAL driver: scripted analog
// lines, recorded servo and digital writes, an in-memory nonvolatile
// store with failure injection, and a manual clock. Attached rigs
// integrate the last servo command into pot counts so closed-loop code
// runs against simulated mechanics.
type testHAL struct {
	millis  uint64
	analog  map[int]func() int
	servo   map[int]int
	digital map[int]bool

	nv           map[int][]byte
	nvReadFails  int
	nvWriteFails int
	nvWriteLog   []int // Slots of successful writes, in order

	rigs []*testRig
}

func newHAL(t *testing.T) *testHAL {
	t.Helper()
	Reset()
	h := &testHAL{
		analog:  make(map[int]func() int),
		servo:   make(map[int]int),
		digital: make(map[int]bool),
		nv:      make(map[int][]byte),
	}
	h.install()
	return h
}

func (h *testHAL) install() {
	SetServoDriver(h)
	SetAnalogDriver(h)
	SetDigitalDriver(h)
	SetNVDriver(h)
	SetClockDriver(h)
}

func (h *testHAL) ServoWrite(line, angle int) {
	h.servo[line] = angle
}

func (h *testHAL) AnalogRead(line int) int {
	if src, ok := h.analog[line]; ok {
		return src()
	}
	return 0
}

func (h *testHAL) DigitalWrite(line int, high bool) {
	h.digital[line] = high
}

func (h *testHAL) NVRead(slot int, buf []byte) bool {
	if h.nvReadFails > 0 {
		h.nvReadFails--
		return false
	}
	data, ok := h.nv[slot]
	if !ok || len(data) < len(buf) {
		return false
	}
	copy(buf, data)
	return true
}

func (h *testHAL) NVWrite(slot int, buf []byte) bool {
	if h.nvWriteFails > 0 {
		h.nvWriteFails--
		return false
	}
	h.nv[slot] = append([]byte(nil), buf...)
	h.nvWriteLog = append(h.nvWriteLog, slot)
	return true
}

func (h *testHAL) Millis() uint64 {
	return h.millis
}

// Sleep advances simulated time so the blocking calibration recipe
// makes progress against the rigs.
func (h *testHAL) Sleep(ms int) {
	h.advance(ms)
}

// advance moves simulated time forward, integrating every rig under
// the servo command it saw last.
func (h *testHAL) advance(ms int) {
	for _, r := range h.rigs {
		r.advance(ms)
	}
	h.millis += uint64(ms)
}

// set fixes an analog line at a constant reading.
func (h *testHAL) set(line, value int) {
	h.analog[line] = func() int { return value }
}

func (h *testHAL) servoAt(line int) int {
	if v, ok := h.servo[line]; ok {
		return v
	}
	return 90
}

// seedCal stores a valid calibration record directly in the
// nonvolatile map, bypassing the write log.
func (h *testHAL) seedCal(id, zero, pos int, countsPerUnit float32) {
	rec := calRecord{
		ZeroValue:     int16(zero),
		Position:      int32(pos),
		CountsPerUnit: countsPerUnit,
	}
	var buf [calRecordSize]byte
	rec.encode(buf[:])
	h.nv[crsSlot(id)] = append([]byte(nil), buf[:]...)
}

// testRig is a noise-free continuous-rotation plant: the commanded raw
// velocity integrates into pot counts clamped at the swing extremes.
type testRig struct {
	servoLine int
	potLine   int
	min, max  float64
	counts    float64
	h         *testHAL
}

// rig attaches a plant between a servo line and a pot line with the
// default 100..900 swing, starting mid-swing.
func (h *testHAL) rig(servoLine, potLine int) *testRig {
	r := &testRig{
		servoLine: servoLine,
		potLine:   potLine,
		min:       100,
		max:       900,
		counts:    500,
		h:         h,
	}
	h.rigs = append(h.rigs, r)
	h.analog[potLine] = r.read
	return r
}

func (r *testRig) read() int {
	return int(math.Round(r.counts))
}

func (r *testRig) advance(ms int) {
	raw := float64(r.h.servoAt(r.servoLine) - 90)
	r.counts += raw * CountsPerSecPerRaw * float64(ms) / 1000.0
	if r.counts < r.min {
		r.counts = r.min
	} else if r.counts > r.max {
		r.counts = r.max
	}
}

// stepUntil advances the clock in 10ms ticks, calling tick after each
// advance, until tick returns true. Fails the test after maxTicks.
func stepUntil(t *testing.T, h *testHAL, maxTicks int, tick func() bool) int {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		h.advance(10)
		if tick() {
			return i
		}
	}
	t.Fatalf("condition not reached within %d ticks", maxTicks)
	return -1
}
