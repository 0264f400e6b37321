package halsim

import (
	"testing"

	"goquarium/core"
)

func TestSimDrivers(t *testing.T) {
	s := New()

	if got := s.Servo(2); got != 90 {
		t.Errorf("expected unwritten servo line at 90, got %d", got)
	}
	s.ServoWrite(2, 120)
	if got := s.Servo(2); got != 120 {
		t.Errorf("expected servo at 120, got %d", got)
	}
	log := s.ServoLog()
	if len(log) != 1 || log[0].Line != 2 || log[0].Value != 120 {
		t.Errorf("unexpected servo log %v", log)
	}

	if got := s.AnalogRead(26); got != 0 {
		t.Errorf("expected unscripted analog line to read 0, got %d", got)
	}
	s.SetAnalog(26, 512)
	if got := s.AnalogRead(26); got != 512 {
		t.Errorf("expected analog 512, got %d", got)
	}
	n := 0
	s.SetAnalogFunc(26, func() int { n++; return n })
	if s.AnalogRead(26) != 1 || s.AnalogRead(26) != 2 {
		t.Error("expected analog source function consulted per read")
	}

	s.DigitalWrite(7, true)
	if !s.Digital(7) {
		t.Error("expected digital line high")
	}

	s.Advance(25)
	if got := s.Millis(); got != 25 {
		t.Errorf("expected 25ms elapsed, got %d", got)
	}
	s.Sleep(5)
	if got := s.Millis(); got != 30 {
		t.Errorf("expected sleep to advance time to 30ms, got %d", got)
	}
}

func TestSimNonvolatile(t *testing.T) {
	s := New()
	buf := make([]byte, 4)

	if s.NVRead(0, buf) {
		t.Error("expected read of an empty slot to fail")
	}

	if !s.NVWrite(0, []byte{1, 2, 3, 4}) {
		t.Fatal("expected write to succeed")
	}
	if s.NVWrites != 1 {
		t.Errorf("expected 1 successful write, got %d", s.NVWrites)
	}
	if !s.NVRead(0, buf) || buf[0] != 1 || buf[3] != 4 {
		t.Errorf("expected stored bytes back, got %v", buf)
	}

	// A mutation of the returned copy must not reach the store.
	snap := s.Slot(0)
	snap[0] = 0xEE
	if got := s.Slot(0)[0]; got != 1 {
		t.Errorf("expected slot copy isolation, got 0x%02X", got)
	}

	s.FailNextNVWrites(2)
	if s.NVWrite(0, []byte{9}) || s.NVWrite(0, []byte{9}) {
		t.Error("expected two injected write failures")
	}
	if !s.NVWrite(0, []byte{9}) {
		t.Error("expected writes to recover after injection")
	}

	s.FailNextNVReads(1)
	if s.NVRead(0, buf[:1]) {
		t.Error("expected one injected read failure")
	}
	if !s.NVRead(0, buf[:1]) {
		t.Error("expected reads to recover after injection")
	}

	// A short slot cannot satisfy a larger read.
	s.SetSlot(3, []byte{1, 2})
	if s.NVRead(3, buf) {
		t.Error("expected read larger than the slot to fail")
	}

	s.SetSlot(4, []byte{5, 5, 5, 5})
	s.CorruptSlot(4, 1)
	if got := s.Slot(4)[1]; got != 0xFA {
		t.Errorf("expected inverted byte 0xFA, got 0x%02X", got)
	}
}

func TestServoRigIntegration(t *testing.T) {
	s := New()
	r := s.NewServoRig(2, 26)

	if got := s.AnalogRead(26); got != 500 {
		t.Errorf("expected rig to start mid-swing at 500, got %d", got)
	}

	// 30 raw units for one second moves 30*Scale counts.
	s.ServoWrite(2, 120)
	s.Advance(1000)
	want := 500 + int(30*core.CountsPerSecPerRaw)
	if got := r.Pot(); got != want {
		t.Errorf("expected pot at %d, got %d", want, got)
	}

	// The pot clamps at the swing extremes.
	s.Advance(60000)
	if got := r.Pot(); got != 900 {
		t.Errorf("expected pot clamped at 900, got %d", got)
	}
	s.ServoWrite(2, 30)
	s.Advance(60000)
	if got := r.Pot(); got != 100 {
		t.Errorf("expected pot clamped at 100, got %d", got)
	}

	r.SetPot(730)
	if got := s.AnalogRead(26); got != 730 {
		t.Errorf("expected forced pot reading 730, got %d", got)
	}
}

// TestSimRunsCoreLoop closes the loop end to end: the real control code
// calibrates against the rig, persists, and completes a closed-loop
// move through the simulator alone.
func TestSimRunsCoreLoop(t *testing.T) {
	core.Reset()
	s := New()
	s.Install()
	s.NewServoRig(2, 26)

	c, err := core.ConfigCRS(0, 2, 26, true)
	if err != nil {
		t.Fatalf("ConfigCRS failed: %v", err)
	}
	if !c.Calibrated() {
		t.Fatal("expected calibrated servo against the rig")
	}
	if s.Slot(0) == nil {
		t.Fatal("expected calibration persisted to slot 0")
	}

	c.SetVelocity(100)
	c.StartMovingTo(200)
	arrived := false
	for i := 0; i < 1000; i++ {
		s.Advance(10)
		if c.Step(10) {
			arrived = true
			break
		}
	}
	if !arrived {
		t.Fatal("move never arrived")
	}
	if d := c.Pos() - 200; d < -1 || d > 1 {
		t.Errorf("expected position within 1 of 200, got %d", c.Pos())
	}
	if got := s.Servo(2); got != 90 {
		t.Errorf("expected servo stopped at 90, got %d", got)
	}
}
