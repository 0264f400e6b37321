package core

import "testing"

// newTankWorld builds a full simulated tank: four servo axes on rigs,
// jellyfish, light sensor, two piezos in a group, fish, and the
// aquarium over them. The tank starts dark and quiet.
func newTankWorld(t *testing.T) (*testHAL, *Aquarium, *Fish) {
	t.Helper()
	h := newHAL(t)
	cpu := float32(float64(800) / 360.0)
	lines := [4][2]int{{2, 26}, {3, 27}, {4, 28}, {5, 29}}
	for id, ln := range lines {
		r := h.rig(ln[0], ln[1])
		r.counts = 500
		h.seedCal(id, 500, 0, cpu)
		if _, err := ConfigCRS(id, ln[0], ln[1], false); err != nil {
			t.Fatalf("ConfigCRS %d failed: %v", id, err)
		}
	}
	if _, err := ConfigLRS(0, 6); err != nil {
		t.Fatalf("ConfigLRS failed: %v", err)
	}
	if _, err := ConfigLED(0, 7); err != nil {
		t.Fatalf("ConfigLED failed: %v", err)
	}
	if _, err := ConfigJellyfish(0, 0, 0); err != nil {
		t.Fatalf("ConfigJellyfish failed: %v", err)
	}
	if _, err := ConfigLightSensor(0, 30); err != nil {
		t.Fatalf("ConfigLightSensor failed: %v", err)
	}
	h.set(30, 0)
	for i, line := range []int{31, 32} {
		if _, err := ConfigPiezo(i, line); err != nil {
			t.Fatalf("ConfigPiezo %d failed: %v", i, err)
		}
		h.set(line, 0)
	}
	g, err := ConfigPiezoGroup(0)
	if err != nil {
		t.Fatalf("ConfigPiezoGroup failed: %v", err)
	}
	if err := g.AddSensor(0); err != nil {
		t.Fatalf("AddSensor failed: %v", err)
	}
	if err := g.AddSensor(1); err != nil {
		t.Fatalf("AddSensor failed: %v", err)
	}
	f, err := ConfigFish(0, 0, 1, 2, 3)
	if err != nil {
		t.Fatalf("ConfigFish failed: %v", err)
	}
	aq, err := ConfigAquarium(0, 0, 0, 0, 0)
	if err != nil {
		t.Fatalf("ConfigAquarium failed: %v", err)
	}
	return h, aq, f
}

// runTank drives the two time bases at their advisory cadence: a long
// tick every ten short ticks.
func runTank(h *testHAL, aq *Aquarium, ticks int) {
	for i := 0; i < ticks; i++ {
		h.advance(10)
		aq.ShortStep(10)
		if (i+1)%10 == 0 {
			aq.LongStep(100)
		}
	}
}

func TestAquariumBootState(t *testing.T) {
	h, aq, _ := newTankWorld(t)

	if aq.Phase() != IdleDark {
		t.Errorf("expected boot phase IDLE_DARK, got %v", aq.Phase())
	}
	if got := h.servoAt(6); got != JellyfishRaisedAngle {
		t.Errorf("expected jellyfish raised at boot, servo at %d", got)
	}
	if h.digital[7] {
		t.Error("expected jellyfish LED off at boot")
	}

	runTank(h, aq, 10)
	if aq.Phase() != IdleDark {
		t.Errorf("expected dark tank to stay IDLE_DARK, got %v", aq.Phase())
	}
	if aq.Clock() != 100 {
		t.Errorf("expected clock at 100ms, got %d", aq.Clock())
	}
}

func TestAquariumLightWake(t *testing.T) {
	h, aq, f := newTankWorld(t)
	aq.SetRoamTarget(60, 40, 20)

	// Exactly the threshold is still dark.
	h.set(30, MinLightVal)
	runTank(h, aq, 10)
	if aq.Phase() != IdleDark {
		t.Fatalf("expected IDLE_DARK at threshold reading, got %v", aq.Phase())
	}

	h.set(30, 150)
	aq.LongStep(100)
	if aq.Phase() != ActiveLight {
		t.Fatalf("expected ACTIVE_LIGHT after light, got %v", aq.Phase())
	}
	if j := GetJellyfish(0); !j.Lowered() {
		t.Error("expected jellyfish lowered on light")
	}
	if got := h.servoAt(6); got != JellyfishLoweredAngle {
		t.Errorf("expected jellyfish servo at %d, got %d", JellyfishLoweredAngle, got)
	}
	if !h.digital[7] {
		t.Error("expected jellyfish LED on")
	}
	if !f.Active() {
		t.Error("expected fish roaming after light")
	}
	if x, y, z := f.Target(); x != 60 || y != 40 || z != 20 {
		t.Errorf("expected roam target (60,40,20), got (%d,%d,%d)", x, y, z)
	}
}

func TestAquariumTapInvestigate(t *testing.T) {
	h, aq, f := newTankWorld(t)
	aq.SetRoamTarget(60, 40, 20)
	aq.SetTapTarget(1, -50, 30, 10)

	h.set(30, 150)
	aq.LongStep(100)

	// Let the roam finish so the tap flight is the only motion.
	for i := 0; i < 5000 && f.Active(); i++ {
		h.advance(10)
		aq.ShortStep(10)
	}
	if f.Active() {
		t.Fatal("roam never completed")
	}

	h.set(32, 80)
	runTank(h, aq, 1)
	h.set(32, 0)
	if aq.Phase() != ReactingTap {
		t.Fatalf("expected REACTING_TAP after tap, got %v", aq.Phase())
	}
	if x, y, z := f.Target(); x != -50 || y != 30 || z != 10 {
		t.Errorf("expected tap target (-50,30,10), got (%d,%d,%d)", x, y, z)
	}

	// Further taps are ignored until the investigation completes.
	aq.SetTapTarget(0, 9, 9, 9)
	h.set(31, 80)
	runTank(h, aq, 5)
	h.set(31, 0)
	if aq.Phase() != ReactingTap {
		t.Fatalf("expected tap ignored mid-reaction, got %v", aq.Phase())
	}
	if x, y, z := f.Target(); x != -50 || y != 30 || z != 10 {
		t.Errorf("expected target unchanged mid-reaction, got (%d,%d,%d)", x, y, z)
	}

	for i := 0; i < 30000 && aq.Phase() == ReactingTap; i++ {
		h.advance(10)
		aq.ShortStep(10)
	}
	if aq.Phase() != ActiveLight {
		t.Fatalf("expected return to ACTIVE_LIGHT on arrival, got %v", aq.Phase())
	}
	if f.Active() {
		t.Error("expected fish settled at the tap target")
	}
}

func TestAquariumTapAtSameDepthReturns(t *testing.T) {
	h, aq, f := newTankWorld(t)
	aq.SetRoamTarget(60, 40, 20)
	// The investigate target shares the roam y and z, so those legs
	// carry little or no speed portion while the wiggle keeps nudging
	// the y axis. The investigation must still complete and hand the
	// phase back.
	aq.SetTapTarget(0, -60, 40, 20)

	h.set(30, 150)
	aq.LongStep(100)
	for i := 0; i < 30000 && f.Active(); i++ {
		h.advance(10)
		aq.ShortStep(10)
	}
	if f.Active() {
		t.Fatal("roam never completed")
	}

	h.set(31, 80)
	runTank(h, aq, 1)
	h.set(31, 0)
	if aq.Phase() != ReactingTap {
		t.Fatalf("expected REACTING_TAP after tap, got %v", aq.Phase())
	}

	for i := 0; i < 60000 && aq.Phase() == ReactingTap; i++ {
		h.advance(10)
		aq.ShortStep(10)
	}
	if aq.Phase() != ActiveLight {
		t.Fatalf("expected return to ACTIVE_LIGHT on arrival, got %v (sub-steps left %d)",
			aq.Phase(), f.SubStepsLeft())
	}
	if x, y, z := f.Target(); x != -60 || y != 40 || z != 20 {
		t.Errorf("expected fish settled at (-60,40,20), got target (%d,%d,%d)", x, y, z)
	}
}

func TestAquariumDarkWins(t *testing.T) {
	h, aq, f := newTankWorld(t)
	aq.SetRoamTarget(200, -150, 100)

	h.set(30, 150)
	aq.LongStep(100)
	runTank(h, aq, 50)
	if !f.Active() {
		t.Fatal("expected fish mid-flight")
	}

	// Darkness from ACTIVE_LIGHT: idle, jellyfish up, motion canceled
	// in place.
	px, py, pz := f.Pos()
	h.set(30, 50)
	aq.LongStep(100)
	if aq.Phase() != IdleDark {
		t.Fatalf("expected IDLE_DARK on darkness, got %v", aq.Phase())
	}
	if j := GetJellyfish(0); j.Lowered() {
		t.Error("expected jellyfish raised on darkness")
	}
	if h.digital[7] {
		t.Error("expected jellyfish LED off on darkness")
	}
	if x, y, z := f.Target(); x != px || y != py || z != pz {
		t.Errorf("expected motion canceled at (%d,%d,%d), got target (%d,%d,%d)",
			px, py, pz, x, y, z)
	}

	// Taps are ignored in the dark.
	h.set(31, 80)
	runTank(h, aq, 5)
	h.set(31, 0)
	if aq.Phase() != IdleDark {
		t.Fatalf("expected tap ignored in the dark, got %v", aq.Phase())
	}

	// Darkness also wins from REACTING_TAP.
	h.set(30, 150)
	aq.LongStep(100)
	if aq.Phase() != ActiveLight {
		t.Fatalf("expected ACTIVE_LIGHT after relight, got %v", aq.Phase())
	}
	h.set(31, 80)
	runTank(h, aq, 1)
	h.set(31, 0)
	if aq.Phase() != ReactingTap {
		t.Fatalf("expected REACTING_TAP after tap, got %v", aq.Phase())
	}
	h.set(30, 50)
	aq.LongStep(100)
	if aq.Phase() != IdleDark {
		t.Fatalf("expected darkness to win from REACTING_TAP, got %v", aq.Phase())
	}
}

func TestAquariumTapDefaultCenter(t *testing.T) {
	h, aq, f := newTankWorld(t)
	aq.SetRoamTarget(60, 40, 20)

	h.set(30, 150)
	aq.LongStep(100)
	for i := 0; i < 5000 && f.Active(); i++ {
		h.advance(10)
		aq.ShortStep(10)
	}

	// No target was configured for sensor 0: the fish investigates the
	// tank center rather than wedging.
	h.set(31, 80)
	runTank(h, aq, 1)
	h.set(31, 0)
	if aq.Phase() != ReactingTap {
		t.Fatalf("expected REACTING_TAP, got %v", aq.Phase())
	}
	if x, y, z := f.Target(); x != 0 || y != 0 || z != 0 {
		t.Errorf("expected default center target (0,0,0), got (%d,%d,%d)", x, y, z)
	}
}

func TestAquariumSaveRoundRobin(t *testing.T) {
	h, aq, _ := newTankWorld(t)

	// One slot per long tick, round-robin over the calibrated servos.
	for i := 0; i < 6; i++ {
		aq.LongStep(100)
	}

	// A failed write pins the cursor on that servo until it succeeds.
	h.nvWriteFails = 1
	for i := 0; i < 3; i++ {
		aq.LongStep(100)
	}

	want := []int{0, 1, 2, 3, 0, 1, 2, 3}
	if len(h.nvWriteLog) != len(want) {
		t.Fatalf("expected %d successful writes, got %v", len(want), h.nvWriteLog)
	}
	for i := range want {
		if h.nvWriteLog[i] != want[i] {
			t.Fatalf("expected write order %v, got %v", want, h.nvWriteLog)
		}
	}
	if GetCRS(2).Fault() {
		t.Error("expected no fault from a single failed write")
	}
}
