// Aquarium behavior state machine
// The aquarium fuses light and tap inputs with fish arrival events
// under two cooperating time bases. The external driver calls
// ShortStep at a fast cadence and LongStep at a slow one; all behavior
// advances on the elapsed-millisecond arguments and nothing here
// consults a wall clock.
package core

import "errors"

// Phase is a discrete aquarium state.
type Phase uint8

const (
	IdleDark    Phase = iota // Dark tank: jellyfish raised, fish holding
	ActiveLight              // Lit tank: jellyfish lowered, fish roaming
	ReactingTap              // Fish en route to a tapped sensor's target
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case IdleDark:
		return "IDLE_DARK"
	case ActiveLight:
		return "ACTIVE_LIGHT"
	case ReactingTap:
		return "REACTING_TAP"
	}
	return "UNKNOWN"
}

// Vec3 is a 3-D position in logical units.
type Vec3 struct {
	X, Y, Z int
}

// Aquarium is the top-level behavior state machine over one fish, one
// jellyfish, one light sensor, and one piezo group.
type Aquarium struct {
	ID            int
	FishID        int
	JellyfishID   int
	LightSensorID int
	PiezoGroupID  int

	phase   Phase
	clockMS uint64 // Cumulative short-step clock

	tapTargets [MaxPiezos]Vec3 // Tapped sensor id -> investigate position
	roam       Vec3            // Default roam position on light-up

	saveCursor int // Round-robin CRS persistence cursor
}

// ConfigAquarium creates the aquarium with the given id. The initial
// phase is IDLE_DARK; the jellyfish is commanded to its raised posture
// so the hardware state is known at boot.
func ConfigAquarium(id, fishID, jellyfishID, lightSensorID, piezoGroupID int) (*Aquarium, error) {
	if id < 0 || id >= MaxAquariums {
		return nil, errors.New("aquarium id out of range")
	}
	a := &Aquarium{
		ID:            id,
		FishID:        fishID,
		JellyfishID:   jellyfishID,
		LightSensorID: lightSensorID,
		PiezoGroupID:  piezoGroupID,
		phase:         IdleDark,
	}
	if j := GetJellyfish(jellyfishID); j != nil {
		j.Raise()
	}
	aquariums[id] = a
	return a, nil
}

// GetAquarium returns the aquarium with the given id, or nil if never
// configured.
func GetAquarium(id int) *Aquarium {
	if id < 0 || id >= MaxAquariums {
		return nil
	}
	return aquariums[id]
}

// SetTapTarget associates a tapped piezo sensor id with the position
// the fish investigates. The table is supplied by the external
// configurator; unset entries default to the tank center.
func (a *Aquarium) SetTapTarget(piezoID, x, y, z int) {
	if piezoID < 0 || piezoID >= MaxPiezos {
		return
	}
	a.tapTargets[piezoID] = Vec3{X: x, Y: y, Z: z}
}

// SetRoamTarget sets the default roam position entered when the tank
// lights up.
func (a *Aquarium) SetRoamTarget(x, y, z int) {
	a.roam = Vec3{X: x, Y: y, Z: z}
}

// Phase returns the current phase.
func (a *Aquarium) Phase() Phase {
	return a.phase
}

// Clock returns the cumulative short-step clock in milliseconds.
func (a *Aquarium) Clock() uint64 {
	return a.clockMS
}

// ShortStep runs the low-latency work for one fast tick: fish motion
// with the wiggle overlay and, in ACTIVE_LIGHT, the piezo tap scan.
// Order is fixed: servo and fish updates precede the tap scan.
func (a *Aquarium) ShortStep(ms int) {
	a.clockMS += uint64(ms)

	fish := GetFish(a.FishID)
	if fish != nil && fish.Step(ms, a.clockMS) {
		a.OnFishReachedGoal(fish.ID)
	}

	if a.phase != ActiveLight {
		return
	}
	g := GetPiezoGroup(a.PiezoGroupID)
	if g == nil {
		return
	}
	tapped := g.Tapped()
	if tapped == None {
		return
	}
	a.phase = ReactingTap
	DebugPrintln("aquarium " + itoa(a.ID) + " tap on sensor " + itoa(tapped))
	if fish != nil {
		t := a.tapTargets[tapped]
		fish.GoTo(t.X, t.Y, t.Z)
	}
}

// LongStep runs the high-latency work for one slow tick: light polling
// with the phase transitions, jellyfish posture, and opportunistic
// persistence of one CRS slot. Darkness wins from any phase.
func (a *Aquarium) LongStep(ms int) {
	light := false
	if s := GetLightSensor(a.LightSensorID); s != nil {
		light = s.IsLight()
	}

	switch a.phase {
	case IdleDark:
		if light {
			a.phase = ActiveLight
			DebugPrintln("aquarium " + itoa(a.ID) + " light up")
			if j := GetJellyfish(a.JellyfishID); j != nil {
				j.Lower()
			}
			if f := GetFish(a.FishID); f != nil {
				f.GoTo(a.roam.X, a.roam.Y, a.roam.Z)
			}
		}
	case ActiveLight, ReactingTap:
		if !light {
			a.phase = IdleDark
			DebugPrintln("aquarium " + itoa(a.ID) + " dark")
			if j := GetJellyfish(a.JellyfishID); j != nil {
				j.Raise()
			}
			if f := GetFish(a.FishID); f != nil {
				// Cancel motion in place.
				x, y, z := f.Pos()
				f.GoTo(x, y, z)
			}
		}
	}

	a.saveNext()
}

// OnFishReachedGoal handles the fish layer's arrival event. Reaching
// the investigated tap target returns the aquarium to ACTIVE_LIGHT.
func (a *Aquarium) OnFishReachedGoal(fishID int) {
	if fishID != a.FishID {
		return
	}
	if a.phase == ReactingTap {
		a.phase = ActiveLight
	}
}

// saveNext persists at most one calibrated CRS slot per long tick,
// round-robin across the table to bound store wear. A servo whose last
// write failed is retried before the cursor advances.
func (a *Aquarium) saveNext() {
	for i := 0; i < MaxCRS; i++ {
		id := (a.saveCursor + i) % MaxCRS
		c := GetCRS(id)
		if c == nil || !c.Calibrated() {
			continue
		}
		c.save()
		if c.savePending() {
			a.saveCursor = id
		} else {
			a.saveCursor = (id + 1) % MaxCRS
		}
		return
	}
}
