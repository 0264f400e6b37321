// Fish 3-D motion planning
// A fish couples three translational continuous-rotation axes with a
// heading servo. A goal is reached through SubSteps linearly
// interpolated sub-goals: transient pot disturbances on one axis then
// cannot drift the body off-course over a long traverse, because every
// axis re-synchronizes at each sub-goal boundary.
package core

import (
	"errors"
	"math"
)

// Axis indices for the translational servos.
const (
	AxisX = iota
	AxisY
	AxisZ
	numAxes
)

// fishDefaultSpeed is the overall motion speed in logical units per
// second until SetSpeed overrides it.
const fishDefaultSpeed = 100

// Fish represents one fish assembly.
type Fish struct {
	ID     int
	servos [numAxes]int // CRS ids for the x, y, z axes
	theta  int          // CRS id of the heading servo

	speed int // Overall speed, units per second

	// Active goal
	target       [numAxes]int
	start        [numAxes]int
	portions     [numAxes]float64 // Unit-direction components; squares sum to 1
	moveAngle    float64          // Heading in radians, projected on the X-Y plane
	startMS      uint64           // Cumulative clock when the goal was accepted
	subStepsLeft int              // Sub-goals remaining, SubSteps down to 0
	arrived      [numAxes]bool    // Axis arrivals at the current sub-goal
	active       bool

	lastClock uint64 // Cumulative clock seen by the latest Step
}

// ConfigFish creates the fish with the given id over four distinct
// continuous-rotation servo ids.
func ConfigFish(id, xServo, yServo, zServo, thetaServo int) (*Fish, error) {
	if id < 0 || id >= MaxFish {
		return nil, errors.New("fish id out of range")
	}
	if xServo == yServo || yServo == zServo || xServo == zServo {
		return nil, errors.New("fish axis servos must be distinct")
	}
	if thetaServo == xServo || thetaServo == yServo || thetaServo == zServo {
		return nil, errors.New("fish heading servo must not share an axis servo")
	}
	f := &Fish{
		ID:     id,
		servos: [numAxes]int{xServo, yServo, zServo},
		theta:  thetaServo,
		speed:  fishDefaultSpeed,
	}
	fishes[id] = f
	return f, nil
}

// GetFish returns the fish with the given id, or nil if never
// configured.
func GetFish(id int) *Fish {
	if id < 0 || id >= MaxFish {
		return nil
	}
	return fishes[id]
}

// SetSpeed sets the overall motion speed in units per second.
func (f *Fish) SetSpeed(unitsPerSec int) {
	if unitsPerSec > 0 {
		f.speed = unitsPerSec
	}
}

// Speed returns the overall motion speed.
func (f *Fish) Speed() int {
	return f.speed
}

// Pos returns the current position of the three translational axes.
// Missing axes report zero; faulted ones their last known position.
func (f *Fish) Pos() (x, y, z int) {
	return f.axisPos(AxisX), f.axisPos(AxisY), f.axisPos(AxisZ)
}

// Target returns the active goal position.
func (f *Fish) Target() (x, y, z int) {
	return f.target[AxisX], f.target[AxisY], f.target[AxisZ]
}

// MoveAngle returns the heading in radians.
func (f *Fish) MoveAngle() float64 {
	return f.moveAngle
}

// Portions returns the unit-direction speed portions of the active
// goal.
func (f *Fish) Portions() (x, y, z float64) {
	return f.portions[AxisX], f.portions[AxisY], f.portions[AxisZ]
}

// SubStepsLeft returns the number of sub-goals remaining.
func (f *Fish) SubStepsLeft() int {
	return f.subStepsLeft
}

// Active reports whether a goal is in flight.
func (f *Fish) Active() bool {
	return f.active
}

// GoTo starts motion toward a 3-D goal: capture the current axis
// positions as the start, derive the non-negative unit-direction speed
// portions and the heading, command the heading servo, and issue the
// first of SubSteps sub-goals. A GoTo while a prior goal is active
// supersedes it immediately. If any translational axis is faulted the
// fish ceases animated motion, but the heading still turns toward the
// goal when its servo is healthy.
func (f *Fish) GoTo(x, y, z int) {
	f.target = [numAxes]int{x, y, z}
	for a := 0; a < numAxes; a++ {
		f.start[a] = f.axisPos(a)
	}
	dx := float64(x - f.start[AxisX])
	dy := float64(y - f.start[AxisY])
	dz := float64(z - f.start[AxisZ])

	// Heading holds its last value for a pure vertical or zero move.
	if dx != 0 || dy != 0 {
		f.moveAngle = math.Atan2(dy, dx)
	}
	if t := GetCRS(f.theta); t != nil {
		t.StartMovingToAngle(f.moveAngle)
	}

	if f.axesFaulted() {
		f.active = false
		return
	}

	dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if dist > 0 {
		f.portions = [numAxes]float64{
			math.Abs(dx) / dist,
			math.Abs(dy) / dist,
			math.Abs(dz) / dist,
		}
	} else {
		f.portions = [numAxes]float64{}
	}

	f.startMS = f.lastClock
	f.subStepsLeft = SubSteps
	f.active = true
	f.goToNextInternalGoal()
}

// Step advances the fish by ms milliseconds at the given cumulative
// clock: overlay the wiggle on the y axis, step all four servos, then
// fuse per-axis arrivals into sub-goal advancement. Returns true when
// the overall goal is reached during this step; the caller dispatches
// the aquarium event. Arrival flags make re-entry within one tick
// idempotent.
func (f *Fish) Step(ms int, clockMS uint64) bool {
	f.lastClock = clockMS

	if y := GetCRS(f.servos[AxisY]); y != nil {
		y.SetOverlay(int(math.Round(wiggleOffset(clockMS))))
	}

	if t := GetCRS(f.theta); t != nil {
		t.Step(ms)
	}

	for a := 0; a < numAxes; a++ {
		c := GetCRS(f.servos[a])
		if c == nil {
			continue
		}
		if c.Step(ms) && f.active {
			f.arrived[a] = true
		}
	}

	if !f.active || !f.arrived[AxisX] || !f.arrived[AxisY] || !f.arrived[AxisZ] {
		return false
	}

	f.subStepsLeft--
	if f.subStepsLeft > 0 {
		f.goToNextInternalGoal()
		return false
	}
	f.active = false
	return true
}

// goToNextInternalGoal commands the axes to the next sub-goal: linear
// interpolation between start and goal at fraction
// (SubSteps-subStepsLeft+1)/SubSteps, so the final sub-goal is the goal
// itself, exactly. Each axis gets its share of the overall speed.
func (f *Fish) goToNextInternalGoal() {
	step := SubSteps - f.subStepsLeft + 1
	for a := 0; a < numAxes; a++ {
		f.arrived[a] = false
	}
	for a := 0; a < numAxes; a++ {
		c := GetCRS(f.servos[a])
		if c == nil {
			continue
		}
		sub := f.start[a] + (f.target[a]-f.start[a])*step/SubSteps
		v := int(math.Round(float64(f.speed) * f.portions[a]))
		if v == 0 && c.Pos() != sub {
			// The wiggle hold may have displaced a zero-delta axis past
			// the arrival band; it must keep creeping or it never
			// arrives and the sub-goal never completes.
			v = 1
		}
		c.SetVelocity(v)
		c.StartMovingTo(sub)
	}
}

// axisPos returns one axis' current position.
func (f *Fish) axisPos(axis int) int {
	if c := GetCRS(f.servos[axis]); c != nil {
		return c.Pos()
	}
	return 0
}

// axesFaulted reports whether any translational axis is missing,
// uncalibrated, or faulted.
func (f *Fish) axesFaulted() bool {
	for a := 0; a < numAxes; a++ {
		c := GetCRS(f.servos[a])
		if c == nil || c.Fault() || !c.Calibrated() {
			return true
		}
	}
	return false
}
