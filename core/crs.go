// Continuous-rotation servo position control
// A CRS commands angular velocity on its servo line and closes the loop
// on an absolute feedback potentiometer. The mechanism's attainable
// swing maps inside one pot sweep, so the pot never wraps and logical
// position is pot counts relative to the calibrated zero. Degree and
// radian commands convert through the calibrated counts-per-degree,
// with 360 degrees spanning the full swing.
package core

import (
	"errors"
	"math"
)

// CountsPerSecPerRaw is the pot speed produced by one raw unit of
// drive, in counts per second. The persisted record has no field for a
// per-device value, so this is a device-class constant measured offline
// (see the potlab fit tooling).
const CountsPerSecPerRaw = 4.0

const (
	// crsTolerance is the arrival window in logical units.
	crsTolerance = 1

	// crsMaxRaw is the maximum raw velocity magnitude the line accepts.
	crsMaxRaw = 90

	// crsDefaultVelocity is the logical speed in units per second used
	// by movement commands until SetVelocity overrides it.
	crsDefaultVelocity = 120

	// crsHoldGain is the proportional correction, per second, applied
	// while idle to keep the servo drawn toward its held target.
	// crsHoldMaxVel bounds that correction independently of the
	// requested movement speed, which may legitimately be zero.
	crsHoldGain   = 2.0
	crsHoldMaxVel = 60.0

	// Calibration drive parameters: raw magnitude, per-extreme drive
	// time, sample interval, and the bounds of the mid-swing seek. A
	// drive of crsCalRaw covers a full swing in well under crsCalMillis.
	crsCalRaw          = 60
	crsCalMillis       = 4000
	crsCalSampleMillis = 5
	crsCalSeekRaw      = 20
	crsCalSeekMillis   = 8000

	// crsCalMinSpan is the smallest extreme-to-extreme travel accepted
	// as a real swing. A stuck pot line fails this and the servo stays
	// uncalibrated.
	crsCalMinSpan = 64

	// crsSaveRetryLimit bounds consecutive failed nonvolatile writes
	// before the fault flag latches.
	crsSaveRetryLimit = 3
)

// CRS represents one continuous-rotation servo axis.
type CRS struct {
	ID          int // Entity id
	ControlLine int // Servo output line
	PotLine     int // Potentiometer analog line

	// Calibration constants
	zeroValue     int     // Raw pot reading at logical position 0
	countsPerUnit float64 // Pot counts per degree of rotation
	calibrated    bool

	// Motion state
	position float64 // Blended logical position estimate
	target   int     // Target logical position
	reqSpeed int     // Requested speed magnitude, units per second
	cmdRaw   int     // Raw velocity currently driving the line
	cmdSign  int     // Sign of the active movement command
	moving   bool
	overlay  int // Wiggle offset added to the steering target

	// Fault handling
	fault      bool
	saveErrors int // Consecutive failed nonvolatile writes
}

// ConfigCRS creates the continuous-rotation servo with the given id.
// With calibrate true the blocking calibration recipe runs immediately;
// otherwise constants load from the nonvolatile slot. Either path may
// leave the servo uncalibrated with its fault flag raised; the instance
// still exists and refuses motion commands silently.
func ConfigCRS(id, controlLine, potLine int, calibrate bool) (*CRS, error) {
	if id < 0 || id >= MaxCRS {
		return nil, errors.New("crs id out of range")
	}
	c := &CRS{
		ID:          id,
		ControlLine: controlLine,
		PotLine:     potLine,
		reqSpeed:    crsDefaultVelocity,
	}
	c.stopLine()
	if calibrate {
		c.calibrate()
	} else {
		c.loadCalConstants()
	}
	crss[id] = c
	return c, nil
}

// GetCRS returns the servo with the given id, or nil if never
// configured.
func GetCRS(id int) *CRS {
	if id < 0 || id >= MaxCRS {
		return nil
	}
	return crss[id]
}

// StartMovingTo begins closed-loop motion to the target position. The
// movement direction is fixed at command time; arrival is detected by
// Step. Refused silently on an uncalibrated servo.
func (c *CRS) StartMovingTo(target int) {
	if !c.calibrated {
		c.fault = true
		return
	}
	c.target = target
	c.cmdSign = 1
	if float64(target) < c.position {
		c.cmdSign = -1
	}
	c.moving = true
	c.applyVelocity(float64(c.cmdSign * c.reqSpeed))
}

// StartMovingToDegrees begins motion to an angle in degrees, zero due
// right, converted through the calibrated counts-per-degree.
func (c *CRS) StartMovingToDegrees(deg float64) {
	if !c.calibrated {
		c.fault = true
		return
	}
	c.StartMovingTo(int(math.Round(deg * c.countsPerUnit)))
}

// StartMovingToAngle begins motion to an angle in radians.
func (c *CRS) StartMovingToAngle(rad float64) {
	c.StartMovingToDegrees(rad * 180.0 / math.Pi)
}

// SetVelocity sets the speed magnitude, in logical units per second,
// that movement commands use. An active move picks up the new speed in
// its commanded direction immediately.
func (c *CRS) SetVelocity(unitsPerSec int) {
	if !c.calibrated {
		c.fault = true
		return
	}
	if unitsPerSec < 0 {
		unitsPerSec = -unitsPerSec
	}
	c.reqSpeed = unitsPerSec
	if c.moving {
		c.applyVelocity(float64(c.cmdSign * c.reqSpeed))
	}
}

// Step advances the position estimate by ms milliseconds and reports
// whether the active movement arrived during this step. The sensed pot
// position is blended 3:1 against the open-loop integral, favoring the
// sensor, to suppress line noise without losing responsiveness.
// Arrival is |position-target| at or below tolerance, or the sign of
// the remaining error flipping against the command sign; the line is
// stopped before reporting. The caller dispatches the goal event.
func (c *CRS) Step(ms int) bool {
	if !c.calibrated {
		return false
	}

	raw := MustAnalog().AnalogRead(c.PotLine)
	sensed := float64(raw - c.zeroValue)
	integrated := c.position + float64(c.cmdRaw)*CountsPerSecPerRaw*float64(ms)/1000.0
	c.position = (3.0*sensed + integrated) / 4.0

	if !c.moving {
		c.holdStep()
		return false
	}

	err := float64(c.target) - c.position
	arrived := math.Abs(err) <= crsTolerance
	if !arrived && (err > 0) != (c.cmdSign > 0) {
		arrived = true // overshot: error sign flipped against the command
	}
	if arrived {
		c.stopLine()
		c.moving = false
		return true
	}

	// Steer toward target+overlay; arrival accounting above stays on
	// the base target so the wiggle never disturbs goal bookkeeping.
	steer := float64(c.target+c.overlay) - c.position
	dir := 1
	if steer < 0 {
		dir = -1
	}
	c.applyVelocity(float64(dir * c.reqSpeed))
	return false
}

// holdStep keeps an idle servo drawn toward target+overlay with a
// bounded proportional correction, so the wiggle stays visible between
// goals. Never raises goal events.
func (c *CRS) holdStep() {
	steer := float64(c.target+c.overlay) - c.position
	if math.Abs(steer) <= crsTolerance {
		if c.cmdRaw != 0 {
			c.stopLine()
		}
		return
	}
	speed := steer * crsHoldGain
	if speed > crsHoldMaxVel {
		speed = crsHoldMaxVel
	} else if speed < -crsHoldMaxVel {
		speed = -crsHoldMaxVel
	}
	c.applyVelocity(speed)
}

// Pos returns the current logical position estimate. An uncalibrated
// servo reports its last known position, zero after a cold start.
func (c *CRS) Pos() int {
	return int(math.Round(c.position))
}

// Target returns the current target position.
func (c *CRS) Target() int {
	return c.target
}

// Moving reports whether a movement command is active.
func (c *CRS) Moving() bool {
	return c.moving
}

// Fault reports the latched per-servo fault flag.
func (c *CRS) Fault() bool {
	return c.fault
}

// Calibrated reports whether valid calibration constants are loaded.
func (c *CRS) Calibrated() bool {
	return c.calibrated
}

// CountsPerDegree returns the calibrated counts-per-degree scale.
func (c *CRS) CountsPerDegree() float64 {
	return c.countsPerUnit
}

// SetOverlay sets the wiggle offset, in logical units, added to the
// steering target. Arrival accounting ignores it.
func (c *CRS) SetOverlay(units int) {
	c.overlay = units
}

// Overlay returns the current steering overlay.
func (c *CRS) Overlay() int {
	return c.overlay
}

// applyVelocity converts a signed logical velocity to raw drive and
// writes the servo line.
func (c *CRS) applyVelocity(unitsPerSec float64) {
	c.cmdRaw = convertVelocityToRaw(unitsPerSec)
	MustServo().ServoWrite(c.ControlLine, 90+c.cmdRaw)
}

// stopLine commands zero velocity.
func (c *CRS) stopLine() {
	c.cmdRaw = 0
	MustServo().ServoWrite(c.ControlLine, 90)
}

// convertVelocityToRaw maps a signed velocity in logical units per
// second to the raw signed magnitude for the servo line, saturating at
// the device maximum. Nonzero requests never round down to a dead stop.
func convertVelocityToRaw(unitsPerSec float64) int {
	raw := int(math.Round(unitsPerSec / CountsPerSecPerRaw))
	if raw == 0 && unitsPerSec != 0 {
		if unitsPerSec > 0 {
			raw = 1
		} else {
			raw = -1
		}
	}
	if raw > crsMaxRaw {
		raw = crsMaxRaw
	} else if raw < -crsMaxRaw {
		raw = -crsMaxRaw
	}
	return raw
}

// calibrate generates calibration constants and the zero position by
// driving the mechanism across its full swing: out to the positive
// extreme, back to the negative extreme, midpoint designated zero, then
// a seek back to zero so the logical origin is physically centered.
// This is the only blocking routine in the core; it runs once at
// startup.
func (c *CRS) calibrate() {
	clock := MustClock()
	analog := MustAnalog()

	maxRaw := 0
	MustServo().ServoWrite(c.ControlLine, 90+crsCalRaw)
	for elapsed := 0; elapsed < crsCalMillis; elapsed += crsCalSampleMillis {
		clock.Sleep(crsCalSampleMillis)
		if r := analog.AnalogRead(c.PotLine); r > maxRaw {
			maxRaw = r
		}
	}

	minRaw := 1023
	MustServo().ServoWrite(c.ControlLine, 90-crsCalRaw)
	for elapsed := 0; elapsed < crsCalMillis; elapsed += crsCalSampleMillis {
		clock.Sleep(crsCalSampleMillis)
		if r := analog.AnalogRead(c.PotLine); r < minRaw {
			minRaw = r
		}
	}
	c.stopLine()

	if maxRaw-minRaw < crsCalMinSpan {
		// Full travel never observed, e.g. a stuck sensor line.
		c.calibrated = false
		c.fault = true
		DebugPrintln("crs " + itoa(c.ID) + " calibration failed, span " + itoa(maxRaw-minRaw))
		return
	}

	c.zeroValue = (minRaw + maxRaw) / 2
	c.countsPerUnit = float64(maxRaw-minRaw) / 360.0
	c.calibrated = true
	c.fault = false

	c.seekZero()
	c.position = 0
	c.target = 0
	c.save()
	DebugPrintln("crs " + itoa(c.ID) + " calibrated zero=" + itoa(c.zeroValue))
}

// seekZero drives the servo until the pot reads the calibrated zero,
// bounded by crsCalSeekMillis.
func (c *CRS) seekZero() {
	clock := MustClock()
	analog := MustAnalog()
	for elapsed := 0; elapsed < crsCalSeekMillis; elapsed += crsCalSampleMillis {
		d := c.zeroValue - analog.AnalogRead(c.PotLine)
		if d >= -crsTolerance && d <= crsTolerance {
			break
		}
		raw := crsCalSeekRaw
		if d < 0 {
			raw = -raw
		}
		MustServo().ServoWrite(c.ControlLine, 90+raw)
		clock.Sleep(crsCalSampleMillis)
	}
	c.stopLine()
}

// loadCalConstants restores calibration from the nonvolatile slot. A
// missing or corrupt record leaves the servo uncalibrated with the
// fault flag raised; motion commands then refuse silently.
func (c *CRS) loadCalConstants() {
	var buf [calRecordSize]byte
	if !MustNV().NVRead(crsSlot(c.ID), buf[:]) {
		c.fault = true
		return
	}
	var rec calRecord
	if err := rec.decode(buf[:]); err != nil {
		c.fault = true
		DebugPrintln("crs " + itoa(c.ID) + " calibration load: " + err.Error())
		return
	}
	c.zeroValue = int(rec.ZeroValue)
	c.position = float64(rec.Position)
	c.countsPerUnit = float64(rec.CountsPerUnit)
	c.target = int(rec.Position)
	c.calibrated = true
}

// save writes position and calibration to the nonvolatile slot. The
// aquarium long step calls this at most once per long tick per servo.
// A failed write leaves memory untouched; after crsSaveRetryLimit
// consecutive failures the fault flag latches and no further writes
// are attempted.
func (c *CRS) save() {
	if !c.calibrated || c.saveErrors >= crsSaveRetryLimit {
		return
	}
	rec := calRecord{
		ZeroValue:     int16(c.zeroValue),
		Position:      int32(math.Round(c.position)),
		CountsPerUnit: float32(c.countsPerUnit),
	}
	var buf [calRecordSize]byte
	rec.encode(buf[:])
	if !MustNV().NVWrite(crsSlot(c.ID), buf[:]) {
		c.saveErrors++
		if c.saveErrors >= crsSaveRetryLimit {
			c.fault = true
			DebugPrintln("crs " + itoa(c.ID) + " nonvolatile write fault")
		}
		return
	}
	c.saveErrors = 0
}

// savePending reports whether the last save attempt failed and the
// fault has not latched yet; the aquarium retries such a servo on the
// next long tick instead of advancing its round-robin.
func (c *CRS) savePending() bool {
	return c.saveErrors > 0 && c.saveErrors < crsSaveRetryLimit
}
