package core

import "math"

// Instance table capacities. Entities are addressed by dense small ids
// assigned at config time; tables are fixed arrays and no dynamic
// allocation happens after startup.
const (
	MaxCRS         = 8 // continuous-rotation servos
	MaxLRS         = 4 // limited-rotation servos
	MaxPiezos      = 8 // piezo tap sensors
	MaxLightSensor = 4 // ambient light sensors
	MaxLED         = 8 // LEDs
	MaxJellyfish   = 4 // jellyfish assemblies
	MaxFish        = 4 // fish assemblies
	MaxPiezoGroups = 4 // piezo sensor groups
	MaxAquariums   = 2 // independent aquarium instances
)

// Behavior constants. These are baked in rather than configurable: the
// installation tunes pin assignments and targets externally, not
// thresholds.
const (
	// MinLightVal is the analog reading strictly above which the
	// environment counts as lit.
	MinLightVal = 100

	// PiezoMinTapVal is the analog reading strictly above which a
	// piezo sensor registers a tap.
	PiezoMinTapVal = 50

	// SubSteps is the number of intermediate sub-goals a fish visits
	// on the way to a 3-D goal.
	SubSteps = 10

	// WiggleAmplitude is the peak sideways perturbation, in logical
	// position units, overlaid on fish motion.
	WiggleAmplitude = 10

	// WiggleSpeed is the wiggle angular frequency in radians per second.
	WiggleSpeed = math.Pi

	// Jellyfish postures in limited-rotation servo degrees.
	JellyfishRaisedAngle  = 0
	JellyfishLoweredAngle = 180

	// None marks the absence of an id, e.g. no tapped sensor.
	None = -1
)

// Advisory step cadences in milliseconds. The external driver owns the
// real cadence and passes elapsed time into the step entry points.
const (
	ShortTimeStep = 10
	LongTimeStep  = 100
)
