// Wiggle shaper
// A shared sinusoid evaluated on the cumulative short-step clock. The
// fish overlays it on the y axis during short steps to suggest
// life-like motion; it never participates in goal accounting.
package core

import "math"

// wiggleOffset returns the wiggle displacement in logical units at the
// given cumulative clock: amplitude WiggleAmplitude, angular frequency
// WiggleSpeed.
func wiggleOffset(clockMS uint64) float64 {
	return WiggleAmplitude * math.Sin(WiggleSpeed*float64(clockMS)/1000.0)
}
