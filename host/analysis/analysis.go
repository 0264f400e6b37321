// Package analysis computes calibration quantities from captured pot
// telemetry: swing statistics for the zero and scale constants, a
// least-squares estimate of the drive-to-speed scale, and
// level-crossing timing for swing-period checks.
package analysis

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"goquarium/host/capture"
)

// satMargin is how close to the observed swing extremes a reading may
// sit before it counts as saturated. Saturated intervals carry no
// velocity information, the pot pins at the rail while the shaft keeps
// turning.
const satMargin = 4

// SwingStats summarizes a full-swing capture the same way the
// controller's own calibration sweep does: the saturation extremes
// give the electrical zero and the counts-per-degree scale of the 360
// degree swing.
type SwingStats struct {
	Min             int
	Max             int
	Zero            int // midpoint of the swing
	Span            int
	CountsPerDegree float64
	Samples         int
}

// Swing scans a capture for its pot extremes.
func Swing(samples []capture.Sample) (SwingStats, error) {
	if len(samples) == 0 {
		return SwingStats{}, errors.New("no samples")
	}

	pots := make([]float64, len(samples))
	for i, s := range samples {
		pots[i] = float64(s.Pot)
	}
	min := int(floats.Min(pots))
	max := int(floats.Max(pots))

	return SwingStats{
		Min:             min,
		Max:             max,
		Zero:            (min + max) / 2,
		Span:            max - min,
		CountsPerDegree: float64(max-min) / 360.0,
		Samples:         len(samples),
	}, nil
}

// VelocityFit is the least-squares estimate of the drive-to-speed
// scale: pot counts per second produced by one raw unit of drive away
// from the stop command.
type VelocityFit struct {
	Scale float64 // counts per second per raw unit
	R2    float64
	Pairs int // consecutive-sample pairs used
}

// FitVelocityScale regresses per-interval pot velocity against the
// raw drive, through the origin: zero drive holds still. Intervals
// where the drive changed or either endpoint sits near a rail are
// excluded.
func FitVelocityScale(samples []capture.Sample) (VelocityFit, error) {
	swing, err := Swing(samples)
	if err != nil {
		return VelocityFit{}, err
	}

	var xs, ys []float64
	driven := 0
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		if cur.TimeMS <= prev.TimeMS {
			continue
		}
		if prev.Cmd != cur.Cmd {
			continue
		}
		if nearRail(prev.Pot, swing) || nearRail(cur.Pot, swing) {
			continue
		}

		dt := float64(cur.TimeMS-prev.TimeMS) / 1000.0
		xs = append(xs, float64(prev.Cmd-90))
		ys = append(ys, float64(cur.Pot-prev.Pot)/dt)
		if prev.Cmd != 90 {
			driven++
		}
	}
	if driven < 2 {
		return VelocityFit{}, errors.New("not enough driven intervals")
	}

	_, beta := stat.LinearRegression(xs, ys, nil, true)
	return VelocityFit{
		Scale: beta,
		R2:    stat.RSquared(xs, ys, nil, 0, beta),
		Pairs: len(xs),
	}, nil
}

func nearRail(pot int, swing SwingStats) bool {
	return pot <= swing.Min+satMargin || pot >= swing.Max-satMargin
}

// Crossings returns the capture times, in milliseconds, at which the
// pot trace crosses the given level, linearly interpolated between
// samples. A trace that touches the level and retreats to the same
// side has not crossed.
func Crossings(samples []capture.Sample, level int) []float64 {
	var out []float64
	lastSign := 0
	var last capture.Sample

	for _, s := range samples {
		sign := 0
		if s.Pot > level {
			sign = 1
		} else if s.Pot < level {
			sign = -1
		}

		if sign != 0 && lastSign != 0 && sign != lastSign {
			dt := float64(s.TimeMS - last.TimeMS)
			frac := float64(level-last.Pot) / float64(s.Pot-last.Pot)
			out = append(out, float64(last.TimeMS)+frac*dt)
		}
		if sign != 0 {
			lastSign = sign
		}
		last = s
	}

	return out
}

// Intervals returns the gaps between consecutive crossing times. With
// the level at the swing zero, the mean interval is half the swing
// period.
func Intervals(crossings []float64) []float64 {
	if len(crossings) < 2 {
		return nil
	}
	out := make([]float64, len(crossings)-1)
	for i := 1; i < len(crossings); i++ {
		out[i-1] = crossings[i] - crossings[i-1]
	}
	return out
}
