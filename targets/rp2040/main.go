//go:build rp2040

package main

import (
	"time"

	"goquarium/core"
	"goquarium/tankcfg"
)

// jellyfishDemo swaps the tank loop for the standalone jellyfish
// exercise. Handy on a fresh build before the fish axes are wired.
const jellyfishDemo = false

// debugTrace routes core trace lines (calibration results, faults,
// phase changes) to the console, prefixed so the potlab reader skips
// them as comments.
const debugTrace = true

const (
	longEvery = core.LongTimeStep / core.ShortTimeStep

	// telemetryEvery is the short-tick divisor for pot telemetry lines
	// on the USB console, consumed by the potlab tool.
	telemetryEvery = 5
)

func main() {
	// Let USB CDC enumerate before anything prints.
	time.Sleep(2 * time.Second)

	servos := NewServoDriver()
	core.SetServoDriver(servos)
	core.SetAnalogDriver(NewAnalogDriver())
	core.SetDigitalDriver(NewDigitalDriver())
	core.SetNVDriver(NewFlashStore())
	clock := NewSysClock()
	core.SetClockDriver(clock)

	core.SetDebugWriter(func(msg string) { println("# " + msg) })
	core.SetDebugEnabled(debugTrace)

	cfg := tankcfg.DefaultConfig()

	aq, err := tankcfg.Build(cfg)
	if err != nil {
		for {
			println("# tank config failed:", err.Error())
			time.Sleep(5 * time.Second)
		}
	}

	if jellyfishDemo {
		runJellyfishDemo()
	}

	println("# goquarium pot telemetry")
	runTank(aq, cfg, servos, clock)
}

// runTank is the firmware super-loop: a short step every 10ms of wall
// time, a long step every tenth tick, and a telemetry line for the x
// axis in between.
func runTank(aq *core.Aquarium, cfg *tankcfg.Config, servos *ServoDriver, clock *SysClock) {
	xAxis := cfg.Axes["x"]

	last := time.Now()
	ticks := 0
	longAcc := 0
	for {
		time.Sleep(core.ShortTimeStep * time.Millisecond)
		now := time.Now()
		elapsed := int(now.Sub(last).Milliseconds())
		last = now

		aq.ShortStep(elapsed)

		ticks++
		longAcc += elapsed
		if ticks%longEvery == 0 {
			aq.LongStep(longAcc)
			longAcc = 0
		}

		if ticks%telemetryEvery == 0 {
			pot := core.MustAnalog().AnalogRead(xAxis.PotLine)
			println(clock.Millis(), pot, servos.Last(xAxis.ControlLine))
		}
	}
}

// runJellyfishDemo lowers and raises the jellyfish on a fixed cadence,
// forever.
func runJellyfishDemo() {
	jelly := core.GetJellyfish(0)
	if jelly == nil {
		return
	}
	for {
		jelly.Lower()
		time.Sleep(4 * time.Second)
		jelly.Raise()
		time.Sleep(4 * time.Second)
	}
}
