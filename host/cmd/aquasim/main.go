// aquasim runs the aquarium control core against the simulated
// hardware in a terminal. The fish, jellyfish and phase machine react
// live while keys stand in for the room: toggle the light, tap the
// glass.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"goquarium/core"
	"goquarium/halsim"
	"goquarium/tankcfg"
)

const (
	tickMS    = core.ShortTimeStep
	longEvery = core.LongTimeStep / core.ShortTimeStep

	// tapHoldTicks is how long a simulated tap keeps the piezo line
	// high. Several ticks, so the scan cannot miss it.
	tapHoldTicks = 5

	litValue = 400
	tapValue = 300
)

var (
	cfgPath   = flag.String("config", "", "Tank config JSON (default: reference tank)")
	calibrate = flag.Bool("calibrate", true, "Run swing calibration at startup")
)

// Sim owns the simulated tank and the terminal it is drawn on.
type Sim struct {
	screen        tcell.Screen
	width, height int

	hal  *halsim.Sim
	cfg  *tankcfg.Config
	aq   *core.Aquarium
	fish *core.Fish

	light    bool
	tapTicks map[int]int // piezo line -> ticks left high
	ticks    uint64
}

// NewSim wires the simulated hardware, builds the tank and opens the
// screen. With calibration enabled the swing sweeps run against the
// plant rigs before the first frame; simulated time makes that
// instant.
func NewSim(cfg *tankcfg.Config) (*Sim, error) {
	core.Reset()
	hal := halsim.New()
	for _, name := range axisNames {
		axis, ok := cfg.Axes[name]
		if !ok {
			return nil, fmt.Errorf("config misses axis %s", name)
		}
		hal.NewServoRig(axis.ControlLine, axis.PotLine)
	}
	hal.SetAnalog(cfg.LightLine, 0)
	for _, piezo := range cfg.Piezos {
		hal.SetAnalog(piezo.Line, 0)
	}
	hal.Install()

	aq, err := tankcfg.Build(cfg)
	if err != nil {
		return nil, err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	s := &Sim{
		screen:   screen,
		hal:      hal,
		cfg:      cfg,
		aq:       aq,
		fish:     core.GetFish(0),
		tapTicks: make(map[int]int),
	}
	s.width, s.height = screen.Size()
	return s, nil
}

// tick advances one short step of simulated time: expire taps, run the
// plant, then the control core, with a long step every tenth tick.
func (s *Sim) tick() {
	s.ticks++

	for line, left := range s.tapTicks {
		left--
		if left <= 0 {
			s.hal.SetAnalog(line, 0)
			delete(s.tapTicks, line)
		} else {
			s.tapTicks[line] = left
		}
	}

	s.hal.Advance(tickMS)
	s.aq.ShortStep(tickMS)
	if s.ticks%longEvery == 0 {
		s.aq.LongStep(core.LongTimeStep)
	}
}

func (s *Sim) toggleLight() {
	s.light = !s.light
	if s.light {
		s.hal.SetAnalog(s.cfg.LightLine, litValue)
	} else {
		s.hal.SetAnalog(s.cfg.LightLine, 0)
	}
}

func (s *Sim) tap(index int) {
	if index < 0 || index >= len(s.cfg.Piezos) {
		return
	}
	line := s.cfg.Piezos[index].Line
	s.hal.SetAnalog(line, tapValue)
	s.tapTicks[line] = tapHoldTicks
}

func (s *Sim) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch r := ev.Rune(); {
			case r == 'q':
				return false
			case r == 'l':
				s.toggleLight()
			case r == 't':
				s.tap(0)
			case r >= '1' && r <= '8':
				s.tap(int(r - '1'))
			}
		}

	case *tcell.EventResize:
		s.width, s.height = s.screen.Size()
		s.screen.Sync()
	}

	return true
}

func (s *Sim) run() {
	ticker := time.NewTicker(tickMS * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- s.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !s.handleInput(ev) {
				return
			}

		case <-ticker.C:
			s.tick()
			s.draw()
		}
	}
}

func (s *Sim) cleanup() {
	s.screen.Fini()
}

func main() {
	flag.Parse()

	cfg := tankcfg.DefaultConfig()
	if *cfgPath != "" {
		data, err := os.ReadFile(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg, err = tankcfg.Load(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Calibrate = *calibrate

	sim, err := NewSim(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer sim.cleanup()

	sim.run()
}
