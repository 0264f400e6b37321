// Tank configuration
// A tank description carries everything that varies per installation:
// line assignments for the servos and sensors, the piezo tap-target
// table, the roam position, and the fish speed. Behavior thresholds
// stay compiled into core. The same description drives the firmware
// target and the host simulator.
package tankcfg

import (
	"encoding/json"
	"errors"

	"goquarium/core"
)

// AxisConfig assigns the two lines of one continuous-rotation axis.
type AxisConfig struct {
	ControlLine int `json:"control_line"`
	PotLine     int `json:"pot_line"`
}

// Position is a point in logical tank units.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// PiezoConfig assigns one tap sensor line and the position the fish
// investigates when that sensor fires.
type PiezoConfig struct {
	Line   int      `json:"line"`
	Target Position `json:"target"`
}

// JellyfishConfig assigns the jellyfish lift servo and its lamp.
type JellyfishConfig struct {
	ServoLine int `json:"servo_line"`
	LEDLine   int `json:"led_line"`
}

// Config is the full tank description.
type Config struct {
	// Axes maps "x", "y", "z" and "theta" to their line pairs.
	Axes map[string]AxisConfig `json:"axes"`

	// Calibrate forces a swing calibration of every axis at startup
	// instead of loading stored constants.
	Calibrate bool `json:"calibrate"`

	// FishSpeed is the fish motion speed in logical units per second.
	FishSpeed int `json:"fish_speed"`

	// Roam is where the fish settles whenever the tank lights up.
	Roam Position `json:"roam"`

	Jellyfish JellyfishConfig `json:"jellyfish"`

	// LightLine is the ambient light sensor input.
	LightLine int `json:"light_line"`

	// Piezos lists the tap sensors in id order.
	Piezos []PiezoConfig `json:"piezos"`
}

// axisNames fixes the axis iteration order and the continuous-rotation
// servo id each axis occupies.
var axisNames = [...]string{"x", "y", "z", "theta"}

// Load parses a JSON tank description and fills in defaults for
// anything the description leaves out.
func Load(jsonData []byte) (*Config, error) {
	var config Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	// Apply defaults
	applyDefaults(&config)

	return &config, nil
}

// applyDefaults fills in missing configuration values with the
// reference tank's defaults.
func applyDefaults(config *Config) {
	def := DefaultConfig()

	if config.Axes == nil {
		config.Axes = make(map[string]AxisConfig)
	}
	for _, name := range axisNames {
		if _, ok := config.Axes[name]; !ok {
			config.Axes[name] = def.Axes[name]
		}
	}

	if config.FishSpeed == 0 {
		config.FishSpeed = def.FishSpeed
	}
	if config.Jellyfish.ServoLine == 0 && config.Jellyfish.LEDLine == 0 {
		config.Jellyfish = def.Jellyfish
	}
	if config.LightLine == 0 {
		config.LightLine = def.LightLine
	}
	if len(config.Piezos) == 0 {
		config.Piezos = def.Piezos
	}
}

// DefaultConfig returns the reference tank: four axes with pots on the
// direct ADC lines and the multiplexed bank, one jellyfish, one light
// sensor and two tap sensors. Line numbers follow the rp2040 target's
// analog map, where 26 to 28 are on-chip converter inputs and 40 up
// are multiplexer channels.
func DefaultConfig() *Config {
	return &Config{
		Axes: map[string]AxisConfig{
			"x":     {ControlLine: 2, PotLine: 26},
			"y":     {ControlLine: 3, PotLine: 27},
			"z":     {ControlLine: 4, PotLine: 28},
			"theta": {ControlLine: 5, PotLine: 40},
		},
		Calibrate: false,
		FishSpeed: 100,
		Roam:      Position{X: 60, Y: 40, Z: 20},
		Jellyfish: JellyfishConfig{ServoLine: 6, LEDLine: 13},
		LightLine: 41,
		Piezos: []PiezoConfig{
			{Line: 42, Target: Position{X: -60, Y: 40, Z: 20}},
			{Line: 43, Target: Position{X: 60, Y: -40, Z: 20}},
		},
	}
}

// Build configures every core entity the description names and returns
// the assembled aquarium. The hardware drivers must be installed
// first; with Calibrate set this blocks through the swing calibration
// of each axis.
func Build(config *Config) (*core.Aquarium, error) {
	for i, name := range axisNames {
		axis, ok := config.Axes[name]
		if !ok {
			return nil, errors.New("missing axis: " + name)
		}
		_, err := core.ConfigCRS(i, axis.ControlLine, axis.PotLine, config.Calibrate)
		if err != nil {
			return nil, err
		}
	}

	if _, err := core.ConfigLRS(0, config.Jellyfish.ServoLine); err != nil {
		return nil, err
	}
	if _, err := core.ConfigLED(0, config.Jellyfish.LEDLine); err != nil {
		return nil, err
	}
	if _, err := core.ConfigJellyfish(0, 0, 0); err != nil {
		return nil, err
	}

	if _, err := core.ConfigLightSensor(0, config.LightLine); err != nil {
		return nil, err
	}

	group, err := core.ConfigPiezoGroup(0)
	if err != nil {
		return nil, err
	}
	for i, piezo := range config.Piezos {
		if _, err := core.ConfigPiezo(i, piezo.Line); err != nil {
			return nil, err
		}
		if err := group.AddSensor(i); err != nil {
			return nil, err
		}
	}

	fish, err := core.ConfigFish(0, 0, 1, 2, 3)
	if err != nil {
		return nil, err
	}
	fish.SetSpeed(config.FishSpeed)

	aquarium, err := core.ConfigAquarium(0, 0, 0, 0, 0)
	if err != nil {
		return nil, err
	}
	aquarium.SetRoamTarget(config.Roam.X, config.Roam.Y, config.Roam.Z)
	for i, piezo := range config.Piezos {
		aquarium.SetTapTarget(i, piezo.Target.X, piezo.Target.Y, piezo.Target.Z)
	}

	return aquarium, nil
}
