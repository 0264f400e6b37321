// Ambient light sensing
package core

import "errors"

// LightSensor is a threshold wrapper over an analog line.
type LightSensor struct {
	ID   int // Entity id
	Line int // Analog input line
}

// ConfigLightSensor creates the light sensor with the given id.
func ConfigLightSensor(id, line int) (*LightSensor, error) {
	if id < 0 || id >= MaxLightSensor {
		return nil, errors.New("light sensor id out of range")
	}
	s := &LightSensor{ID: id, Line: line}
	lightSensors[id] = s
	return s, nil
}

// GetLightSensor returns the sensor with the given id, or nil if never
// configured.
func GetLightSensor(id int) *LightSensor {
	if id < 0 || id >= MaxLightSensor {
		return nil
	}
	return lightSensors[id]
}

// Read returns the raw analog reading.
func (s *LightSensor) Read() int {
	return MustAnalog().AnalogRead(s.Line)
}

// IsLight reports whether the environment is lit: raw strictly above
// MinLightVal. No hysteresis here; the aquarium phase supplies it.
func (s *LightSensor) IsLight() bool {
	return s.Read() > MinLightVal
}
