// Piezo tap sensing
// Single sensors threshold an analog line; groups scan members in
// insertion order and report the first tap. Temporal hysteresis is the
// aquarium state machine's job, not the sensor's.
package core

import "errors"

// PiezoSensor is a threshold wrapper over an analog line.
type PiezoSensor struct {
	ID   int // Entity id
	Line int // Analog input line
}

// ConfigPiezo creates the piezo sensor with the given id.
func ConfigPiezo(id, line int) (*PiezoSensor, error) {
	if id < 0 || id >= MaxPiezos {
		return nil, errors.New("piezo id out of range")
	}
	p := &PiezoSensor{ID: id, Line: line}
	piezos[id] = p
	return p, nil
}

// GetPiezo returns the sensor with the given id, or nil if never
// configured.
func GetPiezo(id int) *PiezoSensor {
	if id < 0 || id >= MaxPiezos {
		return nil
	}
	return piezos[id]
}

// Read returns the raw analog reading.
func (p *PiezoSensor) Read() int {
	return MustAnalog().AnalogRead(p.Line)
}

// Fired reports a tap: raw strictly above PiezoMinTapVal.
func (p *PiezoSensor) Fired() bool {
	return p.Read() > PiezoMinTapVal
}

// PiezoSensorGroup scans an ordered set of piezo sensors.
type PiezoSensorGroup struct {
	ID      int // Entity id
	members [MaxPiezos]int
	count   int
}

// ConfigPiezoGroup creates an empty group with the given id.
func ConfigPiezoGroup(id int) (*PiezoSensorGroup, error) {
	if id < 0 || id >= MaxPiezoGroups {
		return nil, errors.New("piezo group id out of range")
	}
	g := &PiezoSensorGroup{ID: id}
	piezoGroups[id] = g
	return g, nil
}

// GetPiezoGroup returns the group with the given id, or nil if never
// configured.
func GetPiezoGroup(id int) *PiezoSensorGroup {
	if id < 0 || id >= MaxPiezoGroups {
		return nil
	}
	return piezoGroups[id]
}

// AddSensor appends a piezo sensor id to the scan order.
func (g *PiezoSensorGroup) AddSensor(sensorID int) error {
	if g.count >= MaxPiezos {
		return errors.New("piezo group full")
	}
	g.members[g.count] = sensorID
	g.count++
	return nil
}

// Len returns the number of member sensors.
func (g *PiezoSensorGroup) Len() int {
	return g.count
}

// Tapped scans members in insertion order and returns the id of the
// first sensor registering a tap, or None if no member fires. Members
// whose ids resolve to no sensor are skipped.
func (g *PiezoSensorGroup) Tapped() int {
	for i := 0; i < g.count; i++ {
		p := GetPiezo(g.members[i])
		if p == nil {
			continue
		}
		if p.Fired() {
			return p.ID
		}
	}
	return None
}
