//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/servo"
)

// Servo pulse range for the tank's hobby servos, Arduino-compatible.
const (
	servoMinPulseUS = 544
	servoMaxPulseUS = 2400
)

// ServoDriver drives hobby servos over the RP2040 PWM slices. GPIO pin
// N sits on slice (N>>1)&7 with two channels per slice, so one
// servo.Array is shared per slice.
type ServoDriver struct {
	arrays map[uint8]servo.Array
	servos map[int]servo.Servo
	last   map[int]int
}

func NewServoDriver() *ServoDriver {
	return &ServoDriver{
		arrays: make(map[uint8]servo.Array),
		servos: make(map[int]servo.Servo),
		last:   make(map[int]int),
	}
}

// ServoWrite commands an angle, 0 to 180, mapped linearly onto the
// pulse range. Lines configure lazily on first use.
func (d *ServoDriver) ServoWrite(line int, angle int) {
	if angle < 0 {
		angle = 0
	}
	if angle > 180 {
		angle = 180
	}

	s, ok := d.servos[line]
	if !ok {
		var err error
		s, err = d.configure(line)
		if err != nil {
			return
		}
		d.servos[line] = s
	}

	us := servoMinPulseUS + angle*(servoMaxPulseUS-servoMinPulseUS)/180
	s.SetMicroseconds(int16(us))
	d.last[line] = angle
}

// Last returns the last angle commanded on a line, 90 before any
// command.
func (d *ServoDriver) Last(line int) int {
	if v, ok := d.last[line]; ok {
		return v
	}
	return 90
}

func (d *ServoDriver) configure(line int) (servo.Servo, error) {
	sliceNum := uint8((line >> 1) & 0x7)

	array, ok := d.arrays[sliceNum]
	if !ok {
		var err error
		array, err = servo.NewArray(pwmForSlice(sliceNum))
		if err != nil {
			return servo.Servo{}, err
		}
		d.arrays[sliceNum] = array
	}

	return array.Add(machine.Pin(line))
}

// pwmForSlice returns the PWM peripheral for a slice number. TinyGo
// defines PWM0-PWM7 as globals of an unexported type; the servo
// package's PWM interface abstracts over that.
func pwmForSlice(sliceNum uint8) servo.PWM {
	switch sliceNum {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		// Unreachable with proper masking
		return machine.PWM0
	}
}
