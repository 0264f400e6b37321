// Nonvolatile calibration record codec
package core

import (
	"encoding/binary"
	"errors"
	"math"
)

// Record layout, little-endian:
//
//	[0]     magic
//	[1:3]   zeroValue      int16
//	[3:7]   position       int32
//	[7:11]  countsPerUnit  float32
//	[11]    XOR checksum over bytes 0..10
const (
	calRecordMagic = 0xA6
	calRecordSize  = 12
)

// calRecord is the persisted calibration state of one continuous-rotation
// servo.
type calRecord struct {
	ZeroValue     int16
	Position      int32
	CountsPerUnit float32
}

// encode serializes the record, including magic and checksum, into buf.
// buf must be at least calRecordSize bytes.
func (r *calRecord) encode(buf []byte) {
	buf[0] = calRecordMagic
	binary.LittleEndian.PutUint16(buf[1:3], uint16(r.ZeroValue))
	binary.LittleEndian.PutUint32(buf[3:7], uint32(r.Position))
	binary.LittleEndian.PutUint32(buf[7:11], math.Float32bits(r.CountsPerUnit))
	buf[11] = xorChecksum(buf[:11])
}

// decode validates magic and checksum and fills the record from buf.
func (r *calRecord) decode(buf []byte) error {
	if len(buf) < calRecordSize {
		return errors.New("calibration record truncated")
	}
	if buf[0] != calRecordMagic {
		return errors.New("calibration record bad magic")
	}
	if buf[11] != xorChecksum(buf[:11]) {
		return errors.New("calibration record bad checksum")
	}
	r.ZeroValue = int16(binary.LittleEndian.Uint16(buf[1:3]))
	r.Position = int32(binary.LittleEndian.Uint32(buf[3:7]))
	r.CountsPerUnit = math.Float32frombits(binary.LittleEndian.Uint32(buf[7:11]))
	return nil
}

// xorChecksum folds data into one byte.
func xorChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// crsSlot maps a continuous-rotation servo id to its nonvolatile slot.
// Only the CRS kind persists, so the mapping is the identity.
func crsSlot(id int) int {
	return id
}
