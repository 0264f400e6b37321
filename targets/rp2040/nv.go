//go:build rp2040

package main

import "machine"

// nvSlotSize is the byte span reserved per slot. Calibration records
// are smaller; the rest stays erased.
const nvSlotSize = 16

// FlashStore keeps the nonvolatile slots in the flash data area after
// the program image, one erase block shared by all slots. Writes
// rewrite the whole block through a RAM image. Calibration saves only
// fire at motion-settled moments, so wear is not a concern.
type FlashStore struct {
	buf    []byte
	loaded bool
}

func NewFlashStore() *FlashStore {
	return &FlashStore{}
}

func (f *FlashStore) load() bool {
	if f.loaded {
		return true
	}
	f.buf = make([]byte, int(machine.Flash.EraseBlockSize()))
	if _, err := machine.Flash.ReadAt(f.buf, 0); err != nil {
		f.buf = nil
		return false
	}
	f.loaded = true
	return true
}

func (f *FlashStore) slotRange(slot int, n int) (int, bool) {
	if slot < 0 || n > nvSlotSize {
		return 0, false
	}
	off := slot * nvSlotSize
	if off+n > len(f.buf) {
		return 0, false
	}
	return off, true
}

// NVRead fills buf from a slot. Erased flash reads back 0xFF, which no
// valid record starts with, so a blank chip simply looks uncalibrated.
func (f *FlashStore) NVRead(slot int, buf []byte) bool {
	if !f.load() {
		return false
	}
	off, ok := f.slotRange(slot, len(buf))
	if !ok {
		return false
	}
	copy(buf, f.buf[off:])
	return true
}

// NVWrite stores buf to a slot and flushes the block.
func (f *FlashStore) NVWrite(slot int, buf []byte) bool {
	if !f.load() {
		return false
	}
	off, ok := f.slotRange(slot, len(buf))
	if !ok {
		return false
	}
	copy(f.buf[off:off+len(buf)], buf)

	if err := machine.Flash.EraseBlocks(0, 1); err != nil {
		return false
	}
	if _, err := machine.Flash.WriteAt(f.buf, 0); err != nil {
		return false
	}
	return true
}
