//go:build rp2040

package main

import "time"

// SysClock rides the runtime's hardware timer. Calibration is the only
// core path that blocks on it.
type SysClock struct {
	start time.Time
}

func NewSysClock() *SysClock {
	return &SysClock{start: time.Now()}
}

func (c *SysClock) Millis() uint64 {
	return uint64(time.Since(c.start).Milliseconds())
}

func (c *SysClock) Sleep(ms int) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
