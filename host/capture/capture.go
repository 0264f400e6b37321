// Package capture pulls pot telemetry off an aquarium controller's
// serial console. The firmware prints one sample per line; Reader
// turns any byte stream into samples, Open provides the stream for a
// live rig, and the potlab tool layers sessions and storage on top.
package capture

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Port is the open telemetry link. Closing it, from any goroutine, is
// how a capture run ends: the blocked reader unblocks with an error.
type Port interface {
	io.ReadWriteCloser
}

// Config selects and tunes the serial device.
type Config struct {
	// Device is the serial device path, e.g. "/dev/ttyACM0" or "COM3".
	Device string

	// Baud is the line rate. USB CDC consoles ignore it.
	Baud int

	// ReadTimeout bounds each read, in milliseconds, so a closed port
	// is noticed promptly. Zero blocks forever.
	ReadTimeout int
}

// DefaultConfig describes the controller's USB CDC console.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}

// Open opens the serial device described by cfg.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil capture config")
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return port, nil
}
