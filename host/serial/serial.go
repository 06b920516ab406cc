package serial

import (
	"io"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (github.com/tarm/serial, the default)
// - go.bug.st/serial, which can also discard pending input
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush discards input that has not been read yet
	Flush() error
}

// Backend names accepted in Config.Backend
const (
	BackendTarm  = "tarm"
	BackendBugst = "bugst"
)

// DefaultBaud is the line rate a DSO target transmits at unless configured
// otherwise
const DefaultBaud = 115200

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate of the target's logger
	Baud int

	// Read timeout in milliseconds (0 = blocking). Only the tarm backend
	// honours it.
	ReadTimeout int

	// Backend selects the serial library; empty means BackendTarm
	Backend string
}

// DefaultConfig returns a default configuration for a DSO probe
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100, // 100ms read timeout
		Backend:     BackendTarm,
	}
}
