package core

import (
	"errors"
	"fmt"

	"dso/protocol"
)

var ErrBufferTooSmall = errors.New("log buffer too small")

// InitCheck selects how the logger decides the UARTE is configured
type InitCheck uint8

const (
	// InitCheckFlag tracks initialization in an atomic state flag
	InitCheckFlag InitCheck = iota
	// InitCheckReadback reads ENABLE back and compares with EnableUARTE
	InitCheckReadback
)

const (
	DefaultBaudRate = 115_200
	DefaultBufSize  = 64
)

// Config holds the static logger configuration
type Config struct {
	// Nominal output baud rate, must be in the BaudRate table
	BaudRate uint32

	// Output pin number for TXD
	PinNumber uint32

	// Transmit buffer size in bytes
	BufSize int

	// Wire contract (framed multi-port or raw single stream)
	Framing protocol.Framing

	// Initialization check strategy
	InitCheck InitCheck

	// Probe port mask; nil means ProbePorts
	Ports *PortMask
}

// DefaultConfig returns the default configuration for an output pin
func DefaultConfig(pin uint32) Config {
	return Config{
		BaudRate:  DefaultBaudRate,
		PinNumber: pin,
		BufSize:   DefaultBufSize,
		Framing:   protocol.FramingHeader,
		InitCheck: InitCheckFlag,
	}
}

// validate checks the configuration and resolves the baud register value
func (c *Config) validate() (uint32, error) {
	baudReg, err := BaudRate(c.BaudRate)
	if err != nil {
		return 0, fmt.Errorf("baud rate %d: %w", c.BaudRate, err)
	}

	minSize := 1
	if c.Framing == protocol.FramingHeader {
		minSize = protocol.PacketHeaderSize + 1
	}
	if c.BufSize < minSize {
		return 0, fmt.Errorf("buf size %d (min %d): %w", c.BufSize, minSize, ErrBufferTooSmall)
	}

	if c.Ports == nil {
		c.Ports = &ProbePorts
	}
	return baudReg, nil
}
