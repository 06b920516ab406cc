//go:build !wasm

package serial

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
	bugst "go.bug.st/serial"
)

var ErrUnknownBackend = errors.New("unknown serial backend")

// NativePort wraps the tarm/serial implementation
type NativePort struct {
	port *serial.Port
	cfg  *Config
}

// Open opens a serial port with the backend named in cfg
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.Backend {
	case "", BackendTarm:
		return openTarm(cfg)
	case BackendBugst:
		return openBugst(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

func openTarm(cfg *Config) (Port, error) {
	serialConfig := &serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	}

	port, err := serial.OpenPort(serialConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	return &NativePort{
		port: port,
		cfg:  cfg,
	}, nil
}

// Read reads data from the serial port. A read that times out with no data
// returns 0, nil rather than io.EOF so callers keep polling.
func (p *NativePort) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}

// Write writes data to the serial port
func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close closes the serial port
func (p *NativePort) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}

// Flush discards unread input
func (p *NativePort) Flush() error {
	return p.port.Flush()
}

// BugstPort wraps go.bug.st/serial
type BugstPort struct {
	port bugst.Port
}

func openBugst(cfg *Config) (Port, error) {
	port, err := bugst.Open(cfg.Device, &bugst.Mode{BaudRate: cfg.Baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return &BugstPort{port: port}, nil
}

func (p *BugstPort) Read(b []byte) (int, error)  { return p.port.Read(b) }
func (p *BugstPort) Write(b []byte) (int, error) { return p.port.Write(b) }
func (p *BugstPort) Close() error                { return p.port.Close() }

// Flush discards unread input
func (p *BugstPort) Flush() error {
	return p.port.ResetInputBuffer()
}

// ListPorts returns the serial devices present on this machine
func ListPorts() ([]string, error) {
	ports, err := bugst.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}
