package probe

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"dso/host/serial"
	"dso/protocol"
)

// Output formats for a port
const (
	FormatText = "text" // newline-delimited text
	FormatHex  = "hex"  // one hex dump per packet
	FormatU8   = "u8"
	FormatU16  = "u16" // big-endian
	FormatU32  = "u32" // big-endian
)

var formatWidths = map[string]int{
	FormatU8:  1,
	FormatU16: 2,
	FormatU32: 4,
}

// PortConfig describes how one port is shown
type PortConfig struct {
	Name   string `json:"name"`
	Format string `json:"format"`
}

// Config is the probe configuration, usually loaded from JSON
type Config struct {
	Device  string `json:"device"`
	Baud    int    `json:"baud"`
	Backend string `json:"backend"`
	Framing string `json:"framing"`

	// Ports lists the ports to show. Ports missing from the map are
	// filtered out; an empty map shows every port as text.
	Ports map[uint8]PortConfig `json:"ports"`

	// LineTimeoutMs flushes a partial text line after this much silence
	LineTimeoutMs int `json:"line_timeout_ms"`

	ReadTimeoutMs int `json:"read_timeout_ms"`
}

// LoadConfig parses a JSON configuration and fills in defaults
func LoadConfig(jsonData []byte) (*Config, error) {
	var config Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse probe config: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig(device string) *Config {
	config := &Config{Device: device}
	applyDefaults(config)
	return config
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(config *Config) {
	if config.Baud == 0 {
		config.Baud = serial.DefaultBaud
	}
	if config.Backend == "" {
		config.Backend = serial.BackendTarm
	}
	if config.Framing == "" {
		config.Framing = protocol.FramingHeader.String()
	}
	if config.LineTimeoutMs == 0 {
		config.LineTimeoutMs = 500
	}
	if config.ReadTimeoutMs == 0 {
		config.ReadTimeoutMs = 100
	}

	if len(config.Ports) == 0 {
		config.Ports = make(map[uint8]PortConfig, protocol.PortMax+1)
		for port := uint8(0); port <= protocol.PortMax; port++ {
			config.Ports[port] = PortConfig{}
		}
	}
	for port, pc := range config.Ports {
		if pc.Name == "" {
			pc.Name = fmt.Sprintf("%d", port)
		}
		if pc.Format == "" {
			pc.Format = FormatText
		}
		config.Ports[port] = pc
	}
}

// Validate checks values applyDefaults cannot repair
func (c *Config) Validate() error {
	if _, ok := protocol.ParseFraming(c.Framing); !ok {
		return fmt.Errorf("%w: %q", ErrBadFraming, c.Framing)
	}
	for port, pc := range c.Ports {
		if port > protocol.PortMax {
			return fmt.Errorf("%w: %d", ErrBadPort, port)
		}
		if pc.Format != FormatText && pc.Format != FormatHex && formatWidths[pc.Format] == 0 {
			return fmt.Errorf("%w: port %d format %q", ErrBadFormat, port, pc.Format)
		}
	}
	return nil
}

// FramingMode returns the parsed framing
func (c *Config) FramingMode() protocol.Framing {
	framing, _ := protocol.ParseFraming(c.Framing)
	return framing
}

// PortMask returns the listened ports as a bit mask
func (c *Config) PortMask() uint32 {
	var mask uint32
	for port := range c.Ports {
		mask |= 1 << port
	}
	return mask
}

// PortList returns the listened ports in ascending order
func (c *Config) PortList() []uint8 {
	ports := make([]uint8, 0, len(c.Ports))
	for port := range c.Ports {
		ports = append(ports, port)
	}
	slices.Sort(ports)
	return ports
}

// SerialConfig returns the serial settings for Device
func (c *Config) SerialConfig() *serial.Config {
	cfg := serial.DefaultConfig(c.Device)
	cfg.Baud = c.Baud
	cfg.Backend = c.Backend
	cfg.ReadTimeout = c.ReadTimeoutMs
	return cfg
}

func (c *Config) lineTimeout() time.Duration {
	return time.Duration(c.LineTimeoutMs) * time.Millisecond
}
