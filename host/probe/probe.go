// Package probe is the host end of a DSO link: it reads the serial line a
// target logs to, demultiplexes the ports and prints them.
package probe

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dso/host/serial"
	"dso/protocol"
)

// Stats counts what the probe has seen since it connected
type Stats struct {
	Packets  uint64
	Filtered uint64
	Bytes    map[uint8]uint64
	Decoder  protocol.DecoderStats
}

// portState is the per-port reassembly state
type portState struct {
	pending []byte
	touched bool
}

// Probe represents a connection to a DSO target
type Probe struct {
	cfg    *Config
	out    io.Writer
	logger *slog.Logger

	reader *protocol.HostReader

	mu       sync.Mutex
	mask     uint32
	ports    map[uint8]*portState
	packets  uint64
	filtered uint64
	bytes    map[uint8]uint64
}

// New creates a probe (not yet connected) that prints to out
func New(cfg *Config, out io.Writer, logger *slog.Logger) *Probe {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Probe{
		cfg:    cfg,
		out:    out,
		logger: logger,
		mask:   cfg.PortMask(),
		ports:  make(map[uint8]*portState),
		bytes:  make(map[uint8]uint64),
	}
}

// Connect opens the configured serial device
func (p *Probe) Connect() error {
	port, err := serial.Open(p.cfg.SerialConfig())
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	if err := port.Flush(); err != nil {
		p.logger.Warn("could not discard stale input", "device", p.cfg.Device, "err", err)
	}
	p.logger.Info("connected", "device", p.cfg.Device, "baud", p.cfg.Baud, "framing", p.cfg.Framing)
	p.Attach(port)
	return nil
}

// Attach starts decoding from an already open stream
func (p *Probe) Attach(port io.ReadCloser) {
	p.reader = protocol.NewHostReader(port, p.cfg.FramingMode())
}

// Close closes the connection
func (p *Probe) Close() error {
	if p.reader == nil {
		return nil
	}
	return p.reader.Close()
}

// Run prints packets until ctx is cancelled or the stream ends.
// A stream that ends with EOF is not an error.
func (p *Probe) Run(ctx context.Context) error {
	if p.reader == nil {
		return ErrNotConnected
	}

	idle := time.NewTicker(p.cfg.lineTimeout())
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			p.flushAll()
			return ctx.Err()

		case pkt := <-p.reader.Packets():
			p.HandlePacket(pkt)

		case <-idle.C:
			p.flushIdle()

		case <-p.reader.Done():
			p.drain()
			p.flushAll()
			err := p.reader.Err()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// HandlePacket formats one decoded packet
func (p *Probe) HandlePacket(pkt protocol.Packet) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.packets++
	if p.mask&(1<<pkt.Port) == 0 {
		p.filtered++
		return
	}
	p.bytes[pkt.Port] += uint64(len(pkt.Payload))

	pc := p.portConfig(pkt.Port)
	st := p.state(pkt.Port)
	st.touched = true

	switch pc.Format {
	case FormatHex:
		p.emit(pc, hex.EncodeToString(pkt.Payload))

	case FormatText:
		st.pending = append(st.pending, pkt.Payload...)
		for {
			i := bytes.IndexByte(st.pending, '\n')
			if i < 0 {
				break
			}
			p.emit(pc, strings.TrimRight(string(st.pending[:i]), "\r"))
			st.pending = st.pending[i+1:]
		}

	default:
		width := formatWidths[pc.Format]
		st.pending = append(st.pending, pkt.Payload...)
		for len(st.pending) >= width {
			p.emit(pc, fmt.Sprintf("%d", decodeUint(st.pending[:width])))
			st.pending = st.pending[width:]
		}
	}
}

// SetPortEnabled shows or hides a port at runtime
func (p *Probe) SetPortEnabled(port uint8, enabled bool) error {
	if port > protocol.PortMax {
		return fmt.Errorf("%w: %d", ErrBadPort, port)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if enabled {
		p.mask |= 1 << port
	} else {
		p.mask &^= 1 << port
	}
	return nil
}

// PortMask returns the ports currently shown
func (p *Probe) PortMask() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mask
}

// Stats returns a snapshot of the counters
func (p *Probe) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Stats{
		Packets:  p.packets,
		Filtered: p.filtered,
		Bytes:    make(map[uint8]uint64, len(p.bytes)),
	}
	for port, n := range p.bytes {
		s.Bytes[port] = n
	}
	if p.reader != nil {
		s.Decoder = p.reader.Stats()
	}
	return s
}

// PrintStats prints a summary of the counters
func (p *Probe) PrintStats(w io.Writer) {
	s := p.Stats()
	fmt.Fprintln(w, "=== DSO probe ===")
	fmt.Fprintf(w, "Packets:  %d (%d filtered)\n", s.Packets, s.Filtered)
	fmt.Fprintf(w, "Desyncs:  %d\n", s.Decoder.Desyncs)
	fmt.Fprintf(w, "Dropped:  %d bytes\n", s.Decoder.Dropped)
	for _, port := range p.cfg.PortList() {
		if n, ok := s.Bytes[port]; ok {
			fmt.Fprintf(w, "  [%s] %d bytes\n", p.portConfig(port).Name, n)
		}
	}
}

// drain handles packets decoded before the read loop stopped
func (p *Probe) drain() {
	for {
		select {
		case pkt := <-p.reader.Packets():
			p.HandlePacket(pkt)
		default:
			return
		}
	}
}

// flushIdle emits partial text lines that saw no data since the last tick
func (p *Probe) flushIdle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for port, st := range p.ports {
		if !st.touched && len(st.pending) > 0 {
			p.flushPort(port, st)
		}
		st.touched = false
	}
}

func (p *Probe) flushAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for port, st := range p.ports {
		if len(st.pending) > 0 {
			p.flushPort(port, st)
		}
	}
}

func (p *Probe) flushPort(port uint8, st *portState) {
	pc := p.portConfig(port)
	if pc.Format == FormatText {
		p.emit(pc, string(st.pending))
	} else {
		p.logger.Debug("discarding partial value", "port", port, "bytes", len(st.pending))
	}
	st.pending = st.pending[:0]
}

func (p *Probe) emit(pc PortConfig, text string) {
	fmt.Fprintf(p.out, "[%s] %s\n", pc.Name, text)
}

func (p *Probe) state(port uint8) *portState {
	st, ok := p.ports[port]
	if !ok {
		st = &portState{}
		p.ports[port] = st
	}
	return st
}

// portConfig falls back to a text port for ports enabled at runtime
func (p *Probe) portConfig(port uint8) PortConfig {
	if pc, ok := p.cfg.Ports[port]; ok {
		return pc
	}
	return PortConfig{Name: fmt.Sprintf("%d", port), Format: FormatText}
}

func decodeUint(b []byte) uint32 {
	switch len(b) {
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(binary.BigEndian.Uint16(b))
	default:
		return binary.BigEndian.Uint32(b)
	}
}
