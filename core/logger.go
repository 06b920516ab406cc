package core

import (
	"sync"
	"sync/atomic"

	"dso/protocol"
)

// Initialization state of the UARTE (one-way)
const (
	stateUninit uint32 = iota
	stateInit
)

// Logger pushes debug output through a UARTE without waiting for anyone to
// listen. It owns the peripheral and the transmit buffer for the lifetime
// of the process; construct one per physical UARTE and share the pointer.
//
// All methods are safe to call from any goroutine. On TinyGo the transmit
// path also masks interrupts, so it may be called from interrupt handlers.
type Logger struct {
	periph  UARTE
	buf     *LogBuffer
	ports   *PortMask
	cfg     Config
	baudReg uint32
	chunk   int

	state uint32 // atomic, stateUninit -> stateInit

	// Excludes concurrent writers from the buffer and TX registers
	mu sync.Mutex
}

// NewLogger creates a logger on periph. No register is touched until the
// first write.
func NewLogger(periph UARTE, cfg Config) (*Logger, error) {
	baudReg, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	return &Logger{
		periph:  periph,
		buf:     NewLogBuffer(cfg.BufSize),
		ports:   cfg.Ports,
		cfg:     cfg,
		baudReg: baudReg,
		chunk:   protocol.ChunkSize(cfg.BufSize, cfg.Framing),
	}, nil
}

// MustNewLogger is like NewLogger but panics on a configuration error
func MustNewLogger(periph UARTE, cfg Config) *Logger {
	l, err := NewLogger(periph, cfg)
	if err != nil {
		panic("dso: " + err.Error())
	}
	return l
}

// WriteBytes writes data to port. It is fire-and-forget: it returns once the
// last chunk has been handed to the UARTE, busy-waiting for every earlier
// chunk to leave the buffer. Empty data is a no-op. In raw framing the port
// is ignored.
func (l *Logger) WriteBytes(port uint8, data []byte) {
	protocol.Chunks(data, l.chunk, func(chunk []byte) {
		l.writePacket(port, chunk)
	})
}

// Flush blocks until the transmission in flight, if any, has completed.
// It runs in the same critical section as a write, so a packet being
// staged by another writer is either fully started or not yet begun.
// There is no timeout: a UARTE that never raises ENDTX blocks forever.
func (l *Logger) Flush() {
	state := disableInterrupts()
	l.mu.Lock()
	l.flush()
	l.mu.Unlock()
	restoreInterrupts(state)
}

// IsEnabled reports whether the debug probe is listening on port
func (l *Logger) IsEnabled(port uint8) bool {
	return l.ports.Enabled(port)
}

// IsInitialized reports whether the UARTE configuration sequence has run
func (l *Logger) IsInitialized() bool {
	if l.cfg.InitCheck == InitCheckReadback {
		return l.periph.Enable() == EnableUARTE
	}
	return atomic.LoadUint32(&l.state) == stateInit
}

// ChunkSize returns the maximum payload of a single transmission
func (l *Logger) ChunkSize() int {
	return l.chunk
}

// Framing returns the wire contract in use
func (l *Logger) Framing() protocol.Framing {
	return l.cfg.Framing
}

// writePacket transmits one chunk inside the critical section
func (l *Logger) writePacket(port uint8, chunk []byte) {
	state := disableInterrupts()
	l.mu.Lock()

	l.ensureInitialized()
	// The UARTE may still be reading the previous packet
	l.flush()

	buf := l.buf.Bytes()
	var count int
	if l.cfg.Framing == protocol.FramingRaw {
		count = protocol.FillRaw(buf, chunk)
		l.periph.SetTXDPtr(buf)
	} else {
		count = protocol.FillPacket(buf, port, chunk)
	}

	l.periph.SetTXDMaxCnt(uint32(count))
	l.periph.ClearEventTXStarted()
	l.periph.ClearEventEndTX()
	l.periph.TriggerStartTX()

	l.mu.Unlock()
	restoreInterrupts(state)
}

// ensureInitialized runs the UARTE configuration sequence once.
// Must be called with l.mu held.
func (l *Logger) ensureInitialized() {
	if l.IsInitialized() {
		return
	}

	l.periph.SetPinSelect(PinTXD, l.cfg.PinNumber, true)
	// Transmit only
	l.periph.SetPinSelect(PinRXD, 0, false)
	l.periph.SetPinSelect(PinRTS, 0, false)
	l.periph.SetPinSelect(PinCTS, 0, false)
	l.periph.SetTXDPtr(l.buf.Bytes())
	l.periph.SetBaudRate(l.baudReg)
	l.periph.SetEnable(EnableUARTE)

	atomic.StoreUint32(&l.state, stateInit)
}

// flush waits for ENDTX if a transmission was started.
// Must be called with l.mu held.
func (l *Logger) flush() {
	if !l.IsInitialized() {
		// Nothing was ever sent
		return
	}
	if !l.periph.EventTXStarted() {
		// Idle
		return
	}
	for !l.periph.EventEndTX() {
		spinPause()
	}
}
