package core

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Host shim: an in-memory UARTE for hosted builds and tests, no device deps.

// HostPinSelect is the simulated content of one PSEL register
type HostPinSelect struct {
	Pin     uint32
	Connect bool
	Written bool
}

// HostRegisters is a snapshot of the simulated register file.
// Snapshots are comparable with ==.
type HostRegisters struct {
	PinSelect [pinLineCount]HostPinSelect
	TXDPtr    *byte
	TXDMaxCnt uint32
	BaudRate  uint32
	Enable    uint32
}

// HostUARTE simulates the transmit half of a UARTE. STARTTX raises
// TXSTARTED immediately; the "DMA" then reads TXD.MAXCNT bytes from the
// programmed buffer when the transmission finishes, hands them to the wire
// and raises ENDTX. With a zero byte time that all happens inside
// TriggerStartTX.
type HostUARTE struct {
	mu   sync.Mutex
	regs HostRegisters
	txd  []byte

	txStarted atomic.Bool
	endTX     atomic.Bool
	starts    uint32

	byteTime time.Duration

	wireMutex   sync.Mutex
	wire        io.Writer
	transmitted [][]byte

	wg sync.WaitGroup
}

// NewHostUARTE creates a simulated UARTE. byteTime is the time the line
// needs per byte (see CharTime); wire receives transmitted bytes and may
// be nil.
func NewHostUARTE(byteTime time.Duration, wire io.Writer) *HostUARTE {
	return &HostUARTE{
		byteTime: byteTime,
		wire:     wire,
	}
}

// CharTime returns the duration of one 8N1 character at a nominal baud rate
func CharTime(baud uint32) time.Duration {
	if baud == 0 {
		return 0
	}
	return 10 * time.Second / time.Duration(baud)
}

func (u *HostUARTE) SetPinSelect(line PinLine, pin uint32, connect bool) {
	u.mu.Lock()
	u.regs.PinSelect[line] = HostPinSelect{Pin: pin, Connect: connect, Written: true}
	u.mu.Unlock()
}

func (u *HostUARTE) SetTXDPtr(buf []byte) {
	u.mu.Lock()
	u.txd = buf
	u.regs.TXDPtr = nil
	if len(buf) > 0 {
		u.regs.TXDPtr = &buf[0]
	}
	u.mu.Unlock()
}

func (u *HostUARTE) SetTXDMaxCnt(n uint32) {
	u.mu.Lock()
	u.regs.TXDMaxCnt = n
	u.mu.Unlock()
}

func (u *HostUARTE) SetBaudRate(reg uint32) {
	u.mu.Lock()
	u.regs.BaudRate = reg
	u.mu.Unlock()
}

func (u *HostUARTE) SetEnable(v uint32) {
	u.mu.Lock()
	u.regs.Enable = v
	u.mu.Unlock()
}

func (u *HostUARTE) Enable() uint32 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.regs.Enable
}

func (u *HostUARTE) EventTXStarted() bool { return u.txStarted.Load() }
func (u *HostUARTE) ClearEventTXStarted() { u.txStarted.Store(false) }
func (u *HostUARTE) EventEndTX() bool     { return u.endTX.Load() }
func (u *HostUARTE) ClearEventEndTX()     { u.endTX.Store(false) }

// TriggerStartTX starts a transmission. A disabled UARTE ignores the task.
func (u *HostUARTE) TriggerStartTX() {
	u.mu.Lock()
	if u.regs.Enable != EnableUARTE {
		u.mu.Unlock()
		return
	}
	u.starts++
	buf := u.txd
	n := int(min(u.regs.TXDMaxCnt, uint32(len(buf))))
	u.txStarted.Store(true)
	u.mu.Unlock()

	if u.byteTime == 0 {
		u.complete(buf, n)
		return
	}

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		time.Sleep(u.byteTime * time.Duration(n))
		u.complete(buf, n)
	}()
}

// complete performs the DMA read and raises ENDTX
func (u *HostUARTE) complete(buf []byte, n int) {
	out := make([]byte, n)
	copy(out, buf[:n])

	u.wireMutex.Lock()
	u.transmitted = append(u.transmitted, out)
	if u.wire != nil {
		u.wire.Write(out)
	}
	u.wireMutex.Unlock()

	u.endTX.Store(true)
}

// Wait blocks until no simulated transmission is in flight
func (u *HostUARTE) Wait() {
	u.wg.Wait()
}

// Registers returns a snapshot of the register file
func (u *HostUARTE) Registers() HostRegisters {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.regs
}

// StartCount returns how many times STARTTX was accepted
func (u *HostUARTE) StartCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return int(u.starts)
}

// Transmitted returns every completed transmission in order
func (u *HostUARTE) Transmitted() [][]byte {
	u.wireMutex.Lock()
	defer u.wireMutex.Unlock()
	out := make([][]byte, len(u.transmitted))
	copy(out, u.transmitted)
	return out
}

// WireBytes returns all transmitted bytes concatenated
func (u *HostUARTE) WireBytes() []byte {
	var out []byte
	for _, t := range u.Transmitted() {
		out = append(out, t...)
	}
	return out
}
