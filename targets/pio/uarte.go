// Package pio runs the DSO logger on RP2040/RP2350 boards, which have no
// UARTE. A PIO state machine shifts out 8N1 frames and the CPU plays the
// part of the DMA engine: bytes are moved into the TX FIFO whenever the
// logger polls an event register.
package pio

import (
	"sync"

	"dso/core"
)

// txFIFO is the part of a PIO state machine the transmitter feeds
type txFIFO interface {
	IsTxFIFOFull() bool
	IsTxFIFOEmpty() bool
	TxPut(uint32)
}

// stateMachine is a UART TX program bound to one pin
type stateMachine interface {
	txFIFO
	Start(pin, baud uint32) error
	Stop()
}

// UARTE implements core.UARTE on top of a PIO UART TX state machine
type UARTE struct {
	mu sync.Mutex
	sm stateMachine

	txPin     uint32
	connected bool
	txd       []byte
	maxcnt    uint32
	baudReg   uint32
	enable    uint32
	err       error

	// latched transmission
	pending []byte
	pos     int
	busy    bool

	txStarted bool
	endTX     bool
}

func newUARTE(sm stateMachine) *UARTE {
	return &UARTE{sm: sm}
}

func (u *UARTE) SetPinSelect(line core.PinLine, pin uint32, connect bool) {
	if line != core.PinTXD {
		return
	}
	u.mu.Lock()
	u.txPin = pin
	u.connected = connect
	u.mu.Unlock()
}

func (u *UARTE) SetTXDPtr(buf []byte) {
	u.mu.Lock()
	u.txd = buf
	u.mu.Unlock()
}

func (u *UARTE) SetTXDMaxCnt(n uint32) {
	u.mu.Lock()
	u.maxcnt = n
	u.mu.Unlock()
}

func (u *UARTE) SetBaudRate(reg uint32) {
	u.mu.Lock()
	u.baudReg = reg
	u.mu.Unlock()
}

// SetEnable starts the state machine when v is core.EnableUARTE and stops
// it for any other value. A start failure leaves the peripheral disabled.
func (u *UARTE) SetEnable(v uint32) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if v != core.EnableUARTE {
		if u.enable == core.EnableUARTE {
			u.sm.Stop()
		}
		u.enable = v
		return
	}
	if u.enable == core.EnableUARTE {
		return
	}
	if !u.connected {
		u.err = errNoTXPin
		return
	}
	baud, ok := core.NominalBaudRate(u.baudReg)
	if !ok {
		u.err = core.ErrUnsupportedBaudRate
		return
	}
	if err := u.sm.Start(u.txPin, baud); err != nil {
		u.err = err
		return
	}
	u.err = nil
	u.enable = v
}

func (u *UARTE) Enable() uint32 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.enable
}

func (u *UARTE) EventTXStarted() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.txStarted
}

func (u *UARTE) ClearEventTXStarted() {
	u.mu.Lock()
	u.txStarted = false
	u.mu.Unlock()
}

// EventEndTX moves pending bytes into the FIFO before reporting.
// ENDTX is raised once every byte has left the FIFO.
func (u *UARTE) EventEndTX() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pump()
	return u.endTX
}

func (u *UARTE) ClearEventEndTX() {
	u.mu.Lock()
	u.endTX = false
	u.mu.Unlock()
}

func (u *UARTE) TriggerStartTX() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.enable != core.EnableUARTE {
		return
	}
	n := min(int(u.maxcnt), len(u.txd))
	u.pending = u.txd[:n]
	u.pos = 0
	u.busy = true
	u.txStarted = true
	u.pump()
}

// Err returns the reason the last enable attempt failed, if any
func (u *UARTE) Err() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.err
}

func (u *UARTE) pump() {
	if !u.busy {
		return
	}
	for u.pos < len(u.pending) && !u.sm.IsTxFIFOFull() {
		u.sm.TxPut(uint32(u.pending[u.pos]))
		u.pos++
	}
	if u.pos == len(u.pending) && u.sm.IsTxFIFOEmpty() {
		u.pending = nil
		u.busy = false
		u.endTX = true
	}
}
