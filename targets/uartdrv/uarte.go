// Package uartdrv runs the DSO logger on any byte UART that implements the
// tinygo drivers UART interface. There is no DMA: STARTTX pushes the
// programmed buffer through the driver before returning.
package uartdrv

import (
	"sync"

	"dso/core"

	"tinygo.org/x/drivers"
)

// UARTE adapts a drivers.UART to core.UARTE
type UARTE struct {
	mu     sync.Mutex
	uart   drivers.UART
	txd    []byte
	maxcnt uint32
	baud   uint32
	enable uint32
	txPin  uint32

	txStarted bool
	endTX     bool
	errors    uint32
}

// New wraps uart. Baud rate and pins are owned by the driver; the register
// values the logger writes are only recorded.
func New(uart drivers.UART) *UARTE {
	return &UARTE{uart: uart}
}

func (u *UARTE) SetPinSelect(line core.PinLine, pin uint32, connect bool) {
	if line == core.PinTXD && connect {
		u.mu.Lock()
		u.txPin = pin
		u.mu.Unlock()
	}
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
	u.baud = reg
	u.mu.Unlock()
}

func (u *UARTE) SetEnable(v uint32) {
	u.mu.Lock()
	u.enable = v
	u.mu.Unlock()
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

func (u *UARTE) EventEndTX() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.endTX
}

func (u *UARTE) ClearEventEndTX() {
	u.mu.Lock()
	u.endTX = false
	u.mu.Unlock()
}

// TriggerStartTX writes TXD.MAXCNT bytes of the programmed buffer and
// raises both events. Ignored while the peripheral is disabled.
func (u *UARTE) TriggerStartTX() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.enable != core.EnableUARTE {
		return
	}
	u.txStarted = true
	n := min(int(u.maxcnt), len(u.txd))
	if n > 0 {
		written, err := u.uart.Write(u.txd[:n])
		if err != nil || written != n {
			u.errors++
		}
	}
	u.endTX = true
}

// BaudRegister returns the last value written to BAUDRATE
func (u *UARTE) BaudRegister() uint32 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.baud
}

// TXPin returns the pin connected to TXD, if any
func (u *UARTE) TXPin() uint32 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.txPin
}

// Errors returns how many driver writes failed or came up short
func (u *UARTE) Errors() uint32 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.errors
}
