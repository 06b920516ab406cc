//go:build nrf52840 || nrf52833 || nrf52

// Package nrf binds the DSO logger to a hardware UARTE instance
package nrf

import (
	"device/nrf"
	"unsafe"

	"dso/core"
)

// PSEL value with the CONNECT bit set and every pin bit high
const pselDisconnected = 0xFFFF_FFFF

// UARTE drives one UARTE instance through its registers
type UARTE struct {
	regs *nrf.UARTE_Type
}

// New wraps a UARTE register block, usually nrf.UARTE0
func New(regs *nrf.UARTE_Type) *UARTE {
	return &UARTE{regs: regs}
}

func (u *UARTE) SetPinSelect(line core.PinLine, pin uint32, connect bool) {
	value := uint32(pselDisconnected)
	if connect {
		value = pin
	}
	switch line {
	case core.PinTXD:
		u.regs.PSEL.TXD.Set(value)
	case core.PinRXD:
		u.regs.PSEL.RXD.Set(value)
	case core.PinRTS:
		u.regs.PSEL.RTS.Set(value)
	case core.PinCTS:
		u.regs.PSEL.CTS.Set(value)
	}
}

// SetTXDPtr points EasyDMA at buf. buf must live in RAM.
func (u *UARTE) SetTXDPtr(buf []byte) {
	if len(buf) == 0 {
		return
	}
	u.regs.TXD.PTR.Set(uint32(uintptr(unsafe.Pointer(&buf[0]))))
}

func (u *UARTE) SetTXDMaxCnt(n uint32) { u.regs.TXD.MAXCNT.Set(n) }
func (u *UARTE) SetBaudRate(reg uint32) { u.regs.BAUDRATE.Set(reg) }
func (u *UARTE) SetEnable(v uint32)     { u.regs.ENABLE.Set(v) }
func (u *UARTE) Enable() uint32         { return u.regs.ENABLE.Get() }

func (u *UARTE) EventTXStarted() bool { return u.regs.EVENTS_TXSTARTED.Get() != 0 }
func (u *UARTE) ClearEventTXStarted() { u.regs.EVENTS_TXSTARTED.Set(0) }
func (u *UARTE) EventEndTX() bool     { return u.regs.EVENTS_ENDTX.Get() != 0 }
func (u *UARTE) ClearEventEndTX()     { u.regs.EVENTS_ENDTX.Set(0) }
func (u *UARTE) TriggerStartTX()      { u.regs.TASKS_STARTTX.Set(1) }
