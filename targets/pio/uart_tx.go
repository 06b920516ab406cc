//go:build rp2040 || rp2350

package pio

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// 8N1 transmitter, 8 PIO cycles per bit, LSB first.
// OUT and SET both map to the TX pin.
//
//	0: set pins, 1 [7]   ; stop bit, line idles high
//	1: pull block
//	2: set x, 7
//	3: set pins, 0 [7]   ; start bit
//	4: out pins, 1       ; bitloop
//	5: jmp x--, 4 [6]
func buildUARTTxProgram(origin uint8) []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		asm.Set(rp2pio.SetDestPins, 1).Delay(7).Encode(),
		asm.Pull(false, true).Encode(),
		asm.Set(rp2pio.SetDestX, 7).Encode(),
		asm.Set(rp2pio.SetDestPins, 0).Delay(7).Encode(),
		asm.Out(rp2pio.OutDestPins, 1).Encode(),
		asm.Jmp(origin+4, rp2pio.JmpXNZeroDec).Delay(6).Encode(),
	}
}

const (
	uartTxOrigin   = 0 // jump targets are absolute
	cyclesPerBit   = 8
	nanosPerSecond = 1_000_000_000
)

// pioTx drives one state machine with the UART TX program
type pioTx struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	offset uint8
	loaded bool
}

// New returns a UARTE that transmits on state machine smNum of PIO block
// pioNum (0 or 1).
func New(pioNum, smNum uint8) *UARTE {
	pioHW := rp2pio.PIO0
	if pioNum != 0 {
		pioHW = rp2pio.PIO1
	}
	return newUARTE(&pioTx{
		pio: pioHW,
		sm:  pioHW.StateMachine(smNum),
	})
}

func (p *pioTx) Start(pin, baud uint32) error {
	p.sm.TryClaim()

	program := buildUARTTxProgram(uartTxOrigin)
	if !p.loaded {
		offset, err := p.pio.AddProgram(program, uartTxOrigin)
		if err != nil {
			return err
		}
		p.offset = offset
		p.loaded = true
	}

	txPin := machine.Pin(pin)
	txPin.Configure(machine.PinConfig{Mode: p.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetOutPins(txPin, 1)
	cfg.SetSetPins(txPin, 1)
	// shift right, no autopull, 32-bit threshold
	cfg.SetOutShift(true, false, 32)
	cfg.SetFIFOJoin(rp2pio.FifoJoinTx)
	cfg.SetWrap(p.offset+uint8(len(program))-1, p.offset)

	whole, frac, err := rp2pio.ClkDivFromPeriod(nanosPerSecond/(baud*cyclesPerBit), machine.CPUFrequency())
	if err != nil {
		return err
	}
	cfg.SetClkDivIntFrac(whole, frac)

	p.sm.Init(p.offset, cfg)

	// pin direction after Init
	p.sm.SetPindirsConsecutive(txPin, 1, true)
	p.sm.SetPinsConsecutive(txPin, 1, true)
	p.sm.SetEnabled(true)
	return nil
}

func (p *pioTx) Stop() {
	p.sm.SetEnabled(false)
	p.sm.ClearFIFOs()
	p.sm.Restart()
}

func (p *pioTx) IsTxFIFOFull() bool  { return p.sm.IsTxFIFOFull() }
func (p *pioTx) IsTxFIFOEmpty() bool { return p.sm.IsTxFIFOEmpty() }
func (p *pioTx) TxPut(v uint32)      { p.sm.TxPut(v) }
