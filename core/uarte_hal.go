package core

// PinLine selects one of the UARTE pin-select registers
type PinLine uint8

const (
	PinTXD PinLine = iota
	PinRXD
	PinRTS
	PinCTS
	pinLineCount
)

func (l PinLine) String() string {
	switch l {
	case PinTXD:
		return "TXD"
	case PinRXD:
		return "RXD"
	case PinRTS:
		return "RTS"
	case PinCTS:
		return "CTS"
	default:
		return "?"
	}
}

// EnableUARTE is the ENABLE register encoding that turns on the DMA UART
const EnableUARTE uint32 = 8

// UARTE is the abstract transmit-side view of a DMA-driven UART that the
// logger drives. Each method maps onto one task, event or configuration
// register field. Platform-specific implementations touch real registers;
// HostUARTE simulates them in memory.
//
// Implementations are not required to be safe for concurrent use: the
// Logger serialises every call except the event reads in Flush.
type UARTE interface {
	// SetPinSelect programs PSEL.<line>: pin number and connect bit
	SetPinSelect(line PinLine, pin uint32, connect bool)

	// SetTXDPtr programs TXD.PTR with the address of buf
	SetTXDPtr(buf []byte)

	// SetTXDMaxCnt programs TXD.MAXCNT, the number of bytes to transmit
	SetTXDMaxCnt(n uint32)

	// SetBaudRate programs BAUDRATE with a register encoding (see BaudRate)
	SetBaudRate(reg uint32)

	// SetEnable programs ENABLE
	SetEnable(v uint32)

	// Enable reads back ENABLE
	Enable() uint32

	// EventTXStarted reads EVENTS_TXSTARTED
	EventTXStarted() bool

	// ClearEventTXStarted clears EVENTS_TXSTARTED
	ClearEventTXStarted()

	// EventEndTX reads EVENTS_ENDTX (last TX byte transmitted)
	EventEndTX() bool

	// ClearEventEndTX clears EVENTS_ENDTX
	ClearEventEndTX()

	// TriggerStartTX writes TASKS_STARTTX
	TriggerStartTX()
}
