package pio

import (
	"bytes"
	"errors"
	"testing"

	"dso/core"
	"dso/protocol"
)

// fakeSM is a 4-deep TX FIFO that drains one word per drain call
type fakeSM struct {
	fifo     []uint32
	depth    int
	line     []byte
	pin      uint32
	baud     uint32
	started  int
	stopped  int
	startErr error
}

func newFakeSM() *fakeSM { return &fakeSM{depth: 4} }

func (f *fakeSM) IsTxFIFOFull() bool  { return len(f.fifo) >= f.depth }
func (f *fakeSM) IsTxFIFOEmpty() bool { return len(f.fifo) == 0 }
func (f *fakeSM) TxPut(v uint32)      { f.fifo = append(f.fifo, v) }

func (f *fakeSM) Start(pin, baud uint32) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.pin, f.baud = pin, baud
	f.started++
	return nil
}

func (f *fakeSM) Stop() { f.stopped++ }

// drain shifts one word out of the FIFO onto the line
func (f *fakeSM) drain() bool {
	if len(f.fifo) == 0 {
		return false
	}
	f.line = append(f.line, byte(f.fifo[0]))
	f.fifo = f.fifo[1:]
	return true
}

func enabledUARTE(t *testing.T, sm *fakeSM) *UARTE {
	t.Helper()
	u := newUARTE(sm)
	reg, err := core.BaudRate(115_200)
	if err != nil {
		t.Fatalf("BaudRate failed: %v", err)
	}
	u.SetPinSelect(core.PinTXD, 4, true)
	u.SetBaudRate(reg)
	u.SetEnable(core.EnableUARTE)
	if err := u.Err(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	return u
}

func TestEnableStartsStateMachine(t *testing.T) {
	sm := newFakeSM()
	u := enabledUARTE(t, sm)

	if sm.started != 1 || sm.pin != 4 || sm.baud != 115_200 {
		t.Errorf("Start(pin=%d, baud=%d) called %d times, want pin 4 baud 115200 once",
			sm.pin, sm.baud, sm.started)
	}
	if u.Enable() != core.EnableUARTE {
		t.Errorf("Enable() = %d, want %d", u.Enable(), core.EnableUARTE)
	}

	u.SetEnable(core.EnableUARTE)
	if sm.started != 1 {
		t.Errorf("Re-enabling restarted the state machine (%d starts)", sm.started)
	}

	u.SetEnable(0)
	if sm.stopped != 1 {
		t.Errorf("Disable stopped the state machine %d times, want 1", sm.stopped)
	}
}

func TestEnableFailures(t *testing.T) {
	testCases := []struct {
		name    string
		connect bool
		baudReg uint32
		smErr   error
		want    error
	}{
		{"no pin", false, 0x01D6_0000, nil, errNoTXPin},
		{"bad baud", true, 0x1234, nil, core.ErrUnsupportedBaudRate},
		{"sm error", true, 0x01D6_0000, errors.New("no program space"), nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sm := newFakeSM()
			sm.startErr = tc.smErr
			u := newUARTE(sm)
			u.SetPinSelect(core.PinTXD, 4, tc.connect)
			u.SetBaudRate(tc.baudReg)
			u.SetEnable(core.EnableUARTE)

			if u.Enable() == core.EnableUARTE {
				t.Error("Peripheral enabled despite failure")
			}
			want := tc.want
			if want == nil {
				want = tc.smErr
			}
			if !errors.Is(u.Err(), want) {
				t.Errorf("Err() = %v, want %v", u.Err(), want)
			}
		})
	}
}

func TestEndTXWaitsForFIFO(t *testing.T) {
	sm := newFakeSM()
	u := enabledUARTE(t, sm)

	data := []byte("0123456789")
	u.SetTXDPtr(data)
	u.SetTXDMaxCnt(uint32(len(data)))
	u.TriggerStartTX()

	if !u.EventTXStarted() {
		t.Fatal("TXSTARTED not raised")
	}
	if len(sm.fifo) != 4 {
		t.Errorf("FIFO holds %d words after start, want 4", len(sm.fifo))
	}

	polls := 0
	for !u.EventEndTX() {
		if !sm.drain() {
			t.Fatalf("ENDTX not raised with empty FIFO after %d polls", polls)
		}
		polls++
	}
	if !bytes.Equal(sm.line, data) {
		t.Errorf("Line carried %q, want %q", sm.line, data)
	}
}

func TestStartIgnoredWhileDisabled(t *testing.T) {
	sm := newFakeSM()
	u := newUARTE(sm)
	u.SetTXDPtr([]byte("abc"))
	u.SetTXDMaxCnt(3)
	u.TriggerStartTX()

	if u.EventTXStarted() || len(sm.fifo) != 0 {
		t.Error("Disabled peripheral accepted STARTTX")
	}
}

// drainingSM empties its FIFO whenever it is polled, like a fast line
type drainingSM struct {
	*fakeSM
}

func (d drainingSM) IsTxFIFOFull() bool {
	for d.drain() {
	}
	return false
}

func (d drainingSM) IsTxFIFOEmpty() bool {
	for d.drain() {
	}
	return true
}

func TestLoggerOverPIO(t *testing.T) {
	sm := drainingSM{newFakeSM()}
	u := newUARTE(sm)

	var ports core.PortMask
	cfg := core.DefaultConfig(4)
	cfg.Ports = &ports
	l, err := core.NewLogger(u, cfg)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	msg := []byte("pio transport says hello")
	l.WriteBytes(7, msg)
	l.Flush()

	var got []byte
	dec := protocol.NewDecoder(protocol.FramingHeader, func(port uint8, payload []byte) {
		if port != 7 {
			t.Errorf("Packet on port %d, want 7", port)
		}
		got = append(got, payload...)
	})
	dec.Receive(protocol.NewSliceInputBuffer(sm.line))

	if !bytes.Equal(got, msg) {
		t.Errorf("Decoded %q, want %q", got, msg)
	}
}
