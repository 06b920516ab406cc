package core

import (
	"bytes"
	"io"
	"testing"
	"time"

	"dso/protocol"
)

func TestLoggerToHostReader(t *testing.T) {
	pr, pw := io.Pipe()
	reader := protocol.NewHostReader(pr, protocol.FramingHeader)
	defer reader.Close()

	periph := NewHostUARTE(CharTime(1_000_000), pw)
	l := newTestLogger(t, periph, DefaultConfig(0))

	messages := map[uint8][]byte{
		0: []byte("boot ok\n"),
		3: bytes.Repeat([]byte("sensor "), 5),
	}
	go func() {
		l.WriteBytes(0, messages[0])
		l.WriteBytes(3, messages[3])
		l.Flush()
	}()

	got := map[uint8][]byte{}
	want := len(messages[0]) + len(messages[3])
	total := 0
	for total < want {
		pkt, err := reader.ReceivePacket(2 * time.Second)
		if err != nil {
			t.Fatalf("ReceivePacket failed after %d bytes: %v", total, err)
		}
		got[pkt.Port] = append(got[pkt.Port], pkt.Payload...)
		total += len(pkt.Payload)
	}

	for port, msg := range messages {
		if !bytes.Equal(got[port], msg) {
			t.Errorf("Port %d received %q, want %q", port, got[port], msg)
		}
	}
	if stats := reader.Stats(); stats.Dropped != 0 {
		t.Errorf("Decoder dropped %d bytes on a clean stream", stats.Dropped)
	}
}
