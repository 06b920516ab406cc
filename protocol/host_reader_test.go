package protocol

import (
	"errors"
	"io"
	"testing"
	"time"
)

func TestHostReaderDecodesFromPipe(t *testing.T) {
	pr, pw := io.Pipe()
	reader := NewHostReader(pr, FramingHeader)
	defer reader.Close()

	go func() {
		pw.Write(encodePacket(4, []byte("log")))
		pw.Write([]byte{0x00})
		pw.Write(encodePacket(7, []byte("line")))
	}()

	pkt, err := reader.ReceivePacket(time.Second)
	if err != nil {
		t.Fatalf("ReceivePacket failed: %v", err)
	}
	if pkt.Port != 4 || string(pkt.Payload) != "log" {
		t.Errorf("First packet: port=%d payload=%q", pkt.Port, pkt.Payload)
	}

	pkt, err = reader.ReceivePacket(time.Second)
	if err != nil {
		t.Fatalf("ReceivePacket failed: %v", err)
	}
	if pkt.Port != 7 || string(pkt.Payload) != "line" {
		t.Errorf("Second packet: port=%d payload=%q", pkt.Port, pkt.Payload)
	}
}

func TestHostReaderHandler(t *testing.T) {
	pr, pw := io.Pipe()
	reader := NewHostReader(pr, FramingHeader)
	defer reader.Close()

	got := make(chan Packet, 1)
	reader.SetPacketHandler(func(port uint8, payload []byte) {
		got <- Packet{Port: port, Payload: payload}
	})

	go pw.Write(encodePacket(9, []byte("x")))

	select {
	case pkt := <-got:
		if pkt.Port != 9 || string(pkt.Payload) != "x" {
			t.Errorf("Handler got port=%d payload=%q", pkt.Port, pkt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for handler")
	}
}

func TestHostReaderEOF(t *testing.T) {
	pr, pw := io.Pipe()
	reader := NewHostReader(pr, FramingHeader)
	defer reader.Close()

	go func() {
		pw.Write(encodePacket(0, []byte("bye")))
		pw.Close()
	}()

	if pkt, err := reader.ReceivePacket(time.Second); err != nil || string(pkt.Payload) != "bye" {
		t.Fatalf("Expected final packet before EOF, got %q err=%v", pkt.Payload, err)
	}

	select {
	case <-reader.Done():
	case <-time.After(time.Second):
		t.Fatal("read loop did not stop on EOF")
	}

	if !errors.Is(reader.Err(), io.EOF) {
		t.Errorf("Err() = %v, want io.EOF", reader.Err())
	}
	if _, err := reader.ReceivePacket(50 * time.Millisecond); !errors.Is(err, io.EOF) {
		t.Errorf("ReceivePacket after EOF = %v, want io.EOF", err)
	}
}

func TestHostReaderTimeout(t *testing.T) {
	pr, _ := io.Pipe()
	reader := NewHostReader(pr, FramingHeader)
	defer reader.Close()

	if _, err := reader.ReceivePacket(20 * time.Millisecond); !errors.Is(err, ErrPacketTimeout) {
		t.Errorf("Expected ErrPacketTimeout, got %v", err)
	}
}

func TestHostReaderCloseUnblocksRead(t *testing.T) {
	pr, _ := io.Pipe()
	reader := NewHostReader(pr, FramingHeader)

	done := make(chan error, 1)
	go func() { done <- reader.Close() }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Close returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close blocked on a pending read")
	}

	// Second close is a no-op
	if err := reader.Close(); err != nil {
		t.Errorf("Second Close returned %v", err)
	}
}
