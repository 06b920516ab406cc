package core

import (
	"errors"
	"testing"
	"unsafe"
)

func TestNominalBaudRate(t *testing.T) {
	for _, nominal := range []uint32{1_200, 31_250, 115_200, 1_000_000} {
		reg, err := BaudRate(nominal)
		if err != nil {
			t.Fatalf("BaudRate(%d) failed: %v", nominal, err)
		}
		got, ok := NominalBaudRate(reg)
		if !ok || got != nominal {
			t.Errorf("NominalBaudRate(0x%08X) = %d, %v, want %d", reg, got, ok, nominal)
		}
	}
	if _, ok := NominalBaudRate(0x1234); ok {
		t.Error("NominalBaudRate accepted an unknown register value")
	}
}

func TestBaudRateTable(t *testing.T) {
	if SupportedBaudRates() != 18 {
		t.Errorf("Expected 18 supported baud rates, got %d", SupportedBaudRates())
	}

	testCases := []struct {
		nominal uint32
		reg     uint32
	}{
		{1_200, 0x0004_F000},
		{9_600, 0x0027_5000},
		{115_200, 0x01D6_0000},
		{1_000_000, 0x1000_0000},
	}
	for _, tc := range testCases {
		reg, err := BaudRate(tc.nominal)
		if err != nil {
			t.Errorf("BaudRate(%d) failed: %v", tc.nominal, err)
			continue
		}
		if reg != tc.reg {
			t.Errorf("BaudRate(%d) = 0x%08X, want 0x%08X", tc.nominal, reg, tc.reg)
		}
	}

	for _, bad := range []uint32{0, 300, 100_000, 2_000_000} {
		if _, err := BaudRate(bad); !errors.Is(err, ErrUnsupportedBaudRate) {
			t.Errorf("BaudRate(%d) error = %v, want ErrUnsupportedBaudRate", bad, err)
		}
	}
}

func TestLogBufferAligned(t *testing.T) {
	for _, size := range []int{1, 3, 5, 64, 255} {
		b := NewLogBuffer(size)
		if b.Len() != size || len(b.Bytes()) != size {
			t.Errorf("NewLogBuffer(%d) has length %d", size, b.Len())
		}
		if addr := uintptr(unsafe.Pointer(&b.Bytes()[0])); addr%4 != 0 {
			t.Errorf("NewLogBuffer(%d) not word-aligned: 0x%x", size, addr)
		}
	}
}

func TestCharTime(t *testing.T) {
	if got := CharTime(0); got != 0 {
		t.Errorf("CharTime(0) = %v, want 0", got)
	}
	// 10 bits at 1 Mbaud
	if got := CharTime(1_000_000); got.Microseconds() != 10 {
		t.Errorf("CharTime(1000000) = %v, want 10µs", got)
	}
}
