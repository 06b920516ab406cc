package protocol

import (
	"bytes"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	for port := uint8(0); port <= PortMax; port++ {
		for n := 1; n <= PacketPayloadMax; n++ {
			gotPort, gotN, ok := DecodeHeader(EncodeHeader(port, n))
			if !ok {
				t.Fatalf("DecodeHeader rejected header for port=%d n=%d", port, n)
			}
			if gotPort != port || gotN != n {
				t.Errorf("decode(encode(%d, %d)) = (%d, %d)", port, n, gotPort, gotN)
			}
		}
	}
}

func TestHeaderLayout(t *testing.T) {
	hdr := EncodeHeader(5, 3)
	want := uint16(0b1001011<<9 | 5<<4 | 2)
	if got := uint16(hdr[0])<<8 | uint16(hdr[1]); got != want {
		t.Errorf("Header = 0x%04X, want 0x%04X", got, want)
	}
	if hdr[0] != 0x96 || hdr[1] != 0x52 {
		t.Errorf("Header bytes = [0x%02X 0x%02X], want [0x96 0x52]", hdr[0], hdr[1])
	}
}

func TestHeaderMaxPortMaxLength(t *testing.T) {
	hdr := EncodeHeader(15, 16)
	if hdr[0] != 0x96 || hdr[1] != 0xFF {
		t.Errorf("Header bytes = [0x%02X 0x%02X], want [0x96 0xFF]", hdr[0], hdr[1])
	}
}

func TestHeaderPortTruncation(t *testing.T) {
	// Ports wider than 4 bits lose their high bits but never touch the key
	port, n, ok := DecodeHeader(EncodeHeader(0x1A, 4))
	if !ok {
		t.Fatal("Key corrupted by oversized port")
	}
	if port != 0x0A || n != 4 {
		t.Errorf("Got port=%d n=%d, want port=10 n=4", port, n)
	}
}

func TestDecodeHeaderRejectsBadKey(t *testing.T) {
	if _, _, ok := DecodeHeader([2]byte{0x00, 0x00}); ok {
		t.Error("Expected zero header to be rejected")
	}
	if _, _, ok := DecodeHeader([2]byte{0xFF, 0xFF}); ok {
		t.Error("Expected 0xFFFF header to be rejected")
	}
}

func TestChunkSize(t *testing.T) {
	testCases := []struct {
		bufSize int
		framing Framing
		want    int
	}{
		{64, FramingHeader, 16},
		{18, FramingHeader, 16},
		{10, FramingHeader, 8},
		{3, FramingHeader, 1},
		{64, FramingRaw, 64},
		{7, FramingRaw, 7},
	}

	for _, tc := range testCases {
		if got := ChunkSize(tc.bufSize, tc.framing); got != tc.want {
			t.Errorf("ChunkSize(%d, %s) = %d, want %d", tc.bufSize, tc.framing, got, tc.want)
		}
	}
}

func TestChunksPartition(t *testing.T) {
	for _, size := range []int{1, 3, 8, 16, 64} {
		for length := 0; length <= 70; length++ {
			data := make([]byte, length)
			for i := range data {
				data[i] = byte(i * 7)
			}

			var joined []byte
			count := 0
			Chunks(data, size, func(chunk []byte) {
				if len(chunk) == 0 || len(chunk) > size {
					t.Fatalf("size=%d len=%d: bad chunk length %d", size, length, len(chunk))
				}
				joined = append(joined, chunk...)
				count++
			})

			if count != ChunkCount(length, size) {
				t.Errorf("size=%d len=%d: %d chunks, want %d", size, length, count, ChunkCount(length, size))
			}
			if !bytes.Equal(joined, data) {
				t.Errorf("size=%d len=%d: concatenated chunks differ from input", size, length)
			}
		}
	}
}

func TestChunkCount(t *testing.T) {
	if got := ChunkCount(0, 16); got != 0 {
		t.Errorf("ChunkCount(0, 16) = %d, want 0", got)
	}
	if got := ChunkCount(16, 16); got != 1 {
		t.Errorf("ChunkCount(16, 16) = %d, want 1", got)
	}
	if got := ChunkCount(17, 16); got != 2 {
		t.Errorf("ChunkCount(17, 16) = %d, want 2", got)
	}
}

func TestFillPacket(t *testing.T) {
	buf := make([]byte, 64)
	n := FillPacket(buf, 5, []byte{0x41, 0x42, 0x43})
	if n != 5 {
		t.Fatalf("FillPacket returned %d, want 5", n)
	}
	want := []byte{0x96, 0x52, 0x41, 0x42, 0x43}
	if !bytes.Equal(buf[:n], want) {
		t.Errorf("Buffer = % X, want % X", buf[:n], want)
	}
}

func TestFillRaw(t *testing.T) {
	buf := make([]byte, 4)
	if n := FillRaw(buf, []byte("abc")); n != 3 || string(buf[:3]) != "abc" {
		t.Errorf("FillRaw wrote %d bytes %q", n, buf[:n])
	}
}

func TestParseFraming(t *testing.T) {
	if f, ok := ParseFraming("raw"); !ok || f != FramingRaw {
		t.Errorf("ParseFraming(raw) = %v, %v", f, ok)
	}
	if f, ok := ParseFraming(""); !ok || f != FramingHeader {
		t.Errorf("ParseFraming(\"\") = %v, %v", f, ok)
	}
	if _, ok := ParseFraming("slip"); ok {
		t.Error("Expected unknown framing to be rejected")
	}
}
