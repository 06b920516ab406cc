package protocol

// EncodeHeader packs the packet header for a payload of n bytes on port.
// n must be in [1, 16]; port is truncated to its low 4 bits.
func EncodeHeader(port uint8, n int) [PacketHeaderSize]byte {
	h := uint16(PacketKey)<<headerKeyShift |
		uint16(port&PortMax)<<headerPortShift |
		uint16(n-1)&headerLenMask
	return [PacketHeaderSize]byte{byte(h >> 8), byte(h)}
}

// DecodeHeader unpacks a header. ok is false when the key does not match.
func DecodeHeader(hdr [PacketHeaderSize]byte) (port uint8, n int, ok bool) {
	h := uint16(hdr[0])<<8 | uint16(hdr[1])
	if h>>headerKeyShift != PacketKey {
		return 0, 0, false
	}
	port = uint8(h>>headerPortShift) & PortMax
	n = int(h&headerLenMask) + 1
	return port, n, true
}

// ChunkSize returns the largest payload a single transmission carries for a
// buffer of bufSize bytes.
func ChunkSize(bufSize int, framing Framing) int {
	if framing == FramingRaw {
		return bufSize
	}
	return min(bufSize-PacketHeaderSize, PacketPayloadMax)
}

// Chunks calls fn for each consecutive chunk of at most size bytes, in order.
// Empty data produces no chunks.
func Chunks(data []byte, size int, fn func(chunk []byte)) {
	if size <= 0 {
		return
	}
	for len(data) > 0 {
		n := min(len(data), size)
		fn(data[:n])
		data = data[n:]
	}
}

// ChunkCount returns how many chunks Chunks produces for n bytes.
func ChunkCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// FillPacket renders header and payload into buf and returns the byte count.
// buf must hold len(payload)+2 bytes and payload must not be empty.
func FillPacket(buf []byte, port uint8, payload []byte) int {
	hdr := EncodeHeader(port, len(payload))
	buf[0] = hdr[0]
	buf[1] = hdr[1]
	return PacketHeaderSize + copy(buf[PacketHeaderSize:], payload)
}

// FillRaw copies payload into buf unframed and returns the byte count.
func FillRaw(buf []byte, payload []byte) int {
	return copy(buf, payload)
}
