// Package protocol implements the DSO (debug serial output) wire format
package protocol

// Version represents the dso firmware/probe protocol version
const Version = "0.1.0"

// Packet constants
const (
	PacketKey        = 0b100_1011 // Fixed key in the top 7 header bits
	PacketHeaderSize = 2          // Big-endian header: key(7) | 0 | port(4) | len-1(4)
	PacketPayloadMax = 16         // Chunking policy cap for framed payloads
	PacketLengthBits = 4          // Width of the len-1 field (wire allows 1..16)

	PortBits = 4
	PortMax  = 1<<PortBits - 1

	headerKeyShift  = 9 // bit 8 is always zero
	headerPortShift = PacketLengthBits
	headerLenMask   = 1<<PacketLengthBits - 1
)

// Framing selects the wire contract the transport speaks.
type Framing uint8

const (
	// FramingHeader prefixes every chunk with the 2-byte packet header (multi-port).
	FramingHeader Framing = iota
	// FramingRaw sends chunk bytes unframed as a single stream (port is ignored).
	FramingRaw
)

func (f Framing) String() string {
	switch f {
	case FramingHeader:
		return "header"
	case FramingRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// ParseFraming maps a configuration string onto a Framing value.
func ParseFraming(s string) (Framing, bool) {
	switch s {
	case "", "header", "framed":
		return FramingHeader, true
	case "raw", "unframed":
		return FramingRaw, true
	}
	return FramingHeader, false
}

// Packet represents a decoded packet
type Packet struct {
	Port    uint8
	Payload []byte
}
