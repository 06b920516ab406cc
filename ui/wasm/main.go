//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/hex"
	"syscall/js"

	"dso/protocol"
)

// Streaming decoder fed by the page's Web Serial reader
var (
	stream   *protocol.FifoBuffer
	decoder  *protocol.Decoder
	received []interface{}
)

func main() {
	resetStream(protocol.FramingHeader)

	// Export functions to JavaScript
	js.Global().Set("dsoWasm", js.ValueOf(map[string]interface{}{
		"encodeHeader": js.FuncOf(encodeHeaderWrapper),
		"decodeHeader": js.FuncOf(decodeHeaderWrapper),
		"encodePacket": js.FuncOf(encodePacketWrapper),
		"reset":        js.FuncOf(resetWrapper),
		"feed":         js.FuncOf(feedWrapper),
		"stats":        js.FuncOf(statsWrapper),
		"version":      protocol.Version,
	}))

	// Keep the program running
	select {}
}

func resetStream(framing protocol.Framing) {
	stream = protocol.NewFifoBuffer(1024)
	received = nil
	decoder = protocol.NewDecoder(framing, func(port uint8, payload []byte) {
		received = append(received, map[string]interface{}{
			"port": int(port),
			"data": hex.EncodeToString(payload),
		})
	})
}

// encodeHeaderWrapper builds a packet header
// Args: port (number), length (number, 1..16)
// Returns: hex string
func encodeHeaderWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("error: missing arguments")
	}
	header := protocol.EncodeHeader(uint8(args[0].Int()), args[1].Int())
	return js.ValueOf(hex.EncodeToString(header[:]))
}

// decodeHeaderWrapper parses a packet header
// Args: hexString (string, 2 bytes)
// Returns: {port: number, length: number, valid: bool, error: string}
func decodeHeaderWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeHeaderResult(0, 0, false, "missing hex string argument")
	}

	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return makeHeaderResult(0, 0, false, "invalid hex string: "+err.Error())
	}
	if len(data) != protocol.PacketHeaderSize {
		return makeHeaderResult(0, 0, false, "header must be 2 bytes")
	}

	port, n, ok := protocol.DecodeHeader([2]byte{data[0], data[1]})
	return makeHeaderResult(int(port), n, ok, "")
}

// encodePacketWrapper frames a payload the way a target does, one packet
// per chunk
// Args: port (number), payloadHex (string)
// Returns: hex string of all packets
func encodePacketWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("error: missing arguments")
	}

	port := uint8(args[0].Int())
	payload, err := hex.DecodeString(args[1].String())
	if err != nil {
		return js.ValueOf("error: invalid payload hex: " + err.Error())
	}

	var out []byte
	buf := make([]byte, protocol.PacketHeaderSize+protocol.PacketPayloadMax)
	protocol.Chunks(payload, protocol.PacketPayloadMax, func(chunk []byte) {
		n := protocol.FillPacket(buf, port, chunk)
		out = append(out, buf[:n]...)
	})
	return js.ValueOf(hex.EncodeToString(out))
}

// resetWrapper discards buffered input and selects the framing
// Args: framing (string, optional: "header" or "raw")
func resetWrapper(this js.Value, args []js.Value) interface{} {
	framing := protocol.FramingHeader
	if len(args) > 0 {
		f, ok := protocol.ParseFraming(args[0].String())
		if !ok {
			return js.ValueOf("error: unknown framing")
		}
		framing = f
	}
	resetStream(framing)
	return js.ValueOf(framing.String())
}

// feedWrapper appends received bytes and decodes what is complete
// Args: hexString (string)
// Returns: [{port: number, data: string (hex)}]
func feedWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf([]interface{}{})
	}

	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": "invalid hex string: " + err.Error()})
	}

	received = nil
	for len(data) > 0 {
		n := stream.Write(data)
		data = data[n:]
		decoder.Receive(stream)
		if n == 0 && stream.Free() == 0 {
			// a full buffer the decoder cannot consume; start over
			stream.Reset()
		}
	}

	packets := received
	received = nil
	if packets == nil {
		packets = []interface{}{}
	}
	return js.ValueOf(packets)
}

// statsWrapper returns {packets, desyncs, dropped, synchronized}
func statsWrapper(this js.Value, args []js.Value) interface{} {
	s := decoder.Stats()
	return js.ValueOf(map[string]interface{}{
		"packets":      int(s.Packets),
		"desyncs":      int(s.Desyncs),
		"dropped":      int(s.Dropped),
		"synchronized": decoder.Synchronized(),
	})
}

func makeHeaderResult(port int, length int, valid bool, errMsg string) js.Value {
	result := make(map[string]interface{})
	result["port"] = port
	result["length"] = length
	result["valid"] = valid
	if errMsg != "" {
		result["error"] = errMsg
	}
	return js.ValueOf(result)
}
