package protocol

import "sync/atomic"

// PacketHandler is called for every decoded packet. payload is only valid
// for the duration of the call.
type PacketHandler func(port uint8, payload []byte)

// DecoderStats holds counters since the decoder was created
type DecoderStats struct {
	Packets uint32 // complete packets dispatched
	Desyncs uint32 // transitions from synchronized to searching
	Dropped uint32 // bytes discarded while searching for a header
}

// Decoder parses the DSO byte stream coming off the wire
type Decoder struct {
	isSynchronized uint32 // atomic bool (0 = false, 1 = true)
	packets        uint32
	desyncs        uint32
	dropped        uint32

	framing Framing
	handler PacketHandler
}

// NewDecoder creates a Decoder for the given framing
func NewDecoder(framing Framing, handler PacketHandler) *Decoder {
	return &Decoder{
		isSynchronized: 1,
		framing:        framing,
		handler:        handler,
	}
}

// Receive consumes every complete packet from input. A trailing partial
// packet is left in input for the next call.
func (d *Decoder) Receive(input InputBuffer) {
	data := input.Data()

	if d.framing == FramingRaw {
		// Unframed stream: everything belongs to port 0
		if len(data) > 0 {
			atomic.AddUint32(&d.packets, 1)
			d.dispatch(0, data)
			input.Pop(len(data))
		}
		return
	}

	for len(data) >= PacketHeaderSize {
		port, n, ok := DecodeHeader([PacketHeaderSize]byte{data[0], data[1]})
		if !ok {
			// Not a header - slide one byte and look again
			if d.getSynchronized() {
				d.setSynchronized(false)
				atomic.AddUint32(&d.desyncs, 1)
			}
			atomic.AddUint32(&d.dropped, 1)
			data = data[1:]
			continue
		}

		// Wait for the full payload
		if len(data) < PacketHeaderSize+n {
			break
		}

		d.setSynchronized(true)
		payload := data[PacketHeaderSize : PacketHeaderSize+n]
		data = data[PacketHeaderSize+n:]
		atomic.AddUint32(&d.packets, 1)
		d.dispatch(port, payload)
	}

	// Remove consumed bytes from input
	consumed := input.Available() - len(data)
	if consumed > 0 {
		input.Pop(consumed)
	}
}

// dispatch hands one packet to the handler
func (d *Decoder) dispatch(port uint8, payload []byte) {
	// A panicking handler must not kill the read loop
	defer func() {
		if r := recover(); r != nil {
			d.setSynchronized(false)
		}
	}()

	if d.handler != nil {
		d.handler(port, payload)
	}
}

// Stats returns a snapshot of the decoder counters
func (d *Decoder) Stats() DecoderStats {
	return DecoderStats{
		Packets: atomic.LoadUint32(&d.packets),
		Desyncs: atomic.LoadUint32(&d.desyncs),
		Dropped: atomic.LoadUint32(&d.dropped),
	}
}

// Synchronized reports whether the last bytes examined formed a valid header
func (d *Decoder) Synchronized() bool {
	return d.getSynchronized()
}

// Helper methods for atomic operations
func (d *Decoder) getSynchronized() bool {
	return atomic.LoadUint32(&d.isSynchronized) != 0
}

func (d *Decoder) setSynchronized(val bool) {
	if val {
		atomic.StoreUint32(&d.isSynchronized, 1)
	} else {
		atomic.StoreUint32(&d.isSynchronized, 0)
	}
}
