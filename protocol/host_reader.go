package protocol

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	ErrReaderClosed   = errors.New("reader closed")
	ErrPacketTimeout  = errors.New("packet timeout")
	errReaderNotReady = errors.New("reader has no port")
)

// HostReader decodes the DSO stream from the probe side of the wire.
// It owns a background goroutine reading the port until Close.
type HostReader struct {
	// Serial I/O
	port io.ReadCloser

	decoder     *Decoder
	inputBuffer *FifoBuffer

	// Decoded packets for synchronous retrieval
	packetChan chan Packet

	// Optional callback for packets (called from the read loop)
	handler      PacketHandler
	handlerMutex sync.Mutex

	// Terminal read error, if any
	errMutex sync.Mutex
	err      error

	stopChan  chan struct{}
	doneChan  chan struct{}
	closeOnce sync.Once
}

// NewHostReader creates a reader and starts its read loop
func NewHostReader(port io.ReadCloser, framing Framing) *HostReader {
	r := &HostReader{
		port:        port,
		inputBuffer: NewFifoBuffer(512),
		packetChan:  make(chan Packet, 64),
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}
	r.decoder = NewDecoder(framing, r.dispatchPacket)

	go r.readLoop()

	return r
}

// SetPacketHandler sets a callback for handling packets asynchronously
func (r *HostReader) SetPacketHandler(handler PacketHandler) {
	r.handlerMutex.Lock()
	r.handler = handler
	r.handlerMutex.Unlock()
}

// Packets returns the channel decoded packets are delivered on.
// When the channel is full the oldest packet is dropped.
func (r *HostReader) Packets() <-chan Packet {
	return r.packetChan
}

// ReceivePacket waits for the next packet with timeout
func (r *HostReader) ReceivePacket(timeout time.Duration) (Packet, error) {
	select {
	case pkt := <-r.packetChan:
		return pkt, nil

	case <-time.After(timeout):
		return Packet{}, fmt.Errorf("%w after %v", ErrPacketTimeout, timeout)

	case <-r.doneChan:
		// Drain anything decoded before the loop stopped
		select {
		case pkt := <-r.packetChan:
			return pkt, nil
		default:
		}
		if err := r.Err(); err != nil {
			return Packet{}, err
		}
		return Packet{}, ErrReaderClosed
	}
}

// Stats returns the decoder counters
func (r *HostReader) Stats() DecoderStats {
	return r.decoder.Stats()
}

// Err returns the error that stopped the read loop, or nil
func (r *HostReader) Err() error {
	r.errMutex.Lock()
	defer r.errMutex.Unlock()
	return r.err
}

// Done is closed once the read loop has exited
func (r *HostReader) Done() <-chan struct{} {
	return r.doneChan
}

// readLoop continuously reads from the port and decodes packets
func (r *HostReader) readLoop() {
	defer close(r.doneChan)

	if r.port == nil {
		r.setErr(errReaderNotReady)
		return
	}

	for {
		select {
		case <-r.stopChan:
			return
		default:
		}

		n, err := r.inputBuffer.Fill(r.port)
		if n > 0 {
			r.decoder.Receive(r.inputBuffer)
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) {
				r.setErr(err)
				return
			}
			select {
			case <-r.stopChan:
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}
}

// dispatchPacket routes a decoded packet to the handler and channel
func (r *HostReader) dispatchPacket(port uint8, payload []byte) {
	payloadCopy := make([]byte, len(payload))
	copy(payloadCopy, payload)

	r.handlerMutex.Lock()
	handler := r.handler
	r.handlerMutex.Unlock()
	if handler != nil {
		handler(port, payloadCopy)
	}

	pkt := Packet{Port: port, Payload: payloadCopy}
	select {
	case r.packetChan <- pkt:
	default:
		// Channel full, drop oldest
		select {
		case <-r.packetChan:
		default:
		}
		select {
		case r.packetChan <- pkt:
		default:
		}
	}
}

func (r *HostReader) setErr(err error) {
	r.errMutex.Lock()
	if r.err == nil {
		r.err = err
	}
	r.errMutex.Unlock()
}

// Close stops the read loop and closes the port
func (r *HostReader) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.stopChan)
		if r.port != nil {
			// Closing the port unblocks a pending Read
			err = r.port.Close()
		}
		<-r.doneChan
	})
	return err
}
