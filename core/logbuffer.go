package core

import "unsafe"

// LogBuffer is the fixed transmit buffer the UARTE reads through DMA.
// The backing store is allocated as 32-bit words so the byte view is
// word-aligned, as EasyDMA requires.
type LogBuffer struct {
	words []uint32
	bytes []byte
}

// NewLogBuffer allocates a buffer of size bytes
func NewLogBuffer(size int) *LogBuffer {
	words := make([]uint32, (size+3)/4)
	return &LogBuffer{
		words: words,
		bytes: wordBytes(words)[:size],
	}
}

// Bytes returns the whole buffer
func (b *LogBuffer) Bytes() []byte {
	return b.bytes
}

// Len returns the buffer capacity in bytes
func (b *LogBuffer) Len() int {
	return len(b.bytes)
}

// wordBytes views words as a byte slice without copying
func wordBytes(words []uint32) []byte {
	if len(words) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*4)
}
