package protocol

import "io"

// InputBuffer provides an abstraction for reading incoming protocol data
type InputBuffer interface {
	// Data returns the available data slice
	Data() []byte

	// Available returns the number of bytes available
	Available() int

	// Pop removes n bytes from the front of the buffer
	Pop(n int)
}

// SliceInputBuffer implements InputBuffer using a byte slice
type SliceInputBuffer struct {
	data []byte
}

// NewSliceInputBuffer creates a new SliceInputBuffer
func NewSliceInputBuffer(data []byte) *SliceInputBuffer {
	return &SliceInputBuffer{data: data}
}

func (s *SliceInputBuffer) Data() []byte {
	return s.data
}

func (s *SliceInputBuffer) Available() int {
	return len(s.data)
}

func (s *SliceInputBuffer) Pop(n int) {
	if n > len(s.data) {
		n = len(s.data)
	}
	s.data = s.data[n:]
}

// FifoBuffer is a circular byte buffer between the serial read loop and the
// decoder. One slot is kept free to tell full from empty.
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
}

// NewFifoBuffer creates a new FifoBuffer with the specified capacity
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{buf: make([]byte, capacity)}
}

// Write appends as much of data as fits and returns the count
func (f *FifoBuffer) Write(data []byte) int {
	written := 0
	for len(data) > 0 {
		span := f.freeSpan()
		if len(span) == 0 {
			break
		}
		n := copy(span, data)
		f.write = (f.write + n) % len(f.buf)
		data = data[n:]
		written += n
	}
	return written
}

// Fill performs a single Read from r directly into free space.
// It returns 0, nil without reading when the buffer is full.
func (f *FifoBuffer) Fill(r io.Reader) (int, error) {
	span := f.freeSpan()
	if len(span) == 0 {
		return 0, nil
	}
	n, err := r.Read(span)
	f.write = (f.write + n) % len(f.buf)
	return n, err
}

// freeSpan returns the contiguous writable region at the write cursor
func (f *FifoBuffer) freeSpan() []byte {
	end := f.read - 1
	if end < 0 {
		end += len(f.buf)
	}
	if f.write <= end {
		return f.buf[f.write:end]
	}
	return f.buf[f.write:]
}

// Read reads up to len(data) bytes from the FIFO buffer
func (f *FifoBuffer) Read(data []byte) int {
	n := copy(data, f.Data())
	f.Pop(n)
	return n
}

// Available returns the number of bytes available for reading
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return len(f.buf) - f.read + f.write
}

// Free returns the number of bytes available for writing
func (f *FifoBuffer) Free() int {
	return len(f.buf) - f.Available() - 1
}

// Data returns available data as a slice.
// When wrapped, the two segments are copied into a contiguous slice.
func (f *FifoBuffer) Data() []byte {
	if f.read <= f.write {
		return f.buf[f.read:f.write]
	}
	result := make([]byte, 0, f.Available())
	result = append(result, f.buf[f.read:]...)
	return append(result, f.buf[:f.write]...)
}

// Pop removes n bytes from the front
func (f *FifoBuffer) Pop(n int) {
	n = min(n, f.Available())
	f.read = (f.read + n) % len(f.buf)
}

// IsEmpty returns true if the buffer is empty
func (f *FifoBuffer) IsEmpty() bool {
	return f.read == f.write
}

// Reset clears the buffer
func (f *FifoBuffer) Reset() {
	f.read = 0
	f.write = 0
}
