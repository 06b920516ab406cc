package core

import (
	"encoding/binary"
	"sync/atomic"
)

// WriteU8 writes a single byte to port
func (l *Logger) WriteU8(port uint8, value uint8) {
	l.WriteBytes(port, []byte{value})
}

// WriteU16 writes value big-endian to port
func (l *Logger) WriteU16(port uint8, value uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], value)
	l.WriteBytes(port, b[:])
}

// WriteU32 writes value big-endian to port
func (l *Logger) WriteU32(port uint8, value uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], value)
	l.WriteBytes(port, b[:])
}

// Global logger used by the Log* entry points
var defaultLogger atomic.Pointer[Logger]

// SetLogger is called by target-specific code to register its logger
func SetLogger(l *Logger) {
	defaultLogger.Store(l)
}

// DefaultLogger returns the registered logger or nil
func DefaultLogger() *Logger {
	return defaultLogger.Load()
}

// LogIsEnabled reports whether the probe listens on port.
// False when no logger is registered.
func LogIsEnabled(port uint8) bool {
	if l := defaultLogger.Load(); l != nil {
		return l.IsEnabled(port)
	}
	return false
}

// LogWriteBytes writes data to port on the registered logger
func LogWriteBytes(port uint8, data []byte) {
	if l := defaultLogger.Load(); l != nil {
		l.WriteBytes(port, data)
	}
}

// LogWriteU8 writes a byte on the registered logger
func LogWriteU8(port uint8, value uint8) {
	if l := defaultLogger.Load(); l != nil {
		l.WriteU8(port, value)
	}
}

// LogWriteU16 writes a big-endian uint16 on the registered logger
func LogWriteU16(port uint8, value uint16) {
	if l := defaultLogger.Load(); l != nil {
		l.WriteU16(port, value)
	}
}

// LogWriteU32 writes a big-endian uint32 on the registered logger
func LogWriteU32(port uint8, value uint32) {
	if l := defaultLogger.Load(); l != nil {
		l.WriteU32(port, value)
	}
}

// LogFlush flushes the registered logger
func LogFlush() {
	if l := defaultLogger.Load(); l != nil {
		l.Flush()
	}
}
