package core

import "io"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

var (
	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false
)

// SetDebugWriter sets the platform-specific debug output function.
// Targets usually pass Logger.DebugWriter for their log port.
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		writer = func(s string) {}
	}
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled {
		debugPrintln(msg)
	}
}

// DebugWriter returns a DebugWriter that writes each message plus a newline
// to port. Messages are dropped while the probe is not listening on port.
func (l *Logger) DebugWriter(port uint8) DebugWriter {
	return func(msg string) {
		if !l.IsEnabled(port) {
			return
		}
		line := make([]byte, 0, len(msg)+1)
		line = append(line, msg...)
		line = append(line, '\n')
		l.WriteBytes(port, line)
	}
}

// portWriter adapts a logger port to io.Writer
type portWriter struct {
	l    *Logger
	port uint8
}

func (w portWriter) Write(p []byte) (int, error) {
	w.l.WriteBytes(w.port, p)
	return len(p), nil
}

// PortWriter returns an io.Writer that sends everything to port.
// Writes never fail.
func (l *Logger) PortWriter(port uint8) io.Writer {
	return portWriter{l: l, port: port}
}
