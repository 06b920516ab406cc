package core

import "sync/atomic"

// PortMask is the set of ports a debug probe is listening on, one bit per
// port. The probe (or whatever stands in for it) is the only writer; the
// logger only ever reads it.
type PortMask struct {
	bits uint32 // atomic
}

// ProbePorts is the process-wide mask used by loggers that are not given
// their own. On hardware a debugger pokes it directly in RAM.
var ProbePorts PortMask

// Enabled reports whether bit port is set. Ports >= 32 are never enabled.
func (m *PortMask) Enabled(port uint8) bool {
	if port >= 32 {
		return false
	}
	return atomic.LoadUint32(&m.bits)&(1<<port) != 0
}

// Load returns the raw mask
func (m *PortMask) Load() uint32 {
	return atomic.LoadUint32(&m.bits)
}

// Store replaces the mask. Only the probe-attach side calls this.
func (m *PortMask) Store(mask uint32) {
	atomic.StoreUint32(&m.bits, mask)
}
