//go:build !tinygo

package core

import "runtime"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// disableInterrupts is a no-op on regular Go; the logger mutex provides
// the exclusion on hosted builds
func disableInterrupts() State {
	return 0
}

// restoreInterrupts is a no-op on regular Go
func restoreInterrupts(state State) {}

// spinPause is called on every iteration of a busy wait. Hosted builds
// yield so a simulated peripheral goroutine can make progress.
func spinPause() {
	runtime.Gosched()
}
