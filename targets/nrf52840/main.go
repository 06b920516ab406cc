//go:build nrf52840

package main

import (
	"machine"
	"time"

	"dso/core"
	"dso/targets/nrf"

	dnrf "device/nrf"
)

const (
	// P0.06 is the TX line on the nRF52840-DK interface MCU
	txPin = 6
	// Ports reported until a debugger rewrites core.ProbePorts
	defaultPorts = 1 << 0
)

func main() {
	core.ProbePorts.Store(defaultPorts)

	cfg := core.DefaultConfig(txPin)
	logger := core.MustNewLogger(nrf.New(dnrf.UARTE0), cfg)
	core.SetLogger(logger)
	core.SetDebugWriter(logger.DebugWriter(0))
	core.SetDebugEnabled(true)

	core.DebugPrintln("dso: logger up")

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	var tick uint32
	for {
		led.Set(tick%2 == 0)
		if core.LogIsEnabled(1) {
			core.LogWriteU32(1, tick)
		}
		core.DebugPrintln("tick " + core.Utoa(tick))
		tick++
		time.Sleep(time.Second)
	}
}
