//go:build rp2040

package main

import (
	"machine"
	"time"

	"dso/core"
	"dso/targets/pio"
)

const (
	txPin        = 0 // GPIO0
	pioBlock     = 0
	stateMachine = 0

	// port 0 carries debug text, port 1 the uptime in microseconds
	defaultPorts = 1<<0 | 1<<1
)

func main() {
	// Stop a watchdog left running by the previous image
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	core.ProbePorts.Store(defaultPorts)

	periph := pio.New(pioBlock, stateMachine)
	logger, err := core.NewLogger(periph, core.DefaultConfig(txPin))
	if err != nil {
		// nothing to report it on
		return
	}
	core.SetLogger(logger)
	core.SetDebugWriter(logger.DebugWriter(0))
	core.SetDebugEnabled(true)

	core.DebugPrintln("dso: pio logger up")
	// the first write enables the state machine
	if err := periph.Err(); err != nil {
		blinkForever()
	}

	for {
		if core.LogIsEnabled(1) {
			up := hardwareUptime()
			core.LogWriteU32(1, uint32(up>>32))
			core.LogWriteU32(1, uint32(up))
		}
		core.LogFlush()
		time.Sleep(500 * time.Millisecond)
	}
}

func blinkForever() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
