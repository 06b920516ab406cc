//go:build rp2350

package main

import (
	"machine"
	"time"

	"dso/core"
	"dso/targets/uartdrv"
)

// port 0 carries debug text, port 2 a heartbeat counter
const defaultPorts = 1<<0 | 1<<2

// ledBlink blinks the LED a specific number of times for diagnostics
func ledBlink(count int) {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for i := 0; i < count; i++ {
		led.High()
		time.Sleep(150 * time.Millisecond)
		led.Low()
		time.Sleep(150 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond) // Pause after blink sequence
}

func main() {
	// Stop a watchdog left running by the previous image
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	cfg := core.DefaultConfig(uint32(machine.GPIO36))
	uart, err := initDebugUART(cfg.BaudRate)
	if err != nil {
		for {
			ledBlink(2)
		}
	}

	core.ProbePorts.Store(defaultPorts)
	logger, err := core.NewLogger(uartdrv.New(uart), cfg)
	if err != nil {
		for {
			ledBlink(3)
		}
	}
	core.SetLogger(logger)
	core.SetDebugWriter(logger.DebugWriter(0))
	core.SetDebugEnabled(true)

	core.DebugPrintln("=== RP2350 DSO logger on UART1 ===")

	var beat uint16
	for {
		core.LogWriteU16(2, beat)
		beat++
		time.Sleep(time.Second)
	}
}
