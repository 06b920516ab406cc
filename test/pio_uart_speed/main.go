//go:build rp2040 || rp2350

package main

// PIO UART Speed Test - cycles through baud rates
// Watch GP0 on an oscilloscope or a USB-serial adapter; raw framing sends
// 'U' (0x55), a square wave at half the baud rate.

import (
	"machine"
	"time"

	"dso/core"
	"dso/protocol"
	"dso/targets/pio"
)

const txPin = 0

var speedTests = []uint32{
	9_600,
	115_200,
	460_800,
	1_000_000,
}

func main() {
	time.Sleep(3 * time.Second)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	// Flash LED to indicate start
	for i := 0; i < 3; i++ {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}

	println("=== PIO UART Speed Test ===")
	println("TX: GP0")

	periph := pio.New(0, 0)
	pattern := make([]byte, 64)
	for i := range pattern {
		pattern[i] = 'U'
	}

	cycle := 0
	for {
		cycle++
		println("\n=== Cycle", cycle, "===")

		for _, baud := range speedTests {
			// disabling stops the state machine so the next logger
			// restarts it at the new rate
			periph.SetEnable(0)

			cfg := core.DefaultConfig(txPin)
			cfg.BaudRate = baud
			cfg.Framing = protocol.FramingRaw
			logger, err := core.NewLogger(periph, cfg)
			if err != nil {
				println("Config error:", err.Error())
				continue
			}
			println("Baud:", baud)

			led.High()
			startTime := time.Now()
			for time.Since(startTime) < 3*time.Second {
				logger.WriteBytes(0, pattern)
			}
			logger.Flush()
			led.Low()

			if err := periph.Err(); err != nil {
				println("  PIO error:", err.Error())
			}
			time.Sleep(500 * time.Millisecond)
		}
	}
}
