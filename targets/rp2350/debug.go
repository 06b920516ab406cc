//go:build rp2350

package main

import (
	"machine"
)

// initDebugUART configures UART1 on GPIO36 (TX) and GPIO37 (RX).
// The logger owns the TX line afterwards; RX is left to the driver.
func initDebugUART(baud uint32) (*machine.UART, error) {
	uart := machine.UART1
	err := uart.Configure(machine.UARTConfig{
		BaudRate: baud,
		TX:       machine.GPIO36, // UART1 TX
		RX:       machine.GPIO37, // UART1 RX
	})
	if err != nil {
		return nil, err
	}
	return uart, nil
}
