package core

import "errors"

var ErrUnsupportedBaudRate = errors.New("unsupported UARTE baud rate")

// baudRates maps nominal rates onto BAUDRATE register encodings
var baudRates = map[uint32]uint32{
	1_200:     0x0004_F000,
	2_400:     0x0009_D000,
	4_800:     0x0013_B000,
	9_600:     0x0027_5000,
	14_400:    0x003A_F000,
	19_200:    0x004E_A000,
	28_800:    0x0075_C000,
	31_250:    0x0080_0000,
	38_400:    0x009D_0000,
	56_000:    0x00E5_0000,
	57_600:    0x00EB_0000,
	76_800:    0x013A_9000,
	115_200:   0x01D6_0000,
	230_400:   0x03B0_0000,
	250_000:   0x0400_0000,
	460_800:   0x0740_0000,
	921_600:   0x0F00_0000,
	1_000_000: 0x1000_0000,
}

// BaudRate returns the BAUDRATE register value for a nominal baud rate
func BaudRate(nominal uint32) (uint32, error) {
	reg, ok := baudRates[nominal]
	if !ok {
		return 0, ErrUnsupportedBaudRate
	}
	return reg, nil
}

// SupportedBaudRates returns the number of rates in the table
func SupportedBaudRates() int {
	return len(baudRates)
}

// NominalBaudRate maps a BAUDRATE register value back to its nominal rate.
// Used by peripherals that clock the line themselves.
func NominalBaudRate(reg uint32) (uint32, bool) {
	for nominal, r := range baudRates {
		if r == reg {
			return nominal, true
		}
	}
	return 0, false
}
