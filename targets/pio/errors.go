package pio

import "errors"

var errNoTXPin = errors.New("pio uart: TXD pin not connected")
