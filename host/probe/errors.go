package probe

import "errors"

var (
	ErrBadFraming   = errors.New("unknown framing")
	ErrBadPort      = errors.New("port out of range")
	ErrBadFormat    = errors.New("unknown port format")
	ErrNotConnected = errors.New("probe not connected")
)
