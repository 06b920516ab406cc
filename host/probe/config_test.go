package probe

import (
	"errors"
	"testing"

	"dso/host/serial"
	"dso/protocol"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{"device": "/dev/ttyACM1"}`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Baud != serial.DefaultBaud {
		t.Errorf("Baud = %d, want %d", cfg.Baud, serial.DefaultBaud)
	}
	if cfg.FramingMode() != protocol.FramingHeader {
		t.Errorf("Framing = %v, want header", cfg.FramingMode())
	}
	if cfg.PortMask() != 0xFFFF {
		t.Errorf("PortMask = 0x%X, want every port", cfg.PortMask())
	}
	if pc := cfg.Ports[7]; pc.Name != "7" || pc.Format != FormatText {
		t.Errorf("Port 7 = %+v, want text named 7", pc)
	}
}

func TestLoadConfigPorts(t *testing.T) {
	data := []byte(`{
		"device": "/dev/ttyUSB0",
		"baud": 1000000,
		"backend": "bugst",
		"framing": "raw",
		"ports": {
			"0": {"name": "log"},
			"3": {"name": "adc", "format": "u16"}
		}
	}`)
	cfg, err := LoadConfig(data)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.FramingMode() != protocol.FramingRaw {
		t.Errorf("Framing = %v, want raw", cfg.FramingMode())
	}
	if cfg.PortMask() != 1<<0|1<<3 {
		t.Errorf("PortMask = 0x%X, want 0x9", cfg.PortMask())
	}
	if got := cfg.PortList(); len(got) != 2 || got[0] != 0 || got[1] != 3 {
		t.Errorf("PortList = %v, want [0 3]", got)
	}
	if pc := cfg.Ports[0]; pc.Format != FormatText {
		t.Errorf("Port 0 format = %q, want text", pc.Format)
	}

	sc := cfg.SerialConfig()
	if sc.Device != "/dev/ttyUSB0" || sc.Baud != 1000000 || sc.Backend != serial.BackendBugst {
		t.Errorf("SerialConfig = %+v", sc)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	testCases := []struct {
		name string
		json string
		want error
	}{
		{"framing", `{"framing": "cobs"}`, ErrBadFraming},
		{"port", `{"ports": {"16": {}}}`, ErrBadPort},
		{"format", `{"ports": {"1": {"format": "f32"}}}`, ErrBadFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig([]byte(tc.json))
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := LoadConfig([]byte(`{"baud": "fast"}`)); err == nil {
		t.Error("LoadConfig accepted malformed JSON")
	}
}
