// dso-sim runs the device-side logger against a simulated UARTE so a probe
// can be exercised without hardware. The wire goes to stdout or a serial
// port (for example one end of a null-modem pair).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"dso/core"
	"dso/host/serial"
	"dso/protocol"
)

var (
	device   = flag.String("device", "", "Serial device to transmit on (default stdout)")
	baud     = flag.Uint("baud", core.DefaultBaudRate, "Nominal baud rate")
	framing  = flag.String("framing", "header", "Wire framing: header or raw")
	bufSize  = flag.Int("buf", core.DefaultBufSize, "Transmit buffer size in bytes")
	ports    = flag.Uint("ports", 0x3, "Port mask the simulated probe listens on")
	count    = flag.Int("count", 10, "Counter samples to send on port 1 (0 = read lines from stdin)")
	interval = flag.Duration("interval", 100*time.Millisecond, "Delay between counter samples")
	realtime = flag.Bool("realtime", true, "Pace the simulated line at the baud rate")
)

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	wire, closeWire, err := openWire()
	if err != nil {
		logger.Error("cannot open wire", "err", err)
		os.Exit(1)
	}
	defer closeWire()

	mode, ok := protocol.ParseFraming(*framing)
	if !ok {
		logger.Error("unknown framing", "framing", *framing)
		os.Exit(2)
	}

	var byteTime time.Duration
	if *realtime {
		byteTime = core.CharTime(uint32(*baud))
	}
	periph := core.NewHostUARTE(byteTime, wire)

	core.ProbePorts.Store(uint32(*ports))
	cfg := core.DefaultConfig(0)
	cfg.BaudRate = uint32(*baud)
	cfg.BufSize = *bufSize
	cfg.Framing = mode

	l, err := core.NewLogger(periph, cfg)
	if err != nil {
		logger.Error("invalid logger configuration", "err", err)
		os.Exit(2)
	}
	core.SetLogger(l)
	core.SetDebugWriter(l.DebugWriter(0))
	core.SetDebugEnabled(true)

	logger.Info("simulating", "baud", *baud, "framing", mode, "chunk", l.ChunkSize())
	core.DebugPrintln("dso-sim up")

	if *count == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			core.DebugPrintln(scanner.Text())
		}
	} else {
		for i := 0; i < *count; i++ {
			if core.LogIsEnabled(1) {
				core.LogWriteU32(1, uint32(i))
			}
			fmt.Fprintf(l.PortWriter(0), "sample %d\n", i)
			time.Sleep(*interval)
		}
	}

	core.LogFlush()
	periph.Wait()
	logger.Info("done", "transmissions", periph.StartCount())
}

func openWire() (io.Writer, func(), error) {
	if *device == "" {
		return os.Stdout, func() {}, nil
	}
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = int(*baud)
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return port, func() { port.Close() }, nil
}
