package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"dso/host/probe"
	"dso/host/serial"
	"dso/protocol"
)

var (
	device      = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud        = flag.Int("baud", serial.DefaultBaud, "Baud rate of the target logger")
	backend     = flag.String("backend", serial.BackendTarm, "Serial library: tarm or bugst")
	framing     = flag.String("framing", "header", "Wire framing: header or raw")
	ports       = flag.String("ports", "", "Comma separated ports to show (default all)")
	configFile  = flag.String("config", "", "JSON probe configuration")
	list        = flag.Bool("list", false, "List serial ports and exit")
	interactive = flag.Bool("i", false, "Read commands from stdin while printing")
	verbose     = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *list {
		names, err := serial.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p := probe.New(cfg, os.Stdout, logger)
	if err := p.Connect(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *interactive {
		go commandLoop(ctx, stop, p)
	}

	if err := p.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("probe stopped", "err", err)
		os.Exit(1)
	}
	p.PrintStats(os.Stderr)
}

// loadConfig merges the config file, if any, with explicitly set flags
func loadConfig() (*probe.Config, error) {
	cfg := probe.DefaultConfig(*device)
	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		cfg, err = probe.LoadConfig(data)
		if err != nil {
			return nil, err
		}
	}

	var portErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			cfg.Device = *device
		case "baud":
			cfg.Baud = *baud
		case "backend":
			cfg.Backend = *backend
		case "framing":
			cfg.Framing = *framing
		case "ports":
			selected, err := parsePorts(*ports)
			if err != nil {
				portErr = err
				return
			}
			cfg.Ports = make(map[uint8]probe.PortConfig, len(selected))
			for _, port := range selected {
				cfg.Ports[port] = probe.PortConfig{Name: strconv.Itoa(int(port)), Format: probe.FormatText}
			}
		}
	})
	if portErr != nil {
		return nil, portErr
	}
	if cfg.Device == "" {
		cfg.Device = *device
	}
	return cfg, cfg.Validate()
}

func parsePorts(s string) ([]uint8, error) {
	var out []uint8
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		port, err := parsePort(field)
		if err != nil {
			return nil, err
		}
		out = append(out, port)
	}
	return out, nil
}

func parsePort(s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil || n > protocol.PortMax {
		return 0, fmt.Errorf("invalid port %q (0-%d)", s, protocol.PortMax)
	}
	return uint8(n), nil
}

// commandLoop reads probe commands from stdin
func commandLoop(ctx context.Context, stop context.CancelFunc, p *probe.Probe) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		args, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "quit", "exit", "q":
			stop()
			return

		case "help", "?":
			printHelp()

		case "stats":
			p.PrintStats(os.Stderr)

		case "ports":
			fmt.Fprintf(os.Stderr, "Showing ports: 0x%04X\n", p.PortMask())

		case "enable", "disable":
			if len(args) < 2 {
				fmt.Fprintf(os.Stderr, "Usage: %s <port>...\n", args[0])
				continue
			}
			for _, arg := range args[1:] {
				port, err := parsePort(arg)
				if err == nil {
					err = p.SetPortEnabled(port, args[0] == "enable")
				}
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				}
			}

		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s (type 'help' for available commands)\n", args[0])
		}
	}
}

func printHelp() {
	fmt.Fprintln(os.Stderr, "\nAvailable commands:")
	fmt.Fprintln(os.Stderr, "  help             - Show this help message")
	fmt.Fprintln(os.Stderr, "  stats            - Print packet and decoder counters")
	fmt.Fprintln(os.Stderr, "  ports            - Print the ports being shown")
	fmt.Fprintln(os.Stderr, "  enable <port>..  - Show ports")
	fmt.Fprintln(os.Stderr, "  disable <port>.. - Hide ports")
	fmt.Fprintln(os.Stderr, "  quit/exit/q      - Exit the program")
	fmt.Fprintln(os.Stderr)
}
