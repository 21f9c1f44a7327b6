// Command handover-device runs a simulated connection-handover device.
//
// The simulated wireless stack replaces the radio: it generates OOB pairing
// material, accepts scripted peer connections from the interactive console
// and delivers lifecycle events to the coordinator exactly as a real stack
// would. Bonding state and the notification subscription persist across
// runs in a JSON state file.
//
// Usage:
//
//	handover-device [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-store string      State file path (default "handover-state.json")
//	-address string    Base device address, colon-separated hex (default "00:A0:50:00:00:00")
//	-unique-id uint    64-bit unique hardware identifier (random if 0)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-interactive       Run the interactive console (default true)
//
// Examples:
//
//	# Start with defaults and the interactive console
//	handover-device
//
//	# Start with a fixed identity and verbose logging
//	handover-device -unique-id 0xCCBBAA000000 -log-level debug
//
//	# Start from a configuration file
//	handover-device -config /etc/handover/device.yaml
package main

import (
	"crypto/rand"
	"encoding/binary"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/handover-protocol/handover-go/pkg/button"
	"github.com/handover-protocol/handover-go/pkg/coordinator"
	"github.com/handover-protocol/handover-go/pkg/gatt"
	"github.com/handover-protocol/handover-go/pkg/log"
	"github.com/handover-protocol/handover-go/pkg/store"
)

// Config holds the device configuration. YAML fields mirror the flags; an
// explicitly set flag wins over the file.
type Config struct {
	StorePath string `yaml:"store"`
	Address   string `yaml:"address"`
	UniqueID  uint64 `yaml:"unique_id"`
	LogLevel  string `yaml:"log_level"`
}

var (
	config      Config
	configFile  string
	interactive bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&config.StorePath, "store", "handover-state.json", "State file path")
	flag.StringVar(&config.Address, "address", "00:A0:50:00:00:00", "Base device address, colon-separated hex")
	flag.Uint64Var(&config.UniqueID, "unique-id", 0, "64-bit unique hardware identifier (random if 0)")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&interactive, "interactive", true, "Run the interactive console")
}

func main() {
	flag.Parse()

	if configFile != "" {
		if err := applyConfigFile(configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}
	}

	baseAddr, err := parseAddress(config.Address)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if config.UniqueID == 0 {
		config.UniqueID = randomUniqueID()
	}

	logger := log.NewSlogAdapter(newSlog(config.LogLevel))

	kv, err := store.NewFileKV(config.StorePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open state file: %v\n", err)
		os.Exit(1)
	}
	st := store.New(kv)

	stack := NewSimStack(logger)

	attrs := gatt.NewServer(gatt.Config{
		Store:    st,
		Notifier: stack,
		Logger:   logger,
	})

	coord := coordinator.New(coordinator.Config{
		BaseAddress: baseAddr,
		UniqueID:    config.UniqueID,
		Logger:      logger,
	}, stack, stack.Tag(), attrs, st)

	// Link events reach the coordinator through the attribute server, which
	// owns the connection handle.
	attrs.SetLinkHooks(
		func(connectionID uint16) { reportEventError(coord.HandleEvent(coordinator.LinkConnected{ConnectionID: connectionID})) },
		func() { reportEventError(coord.HandleEvent(coordinator.LinkDisconnected{})) },
	)
	stack.Attach(attrs, coord.HandleEvent)

	trigger := button.NewClassifier(button.Config{
		Notify: coord.SendNotification,
		Reset:  coord.ResetBonding,
		Logger: logger,
	})

	if err := coord.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start coordinator: %v\n", err)
		os.Exit(1)
	}
	stack.Enable()

	if interactive {
		console, err := NewConsole(coord, stack, attrs, trigger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start console: %v\n", err)
			os.Exit(1)
		}
		console.Run()
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}

// applyConfigFile overlays YAML settings under flags that were left at
// their defaults.
func applyConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if fileCfg.StorePath != "" && !set["store"] {
		config.StorePath = fileCfg.StorePath
	}
	if fileCfg.Address != "" && !set["address"] {
		config.Address = fileCfg.Address
	}
	if fileCfg.UniqueID != 0 && !set["unique-id"] {
		config.UniqueID = fileCfg.UniqueID
	}
	if fileCfg.LogLevel != "" && !set["log-level"] {
		config.LogLevel = fileCfg.LogLevel
	}
	return nil
}

// parseAddress parses a colon-separated hex device address into stack byte
// order.
func parseAddress(s string) ([store.PeerAddressSize]byte, error) {
	var addr [store.PeerAddressSize]byte
	parts := strings.Split(s, ":")
	if len(parts) != store.PeerAddressSize {
		return addr, fmt.Errorf("address must have %d bytes, got %d", store.PeerAddressSize, len(parts))
	}
	for i, p := range parts {
		var b byte
		if _, err := fmt.Sscanf(p, "%02X", &b); err != nil {
			return addr, fmt.Errorf("address byte %q: %w", p, err)
		}
		addr[i] = b
	}
	return addr, nil
}

func randomUniqueID() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fall back to a time-derived value; uniqueness only matters across
		// simultaneously running simulations.
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(buf[:])
}

func newSlog(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func reportEventError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Event rejected: %v\n", err)
	}
}
