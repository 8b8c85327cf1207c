package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cjeanneret/visionmcp/internal/config"
	"github.com/cjeanneret/visionmcp/internal/debug"
	"github.com/cjeanneret/visionmcp/internal/hw/camera"
	"github.com/cjeanneret/visionmcp/internal/mcpserver"
	"github.com/cjeanneret/visionmcp/internal/vision"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// overrides holds CLI values that replace config values when set.
type overrides struct {
	DebugLevel int    // -1 = use config
	Driver     string // "" = use config
}

func main() {
	// stdout carries the MCP stream; everything else goes to stderr.
	log.SetOutput(os.Stderr)

	// CLI flags
	cfgPath := flag.String("config", "", "path to YAML config file (empty = built-in defaults)")
	debugLevel := flag.Int("debug_level", -1, "override debug level 0-4 (-1 = use config)")
	driver := flag.String("driver", "", "override camera driver: opencv or mock")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Fprintf(os.Stderr, "%s %s\n", mcpserver.Name, version)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	ov := overrides{DebugLevel: *debugLevel, Driver: *driver}
	if err := validateCLIOverrides(ov); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}
	applyOverrides(cfg, ov)

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel, cfg.Defaults.LogFormat)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)
	debug.Value("Camera driver", cfg.Camera.Driver)

	opener, err := newOpenerFromConfig(cfg)
	if err != nil {
		log.Fatalf("init camera driver failed: %v", err)
	}
	session := vision.NewSession(opener)

	srv := mcpserver.New(session, cfg, version)
	err = srv.Run(ctx)
	session.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("mcp server: %v", err)
	}
	debug.Info("Shutdown complete")
}

// validateCLIOverrides checks CLI overrides. Unset values are ignored.
func validateCLIOverrides(ov overrides) error {
	if ov.DebugLevel != -1 && (ov.DebugLevel < 0 || ov.DebugLevel > 4) {
		return fmt.Errorf("debug_level must be between 0 and 4 (or -1), got %d", ov.DebugLevel)
	}
	switch strings.ToLower(strings.TrimSpace(ov.Driver)) {
	case "", "opencv", "mock":
	default:
		return fmt.Errorf("driver must be opencv or mock, got %q", ov.Driver)
	}
	return nil
}

// applyOverrides mutates cfg with overrides. Only set override values are applied.
func applyOverrides(cfg *config.Config, ov overrides) {
	if ov.DebugLevel >= 0 {
		cfg.Defaults.DebugLevel = ov.DebugLevel
	}
	if d := strings.ToLower(strings.TrimSpace(ov.Driver)); d != "" {
		cfg.Camera.Driver = d
	}
}

// newOpenerFromConfig selects a camera driver based on configuration.
func newOpenerFromConfig(cfg *config.Config) (camera.Opener, error) {
	switch cfg.Camera.Driver {
	case "mock":
		return camera.NewMockOpener(cfg.Camera.MockDevices), nil
	case "opencv":
		return newOpenCVOpener()
	default:
		return nil, fmt.Errorf("unsupported camera driver: %s", cfg.Camera.Driver)
	}
}
