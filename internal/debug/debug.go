package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Debug levels
const (
	LevelOff     = 0 // No output
	LevelInfo    = 1 // Important info (camera opened, files written)
	LevelLive    = 2 // Live info (burst progress, probes)
	LevelVerbose = 3 // Verbose (negotiated properties, schedule details)
	LevelTrace   = 4 // Trace (every frame read, very low level)
)

// slog levels for the intermediate debug levels.
const (
	slogLive  = slog.LevelInfo - 2
	slogTrace = slog.LevelDebug - 4
)

var (
	mu     sync.RWMutex
	level  int
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// Init initializes the debug system with a level (0-4), writing to stderr.
// Stdout carries the MCP stream and must never be used for diagnostics.
// 0 = no output
// 1 = important info (open/close, saved files)
// 2 = live info (burst progress, probes)
// 3 = verbose (negotiated properties, schedule)
// 4 = trace (individual frame reads)
func Init(debugLevel int, format string) {
	SetOutput(os.Stderr, debugLevel, format)
}

// SetOutput rebinds the logger to w. format is "text" or "json".
func SetOutput(w io.Writer, debugLevel int, format string) {
	opts := &slog.HandlerOptions{Level: slogLevel(debugLevel)}

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	if debugLevel <= LevelOff {
		h = slog.NewTextHandler(io.Discard, nil)
	}

	mu.Lock()
	level = debugLevel
	logger = slog.New(h).With("component", "vision")
	mu.Unlock()
}

func slogLevel(debugLevel int) slog.Level {
	switch {
	case debugLevel >= LevelTrace:
		return slogTrace
	case debugLevel >= LevelVerbose:
		return slog.LevelDebug
	case debugLevel >= LevelLive:
		return slogLive
	default:
		return slog.LevelInfo
	}
}

// Logger returns the underlying slog logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Level returns the current debug level.
func Level() int {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// IsEnabled returns true if debug level is >= the requested level.
func IsEnabled(minLevel int) bool {
	return Level() >= minLevel
}

func logf(minLevel int, l slog.Level, format string, args ...any) {
	if !IsEnabled(minLevel) {
		return
	}
	Logger().Log(context.Background(), l, fmt.Sprintf(format, args...))
}

// Info prints a level 1 message (important info).
func Info(format string, args ...any) {
	logf(LevelInfo, slog.LevelInfo, format, args...)
}

// Live prints a level 2 message (live info).
func Live(format string, args ...any) {
	logf(LevelLive, slogLive, format, args...)
}

// Verbose prints a level 3 message (verbose).
func Verbose(format string, args ...any) {
	logf(LevelVerbose, slog.LevelDebug, format, args...)
}

// Trace prints a level 4 message (trace).
func Trace(format string, args ...any) {
	logf(LevelTrace, slogTrace, format, args...)
}

// Value prints a named value (level 1).
func Value(name string, value any) {
	if !IsEnabled(LevelInfo) {
		return
	}
	Logger().Info("value", "name", name, "value", value)
}

// Section prints a section marker (level 3).
func Section(name string) {
	if !IsEnabled(LevelVerbose) {
		return
	}
	Logger().Debug("━━━━━━━━ " + name + " ━━━━━━━━")
}

// Error prints a debug error (level 1+).
func Error(err error) {
	if err == nil || !IsEnabled(LevelInfo) {
		return
	}
	Logger().Error(err.Error())
}
