// Package logger owns the process-wide slog logger used by routers that are
// not given one explicitly and by the navdemo CLI.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

// Field keys shared by every package that logs loader activity.
const (
	KeyLoader   = "loader"
	KeyTarget   = "target"
	KeyPath     = "path"
	KeyOutcome  = "outcome"
	KeyWarning  = "warning"
	KeyDuration = "duration_ms"
	KeyError    = "error"
)

var (
	mu       sync.RWMutex
	output   io.Writer = os.Stderr
	format             = "text"
	levelVar           = new(slog.LevelVar)
	slogger  *slog.Logger
)

func init() {
	levelVar.Set(slog.LevelInfo)
	reconfigure()
}

// reconfigure rebuilds the handler from the current settings. Callers must
// not hold mu.
func reconfigure() {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: levelVar}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	slogger = slog.New(handler)
}

// Init initializes the logger with the given configuration.
// Output can be "stdout", "stderr", or a file path.
func Init(cfg Config) error {
	if cfg.Output != "" {
		var w io.Writer
		switch strings.ToLower(cfg.Output) {
		case "stdout":
			w = os.Stdout
		case "stderr":
			w = os.Stderr
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
			}
			w = f
		}
		mu.Lock()
		output = w
		mu.Unlock()
	}

	if cfg.Level != "" {
		if err := SetLevel(cfg.Level); err != nil {
			return err
		}
	}
	if cfg.Format != "" {
		if err := SetFormat(cfg.Format); err != nil {
			return err
		}
	}

	reconfigure()
	return nil
}

// InitWithWriter points the logger at w. Used by tests and by callers that
// capture output.
func InitWithWriter(w io.Writer, level, fmtName string) {
	mu.Lock()
	output = w
	mu.Unlock()

	_ = SetLevel(level)
	_ = SetFormat(fmtName)
	reconfigure()
}

// SetLevel sets the minimum log level. Unknown names are rejected; an empty
// name leaves the level unchanged.
func SetLevel(level string) error {
	switch strings.ToUpper(level) {
	case "":
		return nil
	case "DEBUG":
		levelVar.Set(slog.LevelDebug)
	case "INFO":
		levelVar.Set(slog.LevelInfo)
	case "WARN", "WARNING":
		levelVar.Set(slog.LevelWarn)
	case "ERROR":
		levelVar.Set(slog.LevelError)
	default:
		return fmt.Errorf("logger: unknown level %q", level)
	}
	return nil
}

// SetFormat sets the output format (text or json)
func SetFormat(name string) error {
	name = strings.ToLower(name)
	switch name {
	case "":
		return nil
	case "text", "json":
	default:
		return fmt.Errorf("logger: unknown format %q", name)
	}

	mu.Lock()
	format = name
	mu.Unlock()
	reconfigure()
	return nil
}

// Get returns the current process logger.
func Get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
