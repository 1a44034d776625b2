// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MatusOllah/slogcolor"
	"github.com/mattn/go-isatty"
)

// ParseLevel maps a config level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// NewHandler returns a colored handler when w is a terminal and a plain
// text handler otherwise.
func NewHandler(w io.Writer, level slog.Leveler) slog.Handler {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		opts := *slogcolor.DefaultOptions
		opts.Level = level
		opts.TimeFormat = time.TimeOnly
		return slogcolor.NewHandler(w, &opts)
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

// Setup installs a default logger writing to stderr.
func Setup(level string) (*slog.LevelVar, error) {
	lvl, err := ParseLevel(level)
	var v slog.LevelVar
	v.Set(lvl)
	slog.SetDefault(slog.New(NewHandler(os.Stderr, &v)))
	return &v, err
}

// SetupFile installs a default logger writing to a file. The returned
// close function flushes and closes the file.
func SetupFile(path, level string) (*slog.LevelVar, func() error, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	var v slog.LevelVar
	v.Set(lvl)
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: &v})))
	return &v, f.Close, nil
}
