package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Dicklesworthstone/shokodash/internal/watcher"
)

// Watch starts watching the config file at path for changes.
// It calls onChange with the reloaded config when a change is detected.
// It returns a close function to stop watching.
func Watch(path string, onChange func(*Config)) (func(), error) {
	if path == "" {
		path = DefaultPath()
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	w, err := watcher.New(func(events []watcher.Event) {
		cfg, err := Load(absPath)
		if err != nil {
			slog.Warn("reloading config", "path", absPath, "error", err)
			return
		}
		if onChange != nil {
			onChange(cfg)
		}
	},
		watcher.WithDebounceDuration(500*time.Millisecond),
		watcher.WithErrorHandler(func(err error) {
			slog.Warn("config watcher error", "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}

	if err := w.Add(absPath); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching config path %s: %w", absPath, err)
	}

	return func() {
		w.Close()
	}, nil
}
