// Package config loads and writes the shokodash configuration file.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Channel ChannelConfig `toml:"channel"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig describes how to reach the Shoko server.
type ServerConfig struct {
	URL            string `toml:"url"`             // Base URL, e.g. http://localhost:8111
	APIKey         string `toml:"apikey"`          // API key obtained via `shokodash login`
	Username       string `toml:"username"`        // Remembered for login prompts
	TimeoutSeconds int    `toml:"timeout_seconds"` // REST request timeout
}

// ChannelConfig holds push-channel and reconnect settings.
type ChannelConfig struct {
	Endpoint    string `toml:"endpoint"`     // Hub path relative to the server URL
	Transport   string `toml:"transport"`    // auto, websockets or longpolling
	UnitMillis  int    `toml:"unit_ms"`      // Backoff unit multiplied by e^attempt
	CeilingMS   int    `toml:"ceiling_ms"`   // Upper bound for a single retry delay
	MaxAttempts int    `toml:"max_attempts"` // Attempt counter stops growing here
	DebounceMS  int    `toml:"debounce_ms"`  // Window collapsing rapid close events
}

// UIConfig holds dashboard presentation settings.
type UIConfig struct {
	Theme         string `toml:"theme"`          // auto, mocha, latte, plain
	Notifications bool   `toml:"notifications"`  // Show toast notifications
	ToastSeconds  int    `toml:"toast_seconds"`  // Auto-close delay for transient toasts
	ToastPosition string `toml:"toast_position"` // top or bottom
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	File  string `toml:"file"`  // Log file used while the dashboard owns the terminal
}

// Default hub path and transport.
const (
	DefaultServerURL = "http://127.0.0.1:8111"
	DefaultEndpoint  = "/signalr/events"
	TransportAuto    = "auto"
	TransportWS      = "websockets"
	TransportLP      = "longpolling"
)

// DefaultChannelConfig returns the reconnect defaults: e^n * 2s, capped at
// 60s, attempt counter held at 4, 5s close debounce.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		Endpoint:    DefaultEndpoint,
		Transport:   TransportAuto,
		UnitMillis:  2000,
		CeilingMS:   60000,
		MaxAttempts: 4,
		DebounceMS:  5000,
	}
}

// Unit returns the backoff unit as a duration.
func (c ChannelConfig) Unit() time.Duration { return time.Duration(c.UnitMillis) * time.Millisecond }

// Ceiling returns the maximum retry delay as a duration.
func (c ChannelConfig) Ceiling() time.Duration { return time.Duration(c.CeilingMS) * time.Millisecond }

// Debounce returns the close debounce window as a duration.
func (c ChannelConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Timeout returns the REST timeout as a duration.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// ToastDuration returns the auto-close delay for transient toasts.
func (u UIConfig) ToastDuration() time.Duration {
	return time.Duration(u.ToastSeconds) * time.Second
}

// DefaultPath returns the default config file path
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "shokodash", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "shokodash", "config.toml")
}

// DefaultLogFile returns the log file used by the dashboard.
func DefaultLogFile() string {
	return filepath.Join(filepath.Dir(DefaultPath()), "shokodash.log")
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			URL:            DefaultServerURL,
			TimeoutSeconds: 10,
		},
		Channel: DefaultChannelConfig(),
		UI: UIConfig{
			Theme:         "auto",
			Notifications: true,
			ToastSeconds:  4,
			ToastPosition: "bottom",
		},
		Log: LogConfig{
			Level: "info",
			File:  DefaultLogFile(),
		},
	}
	applyEnv(cfg)
	return cfg
}

// Load reads a config file and fills in defaults for missing values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	def := Default()
	if cfg.Server.URL == "" {
		cfg.Server.URL = def.Server.URL
	}
	if cfg.Server.TimeoutSeconds <= 0 {
		cfg.Server.TimeoutSeconds = def.Server.TimeoutSeconds
	}
	if cfg.Channel.Endpoint == "" {
		cfg.Channel.Endpoint = def.Channel.Endpoint
	}
	if cfg.Channel.Transport == "" {
		cfg.Channel.Transport = def.Channel.Transport
	}
	if cfg.Channel.UnitMillis <= 0 {
		cfg.Channel.UnitMillis = def.Channel.UnitMillis
	}
	if cfg.Channel.CeilingMS <= 0 {
		cfg.Channel.CeilingMS = def.Channel.CeilingMS
	}
	if cfg.Channel.MaxAttempts <= 0 {
		cfg.Channel.MaxAttempts = def.Channel.MaxAttempts
	}
	if cfg.Channel.DebounceMS <= 0 {
		cfg.Channel.DebounceMS = def.Channel.DebounceMS
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = def.UI.Theme
	}
	if !md.IsDefined("ui", "notifications") {
		cfg.UI.Notifications = def.UI.Notifications
	}
	if cfg.UI.ToastSeconds <= 0 {
		cfg.UI.ToastSeconds = def.UI.ToastSeconds
	}
	if cfg.UI.ToastPosition == "" {
		cfg.UI.ToastPosition = def.UI.ToastPosition
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.File == "" {
		cfg.Log.File = def.Log.File
	}
	cfg.Log.File = ExpandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	return &cfg, nil
}

// LoadOrDefault loads the config at path, falling back to defaults when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return nil, err
}

// Validate checks field values that have a closed set of options.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Channel.Transport) {
	case TransportAuto, TransportWS, TransportLP:
	default:
		return fmt.Errorf("invalid channel.transport %q (want auto, websockets or longpolling)", c.Channel.Transport)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if c.Channel.CeilingMS < c.Channel.UnitMillis {
		return fmt.Errorf("channel.ceiling_ms (%d) must not be below channel.unit_ms (%d)", c.Channel.CeilingMS, c.Channel.UnitMillis)
	}
	return nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SHOKO_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("SHOKO_APIKEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("SHOKODASH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// CreateDefault writes the default config to DefaultPath. It fails if the
// file already exists.
func CreateDefault() (string, error) {
	path := DefaultPath()
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}
	if err := Save(Default(), path); err != nil {
		return "", err
	}
	return path, nil
}

// Save writes cfg to path, creating parent directories as needed.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := Print(cfg, f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Print writes the config as commented TOML.
func Print(cfg *Config, w io.Writer) error {
	fmt.Fprintln(w, "# shokodash configuration")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Shoko server connection")
	if err := encodeSection(w, "server", cfg.Server); err != nil {
		return err
	}

	fmt.Fprintln(w, "# Push channel and reconnect backoff: delay = min(ceiling, e^attempt * unit)")
	if err := encodeSection(w, "channel", cfg.Channel); err != nil {
		return err
	}

	fmt.Fprintln(w, "# Dashboard presentation")
	if err := encodeSection(w, "ui", cfg.UI); err != nil {
		return err
	}

	fmt.Fprintln(w, "# Logging")
	return encodeSection(w, "log", cfg.Log)
}

func encodeSection(w io.Writer, name string, v any) error {
	if err := toml.NewEncoder(w).Encode(map[string]any{name: v}); err != nil {
		return fmt.Errorf("encoding [%s]: %w", name, err)
	}
	_, err := fmt.Fprintln(w)
	return err
}
