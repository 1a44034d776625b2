package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	t.Setenv("SHOKO_URL", "")
	t.Setenv("SHOKO_APIKEY", "")
	cfg := Default()

	if cfg.Server.URL != DefaultServerURL {
		t.Errorf("Server.URL = %q, want %q", cfg.Server.URL, DefaultServerURL)
	}
	if cfg.Channel.Endpoint != "/signalr/events" {
		t.Errorf("Channel.Endpoint = %q", cfg.Channel.Endpoint)
	}
	if cfg.Channel.Unit() != 2*time.Second {
		t.Errorf("Unit() = %v, want 2s", cfg.Channel.Unit())
	}
	if cfg.Channel.Ceiling() != time.Minute {
		t.Errorf("Ceiling() = %v, want 1m", cfg.Channel.Ceiling())
	}
	if cfg.Channel.MaxAttempts != 4 {
		t.Errorf("MaxAttempts = %d, want 4", cfg.Channel.MaxAttempts)
	}
	if cfg.Channel.Debounce() != 5*time.Second {
		t.Errorf("Debounce() = %v, want 5s", cfg.Channel.Debounce())
	}
	if !cfg.UI.Notifications {
		t.Error("notifications should default to on")
	}
	if cfg.UI.ToastDuration() != 4*time.Second {
		t.Errorf("ToastDuration() = %v, want 4s", cfg.UI.ToastDuration())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SHOKO_URL", "http://media:8111")
	t.Setenv("SHOKO_APIKEY", "k-123")
	t.Setenv("SHOKODASH_LOG_LEVEL", "debug")

	cfg := Default()
	if cfg.Server.URL != "http://media:8111" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Server.APIKey != "k-123" {
		t.Errorf("Server.APIKey = %q", cfg.Server.APIKey)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	t.Setenv("SHOKO_URL", "")
	t.Setenv("SHOKO_APIKEY", "")
	t.Setenv("SHOKODASH_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
url = "http://nas:8111"

[channel]
unit_ms = 1000

[ui]
notifications = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "http://nas:8111" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Channel.UnitMillis != 1000 {
		t.Errorf("UnitMillis = %d, want 1000", cfg.Channel.UnitMillis)
	}
	if cfg.Channel.CeilingMS != 60000 {
		t.Errorf("CeilingMS = %d, want default 60000", cfg.Channel.CeilingMS)
	}
	if cfg.Channel.Transport != TransportAuto {
		t.Errorf("Transport = %q, want auto", cfg.Channel.Transport)
	}
	if cfg.UI.Notifications {
		t.Error("explicit notifications = false must be kept")
	}
	if cfg.Server.TimeoutSeconds != 10 {
		t.Errorf("TimeoutSeconds = %d, want 10", cfg.Server.TimeoutSeconds)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"transport", "[channel]\ntransport = \"carrier-pigeon\"\n", "channel.transport"},
		{"level", "[log]\nlevel = \"loud\"\n", "log.level"},
		{"ceiling", "[channel]\nunit_ms = 5000\nceiling_ms = 100\n", "ceiling_ms"},
		{"syntax", "[server\n", "parsing config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Channel.MaxAttempts != 4 {
		t.Errorf("expected defaults, got %+v", cfg.Channel)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("SHOKO_URL", "")
	t.Setenv("SHOKO_APIKEY", "")
	t.Setenv("SHOKODASH_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Server.APIKey = "secret"
	cfg.UI.Theme = "latte"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config perms = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Server.APIKey != "secret" {
		t.Errorf("APIKey = %q", loaded.Server.APIKey)
	}
	if loaded.UI.Theme != "latte" {
		t.Errorf("Theme = %q", loaded.UI.Theme)
	}
}

func TestPrintContainsSections(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(Default(), &buf); err != nil {
		t.Fatalf("Print: %v", err)
	}
	out := buf.String()
	for _, section := range []string{"[server]", "[channel]", "[ui]", "[log]"} {
		if !strings.Contains(out, section) {
			t.Errorf("output missing %s", section)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get user home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~", home},
		{"~/foo", filepath.Join(home, "foo")},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandHome(tt.input); got != tt.expected {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
