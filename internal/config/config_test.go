package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	hwerrors "github.com/tonhe/hostwatch/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Theme != "solarized-dark" {
		t.Errorf("expected default theme 'solarized-dark', got %q", cfg.Theme)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("expected poll interval 5s, got %v", cfg.PollInterval)
	}
	if cfg.NotifyDuration != 3*time.Second {
		t.Errorf("expected notify duration 3s, got %v", cfg.NotifyDuration)
	}
	if cfg.HistorySize != 120 {
		t.Errorf("expected history size 120, got %d", cfg.HistorySize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigSaveLoad(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Theme = "dracula"
	cfg.Server = "http://10.0.0.5:8080"
	cfg.PollInterval = 15 * time.Second

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if loaded.Theme != "dracula" {
		t.Errorf("expected theme 'dracula', got %q", loaded.Theme)
	}
	if loaded.Server != "http://10.0.0.5:8080" {
		t.Errorf("expected server to round-trip, got %q", loaded.Server)
	}
	if loaded.PollInterval != 15*time.Second {
		t.Errorf("expected poll interval 15s, got %v", loaded.PollInterval)
	}
}

func TestConfigLoadMissing(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("LoadConfig() should return defaults for missing file, got error: %v", err)
	}
	if cfg.Theme != "solarized-dark" {
		t.Errorf("expected default theme, got %q", cfg.Theme)
	}
}

func TestConfigLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("server = [unterminated"), 0600)

	_, err := LoadConfig(path)
	if !hwerrors.IsCode(err, hwerrors.ErrConfig) {
		t.Fatalf("expected CONFIG error, got %v", err)
	}
}

func TestConfigBadDurationKeepsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("poll_interval = \"soon\"\nlanguage = \"zh\"\n"), 0600)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("expected default interval, got %v", cfg.PollInterval)
	}
	if cfg.Language != "zh" {
		t.Errorf("expected language zh, got %q", cfg.Language)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server = "localhost:5000"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for URL without scheme")
	}

	cfg = DefaultConfig()
	cfg.PollInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero interval")
	}
}

func TestApplyOverridesFromEnv(t *testing.T) {
	t.Setenv("HOSTWATCH_SERVER", "http://metrics.lan:5000/")
	t.Setenv("HOSTWATCH_POLL_INTERVAL", "30s")
	t.Setenv("HOSTWATCH_HISTORY_SIZE", "60")

	cfg := DefaultConfig()
	if err := ApplyOverrides(cfg, NewViper()); err != nil {
		t.Fatalf("ApplyOverrides() error: %v", err)
	}
	if cfg.Server != "http://metrics.lan:5000" {
		t.Errorf("expected env server, got %q", cfg.Server)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("expected 30s, got %v", cfg.PollInterval)
	}
	if cfg.HistorySize != 60 {
		t.Errorf("expected 60, got %d", cfg.HistorySize)
	}
	if cfg.Theme != "solarized-dark" {
		t.Errorf("unset keys must keep file values, got theme %q", cfg.Theme)
	}
}

func TestApplyOverridesFromFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(KeyTheme, "", "")
	fs.String(KeyRequestTimeout, "", "")
	if err := fs.Parse([]string{"--theme", "nord", "--request_timeout", "2s"}); err != nil {
		t.Fatal(err)
	}

	v := NewViper()
	if err := v.BindPFlags(fs); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	if err := ApplyOverrides(cfg, v); err != nil {
		t.Fatalf("ApplyOverrides() error: %v", err)
	}
	if cfg.Theme != "nord" {
		t.Errorf("expected flag theme, got %q", cfg.Theme)
	}
	if cfg.RequestTimeout != 2*time.Second {
		t.Errorf("expected 2s, got %v", cfg.RequestTimeout)
	}
	if cfg.Language != "en" {
		t.Errorf("unchanged flag must not override, got %q", cfg.Language)
	}
}

func TestApplyOverridesBadDuration(t *testing.T) {
	t.Setenv("HOSTWATCH_NOTIFY_DURATION", "forever")
	err := ApplyOverrides(DefaultConfig(), NewViper())
	if !hwerrors.IsCode(err, hwerrors.ErrConfig) {
		t.Fatalf("expected CONFIG error, got %v", err)
	}
}
