package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	hwerrors "github.com/tonhe/hostwatch/internal/errors"
)

// EnvPrefix prefixes environment overrides, e.g. HOSTWATCH_SERVER.
const EnvPrefix = "HOSTWATCH"

// Config keys, shared by the TOML file, viper and the CLI.
const (
	KeyServer         = "server"
	KeyTheme          = "theme"
	KeyLanguage       = "language"
	KeyLogLevel       = "log_level"
	KeyPollInterval   = "poll_interval"
	KeyRequestTimeout = "request_timeout"
	KeyNotifyDuration = "notify_duration"
	KeyHistorySize    = "history_size"
)

type Config struct {
	Server            string        `toml:"server"`
	Theme             string        `toml:"theme"`
	Language          string        `toml:"language"`
	LogLevel          string        `toml:"log_level"`
	HistorySize       int           `toml:"history_size"`
	PollInterval      time.Duration `toml:"-"`
	PollIntervalStr   string        `toml:"poll_interval"`
	RequestTimeout    time.Duration `toml:"-"`
	RequestTimeoutStr string        `toml:"request_timeout"`
	NotifyDuration    time.Duration `toml:"-"`
	NotifyDurationStr string        `toml:"notify_duration"`
}

func DefaultConfig() *Config {
	return &Config{
		Server:            "http://localhost:5000",
		Theme:             "solarized-dark",
		Language:          "en",
		LogLevel:          "info",
		HistorySize:       120,
		PollInterval:      5 * time.Second,
		PollIntervalStr:   "5s",
		RequestTimeout:    10 * time.Second,
		RequestTimeoutStr: "10s",
		NotifyDuration:    3 * time.Second,
		NotifyDurationStr: "3s",
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, hwerrors.Wrap(err, hwerrors.ErrConfig, "read config "+path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &hwerrors.Error{
			Code:       hwerrors.ErrConfig,
			Message:    "invalid config " + path,
			Suggestion: "Check the TOML syntax, or run 'hostwatch config show' after fixing it",
			Cause:      err,
		}
	}
	cfg.PollInterval = parseDuration(cfg.PollIntervalStr, cfg.PollInterval)
	cfg.RequestTimeout = parseDuration(cfg.RequestTimeoutStr, cfg.RequestTimeout)
	cfg.NotifyDuration = parseDuration(cfg.NotifyDurationStr, cfg.NotifyDuration)
	return cfg, nil
}

func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return hwerrors.Wrap(err, hwerrors.ErrConfig, "create config dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return hwerrors.Wrap(err, hwerrors.ErrConfig, "write config "+path)
	}
	defer f.Close()
	return cfg.WriteTOML(f)
}

// WriteTOML encodes c in config file form.
func (c *Config) WriteTOML(w io.Writer) error {
	c.PollIntervalStr = c.PollInterval.String()
	c.RequestTimeoutStr = c.RequestTimeout.String()
	c.NotifyDurationStr = c.NotifyDuration.String()
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return hwerrors.New(hwerrors.ErrConfig,
			fmt.Sprintf("invalid server URL %q", c.Server),
			"Use a full URL such as http://localhost:5000")
	}
	if c.PollInterval <= 0 {
		return hwerrors.New(hwerrors.ErrConfig, "poll_interval must be positive", "")
	}
	if c.HistorySize <= 0 {
		return hwerrors.New(hwerrors.ErrConfig, "history_size must be positive", "")
	}
	return nil
}

// NewViper returns a viper instance reading HOSTWATCH_* environment
// variables. Callers bind CLI flags to it before calling ApplyOverrides.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyOverrides copies every key set in v (flag or environment) over cfg.
// Durations accept Go duration strings.
func ApplyOverrides(cfg *Config, v *viper.Viper) error {
	if v.IsSet(KeyServer) {
		cfg.Server = strings.TrimRight(v.GetString(KeyServer), "/")
	}
	if v.IsSet(KeyTheme) {
		cfg.Theme = v.GetString(KeyTheme)
	}
	if v.IsSet(KeyLanguage) {
		cfg.Language = v.GetString(KeyLanguage)
	}
	if v.IsSet(KeyLogLevel) {
		cfg.LogLevel = v.GetString(KeyLogLevel)
	}
	if v.IsSet(KeyHistorySize) {
		cfg.HistorySize = v.GetInt(KeyHistorySize)
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{KeyPollInterval, &cfg.PollInterval},
		{KeyRequestTimeout, &cfg.RequestTimeout},
		{KeyNotifyDuration, &cfg.NotifyDuration},
	}
	for _, d := range durations {
		if !v.IsSet(d.key) {
			continue
		}
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return hwerrors.Wrap(err, hwerrors.ErrConfig, "invalid "+d.key)
		}
		*d.dst = parsed
	}
	return nil
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
