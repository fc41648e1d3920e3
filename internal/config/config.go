package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Feed      FeedConfig      `yaml:"feed"`
	Intervals IntervalsConfig `yaml:"intervals"`
	Sync      SyncConfig      `yaml:"sync"`
	Server    ServerConfig    `yaml:"server"`
	LogLevel  string          `yaml:"log_level"`
}

type FeedConfig struct {
	// ICSURL is the private Runna calendar feed URL, from the Runna
	// app under Profile > Connected Apps & Devices > Connect Calendar.
	ICSURL string `yaml:"ics_url"`
}

type IntervalsConfig struct {
	APIKey    string `yaml:"api_key"`
	AthleteID string `yaml:"athlete_id"`
	BaseURL   string `yaml:"base_url"`
}

type SyncConfig struct {
	// Units selects the description output units: "km" or "mi".
	Units string `yaml:"units"`
	// EasyPaceSecMi is the fallback pace in sec/mi for steps with no
	// explicit target. 520 = 8:40/mi. Zero disables the fallback.
	EasyPaceSecMi int    `yaml:"easy_pace_sec_mi"`
	StateDir      string `yaml:"state_dir"`
	// Schedule is the cron expression used by the watch command.
	Schedule string `yaml:"schedule"`
}

type ServerConfig struct {
	Host      string          `yaml:"host"`
	Port      int             `yaml:"port"`
	APIKey    string          `yaml:"api_key"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	AuthKey  string `yaml:"auth_key"`
	StateDir string `yaml:"state_dir"`
}

// Default returns the configuration used when no file or environment
// overrides are present. Credentials stay empty and are checked by the
// Require methods at the point of use.
func Default() *Config {
	return &Config{
		Intervals: IntervalsConfig{
			AthleteID: "i0",
			BaseURL:   "https://intervals.icu",
		},
		Sync: SyncConfig{
			Units:         "km",
			EasyPaceSecMi: 520,
			StateDir:      "~/.runnasync",
			Schedule:      "0 6 * * *",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		LogLevel: "info",
	}
}

// DefaultConfigPath returns ~/.config/runnasync/config.yaml, or a
// relative path when the home directory cannot be resolved.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "runnasync", "config.yaml")
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is not an error since every field has a
// default or an environment source. Env vars use the prefix RUNNASYNC_:
//
//	RUNNASYNC_ICS_URL, RUNNASYNC_INTERVALS_API_KEY,
//	RUNNASYNC_ATHLETE_ID, RUNNASYNC_INTERVALS_BASE_URL,
//	RUNNASYNC_UNITS, RUNNASYNC_EASY_PACE_SEC_MI, RUNNASYNC_STATE_DIR,
//	RUNNASYNC_SCHEDULE, RUNNASYNC_SERVER_HOST, RUNNASYNC_SERVER_PORT,
//	RUNNASYNC_SERVER_API_KEY, RUNNASYNC_TS_HOSTNAME, RUNNASYNC_TS_AUTHKEY
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RUNNASYNC_ICS_URL"); v != "" {
		cfg.Feed.ICSURL = v
	}
	if v := os.Getenv("RUNNASYNC_INTERVALS_API_KEY"); v != "" {
		cfg.Intervals.APIKey = v
	}
	if v := os.Getenv("RUNNASYNC_ATHLETE_ID"); v != "" {
		cfg.Intervals.AthleteID = v
	}
	if v := os.Getenv("RUNNASYNC_INTERVALS_BASE_URL"); v != "" {
		cfg.Intervals.BaseURL = v
	}
	if v := os.Getenv("RUNNASYNC_UNITS"); v != "" {
		cfg.Sync.Units = v
	}
	if v := os.Getenv("RUNNASYNC_EASY_PACE_SEC_MI"); v != "" {
		if pace, err := strconv.Atoi(v); err == nil {
			cfg.Sync.EasyPaceSecMi = pace
		}
	}
	if v := os.Getenv("RUNNASYNC_STATE_DIR"); v != "" {
		cfg.Sync.StateDir = v
	}
	if v := os.Getenv("RUNNASYNC_SCHEDULE"); v != "" {
		cfg.Sync.Schedule = v
	}
	if v := os.Getenv("RUNNASYNC_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("RUNNASYNC_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RUNNASYNC_SERVER_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("RUNNASYNC_TS_HOSTNAME"); v != "" {
		cfg.Server.Tailscale.Enabled = true
		cfg.Server.Tailscale.Hostname = v
	}
	if v := os.Getenv("RUNNASYNC_TS_AUTHKEY"); v != "" {
		cfg.Server.Tailscale.AuthKey = v
	}
	if v := os.Getenv("RUNNASYNC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Sync.Units) {
	case "km", "mi":
		c.Sync.Units = strings.ToLower(c.Sync.Units)
	default:
		return fmt.Errorf("sync.units must be %q or %q, got %q", "km", "mi", c.Sync.Units)
	}
	if c.Sync.EasyPaceSecMi < 0 {
		return fmt.Errorf("sync.easy_pace_sec_mi must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Intervals.AthleteID == "" {
		return fmt.Errorf("intervals.athlete_id is required")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a config value onto a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log_level must be debug, info, warn or error, got %q", s)
}

// RequireFeed reports an error when no Runna feed URL is configured.
func (c *Config) RequireFeed() error {
	if c.Feed.ICSURL == "" {
		return fmt.Errorf("no Runna ICS URL configured: run `runnasync config` or set RUNNASYNC_ICS_URL")
	}
	return nil
}

// RequireIntervals reports an error when Intervals.icu credentials are
// missing.
func (c *Config) RequireIntervals() error {
	if c.Intervals.APIKey == "" {
		return fmt.Errorf("no Intervals.icu API key configured: run `runnasync config` or set RUNNASYNC_INTERVALS_API_KEY")
	}
	return nil
}

// StateDir returns sync.state_dir with a leading ~ expanded.
func (c *Config) StateDir() (string, error) {
	return ExpandPath(c.Sync.StateDir)
}

// Save writes the config as YAML, creating parent directories. The
// file is 0600 since it holds the intervals.icu API key.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home dir: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
