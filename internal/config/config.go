// Package config loads and saves the subtrack application config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all subtrack configuration. Domain preferences (default
// currency at the data level, notification defaults) live inside the
// encrypted document; this file only covers how the tool runs.
type Config struct {
	General       GeneralConfig       `toml:"general"`
	Storage       StorageConfig       `toml:"storage"`
	Notifications NotificationsConfig `toml:"notifications"`
	Appearance    AppearanceConfig    `toml:"appearance"`
	Daemon        DaemonConfig        `toml:"daemon"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Currency    string `toml:"currency"`
	DefaultDays int    `toml:"default_days"`
	DataDir     string `toml:"data_dir,omitempty"`
}

// StorageConfig holds document store settings.
type StorageConfig struct {
	// StrictNotFound turns update/delete of a missing id into an error
	// instead of a silent no-op.
	StrictNotFound bool `toml:"strict_not_found"`
}

// NotificationsConfig holds reminder scheduling settings.
type NotificationsConfig struct {
	LeadDays int `toml:"lead_days"`
	// ExactTimers allows precise in-process timers when the daemon is
	// running; otherwise reminders go through the durable queue.
	ExactTimers bool `toml:"exact_timers"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds reminder daemon settings.
type DaemonConfig struct {
	PollIntervalSecs int `toml:"poll_interval_secs"`
}

// PollInterval returns the daemon poll interval as a duration.
func (d DaemonConfig) PollInterval() time.Duration {
	if d.PollIntervalSecs < 1 {
		return time.Minute
	}
	return time.Duration(d.PollIntervalSecs) * time.Second
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency:    "USD",
			DefaultDays: 30,
		},
		Notifications: NotificationsConfig{
			LeadDays:    3,
			ExactTimers: true,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			PollIntervalSecs: 60,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "subtrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "subtrack")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the directory holding the encrypted document, key
// file, and notification queue.
func DataDir(cfg Config) string {
	if cfg.General.DataDir != "" {
		return cfg.General.DataDir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "subtrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "subtrack")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
