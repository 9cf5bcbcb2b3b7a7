package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHorizonDays     = 30
	DefaultDebounceSeconds = 2
	DefaultRescan          = "*/15 * * * *"
)

// Config represents the rolodex configuration
type Config struct {
	// Database is the SQLite file path. Empty means <data dir>/rolodex.db.
	Database string `yaml:"database,omitempty"`
	// ImportDir is where import resolves relative file names and where the
	// live watcher looks for new CSV files. Empty means <data dir>/imports.
	ImportDir string         `yaml:"import_dir,omitempty"`
	Calendar  CalendarConfig `yaml:"calendar"`
	Live      LiveConfig     `yaml:"live"`
}

// CalendarConfig controls how event times are read and listed.
type CalendarConfig struct {
	// Timezone is an IANA name; empty means the system zone.
	Timezone    string `yaml:"timezone,omitempty"`
	HorizonDays int    `yaml:"horizon_days"`
}

// LiveConfig controls the inbox watcher.
type LiveConfig struct {
	Enabled         bool   `yaml:"enabled"`
	DebounceSeconds int    `yaml:"debounce_seconds"`
	Rescan          string `yaml:"rescan"`
	// Archive moves imported files into an imported/ subdirectory.
	Archive bool `yaml:"archive"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Calendar: CalendarConfig{HorizonDays: DefaultHorizonDays},
		Live: LiveConfig{
			DebounceSeconds: DefaultDebounceSeconds,
			Rescan:          DefaultRescan,
			Archive:         true,
		},
	}
}

// GetConfigDir returns the XDG-compliant config directory
func GetConfigDir() (string, error) {
	// Explicit override (useful for tests and portable installs)
	if override := os.Getenv("ROLODEX_CONFIG_DIR"); override != "" {
		return override, nil
	}

	var base string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		base = xdg
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "rolodex"), nil
}

// GetDataDir returns the platform-specific data directory
func GetDataDir() (string, error) {
	if override := os.Getenv("ROLODEX_DATA_DIR"); override != "" {
		return override, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "Rolodex"), nil
	}

	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "rolodex"), nil
	}

	return filepath.Join(home, ".local", "share", "rolodex"), nil
}

// Load loads config from the config file
func Load() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values that would fail later at run time.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Calendar.HorizonDays < 0 {
		return fmt.Errorf("calendar.horizon_days must not be negative")
	}
	if c.Live.DebounceSeconds < 0 {
		return fmt.Errorf("live.debounce_seconds must not be negative")
	}
	if c.Live.Rescan != "" {
		if _, err := cron.ParseStandard(c.Live.Rescan); err != nil {
			return fmt.Errorf("invalid live.rescan %q: %w", c.Live.Rescan, err)
		}
	}
	return nil
}

// Save saves the config to the config file
func (c *Config) Save() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DatabasePath resolves the SQLite file path.
func (c *Config) DatabasePath() (string, error) {
	if c.Database != "" {
		return c.Database, nil
	}
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "rolodex.db"), nil
}

// ImportPath resolves the import directory.
func (c *Config) ImportPath() (string, error) {
	if c.ImportDir != "" {
		return c.ImportDir, nil
	}
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "imports"), nil
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Calendar.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar.timezone %q: %w", c.Calendar.Timezone, err)
	}
	return loc, nil
}

// Debounce returns the live debounce as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Live.DebounceSeconds) * time.Second
}
