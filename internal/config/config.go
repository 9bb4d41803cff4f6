// Package config loads and saves user preferences from the TOML file
// under the termsearch directory (~/.termsearch by default).
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	dark "github.com/thiagokokada/dark-mode-go"
)

// ConfigFileName is the TOML config file for user preferences
const ConfigFileName = "config.toml"

// DirEnvVar overrides the termsearch directory when set.
const DirEnvVar = "TERMSEARCH_DIR"

// Defaults for search behavior when the config file does not set them.
const (
	DefaultMaxHistory = 10000
	DefaultMaxResults = 10
)

// UserConfig represents user-facing configuration in TOML format
type UserConfig struct {
	// Theme sets the color scheme: "dark" (default), "light", or "system"
	Theme string `toml:"theme"`

	// History defines where history is read from and how much of it
	History HistorySettings `toml:"history"`

	// Logs defines debug log management settings
	Logs LogSettings `toml:"logs"`

	// Updates defines release check behavior
	Updates UpdateSettings `toml:"updates"`
}

// HistorySettings defines history file and search configuration
type HistorySettings struct {
	// File is the history file to read
	// Default: $HISTFILE, falling back to ~/.zsh_history
	File string `toml:"file"`

	// MaxHistory is the number of most recent entries to load
	// Default: 10000
	MaxHistory int `toml:"max_history"`

	// MaxResults is the number of ranked matches to display
	// Default: 10
	MaxResults int `toml:"max_results"`

	// LiveReload re-reads the history file while the picker is open
	// Default: true (nil = use default true, set false to disable)
	LiveReload *bool `toml:"live_reload"`
}

// GetLiveReload returns whether live reload is enabled, defaulting to true
func (h *HistorySettings) GetLiveReload() bool {
	if h.LiveReload == nil {
		return true
	}
	return *h.LiveReload
}

// LogSettings defines log file management configuration
type LogSettings struct {
	// Level sets the minimum log level: "debug", "info", "warn", "error"
	// Default: "info" (the TERMSEARCH_LOG env var takes priority)
	Level string `toml:"level"`

	// Format sets the log format: "text" (default) or "json"
	Format string `toml:"format"`

	// MaxSizeMB is the max size in MB for termsearch.log before rotation
	// Default: 10
	MaxSizeMB int `toml:"max_size_mb"`

	// MaxBackups is the number of rotated log files to keep
	// Default: 5
	MaxBackups int `toml:"max_backups"`

	// MaxAgeDays is the number of days to keep rotated logs
	// Default: 10
	MaxAgeDays int `toml:"max_age_days"`

	// Compress enables gzip compression for rotated logs
	// Default: true (nil = use default true, set false to disable)
	Compress *bool `toml:"compress"`
}

// GetCompress returns whether rotated logs are compressed, defaulting to true
func (l *LogSettings) GetCompress() bool {
	if l.Compress == nil {
		return true
	}
	return *l.Compress
}

// UpdateSettings defines release check configuration
type UpdateSettings struct {
	// CheckEnabled enables checking GitHub for new releases
	// Default: true (nil = use default true, set false to disable)
	CheckEnabled *bool `toml:"check_enabled"`

	// CheckIntervalHours is how long a cached check stays fresh
	// Default: 24
	CheckIntervalHours int `toml:"check_interval_hours"`

	// NotifyInCLI prints a notice after commands when an update is available
	// Default: true
	NotifyInCLI *bool `toml:"notify_in_cli"`
}

// GetCheckEnabled returns whether update checks run, defaulting to true
func (u *UpdateSettings) GetCheckEnabled() bool {
	if u.CheckEnabled == nil {
		return true
	}
	return *u.CheckEnabled
}

// GetNotifyInCLI returns whether update notices print, defaulting to true
func (u *UpdateSettings) GetNotifyInCLI() bool {
	if u.NotifyInCLI == nil {
		return true
	}
	return *u.NotifyInCLI
}

var defaultConfig = UserConfig{}

// Cache for the config (loaded once per process)
var (
	configCache   *UserConfig
	configCacheMu sync.RWMutex
)

// Dir returns the base termsearch directory (~/.termsearch), honoring
// the TERMSEARCH_DIR override.
func Dir() (string, error) {
	if dir := os.Getenv(DirEnvVar); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".termsearch"), nil
}

// LogDir returns the directory rotated log files live in.
func LogDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// Path returns the path to the config file
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load loads the configuration from the TOML file
// Returns cached config after first load
func Load() (*UserConfig, error) {
	configCacheMu.RLock()
	if configCache != nil {
		defer configCacheMu.RUnlock()
		return configCache, nil
	}
	configCacheMu.RUnlock()

	configCacheMu.Lock()
	defer configCacheMu.Unlock()

	// Double-check after acquiring write lock
	if configCache != nil {
		return configCache, nil
	}

	configPath, err := Path()
	if err != nil {
		configCache = &defaultConfig
		return configCache, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// No file yet, run on defaults
		configCache = &defaultConfig
		return configCache, nil
	}

	var config UserConfig
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		// Cache the default anyway to prevent repeated parse attempts
		configCache = &defaultConfig
		return configCache, fmt.Errorf("config.toml parse error: %w", err)
	}

	configCache = &config
	return configCache, nil
}

// Reload forces a fresh read of the config file
func Reload() (*UserConfig, error) {
	ClearCache()
	return Load()
}

// ClearCache drops the cached config so the next Load reads from disk
func ClearCache() {
	configCacheMu.Lock()
	configCache = nil
	configCacheMu.Unlock()
}

// Save writes the config to config.toml using an atomic write pattern
// and clears the cache so the next Load reads fresh values
func Save(config *UserConfig) error {
	configPath, err := Path()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# termsearch configuration\n\n")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// Write to a temp file, fsync, then rename into place so a crash
	// mid-save never leaves a truncated config behind.
	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := syncFile(tmpPath); err != nil {
		// Rename alone still keeps the old file intact
		_ = err
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize config save: %w", err)
	}

	ClearCache()
	return nil
}

func syncFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

// GetTheme returns the configured theme, defaulting to "dark"
func GetTheme() string {
	config, err := Load()
	if err != nil || config == nil {
		return "dark"
	}
	switch config.Theme {
	case "dark", "light", "system":
		return config.Theme
	default:
		return "dark"
	}
}

// ResolveTheme resolves the configured theme to "dark" or "light".
// If theme is "system", detects the OS dark mode setting.
// Falls back to "dark" on detection failure.
func ResolveTheme() string {
	theme := GetTheme()
	if theme != "system" {
		return theme
	}
	isDark, err := dark.IsDarkMode()
	if err != nil {
		return "dark"
	}
	if isDark {
		return "dark"
	}
	return "light"
}

// GetHistorySettings returns history settings with defaults applied
func GetHistorySettings() HistorySettings {
	config, err := Load()
	if err != nil || config == nil {
		return HistorySettings{
			MaxHistory: DefaultMaxHistory,
			MaxResults: DefaultMaxResults,
		}
	}

	settings := config.History

	if settings.MaxHistory <= 0 {
		settings.MaxHistory = DefaultMaxHistory
	}
	if settings.MaxResults <= 0 {
		settings.MaxResults = DefaultMaxResults
	}
	settings.File = expandTilde(settings.File)

	return settings
}

// GetLogSettings returns log management settings with defaults applied
func GetLogSettings() LogSettings {
	config, err := Load()
	if err != nil || config == nil {
		return LogSettings{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 10,
		}
	}

	settings := config.Logs

	switch settings.Level {
	case "debug", "info", "warn", "error":
	default:
		settings.Level = "info"
	}
	switch settings.Format {
	case "text", "json":
	default:
		settings.Format = "text"
	}
	if settings.MaxSizeMB <= 0 {
		settings.MaxSizeMB = 10
	}
	if settings.MaxBackups <= 0 {
		settings.MaxBackups = 5
	}
	if settings.MaxAgeDays <= 0 {
		settings.MaxAgeDays = 10
	}

	return settings
}

// GetUpdateSettings returns release check settings with defaults applied
func GetUpdateSettings() UpdateSettings {
	config, err := Load()
	if err != nil || config == nil {
		return UpdateSettings{CheckIntervalHours: 24}
	}

	settings := config.Updates

	if settings.CheckIntervalHours <= 0 {
		settings.CheckIntervalHours = 24
	}

	return settings
}

// expandTilde expands a leading ~/ to the user's home directory
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}

// CreateExampleConfig creates a commented example config file if none exists
func CreateExampleConfig() error {
	configPath, err := Path()
	if err != nil {
		return err
	}

	// Don't overwrite an existing config
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	exampleConfig := `# termsearch configuration
# This file is loaded on startup. Delete a line to return to its default.

# Color scheme: "dark" (default), "light", or "system"
# theme = "dark"

[history]
# History file to read
# Default: $HISTFILE, falling back to ~/.zsh_history
# file = "~/.zsh_history"
# Number of most recent entries to load (default: 10000)
max_history = 10000
# Number of ranked matches to display (default: 10)
max_results = 10
# Re-read the history file while the picker is open (default: true)
live_reload = true

[logs]
# Minimum log level: "debug", "info", "warn", "error" (default: "info")
# The TERMSEARCH_LOG environment variable takes priority over this value.
level = "info"
# Log format: "text" (default) or "json"
format = "text"
# Max size in MB for termsearch.log before rotation (default: 10)
max_size_mb = 10
# Number of rotated log files to keep (default: 5)
max_backups = 5
# Days to keep rotated logs (default: 10)
max_age_days = 10
# Compress rotated logs (default: true)
compress = true

[updates]
# Check GitHub for new releases (default: true)
check_enabled = true
# Hours a cached release check stays fresh (default: 24)
check_interval_hours = 24
# Print a notice after init/stats when an update is available (default: true)
notify_in_cli = true
`

	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return err
	}

	return os.WriteFile(configPath, []byte(exampleConfig), 0o600)
}
