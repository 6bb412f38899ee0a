package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Dialog frontends
const (
	DialogGUI      = "gui"
	DialogTerminal = "terminal"
)

// Config holds application settings. It is read once at startup and never
// written back.
type Config struct {
	MpvPath         string        `toml:"mpv_path"`
	Dialog          string        `toml:"dialog"`
	Extensions      []string      `toml:"extensions"`
	WindowTitle     string        `toml:"window_title"`
	CaptionFont     string        `toml:"caption_font"`
	CaptionSize     int           `toml:"caption_size"`
	LogLevel        string        `toml:"log_level"`
	StartupTimeout  time.Duration `toml:"startup_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		Dialog:          DialogGUI,
		Extensions:      []string{".mp4", ".avi", ".mkv"},
		WindowTitle:     "SBS Player",
		CaptionFont:     "Arial",
		CaptionSize:     32,
		LogLevel:        "info",
		StartupTimeout:  5 * time.Second,
		ShutdownTimeout: 2 * time.Second,
	}
}

// Path returns the location of the config file
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "sbs-player", "config.toml"), nil
}

// Load loads the config from the default location, returning defaults if
// there is none
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile loads the config at path. A missing file yields defaults; keys
// absent from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize replaces unusable values with defaults
func (c *Config) normalize() {
	defaults := DefaultConfig()

	switch strings.ToLower(c.Dialog) {
	case DialogGUI, DialogTerminal:
		c.Dialog = strings.ToLower(c.Dialog)
	default:
		c.Dialog = defaults.Dialog
	}

	var exts []string
	for _, ext := range c.Extensions {
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	if len(exts) == 0 {
		exts = defaults.Extensions
	}
	c.Extensions = exts

	if c.CaptionSize <= 0 {
		c.CaptionSize = defaults.CaptionSize
	}
	if c.StartupTimeout <= 0 {
		c.StartupTimeout = defaults.StartupTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
}

// SlogLevel maps LogLevel onto a slog level; unknown names mean info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
