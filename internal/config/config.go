// Package config loads the optional stickies configuration file.
//
// The file is YAML. Its location is the --config flag, or
// <user config dir>/StickyNotes/config.yaml when the flag is absent. A
// missing file at the default location means defaults; a missing file
// named explicitly is an error. Command-line flags override file values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name inside the application folder.
const FileName = "config.yaml"

// Config holds user settings.
type Config struct {
	// NotesPath overrides the default notes file location.
	NotesPath string `yaml:"notes_path"`

	// Portable stores notes next to the executable, as packaged builds do.
	Portable bool `yaml:"portable"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{LogLevel: "warn"}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "StickyNotes", FileName), nil
}

// Load reads the config file at path. An empty path selects
// DefaultPath, where a missing file yields Default.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile reads configuration from a specific file, on top of Default.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.NotesPath = expandPath(cfg.NotesPath)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.NotesPath != "" && strings.HasSuffix(c.NotesPath, string(filepath.Separator)) {
		errs = append(errs, fmt.Errorf("notes_path must name a file, got directory %q", c.NotesPath))
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// expandPath expands a leading ~ and environment variables.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return os.ExpandEnv(p)
}
