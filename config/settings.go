package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"
)

// Settings are the tool defaults read from config.toml. Pointer fields are
// nil when the file does not set them.
type Settings struct {
	Store StoreSettings `toml:"store"`
	Fit   FitSettings   `toml:"fit"`
	Log   LogSettings   `toml:"log"`
}

type StoreSettings struct {
	Path *string `toml:"path"`
}

type FitSettings struct {
	Workers *int `toml:"workers"`
	NBins   *int `toml:"nbins"`
}

type LogSettings struct {
	Level *string `toml:"level"`
}

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

func DefaultSettingsPath() string { return filepath.Join(XDGConfigHome(), "anna", "config.toml") }
func DefaultStorePath() string    { return filepath.Join(XDGDataHome(), "anna", "results.db") }

// LoadSettings reads a TOML settings file. A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	if path == "" {
		return Settings{}, fmt.Errorf("config: settings path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("config: failed to stat settings: %w", err)
	}
	var s Settings
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Settings{}, fmt.Errorf("config: failed to decode settings: %w", err)
	}
	return s, nil
}

func (s Settings) StorePath() string {
	if s.Store.Path != nil && *s.Store.Path != "" {
		return *s.Store.Path
	}
	return DefaultStorePath()
}

func (s Settings) Workers() int {
	if s.Fit.Workers != nil && *s.Fit.Workers > 0 {
		return *s.Fit.Workers
	}
	return runtime.NumCPU()
}

func (s Settings) NBins() int {
	if s.Fit.NBins != nil && *s.Fit.NBins > 0 {
		return *s.Fit.NBins
	}
	return 100
}

// LogLevel parses the configured level, info by default.
func (s Settings) LogLevel() (zapcore.Level, error) {
	if s.Log.Level == nil {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(*s.Log.Level)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("config: invalid log level %q: %w", *s.Log.Level, err)
	}
	return lvl, nil
}
