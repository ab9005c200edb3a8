// Package config resolves client settings from defaults, a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Update strategies accepted in config.
const (
	StrategyRecreate = "recreate"
	StrategyReplace  = "replace"
)

// Defaults.
const (
	DefaultBaseURL  = "http://localhost:8000"
	DefaultTimeout  = 30 * time.Second
	DefaultLogLevel = "warn"
)

// Config is the resolved client configuration.
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	ConfigDir      string        `yaml:"-"`
	Timeout        time.Duration `yaml:"timeout"`
	UpdateStrategy string        `yaml:"update_strategy"`
	LogLevel       string        `yaml:"log_level"`
}

// Dir returns $XDG_CONFIG_HOME/notekeeper or ~/.config/notekeeper.
func Dir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "notekeeper")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "notekeeper")
}

// DefaultFile is the config file looked up when no path is given.
func DefaultFile() string { return filepath.Join(Dir(), "config.yaml") }

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		ConfigDir:      Dir(),
		Timeout:        DefaultTimeout,
		UpdateStrategy: StrategyRecreate,
		LogLevel:       DefaultLogLevel,
	}
}

// Load applies the YAML file at path (if it exists) and then env overrides.
// An empty path means DefaultFile; a missing default file is not an error,
// a missing explicit file is. The result is not validated: callers layer
// flags on top and then call Validate.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile()
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg.BaseURL = getEnv("NOTEKEEPER_API_URL", cfg.BaseURL)
	cfg.UpdateStrategy = getEnv("NOTEKEEPER_UPDATE_STRATEGY", cfg.UpdateStrategy)
	cfg.LogLevel = getEnv("NOTEKEEPER_LOG_LEVEL", cfg.LogLevel)
	if v := getEnv("NOTEKEEPER_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("NOTEKEEPER_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail later.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("config: base_url is empty")
	}
	switch strings.ToLower(strings.TrimSpace(c.UpdateStrategy)) {
	case StrategyRecreate, StrategyReplace:
	default:
		return fmt.Errorf("config: unknown update_strategy %q", c.UpdateStrategy)
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
