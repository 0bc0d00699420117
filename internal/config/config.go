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

// AppDirName is the per-user directory name under os.UserConfigDir
const AppDirName = "script-toolbox"

// Config is the optional config.yaml next to the user profile
type Config struct {
	ScriptsDir     string        `yaml:"scriptsDir"`
	ProfilePath    string        `yaml:"profilePath"`
	PersistTimeout time.Duration `yaml:"persistTimeout"`
	Watch          *bool         `yaml:"watch"`
	// DebugLogPath overrides where frontend and persistence diagnostics
	// are appended. Empty picks a per-platform location.
	DebugLogPath string `yaml:"debugLog,omitempty"`
}

// DefaultDir returns $TOOLBOX_HOME or the user config directory
func DefaultDir() (string, error) {
	if v := os.Getenv("TOOLBOX_HOME"); v != "" {
		return v, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %v", err)
	}
	return filepath.Join(configDir, AppDirName), nil
}

// DefaultPath returns the default config.yaml location
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load decodes the config file at path and fills defaults relative to
// its directory. A missing file yields defaults.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	expanded, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	data, err := os.ReadFile(expanded)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyDefaults(filepath.Dir(expanded)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WatchEnabled reports whether the scripts directory should be watched
func (c *Config) WatchEnabled() bool {
	return c.Watch == nil || *c.Watch
}

// Save writes the config to path, creating parent directories
func (c *Config) Save(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return err
	}
	return os.WriteFile(expanded, data, 0o644)
}

func (c *Config) applyDefaults(baseDir string) error {
	var err error
	if c.ScriptsDir == "" {
		c.ScriptsDir = filepath.Join(baseDir, "scripts")
	}
	if c.ScriptsDir, err = expandPath(c.ScriptsDir); err != nil {
		return err
	}
	if c.ProfilePath == "" {
		c.ProfilePath = filepath.Join(baseDir, "user_profile.json")
	}
	if c.ProfilePath, err = expandPath(c.ProfilePath); err != nil {
		return err
	}
	if c.DebugLogPath, err = expandPath(c.DebugLogPath); err != nil {
		return err
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = 5 * time.Second
	}
	return nil
}

func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %v", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
