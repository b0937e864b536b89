// Package hostconfig loads the demo CLI host's own defaults file: which
// shell to launch, which profile and scheme to start with, and how much
// scrollback to keep when the profile does not say. This is host-side
// ambient configuration, distinct from the profile/scheme/keytab data
// contracts the core itself defines.
package hostconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the host defaults file.
type Config struct {
	Shell       string `yaml:"shell"`
	Profile     string `yaml:"profile"`
	ColorScheme string `yaml:"color_scheme"`
	KeyBindings string `yaml:"key_bindings"`
	HistoryMode string `yaml:"history_mode"` // disabled | fixed | unlimited
	HistorySize int    `yaml:"history_size"`
	Rows        int    `yaml:"rows"`
	Cols        int    `yaml:"cols"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Config{
		Shell:       shell,
		HistoryMode: "fixed",
		HistorySize: 1000,
	}
}

// DefaultPath returns the conventional location of the defaults file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "konsole-headless", "config.yaml"), nil
}

// Load reads the defaults file at path, falling back to Default when the
// file does not exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration back to path, creating directories as
// needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
