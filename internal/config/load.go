package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names a config file when no -config flag is given.
const EnvConfigPath = "DIORAMA_CONFIG"

// Load builds the configuration with priority defaults < file < flags and
// validates the result.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the first existing candidate: $DIORAMA_CONFIG,
// ./config.yaml, then the user config directory.
func findConfigFile() string {
	candidates := []string{
		os.Getenv(EnvConfigPath),
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "OffshoreDiorama")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "OffshoreDiorama")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "offshore-diorama")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "offshore-diorama")
	}
}

// loadFromFile merges a YAML file over cfg. Unknown keys are rejected and a
// relative route file is resolved against the config file's directory.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	if cfg.Route.File != "" && !filepath.IsAbs(cfg.Route.File) {
		cfg.Route.File = filepath.Join(filepath.Dir(path), cfg.Route.File)
	}
	return nil
}
