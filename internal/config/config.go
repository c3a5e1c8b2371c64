// ABOUTME: Configuration management for feedkit with YAML config loading.
// ABOUTME: Handles remote API settings and the session's current user id.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config stores feedkit configuration loaded from ~/.config/feedkit/config.yaml.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
}

// APIConfig holds remote document store API settings.
type APIConfig struct {
	URL    string `yaml:"url"`
	Key    string `yaml:"key"`
	TeamID string `yaml:"team_id"`
}

// SessionConfig holds the externally-supplied auth fact: the current
// user's id. Empty means anonymous (read-only).
type SessionConfig struct {
	UserID string `yaml:"user_id"`
}

// HasRemote returns true if the remote store API is configured.
func (c *Config) HasRemote() bool {
	return c.API.URL != "" && c.API.Key != "" && c.API.TeamID != ""
}

// GetConfigPath returns the config file path.
func GetConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "feedkit", "config.yaml"), nil
}

// Load reads config from disk. Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
