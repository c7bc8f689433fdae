// Package config provides configuration management for WireGuard GUI.
// It handles loading, saving, and validating application settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"

	"github.com/yllada/wireguard-gui/common"
)

// Config represents the application configuration.
// All settings are persisted to a YAML file in the configuration directory.
type Config struct {
	// ToggleCommand brings a profile's interface up or down. The profile
	// name is passed in the PROFILE environment variable.
	ToggleCommand string `yaml:"toggle_command"`
	// LinkProbe selects how link status is observed: "command" or "netif".
	LinkProbe string `yaml:"link_probe"`
	// StatusCommand is run with the profile name appended when LinkProbe is "command".
	StatusCommand string `yaml:"status_command"`
	// PublicIPURL returns a JSON object with an "origin" field.
	PublicIPURL     string        `yaml:"public_ip_url"`
	PublicIPTimeout time.Duration `yaml:"public_ip_timeout"`
	// SettleDelay is waited after every toggle sequence.
	SettleDelay time.Duration `yaml:"settle_delay"`
	// Notifications enables desktop notifications for connection events.
	Notifications bool `yaml:"notifications"`
	// History records transitions in history.db.
	History        bool          `yaml:"history"`
	HealthInterval time.Duration `yaml:"health_interval"`
	LogLevel       string        `yaml:"log_level"`
}

// DefaultConfig returns the default configuration for the given config directory.
func DefaultConfig(configDir string) *Config {
	return &Config{
		ToggleCommand:   defaultToggleCommand(configDir),
		LinkProbe:       common.LinkProbeCommand,
		StatusCommand:   common.DefaultStatusCommand,
		PublicIPURL:     common.DefaultPublicIPURL,
		PublicIPTimeout: common.PublicIPTimeout,
		SettleDelay:     common.SettleDelay,
		Notifications:   true,
		History:         true,
		HealthInterval:  common.HealthInterval,
		LogLevel:        "info",
	}
}

func defaultToggleCommand(configDir string) string {
	return fmt.Sprintf("bash %q", filepath.Join(configDir, common.ToggleScriptName))
}

// Path returns the location of the config file inside configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, common.ConfigFileName)
}

// Load loads the configuration from configDir.
// If the file doesn't exist, it is created with default values.
func Load(configDir string) (*Config, error) {
	configPath := Path(configDir)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig(configDir)
		if err := cfg.Save(configDir); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("error opening configuration: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	cfg := DefaultConfig(configDir)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}

	if err := cfg.validate(configDir); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate repairs out-of-range values and rejects unusable commands.
func (c *Config) validate(configDir string) error {
	defaults := DefaultConfig(configDir)

	if c.ToggleCommand == "" {
		c.ToggleCommand = defaults.ToggleCommand
	}
	if _, err := c.ToggleArgs(); err != nil {
		return fmt.Errorf("toggle_command: %w", err)
	}

	switch c.LinkProbe {
	case common.LinkProbeCommand, common.LinkProbeNetif:
	default:
		c.LinkProbe = defaults.LinkProbe
	}
	if c.StatusCommand == "" {
		c.StatusCommand = defaults.StatusCommand
	}
	if _, err := c.StatusArgs(); err != nil {
		return fmt.Errorf("status_command: %w", err)
	}

	if c.PublicIPURL == "" {
		c.PublicIPURL = defaults.PublicIPURL
	}
	if c.PublicIPTimeout <= 0 {
		c.PublicIPTimeout = defaults.PublicIPTimeout
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = defaults.SettleDelay
	}
	if c.HealthInterval <= 0 {
		c.HealthInterval = defaults.HealthInterval
	}
	return nil
}

// ToggleArgs splits ToggleCommand into argv.
func (c *Config) ToggleArgs() ([]string, error) {
	return splitCommand(c.ToggleCommand)
}

// StatusArgs splits StatusCommand into argv.
func (c *Config) StatusArgs() ([]string, error) {
	return splitCommand(c.StatusCommand)
}

func splitCommand(line string) ([]string, error) {
	parts, err := shlex.Split(line)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return parts, nil
}

// Save writes the configuration to configDir.
func (c *Config) Save(configDir string) error {
	if err := common.EnsureDir(configDir); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error serializing configuration: %w", err)
	}

	if err := os.WriteFile(Path(configDir), data, 0600); err != nil {
		return fmt.Errorf("error saving configuration: %w", err)
	}

	return nil
}
