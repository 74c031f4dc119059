// Package config provides configuration management for the trading application.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"otc-trader/internal/errors"
	"otc-trader/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Execution ExecutionConfig `mapstructure:"execution"`
	Journal   JournalConfig   `mapstructure:"journal"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ExecutionConfig selects and configures the execution adapter.
type ExecutionConfig struct {
	Mode models.ExecutionMode `mapstructure:"mode"` // "manual", "simulated"
	Seed int64                `mapstructure:"seed"` // simulated adapter RNG seed
}

// JournalConfig holds journal storage configuration.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/otc-trader"
	}
	return filepath.Join(home, ".config", "otc-trader")
}

// Load loads application configuration from the specified directory.
// If configDir is empty, the default config directory is used. A missing
// config file is replaced by a commented template and defaults.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("execution.mode", string(models.ExecutionSimulated))
	v.SetDefault("execution.seed", 42)
	v.SetDefault("journal.path", filepath.Join(configDir, "journal.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if terr := createTemplateConfig(configDir); terr != nil {
				return nil, terr
			}
		} else {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks application-level configuration.
func (c *Config) Validate() error {
	switch c.Execution.Mode {
	case models.ExecutionManual, models.ExecutionSimulated:
	default:
		return errors.Wrapf(errors.ErrConfigInvalid, "execution mode %q (must be 'manual' or 'simulated')", c.Execution.Mode)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.Wrapf(errors.ErrConfigInvalid, "log level %q", c.Logging.Level)
	}
	return nil
}

const configTemplate = `# OTC Trader Configuration

[execution]
# Execution adapter: "manual" (operator confirms each trade) or "simulated"
mode = "simulated"
# RNG seed for the simulated adapter
seed = 42

[journal]
# SQLite journal location (defaults to <config dir>/journal.db)
# path = ""

[logging]
# Log level: debug, info, warn, error
level = "info"
console = true
file = true
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}
