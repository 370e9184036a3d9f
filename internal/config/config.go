// Package config handles configuration loading for loom.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for loom.
type Config struct {
	Database      DatabaseConfig      `mapstructure:"database"`
	Discovery     DiscoveryConfig     `mapstructure:"discovery"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Defaults      DefaultsConfig      `mapstructure:"defaults"`
}

// DatabaseConfig holds graph store settings.
type DatabaseConfig struct {
	// Path is the SQLite database file. Empty means the project-local
	// default (.loom/graph.db).
	Path string `mapstructure:"path"`
}

// DiscoveryConfig holds discovery ingestion settings.
type DiscoveryConfig struct {
	// SpoolDir is where discovery drops spawn request files.
	SpoolDir string `mapstructure:"spool_dir"`
}

// NotificationsConfig holds event notifier settings.
type NotificationsConfig struct {
	// BufferSize is the per-subscriber channel buffer.
	BufferSize int `mapstructure:"buffer_size"`
}

// DefaultsConfig holds default values for CLI operations.
type DefaultsConfig struct {
	// Agent is the agent ID attributed to CLI-spawned tasks.
	Agent string `mapstructure:"agent"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
// 1. Environment variables (LOOM_*)
// 2. Project config (.loom/config.yaml in the current directory)
// 3. User config (~/.config/loom/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("LOOM")
	v.AutomaticEnv()
	v.BindEnv("database.path", "LOOM_DATABASE_PATH")
	v.BindEnv("discovery.spool_dir", "LOOM_SPOOL_DIR")
	v.BindEnv("defaults.agent", "LOOM_AGENT")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "")
	v.SetDefault("discovery.spool_dir", filepath.Join(".loom", "spool"))
	v.SetDefault("notifications.buffer_size", 256)
	v.SetDefault("defaults.agent", "operator")
}

// getUserConfigDir returns the XDG config directory for loom.
func getUserConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "loom")
}

// findProjectConfig returns the project config path if it exists.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	path := filepath.Join(cwd, ".loom", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
