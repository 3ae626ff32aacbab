// Package config provides configuration loading and management for mprview.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Snapshot store parameters
	Store struct {
		// MaxSnapshots bounds the snapshot store; the oldest snapshot is
		// evicted when the limit is exceeded
		MaxSnapshots int `yaml:"maxSnapshots"`

		// PersistPath is the SQLite database file backing the snapshot
		// store; empty disables persistence
		PersistPath string `yaml:"persistPath"`

		// ClearOnInit discards previously persisted snapshots at startup
		ClearOnInit bool `yaml:"clearOnInit"`
	} `yaml:"store"`

	// Slice export parameters
	Export struct {
		// SliceSizePx is the pixel size of exported slice images
		SliceSizePx int `yaml:"sliceSizePx"`

		// SlicesDir is the directory exported slice images are written to
		SlicesDir string `yaml:"slicesDir"`
	} `yaml:"export"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Store.MaxSnapshots = 10
	cfg.Store.PersistPath = "snapshots.db"
	cfg.Store.ClearOnInit = false

	cfg.Export.SliceSizePx = 256
	cfg.Export.SlicesDir = "exported_slices"

	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
