package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".vtprecheck"

// File represents the structure of the .vtprecheck configuration file.
//
//	validators:
//	  noReturnFunctions:
//	    enabled: true
//	    maxPercentDifference: 0.05
type File struct {
	// Validators holds per-validator options keyed by validator config key.
	Validators ValidatorsConfig `yaml:"validators,omitempty"`

	// BatchSize overrides the default number of concurrently checked pairs.
	BatchSize int `yaml:"batchSize,omitempty"`

	// DBDir overrides the database directory.
	DBDir string `yaml:"dbDir,omitempty"`
}

// ValidatorsConfig groups the options of the built-in validators.
type ValidatorsConfig struct {
	NoReturnFunctions NoReturnConfig `yaml:"noReturnFunctions,omitempty"`
}

// NoReturnConfig configures the no-return function count validator.
// Pointers distinguish "unset" from explicit zero values.
type NoReturnConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`

	// MaxPercentDifference is the maximum percentage difference between
	// number of no-return functions in each program, as a fraction.
	MaxPercentDifference *float64 `yaml:"maxPercentDifference,omitempty"`
}

// LoadConfigFile loads the configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .vtprecheck in the current directory
// 3. Look for .vtprecheck in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
