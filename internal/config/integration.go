package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// configFileName is the name of the config file inside the config directory.
const configFileName = "config.yaml"

// GetConfigDir returns the path to the influxbatch configuration directory.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".influxbatch"), nil
}

// ResolveConfigPath picks the config file to load. An explicit flag value
// wins, then INFLUXBATCH_CONFIG, then config.yaml in the config directory if
// it exists. An empty result means no file should be loaded.
func ResolveConfigPath(flagValue string, lookupEnv func(string) (string, bool)) string {
	if flagValue != "" {
		return flagValue
	}
	if v, ok := lookupEnv(EnvConfigFile); ok && v != "" {
		return v
	}

	dir, err := GetConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, configFileName)
	if _, statErr := os.Stat(path); statErr != nil {
		return ""
	}
	return path
}

// Load builds a Config from defaults, the file at path (if non-empty) and the
// environment. Validation is left to the caller, after flag overrides.
func Load(path string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := New()

	if path != "" {
		if err := MergeYAML(cfg, path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: config file %s does not exist", ErrInvalidConfig, path)
			}
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnsureLogDir creates the parent directory of the configured log file.
// It does nothing when no log file is configured.
func (c *Config) EnsureLogDir() error {
	if c.Logging.File == "" {
		return nil
	}
	logDir := filepath.Dir(c.Logging.File)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}
