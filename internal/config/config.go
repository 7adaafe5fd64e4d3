// Package config holds influxbatch settings: built-in defaults, an optional
// YAML file, environment overrides and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rshade/influxbatch/internal/annotated"
	"github.com/rshade/influxbatch/internal/engine/batch"
	"github.com/rshade/influxbatch/internal/logging"
	"github.com/rshade/influxbatch/internal/readings"
)

// Defaults.
const (
	DefaultInputPath = "READING_2023-06-01.csv"
	DefaultOutputDir = "."
	DefaultWorkers   = 1
	DefaultLogLevel  = "info"
	MaxWorkers       = 64
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full influxbatch configuration.
type Config struct {
	Input      InputConfig      `yaml:"input"      json:"input"`
	Output     OutputConfig     `yaml:"output"     json:"output"`
	Processing ProcessingConfig `yaml:"processing" json:"processing"`
	Logging    LoggingConfig    `yaml:"logging"    json:"logging"`
}

// InputConfig describes the readings CSV.
type InputConfig struct {
	Path     string `yaml:"path"     json:"path"`
	Encoding string `yaml:"encoding" json:"encoding"`
}

// OutputConfig describes where batch files are written.
type OutputConfig struct {
	Dir    string `yaml:"dir"    json:"dir"`
	Prefix string `yaml:"prefix" json:"prefix"`
}

// ProcessingConfig controls batching.
type ProcessingConfig struct {
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`
	Workers   int `yaml:"workers"    json:"workers"`
}

// LoggingConfig controls diagnostic logging. User-facing progress lines are
// not affected.
type LoggingConfig struct {
	Level  string `yaml:"level"          json:"level"`
	Format string `yaml:"format"         json:"format"`
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Input: InputConfig{
			Path:     DefaultInputPath,
			Encoding: readings.EncodingUTF8,
		},
		Output: OutputConfig{
			Dir:    DefaultOutputDir,
			Prefix: annotated.DefaultPrefix,
		},
		Processing: ProcessingConfig{
			ChunkSize: batch.DefaultBatchSize,
			Workers:   DefaultWorkers,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: logging.FormatConsole,
		},
	}
}

// Validate checks the configuration for values the pipeline cannot use.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Input.Path) == "" {
		errs = append(errs, errors.New("input.path must not be empty"))
	}
	if err := batch.ValidateBatchSize(c.Processing.ChunkSize); err != nil {
		errs = append(errs, fmt.Errorf("processing.chunk_size: %w", err))
	}
	if c.Processing.Workers < 1 || c.Processing.Workers > MaxWorkers {
		errs = append(errs, fmt.Errorf("processing.workers must be between 1 and %d, got %d",
			MaxWorkers, c.Processing.Workers))
	}
	if strings.TrimSpace(c.Output.Prefix) == "" {
		errs = append(errs, errors.New("output.prefix must not be empty"))
	}
	if strings.ContainsAny(c.Output.Prefix, `/\`) {
		errs = append(errs, fmt.Errorf("output.prefix %q must not contain path separators", c.Output.Prefix))
	}
	switch c.Logging.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("logging.format must be %q or %q, got %q",
			logging.FormatConsole, logging.FormatJSON, c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
