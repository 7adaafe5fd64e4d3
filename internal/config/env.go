package config

import (
	"fmt"
	"strconv"
)

// Environment variables that override file and default settings.
const (
	EnvConfigFile   = "INFLUXBATCH_CONFIG"
	EnvHome         = "INFLUXBATCH_HOME"
	EnvInput        = "INFLUXBATCH_INPUT"
	EnvEncoding     = "INFLUXBATCH_ENCODING"
	EnvChunkSize    = "INFLUXBATCH_CHUNK_SIZE"
	EnvOutputDir    = "INFLUXBATCH_OUTPUT_DIR"
	EnvOutputPrefix = "INFLUXBATCH_OUTPUT_PREFIX"
	EnvWorkers      = "INFLUXBATCH_WORKERS"
	EnvLogLevel     = "INFLUXBATCH_LOG_LEVEL"
	EnvLogFormat    = "INFLUXBATCH_LOG_FORMAT"
	EnvLogFile      = "INFLUXBATCH_LOG_FILE"
)

// ApplyEnv overrides settings from environment variables found via lookupEnv.
// Empty values are ignored. Integer variables that do not parse are reported
// as ErrInvalidConfig.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookupEnv(name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookupEnv(name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, name, v)
		}
		*dst = n
		return nil
	}

	str(EnvInput, &c.Input.Path)
	str(EnvEncoding, &c.Input.Encoding)
	str(EnvOutputDir, &c.Output.Dir)
	str(EnvOutputPrefix, &c.Output.Prefix)
	str(EnvLogLevel, &c.Logging.Level)
	str(EnvLogFormat, &c.Logging.Format)
	str(EnvLogFile, &c.Logging.File)

	if err := num(EnvChunkSize, &c.Processing.ChunkSize); err != nil {
		return err
	}
	return num(EnvWorkers, &c.Processing.Workers)
}
