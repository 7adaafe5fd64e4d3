package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/influxbatch/internal/config"
)

const testInput = "readingDate,value,displayReference,location,readingType\n" +
	"2023-01-01T00:00:00,1.5,\"Room A, Wing 2\",North,temperature\n" +
	"2023-01-02T00:00:00,2,RoomB,South Hall,temperature\n" +
	"2023-01-03T00:00:00,3,RoomC,East,humidity\n"

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// executeCmd runs the root command with args and returns stdout and stderr.
func executeCmd(t *testing.T, env map[string]string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EnvHome, t.TempDir())

	if env == nil {
		env = map[string]string{}
	}
	if _, ok := env[config.EnvLogLevel]; !ok {
		env[config.EnvLogLevel] = "error"
	}

	cmd := NewRootCmdWithEnv("1.2.3", envMap(env))
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestInput(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "readings.csv")
	require.NoError(t, os.WriteFile(input, []byte(testInput), 0600))
	return dir, input
}

func TestRootCmd_Transform(t *testing.T) {
	dir, input := writeTestInput(t)

	stdout, _, err := executeCmd(t, nil,
		"--input", input,
		"--output-dir", dir,
		"--chunk-size", "2",
		"--now", "2023-06-10T00:00:00Z",
	)
	require.NoError(t, err)

	assert.Equal(t, "Processing CSV in chunks...\n"+
		"Processed chunk 1, rows: 2, total: 2, file: influx4_batch_0.csv\n"+
		"Processed chunk 2, rows: 1, total: 3, file: influx4_batch_1.csv\n"+
		"Transformation complete!\n", stdout)

	data, err := os.ReadFile(filepath.Join(dir, "influx4_batch_0.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data),
		`,,0,2023-05-21T00:00:00Z,2023-05-21T00:00:00Z,2023-05-21T00:00:00Z,1.5,reading,metrics,"Room A, Wing 2",North,temperature`)
	assert.Contains(t, string(data),
		`,,0,2023-06-05T00:00:00Z,2023-06-05T00:00:00Z,2023-06-05T00:00:00Z,2,reading,metrics,RoomB,"South Hall",temperature`)
}

func TestRootCmd_EnvOverridesAndFlagPrecedence(t *testing.T) {
	dir, input := writeTestInput(t)

	env := map[string]string{
		config.EnvInput:        input,
		config.EnvOutputDir:    dir,
		config.EnvChunkSize:    "1",
		config.EnvOutputPrefix: "env",
	}
	stdout, _, err := executeCmd(t, env, "--prefix", "flag", "--now", "2023-06-10T00:00:00Z")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Processed chunk 3, rows: 1, total: 3, file: flag_batch_2.csv")
	_, statErr := os.Stat(filepath.Join(dir, "env_batch_0.csv"))
	assert.True(t, os.IsNotExist(statErr), "flag prefix wins over env")
}

func TestRootCmd_ConfigFile(t *testing.T) {
	dir, input := writeTestInput(t)
	cfgPath := filepath.Join(dir, "influxbatch.yaml")
	cfgYAML := "input:\n  path: " + input + "\noutput:\n  dir: " + dir + "\n  prefix: cfg\nprocessing:\n  chunk_size: 5\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0600))

	stdout, _, err := executeCmd(t, nil, "--config", cfgPath, "--now", "2023-06-10T00:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, stdout, "file: cfg_batch_0.csv")
	assert.FileExists(t, filepath.Join(dir, "cfg_batch_0.csv"))
}

func TestRootCmd_InvalidChunkSize(t *testing.T) {
	_, input := writeTestInput(t)

	_, _, err := executeCmd(t, nil, "--input", input, "--chunk-size", "0")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRootCmd_InvalidNow(t *testing.T) {
	dir, input := writeTestInput(t)

	_, _, err := executeCmd(t, nil, "--input", input, "--output-dir", dir, "--now", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--now")
}

func TestRootCmd_MissingInput(t *testing.T) {
	stdout, _, err := executeCmd(t, nil, "--input", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, stdout, "Processing CSV in chunks...")
	assert.NotContains(t, stdout, "Transformation complete!")
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	_, _, err := executeCmd(t, nil, "unexpected")
	require.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := executeCmd(t, map[string]string{config.EnvChunkSize: "not-a-number"}, "version")
	require.NoError(t, err, "version ignores a broken config")
	assert.Equal(t, "influxbatch 1.2.3\n", stdout)
}

func TestConfigValidateCmd(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		stdout, _, err := executeCmd(t, nil, "config", "validate", "--verbose")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Configuration is valid")
		assert.Contains(t, stdout, "Chunk size: 210000")
		assert.Contains(t, stdout, "Log file: none (stderr)")
	})

	t.Run("invalid", func(t *testing.T) {
		_, _, err := executeCmd(t, map[string]string{config.EnvWorkers: "0"}, "config", "validate")
		require.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "configuration validation failed")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := executeCmd(t, nil, "config", "validate", "--config", filepath.Join(t.TempDir(), "x.yaml"))
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestConfigShowCmd(t *testing.T) {
	stdout, _, err := executeCmd(t, map[string]string{config.EnvWorkers: "3"}, "config", "show")
	require.NoError(t, err)

	assert.Contains(t, stdout, "chunk_size: 210000")
	assert.Contains(t, stdout, "workers: 3")
	assert.Contains(t, stdout, "prefix: influx4")
	assert.False(t, strings.Contains(stdout, "file:"), "empty log file is omitted")
}
