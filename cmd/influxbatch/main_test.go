package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/influxbatch/internal/cli"
	"github.com/rshade/influxbatch/pkg/version"
)

func TestRun_Success(t *testing.T) {
	t.Setenv("INFLUXBATCH_HOME", t.TempDir())
	t.Setenv("INFLUXBATCH_LOG_LEVEL", "error")

	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(input, []byte(
		"readingDate,value,displayReference,location,readingType\n"+
			"2023-01-01T00:00:00,1,a,b,c\n"), 0600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"--input", input, "--output-dir", dir}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Transformation complete!")
	assert.FileExists(t, filepath.Join(dir, "influx4_batch_0.csv"))
}

func TestRun_ErrorExitCode(t *testing.T) {
	t.Setenv("INFLUXBATCH_HOME", t.TempDir())
	t.Setenv("INFLUXBATCH_LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--input", filepath.Join(t.TempDir(), "missing.csv")}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error occurred: ")
	assert.NotContains(t, stdout.String(), "Transformation complete!")
}

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		require.NotNil(t, root)
		assert.Equal(t, "influxbatch", root.Use)
	})
}
