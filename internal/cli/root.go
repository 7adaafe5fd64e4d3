package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/influxbatch/internal/annotated"
	"github.com/rshade/influxbatch/internal/config"
	"github.com/rshade/influxbatch/internal/engine"
	"github.com/rshade/influxbatch/internal/engine/batch"
	"github.com/rshade/influxbatch/internal/logging"
	"github.com/rshade/influxbatch/internal/readings"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// Flag names.
const (
	flagConfig    = "config"
	flagInput     = "input"
	flagEncoding  = "encoding"
	flagChunkSize = "chunk-size"
	flagOutputDir = "output-dir"
	flagPrefix    = "prefix"
	flagWorkers   = "workers"
	flagNow       = "now"
	flagDebug     = "debug"
)

// NewRootCmd creates the root Cobra command for the influxbatch CLI.
// Running it without a subcommand performs the transformation.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit env lookup for testability.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	var (
		logResult *logging.LogPathResult
		cfg       *config.Config
	)

	cmd := &cobra.Command{
		Use:   "influxbatch",
		Short: "Convert a sensor readings CSV into annotated CSV batches",
		Long: `influxbatch reads a CSV export of sensor readings in fixed-size batches,
rescales each batch's timestamps into the window [now-20d, now-5d] and writes
one annotated CSV file per batch, ready for bulk import.`,
		Version:       ver,
		Example:       rootCmdExample,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := loadConfig(cmd, lookupEnv)
			if err != nil {
				return err
			}
			cfg = loaded

			result := setupLogging(cmd, cfg)
			logResult = &result
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTransform(cmd, cfg)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(flagConfig, "", "path to a YAML config file (default $INFLUXBATCH_CONFIG or ~/.influxbatch/config.yaml)")
	flags.Bool(flagDebug, false, "enable debug logging")

	local := cmd.Flags()
	local.String(flagInput, config.DefaultInputPath, "input readings CSV file")
	local.String(flagEncoding, readings.EncodingUTF8, "input encoding: utf-8, utf-16, latin1, windows-1252")
	local.Int(flagChunkSize, batch.DefaultBatchSize, "rows per batch")
	local.String(flagOutputDir, config.DefaultOutputDir, "directory for the batch files")
	local.String(flagPrefix, annotated.DefaultPrefix, "output file prefix, files are named <prefix>_batch_<n>.csv")
	local.Int(flagWorkers, config.DefaultWorkers, "number of batches processed concurrently")
	local.String(flagNow, "", "reference time (RFC3339) for rescaling, default is the current time")

	cmd.AddCommand(newConfigCmd(lookupEnv), newVersionCmd(ver))

	return cmd
}

const rootCmdExample = `  # Convert the default input file in the current directory
  influxbatch

  # Convert a specific file into ./out with 100000 rows per batch
  influxbatch --input readings.csv --output-dir out --chunk-size 100000

  # Reproduce an earlier run exactly by freezing the reference time
  influxbatch --input readings.csv --now 2023-06-10T00:00:00Z

  # Validate the configuration
  influxbatch config validate`

// loadConfig merges defaults, the config file, environment and flags, in
// increasing order of precedence, and validates the result.
func loadConfig(cmd *cobra.Command, lookupEnv func(string) (string, bool)) (*config.Config, error) {
	flagPath, _ := cmd.Flags().GetString(flagConfig)
	cfg, err := config.Load(config.ResolveConfigPath(flagPath, lookupEnv), lookupEnv)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed(flagInput) {
		cfg.Input.Path, _ = flags.GetString(flagInput)
	}
	if flags.Changed(flagEncoding) {
		cfg.Input.Encoding, _ = flags.GetString(flagEncoding)
	}
	if flags.Changed(flagChunkSize) {
		cfg.Processing.ChunkSize, _ = flags.GetInt(flagChunkSize)
	}
	if flags.Changed(flagOutputDir) {
		cfg.Output.Dir, _ = flags.GetString(flagOutputDir)
	}
	if flags.Changed(flagPrefix) {
		cfg.Output.Prefix, _ = flags.GetString(flagPrefix)
	}
	if flags.Changed(flagWorkers) {
		cfg.Processing.Workers, _ = flags.GetInt(flagWorkers)
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runTransform executes the pipeline with the resolved configuration.
func runTransform(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()

	var now time.Time
	if raw, _ := cmd.Flags().GetString(flagNow); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("invalid --%s %q: expected RFC3339, e.g. 2023-06-10T00:00:00Z", flagNow, raw)
		}
		now = parsed
	}

	summary, err := engine.Run(ctx, engine.Options{
		InputPath:    cfg.Input.Path,
		Encoding:     cfg.Input.Encoding,
		ChunkSize:    cfg.Processing.ChunkSize,
		OutputDir:    cfg.Output.Dir,
		OutputPrefix: cfg.Output.Prefix,
		Workers:      cfg.Processing.Workers,
		Now:          now,
	}, cmd.OutOrStdout())
	if err != nil {
		logger.Error().Ctx(ctx).Err(err).Int("rows_written", summary.Rows).Msg("transformation failed")
		return err
	}

	logger.Info().Ctx(ctx).
		Int("batches", summary.Batches).
		Int("rows", summary.Rows).
		Time("now", summary.Now).
		Dur("elapsed", summary.Elapsed).
		Msg("command finished")
	return nil
}

// newVersionCmd creates the version command.
func newVersionCmd(ver string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the influxbatch version",
		Args:  cobra.NoArgs,
		// Skip config loading so version works with a broken config.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("influxbatch " + ver)
		},
	}
}
