package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/influxbatch/internal/config"
)

// newConfigCmd creates the config command group.
func newConfigCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the influxbatch configuration",
		Args:  cobra.NoArgs,
		// Config commands load the config themselves so that an invalid file
		// is reported rather than aborting the pre-run.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
	}
	cmd.AddCommand(newConfigValidateCmd(lookupEnv), newConfigShowCmd(lookupEnv))
	return cmd
}

// newConfigValidateCmd creates the config validate command.
func newConfigValidateCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Long: `Loads the configuration from defaults, the config file and INFLUXBATCH_*
environment variables and checks it for values the transformation cannot use:

- input.path must be set
- processing.chunk_size must be within the supported range
- processing.workers must be between 1 and 64
- output.prefix must be a plain file name prefix
- logging.format must be console or json`,
		Example: `  # Validate the current configuration
  influxbatch config validate

  # Validate a specific file and show the resolved values
  influxbatch config validate --config ./influxbatch.yaml --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, lookupEnv, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate loads and validates the configuration.
func runConfigValidate(cmd *cobra.Command, lookupEnv func(string) (string, bool), verbose bool) error {
	cfg, err := resolvedConfig(cmd, lookupEnv)
	if err != nil {
		return err
	}

	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Println("Configuration is valid")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}
	return nil
}

// newConfigShowCmd creates the config show command.
func newConfigShowCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolvedConfig(cmd, lookupEnv)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err = enc.Encode(cfg); err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			return enc.Close()
		},
	}
}

func resolvedConfig(cmd *cobra.Command, lookupEnv func(string) (string, bool)) (*config.Config, error) {
	flagPath, _ := cmd.Flags().GetString(flagConfig)
	return config.Load(config.ResolveConfigPath(flagPath, lookupEnv), lookupEnv)
}

// printVerboseDetails prints the resolved configuration values.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Input: %s (%s)\n", cfg.Input.Path, cfg.Input.Encoding)
	cmd.Printf("  Output: %s/%s_batch_<n>.csv\n", cfg.Output.Dir, cfg.Output.Prefix)
	cmd.Printf("  Chunk size: %d\n", cfg.Processing.ChunkSize)
	cmd.Printf("  Workers: %d\n", cfg.Processing.Workers)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	} else {
		cmd.Println("  Log file: none (stderr)")
	}
}
