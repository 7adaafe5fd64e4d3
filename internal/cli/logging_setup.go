package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/influxbatch/internal/config"
	"github.com/rshade/influxbatch/internal/logging"
)

// setupLogging configures logging from the resolved config and the --debug flag,
// and stores the logger and a trace ID in the command context.
func setupLogging(cmd *cobra.Command, cfg *config.Config) logging.LogPathResult {
	loggingCfg := cfg.Logging

	if debug, _ := cmd.Flags().GetBool(flagDebug); debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = logging.FormatConsole
		loggingCfg.File = ""
	}

	// Ensure log directory exists after all overrides have been applied.
	if loggingCfg.File != "" {
		dirCfg := config.Config{Logging: loggingCfg}
		if err := dirCfg.EnsureLogDir(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create log directory: %v\n", err)
		}
	}

	result := logging.NewLoggerWithPath(loggingCfg.ToLoggingConfig())
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = result.Logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Info().Ctx(ctx).Str("command", cmd.Name()).Msg("command started")

	return result
}

// cleanupLogging closes the log file handle, if one was opened.
func cleanupLogging(_ *cobra.Command, logResult *logging.LogPathResult) error {
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
