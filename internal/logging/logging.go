// Package logging builds the zerolog loggers used across influxbatch and
// carries them, together with a per-run trace ID, through context.Context.
package logging

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Output and format names accepted in Config.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	OutputStderr  = "stderr"
	OutputFile    = "file"
)

// traceIDKey is the context key under which the run trace ID is stored.
type traceIDKey struct{}

// Config describes how the logger should be built.
type Config struct {
	Level  string
	Format string
	Output string
	File   string
	Caller bool
}

// LogPathResult is the outcome of NewLoggerWithPath. When a log file was
// requested but could not be opened, the logger falls back to stderr and
// FallbackUsed is set.
type LogPathResult struct {
	Logger         zerolog.Logger
	FilePath       string
	UsingFile      bool
	FallbackUsed   bool
	FallbackReason string

	file *os.File
}

// Close releases the log file handle, if any.
func (r *LogPathResult) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// NewLoggerWithPath builds a logger from cfg and reports where it writes.
func NewLoggerWithPath(cfg Config) LogPathResult {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	result := LogPathResult{}
	var out io.Writer = os.Stderr

	if cfg.Output == OutputFile && cfg.File != "" {
		f, openErr := openLogFile(cfg.File)
		if openErr != nil {
			result.FallbackUsed = true
			result.FallbackReason = openErr.Error()
		} else {
			out = f
			result.file = f
			result.FilePath = f.Name()
			result.UsingFile = true
		}
	}

	if cfg.Format != FormatJSON && !result.UsingFile {
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
		}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	result.Logger = ctx.Logger()
	return result
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// ComponentLogger returns a child logger tagged with the component name.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// FromContext returns the logger stored in ctx, or a disabled logger if none
// was attached. The trace ID, when present, is added to every event.
func FromContext(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return l
	}
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		withTrace := l.With().Str("trace_id", traceID).Logger()
		return &withTrace
	}
	return l
}

// ContextWithTraceID stores traceID in ctx.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns the trace ID stored in ctx, or "".
func TraceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey{}).(string); ok {
		return v
	}
	return ""
}

// GetOrGenerateTraceID returns the trace ID in ctx, the INFLUXBATCH_TRACE_ID
// environment variable, or a freshly generated ULID, in that order.
func GetOrGenerateTraceID(ctx context.Context) string {
	if id := TraceIDFromContext(ctx); id != "" {
		return id
	}
	if id := os.Getenv("INFLUXBATCH_TRACE_ID"); id != "" {
		return id
	}
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// PrintLogPathMessage tells the user where logs are being written.
func PrintLogPathMessage(w io.Writer, path string) {
	_, _ = fmt.Fprintf(w, "Logging to %s\n", path)
}

// PrintFallbackWarning tells the user that file logging failed.
func PrintFallbackWarning(w io.Writer, reason string) {
	_, _ = fmt.Fprintf(w, "Warning: could not open log file (%s), logging to stderr\n", reason)
}
