// Package engine runs the readings-to-annotated-CSV pipeline: it streams the
// input in batches, rescales and serializes every batch, and reports
// progress as it goes.
package engine

import (
	"context"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/rshade/influxbatch/internal/annotated"
	"github.com/rshade/influxbatch/internal/engine/batch"
	"github.com/rshade/influxbatch/internal/logging"
	"github.com/rshade/influxbatch/internal/readings"
)

// User-facing messages written to the output stream.
const (
	StartMessage    = "Processing CSV in chunks..."
	CompleteMessage = "Transformation complete!"
)

// Options configures a pipeline run.
type Options struct {
	InputPath    string
	Encoding     string
	ChunkSize    int
	OutputDir    string
	OutputPrefix string
	Workers      int

	// Now anchors the rescaling window for every batch of the run. The zero
	// value means the current time, captured once when Run starts.
	Now time.Time
}

// Summary reports what a run produced. Files is ordered by batch index.
type Summary struct {
	Batches int
	Rows    int
	Files   []string
	Now     time.Time
	Elapsed time.Duration
}

// Run executes the pipeline and writes progress lines to out. The first
// error aborts the run; files already written are left in place.
func Run(ctx context.Context, opts Options, out io.Writer) (Summary, error) {
	log := logging.FromContext(ctx)

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	_, _ = fmt.Fprintln(out, StartMessage)

	reader, err := readings.Open(opts.InputPath, opts.Encoding, opts.ChunkSize)
	if err != nil {
		return Summary{Now: now}, err
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			log.Warn().Str("component", "engine").Err(closeErr).Msg("closing input")
		}
	}()

	transformer := annotated.NewTransformer(now)
	writer := annotated.NewWriter(opts.OutputDir, opts.OutputPrefix, transformer)
	files := map[int]string{}

	// Progress callbacks are serialized by the processor and run only after
	// a batch file has been written.
	processor := batch.NewProcessor[readings.Reading](opts.Workers).
		WithProgressCallback(func(snap batch.ProgressSnapshot) {
			name := annotated.FileName(writer.Prefix, snap.LastBatchIndex)
			files[snap.LastBatchIndex] = name
			_, _ = fmt.Fprintf(out, "Processed chunk %d, rows: %d, total: %d, file: %s\n",
				snap.LastBatchIndex+1, snap.LastBatchItems, snap.ProcessedItems, name)

			log.Debug().
				Str("component", "engine").
				Int("batch_index", snap.LastBatchIndex).
				Int("rows", snap.LastBatchItems).
				Str("file", filepath.Join(writer.Dir, name)).
				Float64("rows_per_second", snap.ItemsPerSecond).
				Msg("batch written")
		})

	log.Info().
		Str("component", "engine").
		Str("operation", "run").
		Str("input", opts.InputPath).
		Int("chunk_size", opts.ChunkSize).
		Int("workers", processor.MaxConcurrency()).
		Time("now", transformer.Now()).
		Msg("starting transformation")

	snap, err := processor.Run(ctx, reader, func(_ context.Context, items []readings.Reading, batchIndex int) error {
		_, writeErr := writer.WriteBatch(batchIndex, items)
		return writeErr
	})

	summary := Summary{
		Batches: snap.ProcessedBatches,
		Rows:    snap.ProcessedItems,
		Files:   orderedFiles(files),
		Now:     transformer.Now(),
		Elapsed: snap.ElapsedTime,
	}
	if err != nil {
		log.Error().
			Str("component", "engine").
			Int("rows_read", reader.Rows()).
			Int("rows_written", summary.Rows).
			Err(err).
			Msg("transformation aborted")
		return summary, err
	}

	log.Info().
		Str("component", "engine").
		Str("operation", "run").
		Int("batches", summary.Batches).
		Int("rows", summary.Rows).
		Int("rows_read", reader.Rows()).
		Float64("rows_per_second", snap.ItemsPerSecond).
		Dur("elapsed", summary.Elapsed).
		Msg("transformation complete")

	_, _ = fmt.Fprintln(out, CompleteMessage)
	return summary, nil
}

func orderedFiles(files map[int]string) []string {
	out := make([]string, 0, len(files))
	for _, i := range slices.Sorted(maps.Keys(files)) {
		out = append(out, files[i])
	}
	return out
}
