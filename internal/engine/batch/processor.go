package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Default batch processing configuration.
const (
	// DefaultBatchSize is the default number of rows per batch.
	DefaultBatchSize = 210000

	// MinBatchSize is the minimum allowed batch size.
	MinBatchSize = 1

	// MaxBatchSize is the maximum allowed batch size.
	MaxBatchSize = 10_000_000
)

// Common batch processing errors.
var (
	ErrInvalidBatchSize = errors.New("batch size must be between 1 and 10000000")
	ErrNilCallback      = errors.New("batch callback cannot be nil")
	ErrNilSource        = errors.New("batch source cannot be nil")
)

// ValidateBatchSize reports whether size is an acceptable batch size.
func ValidateBatchSize(size int) error {
	if size < MinBatchSize || size > MaxBatchSize {
		return fmt.Errorf("%w: got %d", ErrInvalidBatchSize, size)
	}
	return nil
}

// Source yields successive batches. Next returns io.EOF once exhausted and
// never returns an empty batch together with a nil error.
type Source[T any] interface {
	Next() ([]T, error)
}

// BatchCallback is a function that processes a single batch of items.
// It receives the batch items, batch index (0-based), and should return an error if processing fails.
//
//nolint:revive // BatchCallback is the canonical name for this exported type.
type BatchCallback[T any] func(ctx context.Context, batch []T, batchIndex int) error

// ProgressCallback is an optional callback invoked after each batch is processed.
type ProgressCallback func(snapshot ProgressSnapshot)

// Processor pulls batches from a Source and hands each one to a callback,
// either one at a time or with bounded concurrency.
type Processor[T any] struct {
	// maxConcurrency bounds the number of batches in flight.
	maxConcurrency int

	// onProgress is an optional callback for progress updates.
	onProgress ProgressCallback

	// mu serializes progress updates and progress callbacks.
	mu sync.Mutex
}

// NewProcessor creates a processor. Values of maxConcurrency below 1 are treated as 1.
func NewProcessor[T any](maxConcurrency int) *Processor[T] {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Processor[T]{maxConcurrency: maxConcurrency}
}

// WithProgressCallback sets a progress callback for the processor.
func (p *Processor[T]) WithProgressCallback(callback ProgressCallback) *Processor[T] {
	p.onProgress = callback
	return p
}

// MaxConcurrency returns the configured concurrency bound.
func (p *Processor[T]) MaxConcurrency() int {
	return p.maxConcurrency
}

// Run dispatches to Process or ProcessConcurrent depending on the concurrency bound.
func (p *Processor[T]) Run(ctx context.Context, src Source[T], callback BatchCallback[T]) (ProgressSnapshot, error) {
	if p.maxConcurrency > 1 {
		return p.ProcessConcurrent(ctx, src, callback)
	}
	return p.Process(ctx, src, callback)
}

// Process reads and processes batches strictly in order and stops on the first error.
func (p *Processor[T]) Process(ctx context.Context, src Source[T], callback BatchCallback[T]) (ProgressSnapshot, error) {
	if err := checkArgs(src, callback); err != nil {
		return ProgressSnapshot{}, err
	}

	progress := NewProgress()

	for batchIndex := 0; ; batchIndex++ {
		select {
		case <-ctx.Done():
			return progress.Snapshot(), ctx.Err()
		default:
		}

		items, err := src.Next()
		if errors.Is(err, io.EOF) {
			return progress.Snapshot(), nil
		}
		if err != nil {
			return progress.Snapshot(), fmt.Errorf("reading batch %d: %w", batchIndex, err)
		}

		if err = callback(ctx, items, batchIndex); err != nil {
			return progress.Snapshot(), fmt.Errorf("batch %d failed: %w", batchIndex, err)
		}

		p.report(progress, batchIndex, len(items))
	}
}

// ProcessConcurrent processes up to MaxConcurrency batches at once. Reading
// stays on the calling goroutine and waits for a free slot before pulling the
// next batch, so at most MaxConcurrency batches are held in memory. The first
// error cancels the context passed to the remaining callbacks.
func (p *Processor[T]) ProcessConcurrent(
	ctx context.Context,
	src Source[T],
	callback BatchCallback[T],
) (ProgressSnapshot, error) {
	if err := checkArgs(src, callback); err != nil {
		return ProgressSnapshot{}, err
	}

	progress := NewProgress()
	g, gctx := errgroup.WithContext(ctx)
	slots := make(chan struct{}, p.maxConcurrency)

	var readErr error
	for batchIndex := 0; ; batchIndex++ {
		select {
		case slots <- struct{}{}:
		case <-gctx.Done():
		}
		if gctx.Err() != nil {
			break
		}

		items, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = fmt.Errorf("reading batch %d: %w", batchIndex, err)
			break
		}

		g.Go(func() error {
			defer func() { <-slots }()
			if cbErr := callback(gctx, items, batchIndex); cbErr != nil {
				return fmt.Errorf("batch %d failed: %w", batchIndex, cbErr)
			}
			p.report(progress, batchIndex, len(items))
			return nil
		})
	}

	waitErr := g.Wait()
	switch {
	case waitErr != nil:
		return progress.Snapshot(), waitErr
	case readErr != nil:
		return progress.Snapshot(), readErr
	default:
		return progress.Snapshot(), ctx.Err()
	}
}

func checkArgs[T any](src Source[T], callback BatchCallback[T]) error {
	if src == nil {
		return ErrNilSource
	}
	if callback == nil {
		return ErrNilCallback
	}
	return nil
}

// report records a finished batch and notifies the progress callback.
func (p *Processor[T]) report(progress *Progress, batchIndex, items int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	progress.AddProcessed(batchIndex, items)
	if p.onProgress != nil {
		p.onProgress(progress.Snapshot())
	}
}
