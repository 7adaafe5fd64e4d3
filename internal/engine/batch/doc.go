// Package batch drives the processing of a stream of fixed-size batches.
//
// A Source yields batches one at a time, so memory use is bounded by the
// batch size times the number of batches in flight rather than by the input
// size. Key features:
//   - Sequential processing that stops on the first error (the default)
//   - Bounded concurrent processing via errgroup for independent batches
//   - Progress tracking with callbacks for logging and user output
//   - Context-aware cancellation between batches
package batch
