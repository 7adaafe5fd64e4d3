package batch

import (
	"sync"
	"time"
)

// Progress tracks the progress of a streaming batch run. The total is not
// known up front, so only cumulative counts are kept.
type Progress struct {
	// ProcessedItems is the number of items processed so far.
	ProcessedItems int

	// ProcessedBatches is the number of batches processed so far.
	ProcessedBatches int

	// LastBatchIndex is the index of the most recently completed batch.
	LastBatchIndex int

	// LastBatchItems is the size of the most recently completed batch.
	LastBatchItems int

	// StartTime is when processing started.
	StartTime time.Time

	// LastUpdateTime is when progress was last updated.
	LastUpdateTime time.Time

	// mu protects concurrent access to progress fields.
	mu sync.RWMutex
}

// NewProgress creates a new progress tracker.
func NewProgress() *Progress {
	now := time.Now()
	return &Progress{
		LastBatchIndex: -1,
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// AddProcessed records a completed batch.
// This method is thread-safe.
func (p *Progress) AddProcessed(batchIndex, itemsProcessed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ProcessedItems += itemsProcessed
	p.ProcessedBatches++
	p.LastBatchIndex = batchIndex
	p.LastBatchItems = itemsProcessed
	p.LastUpdateTime = time.Now()
}

// Snapshot returns a thread-safe copy of the current progress state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return ProgressSnapshot{
		ProcessedItems:   p.ProcessedItems,
		ProcessedBatches: p.ProcessedBatches,
		LastBatchIndex:   p.LastBatchIndex,
		LastBatchItems:   p.LastBatchItems,
		StartTime:        p.StartTime,
		LastUpdateTime:   p.LastUpdateTime,
		ElapsedTime:      time.Since(p.StartTime),
		ItemsPerSecond:   p.itemsPerSecondUnsafe(),
	}
}

// ProgressSnapshot is an immutable snapshot of progress state.
type ProgressSnapshot struct {
	ProcessedItems   int
	ProcessedBatches int
	LastBatchIndex   int
	LastBatchItems   int
	StartTime        time.Time
	LastUpdateTime   time.Time
	ElapsedTime      time.Duration
	ItemsPerSecond   float64
}

// itemsPerSecondUnsafe calculates items per second without locking.
// Should only be called when already holding the lock.
func (p *Progress) itemsPerSecondUnsafe() float64 {
	elapsed := time.Since(p.StartTime).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(p.ProcessedItems) / elapsed
}
