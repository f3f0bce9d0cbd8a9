package batch

import (
	"sync"
	"time"
)

// percentMultiplier is used to convert a ratio to percentage (0-100).
const percentMultiplier = 100

// Progress tracks how many files of a run have been handled.
// It provides thread-safe access for callbacks that render it.
type Progress struct {
	// TotalFiles is the number of eligible files in the run.
	TotalFiles int

	// ProcessedFiles counts files that reached a terminal state.
	ProcessedFiles int

	// FailedFiles counts files that ended errored.
	FailedFiles int

	// Current is the name of the file handled last.
	Current string

	StartTime      time.Time
	LastUpdateTime time.Time

	mu sync.RWMutex
}

// NewProgress creates a new progress tracker.
func NewProgress(totalFiles int) *Progress {
	now := time.Now()
	return &Progress{
		TotalFiles:     totalFiles,
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// AddProcessed records one finished file.
func (p *Progress) AddProcessed(name string, failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ProcessedFiles++
	if failed {
		p.FailedFiles++
	}
	p.Current = name
	p.LastUpdateTime = time.Now()
}

// PercentComplete returns the completion percentage (0-100).
func (p *Progress) PercentComplete() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.percentCompleteUnsafe()
}

// IsComplete returns true if all files have been handled.
func (p *Progress) IsComplete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.ProcessedFiles >= p.TotalFiles
}

// EstimatedTimeRemaining extrapolates from the average time per file.
// Returns 0 if no file has been processed yet.
func (p *Progress) EstimatedTimeRemaining() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.ProcessedFiles == 0 {
		return 0
	}

	elapsed := p.LastUpdateTime.Sub(p.StartTime)
	avg := elapsed / time.Duration(p.ProcessedFiles)
	return avg * time.Duration(p.TotalFiles-p.ProcessedFiles)
}

// Snapshot returns a copy of the current progress state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return ProgressSnapshot{
		TotalFiles:      p.TotalFiles,
		ProcessedFiles:  p.ProcessedFiles,
		FailedFiles:     p.FailedFiles,
		Current:         p.Current,
		StartTime:       p.StartTime,
		LastUpdateTime:  p.LastUpdateTime,
		PercentComplete: p.percentCompleteUnsafe(),
		ElapsedTime:     time.Since(p.StartTime),
	}
}

// ProgressSnapshot is an immutable snapshot of progress state.
type ProgressSnapshot struct {
	TotalFiles      int
	ProcessedFiles  int
	FailedFiles     int
	Current         string
	StartTime       time.Time
	LastUpdateTime  time.Time
	PercentComplete float64
	ElapsedTime     time.Duration
}

// percentCompleteUnsafe must be called with the lock held.
func (p *Progress) percentCompleteUnsafe() float64 {
	if p.TotalFiles == 0 {
		return 0
	}
	return (float64(p.ProcessedFiles) / float64(p.TotalFiles)) * percentMultiplier
}
