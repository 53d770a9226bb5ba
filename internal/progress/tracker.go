package progress

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Status represents the current run status
type Status struct {
	TotalFiles     int64         // files discovered
	ProcessedFiles int64         // files attempted, whatever the outcome
	SuccessFiles   int64         // encoded and kept
	RejectedFiles  int64         // encoded, larger than input, deleted
	SkippedFiles   int64         // output already present and kept
	FailedFiles    int64         // encoder or filesystem error
	InputBytes     int64         // bytes of inputs with a kept output
	OutputBytes    int64         // bytes of kept outputs
	StartTime      time.Time     // run start
	LastUpdateTime time.Time     // last recorded result
	AverageRate    float64       // files per second since start
	ETA            time.Duration // estimated time remaining
}

// Tracker holds the progress counter shared by all workers and the
// per-result tallies shown in summaries.
//
// The processed counter is the only value incremented from several workers on
// the hot path, so it is kept as an atomic outside the mutex.
type Tracker struct {
	processed atomic.Int64

	mu     sync.RWMutex
	status Status
}

// NewTracker creates a new progress tracker for total files
func NewTracker(total int64) *Tracker {
	now := time.Now()
	return &Tracker{
		status: Status{
			TotalFiles:     total,
			StartTime:      now,
			LastUpdateTime: now,
		},
	}
}

// Next increments the processed counter and returns its new value.
func (t *Tracker) Next() int64 {
	return t.processed.Add(1)
}

// Processed returns the number of files attempted so far.
func (t *Tracker) Processed() int64 {
	return t.processed.Load()
}

// Total returns the number of files in the run.
func (t *Tracker) Total() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status.TotalFiles
}

// AddSuccess records a freshly encoded file
func (t *Tracker) AddSuccess(inBytes, outBytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.SuccessFiles++
	t.status.InputBytes += inBytes
	t.status.OutputBytes += outBytes
	t.touch()
}

// AddSkipped records a file whose existing output was kept
func (t *Tracker) AddSkipped(inBytes, outBytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.SkippedFiles++
	t.status.InputBytes += inBytes
	t.status.OutputBytes += outBytes
	t.touch()
}

// AddRejected records a file whose output was deleted by the size check
func (t *Tracker) AddRejected() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.RejectedFiles++
	t.touch()
}

// AddFailed records a file that could not be encoded
func (t *Tracker) AddFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.FailedFiles++
	t.touch()
}

// touch must be called with the lock held.
func (t *Tracker) touch() {
	now := time.Now()
	t.status.LastUpdateTime = now

	elapsed := now.Sub(t.status.StartTime)
	processed := t.processed.Load()
	if elapsed <= 0 || processed == 0 {
		t.status.AverageRate = 0
		t.status.ETA = 0
		return
	}

	t.status.AverageRate = float64(processed) / elapsed.Seconds()

	remaining := t.status.TotalFiles - processed
	if remaining <= 0 {
		t.status.ETA = 0
		return
	}
	t.status.ETA = time.Duration(float64(remaining) / t.status.AverageRate * float64(time.Second))
}

// GetStatus returns a snapshot of the current status
func (t *Tracker) GetStatus() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := t.status
	s.ProcessedFiles = t.processed.Load()
	return s
}

// GetProgressPercent returns the progress percentage
func (t *Tracker) GetProgressPercent() float64 {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return float64(t.Processed()) / float64(total) * 100
}

// FormatDuration formats duration in human readable format
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
