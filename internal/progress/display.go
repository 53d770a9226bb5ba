package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Display periodically writes a one-line status snapshot
type Display struct {
	tracker  *Tracker
	interval time.Duration
	out      io.Writer
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewDisplay creates a new progress display
func NewDisplay(tracker *Tracker, interval time.Duration, out io.Writer) *Display {
	return &Display{
		tracker:  tracker,
		interval: interval,
		out:      out,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start starts the progress display
func (d *Display) Start() {
	go d.displayLoop()
}

// Stop stops the display and waits for the loop to exit. Safe to call twice.
func (d *Display) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
		<-d.doneCh
	})
}

func (d *Display) displayLoop() {
	defer close(d.doneCh)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fmt.Fprintln(d.out, StatusLine(d.tracker.GetStatus()))
		case <-d.stopCh:
			return
		}
	}
}

// StatusLine renders a compact snapshot of s.
func StatusLine(s Status) string {
	percent := 0.0
	if s.TotalFiles > 0 {
		percent = float64(s.ProcessedFiles) / float64(s.TotalFiles) * 100
	}

	return fmt.Sprintf("[progress] %d/%d (%.1f%%) %s ok=%d rejected=%d skipped=%d failed=%d rate=%.1f/s eta=%s",
		s.ProcessedFiles, s.TotalFiles, percent,
		progressBar(percent, 20),
		s.SuccessFiles, s.RejectedFiles, s.SkippedFiles, s.FailedFiles,
		s.AverageRate, FormatDuration(s.ETA),
	)
}

// SummaryLines renders the end-of-run breakdown printed after the totals.
func SummaryLines(s Status) []string {
	lines := []string{
		fmt.Sprintf("Encoded:  %d", s.SuccessFiles),
		fmt.Sprintf("Rejected: %d", s.RejectedFiles),
		fmt.Sprintf("Skipped:  %d", s.SkippedFiles),
		fmt.Sprintf("Failed:   %d", s.FailedFiles),
	}

	if s.InputBytes > 0 {
		saved := s.InputBytes - s.OutputBytes
		ratio := float64(s.OutputBytes) / float64(s.InputBytes) * 100
		sign := ""
		if saved < 0 {
			sign = "-"
			saved = -saved
		}
		lines = append(lines, fmt.Sprintf("Size:     %s -> %s (%.1f%%, saved %s%s)",
			humanize.Bytes(uint64(s.InputBytes)),
			humanize.Bytes(uint64(s.OutputBytes)),
			ratio, sign, humanize.Bytes(uint64(saved)),
		))
	}

	return lines
}

func progressBar(percent float64, width int) string {
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}

	filled := int(percent * float64(width) / 100)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// IsTerminalSupported reports whether stderr is a character device
func IsTerminalSupported() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
