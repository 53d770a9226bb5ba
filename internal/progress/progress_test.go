package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTracker_NextIsAtomic(t *testing.T) {
	const workers, perWorker = 8, 500
	tr := NewTracker(workers * perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				tr.Next()
			}
		}()
	}
	wg.Wait()

	if got := tr.Processed(); got != workers*perWorker {
		t.Fatalf("Processed = %d, want %d", got, workers*perWorker)
	}
	if got := tr.GetProgressPercent(); got != 100 {
		t.Errorf("percent = %v, want 100", got)
	}
}

func TestTracker_Tallies(t *testing.T) {
	tr := NewTracker(4)
	for i := 0; i < 4; i++ {
		tr.Next()
	}
	tr.AddSuccess(1000, 400)
	tr.AddSkipped(500, 100)
	tr.AddRejected()
	tr.AddFailed()

	s := tr.GetStatus()
	if s.ProcessedFiles != 4 || s.TotalFiles != 4 {
		t.Errorf("processed/total = %d/%d", s.ProcessedFiles, s.TotalFiles)
	}
	if s.SuccessFiles != 1 || s.SkippedFiles != 1 || s.RejectedFiles != 1 || s.FailedFiles != 1 {
		t.Errorf("tallies = %+v", s)
	}
	if s.InputBytes != 1500 || s.OutputBytes != 500 {
		t.Errorf("bytes in/out = %d/%d", s.InputBytes, s.OutputBytes)
	}
	if s.ETA != 0 {
		t.Errorf("ETA = %v, want 0 once everything is processed", s.ETA)
	}
}

func TestTracker_SubSecondETA(t *testing.T) {
	tr := NewTracker(1001)
	tr.status.StartTime = time.Now().Add(-10 * time.Second)
	for i := 0; i < 1000; i++ {
		tr.Next()
	}
	tr.AddSuccess(1, 1)

	// about 100 files/s with one file left
	if eta := tr.GetStatus().ETA; eta <= 0 || eta >= time.Second {
		t.Errorf("ETA = %v, want a positive sub-second estimate", eta)
	}
}

func TestTracker_EmptyTotal(t *testing.T) {
	tr := NewTracker(0)
	if got := tr.GetProgressPercent(); got != 0 {
		t.Errorf("percent = %v, want 0", got)
	}
}

func TestPrinter_WholeLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.Printf("line %02d %s", i, strings.Repeat("x", 64))
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines, want 20", len(lines))
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "line ") || len(l) != len("line 00 ")+64 {
			t.Errorf("torn line %q", l)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "-"},
		{45 * time.Second, "45s"},
		{2*time.Minute + 5*time.Second, "2m5s"},
		{3*time.Hour + 4*time.Minute + 5*time.Second, "3h4m5s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestStatusLine(t *testing.T) {
	line := StatusLine(Status{TotalFiles: 10, ProcessedFiles: 5, SuccessFiles: 4, FailedFiles: 1})
	for _, want := range []string{"5/10", "50.0%", "ok=4", "failed=1", "[##########..........]"} {
		if !strings.Contains(line, want) {
			t.Errorf("status line %q missing %q", line, want)
		}
	}
}

func TestSummaryLines_Savings(t *testing.T) {
	lines := SummaryLines(Status{SuccessFiles: 2, InputBytes: 2000, OutputBytes: 500})
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "Encoded:  2") {
		t.Errorf("summary missing encoded count:\n%s", joined)
	}
	if !strings.Contains(joined, "saved 1.5 kB") {
		t.Errorf("summary missing savings:\n%s", joined)
	}
}

func TestSummaryLines_NoBytes(t *testing.T) {
	lines := SummaryLines(Status{FailedFiles: 3})
	if len(lines) != 4 {
		t.Errorf("got %d lines, want 4 without a size line", len(lines))
	}
}

func TestDisplay_StopIsIdempotent(t *testing.T) {
	var buf syncBuffer
	d := NewDisplay(NewTracker(1), 5*time.Millisecond, &buf)
	d.Start()
	time.Sleep(20 * time.Millisecond)
	d.Stop()
	d.Stop()

	if !strings.Contains(buf.String(), "[progress] 0/1") {
		t.Errorf("display output = %q", buf.String())
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
