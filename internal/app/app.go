package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"webpbatch/internal/config"
	"webpbatch/internal/encoder"
	"webpbatch/internal/metrics"
	"webpbatch/internal/progress"
	"webpbatch/internal/worker"

	"go.uber.org/zap"
)

// ErrCancelled is returned by Run when the context is cancelled before all
// workers finish.
var ErrCancelled = errors.New("run cancelled")

// Transcoder represents the main batch application
type Transcoder struct {
	cfg       *config.Config
	logger    *zap.Logger
	encoder   encoder.Encoder
	metrics   *metrics.Collector
	out       io.Writer
	statusOut io.Writer
}

// Option customises a Transcoder
type Option func(*Transcoder)

// WithEncoder replaces the command-line encoder
func WithEncoder(enc encoder.Encoder) Option {
	return func(t *Transcoder) { t.encoder = enc }
}

// WithOutput redirects progress lines, stdout by default
func WithOutput(w io.Writer) Option {
	return func(t *Transcoder) { t.out = w }
}

// Summary describes a finished or cancelled run
type Summary struct {
	Files     int
	Workers   int
	Reports   []worker.Report
	Status    progress.Status
	Elapsed   time.Duration
	Cancelled bool
}

// New creates a new transcoder instance
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Transcoder, error) {
	t := &Transcoder{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics.New(),
		out:       os.Stdout,
		statusOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.encoder == nil {
		enc, err := encoder.NewCommandEncoder(encoder.Config{Binary: cfg.Encoder.Binary})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
		}
		logger.Debug("Using encoder", zap.String("binary", enc.Binary()))
		t.encoder = enc
	}

	return t, nil
}

// Run discovers, partitions and encodes all files. It blocks until every
// worker has finished, or returns ErrCancelled as soon as ctx is done without
// waiting for in-flight encodes.
func (t *Transcoder) Run(ctx context.Context) (*Summary, error) {
	printer := progress.NewPrinter(t.out)

	t.logger.Info("Starting batch",
		zap.String("source_dir", t.cfg.Batch.SourceDir),
		zap.String("result_dir", t.cfg.Batch.ResultDir),
		zap.Strings("types", t.cfg.Batch.Types),
		zap.Int("workers", t.cfg.Batch.Workers),
		zap.Bool("purge", t.cfg.Batch.Purge),
		zap.Bool("check_size", t.cfg.Batch.CheckSize),
	)

	lister := &FileLister{
		root:       t.cfg.Batch.SourceDir,
		types:      t.cfg.Batch.Types,
		matches:    t.cfg.Batch.Matches,
		skipSuffix: t.cfg.Encoder.Suffix,
		logger:     t.logger,
	}
	files, err := lister.List(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return &Summary{Cancelled: true}, ErrCancelled
		}
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) == 0 {
		printer.Printf("Could not find any files")
		return &Summary{}, nil
	}

	options, err := t.cfg.EncoderArgs()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	chunks, err := worker.Partition(files, t.cfg.Batch.Workers)
	if err != nil {
		return nil, err
	}

	printer.Printf("Files:   %d", len(files))
	printer.Printf("Workers: %d", len(chunks))

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()

	if t.cfg.MetricsAddr != "" {
		go func() {
			if err := t.metrics.StartServer(runCtx, t.cfg.MetricsAddr); err != nil {
				t.logger.Error("Failed to start metrics server", zap.Error(err))
			}
		}()
	}

	tracker := progress.NewTracker(int64(len(files)))
	cancelFlag := &worker.CancelFlag{}

	pool := worker.NewPool(worker.Config{
		SourceDir: t.cfg.Batch.SourceDir,
		ResultDir: t.cfg.Batch.ResultDir,
		Suffix:    t.cfg.Encoder.Suffix,
		Options:   options,
		Purge:     t.cfg.Batch.Purge,
		CheckSize: t.cfg.Batch.CheckSize,
	}, t.encoder, tracker, cancelFlag, t.metrics, printer, t.logger)

	var display *progress.Display
	if t.cfg.Batch.ShowProgress {
		if progress.IsTerminalSupported() {
			display = progress.NewDisplay(tracker, 2*time.Second, t.statusOut)
			display.Start()
			defer display.Stop()
		} else {
			t.logger.Info("Progress display disabled (unsupported terminal)")
		}
	}

	start := time.Now()

	var wg sync.WaitGroup
	reports := pool.Start(ctx, chunks, &wg)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		cancelFlag.Cancel()
		printer.Printf("Cancelled, stopping workers")
		t.logger.Warn("Run cancelled",
			zap.Int64("processed", tracker.Processed()),
			zap.Int("total", len(files)),
		)
		return &Summary{
			Files:     len(files),
			Workers:   len(chunks),
			Status:    tracker.GetStatus(),
			Elapsed:   time.Since(start),
			Cancelled: true,
		}, ErrCancelled
	}

	elapsed := time.Since(start)

	summary := &Summary{
		Files:   len(files),
		Workers: len(chunks),
		Status:  tracker.GetStatus(),
		Elapsed: elapsed,
	}
	// Every worker has sent its report into the buffered channel by now.
	for range chunks {
		summary.Reports = append(summary.Reports, <-reports)
	}

	if display != nil {
		display.Stop()
	}

	printer.Printf("Images processed: %d", summary.Status.ProcessedFiles)
	printer.Printf("Time: %.4fs", elapsed.Seconds())
	for _, line := range progress.SummaryLines(summary.Status) {
		printer.Printf("%s", line)
	}

	t.logger.Info("Batch completed",
		zap.Int64("processed", summary.Status.ProcessedFiles),
		zap.Int64("failed", summary.Status.FailedFiles),
		zap.Duration("elapsed", elapsed),
	)

	return summary, nil
}
