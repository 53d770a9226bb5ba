package worker

import (
	"context"
	"sync"

	"webpbatch/internal/encoder"
	"webpbatch/internal/metrics"
	"webpbatch/internal/progress"

	"go.uber.org/zap"
)

// Pool runs one worker per chunk over shared progress and cancellation state
type Pool struct {
	config  Config
	encoder encoder.Encoder
	tracker *progress.Tracker
	cancel  *CancelFlag
	metrics *metrics.Collector
	printer *progress.Printer
	logger  *zap.Logger
}

// NewPool creates a new worker pool
func NewPool(
	config Config,
	enc encoder.Encoder,
	tracker *progress.Tracker,
	cancel *CancelFlag,
	metricsCollector *metrics.Collector,
	printer *progress.Printer,
	logger *zap.Logger,
) *Pool {
	return &Pool{
		config:  config,
		encoder: enc,
		tracker: tracker,
		cancel:  cancel,
		metrics: metricsCollector,
		printer: printer,
		logger:  logger,
	}
}

// Start launches one goroutine per chunk. Each worker sends exactly one
// Report on the returned channel, which is buffered to len(chunks).
func (p *Pool) Start(ctx context.Context, chunks [][]Task, wg *sync.WaitGroup) <-chan Report {
	reports := make(chan Report, len(chunks))
	for i, chunk := range chunks {
		wg.Add(1)
		go p.worker(ctx, i, chunk, reports, wg)
	}
	return reports
}

func (p *Pool) worker(ctx context.Context, id int, chunk []Task, reports chan<- Report, wg *sync.WaitGroup) {
	defer wg.Done()

	p.metrics.WorkerStarted()
	defer p.metrics.WorkerDone()

	logger := p.logger.With(zap.Int("worker_id", id))
	logger.Debug("Worker started", zap.Int("chunk_size", len(chunk)))

	processor := &TaskProcessor{
		config:  p.config,
		encoder: p.encoder,
		tracker: p.tracker,
		metrics: p.metrics,
		printer: p.printer,
		logger:  logger,
	}

	report := Report{WorkerID: id, ChunkSize: len(chunk)}
	for _, task := range chunk {
		if p.cancel.IsSet() {
			report.Cancelled = true
			break
		}

		if processor.Process(ctx, task) == ResultFailed {
			report.Failed++
		}
		report.Processed++
	}

	if report.Cancelled {
		p.printer.Printf("Worker %d cancelled. Processed %d/%d", id, report.Processed, report.ChunkSize)
		logger.Info("Worker stopped - cancelled", zap.Int("processed", report.Processed))
	} else {
		p.printer.Printf("Worker %d completed. Processed %d/%d", id, report.Processed, report.ChunkSize)
		logger.Debug("Worker finished - chunk exhausted", zap.Int("failed", report.Failed))
	}

	reports <- report
}
