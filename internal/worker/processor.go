package worker

import (
	"context"
	"fmt"
	"os"
	"time"

	"webpbatch/internal/encoder"
	"webpbatch/internal/metrics"
	"webpbatch/internal/progress"

	"go.uber.org/zap"
)

// TaskProcessor handles individual file processing
type TaskProcessor struct {
	config  Config
	encoder encoder.Encoder
	tracker *progress.Tracker
	metrics *metrics.Collector
	printer *progress.Printer
	logger  *zap.Logger
}

// Process runs one file through purge, encode and size check. Failures are
// contained here and reported as ResultFailed; they never stop the caller.
func (p *TaskProcessor) Process(ctx context.Context, task Task) Result {
	out, pathErr := OutputPath(task.Path, p.config.SourceDir, p.config.ResultDir, p.config.Suffix)

	current := p.tracker.Next()
	total := p.tracker.Total()

	if pathErr != nil {
		return p.fail(task, pathErr)
	}

	if p.config.Purge && fileExists(out) {
		p.printer.Printf("(%d/%d) Deleting existing ? %s", current, total, out)
		if err := os.Remove(out); err != nil {
			return p.fail(task, fmt.Errorf("failed to delete existing output: %w", err))
		}
	}

	result := ResultSkipped
	if !fileExists(out) {
		if err := EnsureDir(out); err != nil {
			return p.fail(task, err)
		}
		if err := p.encode(ctx, task, out); err != nil {
			return p.fail(task, err)
		}
		result = ResultSuccess
	}

	info, err := os.Stat(out)
	if err != nil {
		return p.fail(task, fmt.Errorf("encoder produced no output: %w", err))
	}

	outSize := info.Size()
	if p.config.CheckSize && outSize > task.Size {
		if err := os.Remove(out); err != nil {
			return p.fail(task, fmt.Errorf("failed to delete oversized output: %w", err))
		}
		p.logger.Debug("Output larger than input, removed",
			zap.String("file", task.Path),
			zap.Int64("input_size", task.Size),
			zap.Int64("output_size", outSize),
		)
		result = ResultRejected
	}

	p.record(result, task.Size, outSize)
	p.printer.Printf("(%d/%d) %s %s", current, total, result.Marker(), out)

	return result
}

// encode calls the encoder with a context detached from run cancellation:
// an encode that has started is allowed to finish.
func (p *TaskProcessor) encode(ctx context.Context, task Task, out string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("encoder panic: %v", r)
		}
	}()

	start := time.Now()
	err = p.encoder.Encode(context.WithoutCancel(ctx), task.Path, out, p.config.Options)
	p.metrics.ObserveDuration(time.Since(start))

	return err
}

func (p *TaskProcessor) record(result Result, inSize, outSize int64) {
	switch result {
	case ResultSuccess:
		p.tracker.AddSuccess(inSize, outSize)
		p.metrics.AddBytes(inSize, outSize)
	case ResultSkipped:
		p.tracker.AddSkipped(inSize, outSize)
		p.metrics.AddBytes(inSize, outSize)
	case ResultRejected:
		p.tracker.AddRejected()
	}
	p.metrics.IncResult(result.String())
}

func (p *TaskProcessor) fail(task Task, err error) Result {
	p.tracker.AddFailed()
	p.metrics.IncResult(ResultFailed.String())
	p.printer.Printf("Failed transcoding file: %s: %v", task.Path, err)
	p.logger.Warn("File failed",
		zap.String("file", task.Path),
		zap.Error(err),
	)
	return ResultFailed
}
