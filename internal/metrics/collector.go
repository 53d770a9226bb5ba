package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects and exposes metrics
type Collector struct {
	registry      *prometheus.Registry
	filesTotal    *prometheus.CounterVec
	inputBytes    prometheus.Counter
	outputBytes   prometheus.Counter
	activeWorkers prometheus.Gauge
	duration      prometheus.Histogram
}

// New creates a collector backed by its own registry, so several collectors
// can coexist in one process.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		filesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webpbatch_files_total",
				Help: "Total number of files processed, by result",
			},
			[]string{"result"},
		),
		inputBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "webpbatch_input_bytes_total",
				Help: "Bytes of input files with a kept output",
			},
		),
		outputBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "webpbatch_output_bytes_total",
				Help: "Bytes of kept encoded outputs",
			},
		),
		activeWorkers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "webpbatch_active_workers",
				Help: "Number of workers still processing their chunk",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "webpbatch_encode_duration_seconds",
				Help:    "Time taken by a single encoder invocation",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
	}

	c.registry.MustRegister(c.filesTotal, c.inputBytes, c.outputBytes, c.activeWorkers, c.duration)

	return c
}

// IncResult increments the counter for one file result
func (c *Collector) IncResult(result string) {
	c.filesTotal.WithLabelValues(result).Inc()
}

// AddBytes adds the sizes of a kept input/output pair
func (c *Collector) AddBytes(in, out int64) {
	c.inputBytes.Add(float64(in))
	c.outputBytes.Add(float64(out))
}

// WorkerStarted marks one more worker as active
func (c *Collector) WorkerStarted() {
	c.activeWorkers.Inc()
}

// WorkerDone marks one worker as finished
func (c *Collector) WorkerDone() {
	c.activeWorkers.Dec()
}

// ObserveDuration observes one encoder invocation
func (c *Collector) ObserveDuration(d time.Duration) {
	c.duration.Observe(d.Seconds())
}

// Handler exposes the collector's registry over HTTP
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// StartServer serves /metrics on addr until ctx is cancelled
func (c *Collector) StartServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
