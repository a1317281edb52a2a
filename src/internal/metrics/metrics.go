// FILE: logship/src/internal/metrics/metrics.go
package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the per-process delivery metrics. A nil *Metrics records
// nothing, so components can take one unconditionally.
type Metrics struct {
	registry *prometheus.Registry

	// RunsTotal counts invocations by result (uploaded, ignored, digest, failed)
	RunsTotal *prometheus.CounterVec

	// RunDuration is the wall time of a whole invocation in seconds
	RunDuration prometheus.Histogram

	// RecordsTotal counts records read from source objects
	RecordsTotal prometheus.Counter

	// BatchesTotal counts sealed batches
	BatchesTotal prometheus.Counter

	// PayloadsTotal counts compressed request bodies after splitting
	PayloadsTotal prometheus.Counter

	// PayloadBytes is the compressed request body size
	PayloadBytes prometheus.Histogram

	// AttemptsTotal counts HTTP attempts by outcome and status code
	AttemptsTotal *prometheus.CounterVec

	// AttemptDuration is the latency of one HTTP attempt in seconds
	AttemptDuration prometheus.Histogram
}

// New creates the metric set on a private registry under namespace.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of processed objects by result",
			},
			[]string{"result"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Time spent processing one object",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 300, 900},
			},
		),
		RecordsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Total number of log records read",
			},
		),
		BatchesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batches_total",
				Help:      "Total number of sealed batches",
			},
		),
		PayloadsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payloads_total",
				Help:      "Total number of compressed payloads sent",
			},
		),
		PayloadBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "payload_bytes",
				Help:      "Compressed payload size in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),
		AttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delivery_attempts_total",
				Help:      "Total number of HTTP delivery attempts",
			},
			[]string{"outcome", "status"},
		),
		AttemptDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "delivery_attempt_duration_seconds",
				Help:      "Latency of a single HTTP delivery attempt",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRun records the result and duration of one invocation.
func (m *Metrics) RecordRun(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(result).Inc()
	m.RunDuration.Observe(d.Seconds())
}

// AddRecords adds n to the records counter.
func (m *Metrics) AddRecords(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordsTotal.Add(float64(n))
}

// RecordBatch counts a sealed batch.
func (m *Metrics) RecordBatch() {
	if m == nil {
		return
	}
	m.BatchesTotal.Inc()
}

// RecordPayload counts one compressed payload of size bytes.
func (m *Metrics) RecordPayload(size int) {
	if m == nil {
		return
	}
	m.PayloadsTotal.Inc()
	m.PayloadBytes.Observe(float64(size))
}

// RecordAttempt records one HTTP attempt. status is 0 for transport errors.
func (m *Metrics) RecordAttempt(outcome string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.AttemptsTotal.WithLabelValues(outcome, strconv.Itoa(status)).Inc()
	m.AttemptDuration.Observe(d.Seconds())
}

// Pusher sends the registry to a Prometheus Pushgateway after each run.
type Pusher struct {
	pusher *push.Pusher
}

// NewPusher creates a pusher for url grouped by function name. It returns nil
// when url is empty.
func NewPusher(m *Metrics, url, job, function string) *Pusher {
	if m == nil || url == "" {
		return nil
	}
	p := push.New(url, job).Gatherer(m.registry)
	if function != "" {
		p = p.Grouping("function", function)
	}
	return &Pusher{pusher: p}
}

// Push adds the current values to the gateway.
func (p *Pusher) Push(ctx context.Context) error {
	if p == nil {
		return nil
	}
	if err := p.pusher.AddContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
