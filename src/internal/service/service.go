// FILE: logship/src/internal/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"logship/src/internal/batch"
	"logship/src/internal/config"
	"logship/src/internal/core"
	"logship/src/internal/filter"
	"logship/src/internal/format"
	"logship/src/internal/metrics"
	"logship/src/internal/sink"
	"logship/src/internal/source"
	"logship/src/internal/telemetry"
	"logship/src/internal/trigger"

	"github.com/lixenwraith/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Run results recorded in metrics
const (
	resultUploaded = "uploaded"
	resultIgnored  = "ignored"
	resultDigest   = "digest"
	resultFailed   = "failed"
)

// Option customizes a Service
type Option func(*Service)

// WithMetrics records per-run counters
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer wraps runs and batches in spans
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// Service ships one object per Run call. Configuration and components are
// fixed at construction; nothing is carried over between runs.
type Service struct {
	cfg        *config.Config
	classifier *filter.Classifier
	source     *source.LineSource
	packager   *format.Packager
	deliverer  sink.Deliverer
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	logger     *log.Logger

	// Statistics
	totalRuns  atomic.Uint64
	failedRuns atomic.Uint64
	startTime  time.Time
}

// New creates a service from a resolved configuration.
func New(cfg *config.Config, store source.ObjectStore, deliverer sink.Deliverer, logger *log.Logger, options ...Option) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if deliverer == nil {
		return nil, fmt.Errorf("deliverer cannot be nil")
	}

	classifier, err := filter.New(cfg.IgnorePattern, cfg.CloudTrailPattern, logger)
	if err != nil {
		return nil, &core.ConfigurationError{Key: "patterns", Err: err}
	}

	src, err := source.NewLineSource(store, cfg.Source.MaxFileSize, logger)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:        cfg,
		classifier: classifier,
		source:     src,
		packager:   format.NewPackager(cfg.LogType, cfg.Attributes),
		deliverer:  deliverer,
		logger:     logger,
		startTime:  time.Now(),
	}
	for _, o := range options {
		o(s)
	}
	if s.tracer == nil {
		s.tracer = trace.NewNoopTracerProvider().Tracer("logship")
	}

	return s, nil
}

// Run processes the object named by ref and reports the result. Any error
// means the object as a whole failed, even if some batches were delivered.
func (s *Service) Run(ctx context.Context, ref trigger.ObjectRef) (result core.RunResult, err error) {
	start := time.Now()
	inv := trigger.Invocation(ctx, ref)
	s.totalRuns.Add(1)

	ctx, span := s.tracer.Start(ctx, "service.run",
		trace.WithAttributes(
			attribute.String("s3.bucket", inv.Bucket),
			attribute.String("s3.key", inv.Key),
			attribute.String("faas.invocation_id", inv.RequestID),
		))

	outcome := resultFailed
	defer func() {
		if err != nil {
			s.failedRuns.Add(1)
		}
		span.SetAttributes(
			attribute.String("run.result", outcome),
			attribute.Int64("run.records", result.Records),
			attribute.Int64("run.payloads", result.Payloads),
		)
		telemetry.EndSpan(span, err)
		s.metrics.RecordRun(outcome, time.Since(start))
	}()

	kind := s.classifier.Classify(inv.Key)
	switch kind {
	case filter.KindIgnored:
		s.logger.Debug("msg", "Ignoring object",
			"component", "service",
			"bucket", inv.Bucket,
			"key", inv.Key)
		outcome = resultIgnored
		return core.RunResult{StatusCode: core.StatusOK, Message: core.MessageIgnored}, nil

	case filter.KindDigest:
		// Digest files carry no log events
		s.logger.Debug("msg", "Skipping CloudTrail digest",
			"component", "service",
			"bucket", inv.Bucket,
			"key", inv.Key)
		outcome = resultDigest
		return core.RunResult{StatusCode: core.StatusOK, Message: core.MessageUploaded}, nil
	}

	if err := s.cfg.ValidateForDelivery(); err != nil {
		return core.RunResult{}, err
	}

	state, err := s.ship(ctx, inv, kind)
	result = state.result()
	if err != nil {
		return result, err
	}

	outcome = resultUploaded
	result.StatusCode = core.StatusOK
	result.Message = core.MessageUploaded
	return result, nil
}

// ship streams the object through the batcher into delivery waves
func (s *Service) ship(ctx context.Context, inv core.Invocation, kind filter.Kind) (*runState, error) {
	state := &runState{}

	reader, err := s.source.Open(ctx, inv.Bucket, inv.Key)
	if err != nil {
		return state, err
	}
	defer reader.Close()

	d := newDispatcher(int(s.cfg.Delivery.MaxConcurrentRequests), func(b core.Batch) error {
		return s.deliverBatch(ctx, inv, b, state)
	})
	batcher := batch.New(s.cfg.BatchThreshold(), s.logger)

	emit := func(entry core.LogEntry) error {
		state.records.Add(1)
		if sealed, ok := batcher.Add(entry); ok {
			state.batches.Add(1)
			s.metrics.RecordBatch()
			return d.submit(sealed)
		}
		return nil
	}

	start := time.Now()
	var readErr error
	if kind == filter.KindCloudTrail {
		readErr = s.readCloudTrail(reader, inv, emit)
	} else {
		readErr = s.readLines(reader, emit)
	}
	s.metrics.AddRecords(int(state.records.Load()))

	if readErr != nil {
		// Outstanding deliveries are joined before the run ends
		if waitErr := d.wait(); waitErr != nil {
			s.logger.Warn("msg", "Delivery failed while aborting run",
				"component", "service",
				"error", waitErr)
		}
		return state, readErr
	}

	if last, ok := batcher.Flush(); ok {
		state.batches.Add(1)
		s.metrics.RecordBatch()
		if err := d.submit(last); err != nil {
			return state, err
		}
	}

	s.logger.Info("msg", "Sending data to ingest endpoint",
		"component", "service",
		"object", inv.URL(),
		"batches", state.batches.Load())

	if err := d.wait(); err != nil {
		return state, err
	}

	s.logger.Info("msg", "Log entries sent",
		"component", "service",
		"object", inv.URL(),
		"records", state.records.Load(),
		"payloads", state.payloads.Load(),
		"waves", d.waves,
		"elapsed", time.Since(start).String())

	return state, nil
}

func (s *Service) readLines(reader *source.ObjectReader, emit func(core.LogEntry) error) error {
	for {
		line, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := emit(format.DecodeLine(line)); err != nil {
			return err
		}
	}
}

func (s *Service) readCloudTrail(reader *source.ObjectReader, inv core.Invocation, emit func(core.LogEntry) error) error {
	doc, err := reader.ReadAll()
	if err != nil {
		return err
	}

	entries, err := format.FlattenCloudTrail(doc)
	if err != nil {
		if errors.Is(err, core.ErrInvalidEventTime) {
			return fmt.Errorf("flatten CloudTrail records of %s: %w", inv.URL(), err)
		}
		return &core.SourceReadError{Bucket: inv.Bucket, Key: inv.Key, Err: err}
	}

	for _, entry := range entries {
		if err := emit(entry); err != nil {
			return err
		}
	}
	return nil
}

// deliverBatch packages, splits and sends one batch. Pieces of a batch are
// sent in order.
func (s *Service) deliverBatch(ctx context.Context, inv core.Invocation, b core.Batch, state *runState) (err error) {
	ctx, span := s.tracer.Start(ctx, "service.batch",
		trace.WithAttributes(
			attribute.Int("batch.seq", b.Seq),
			attribute.Int("batch.entries", b.Len()),
			attribute.Int64("batch.size", b.Size),
		))
	defer func() { telemetry.EndSpan(span, err) }()

	payload, err := s.packager.Package(b, inv)
	if err != nil {
		return err
	}

	pieces, err := format.EnsureWithinLimit(payload, s.cfg.Delivery.MaxPayloadSize)
	if err != nil {
		return err
	}

	s.logger.Debug("msg", "Sending batch",
		"component", "service",
		"batch", b.Seq+1,
		"batch_size", b.Size,
		"entries", b.Len(),
		"payloads", len(pieces))

	for _, piece := range pieces {
		state.payloads.Add(1)
		res, err := s.deliverer.Deliver(ctx, piece)
		state.attempts.Add(int64(res.Attempts))
		if err != nil {
			s.logger.Error("msg", "Batch delivery failed",
				"component", "service",
				"object", inv.URL(),
				"batch", b.Seq+1,
				"error", err)
			return err
		}
	}
	return nil
}

// GetStats returns service statistics.
func (s *Service) GetStats() map[string]any {
	return map[string]any{
		"total_runs":  s.totalRuns.Load(),
		"failed_runs": s.failedRuns.Load(),
		"uptime":      time.Since(s.startTime).String(),
		"classifier":  s.classifier.GetStats(),
		"sink":        s.deliverer.GetStats(),
	}
}

// runState collects the counters of one run across delivery goroutines
type runState struct {
	records  atomic.Int64
	batches  atomic.Int64
	payloads atomic.Int64
	attempts atomic.Int64
}

func (r *runState) result() core.RunResult {
	return core.RunResult{
		Records:  r.records.Load(),
		Batches:  r.batches.Load(),
		Payloads: r.payloads.Load(),
		Attempts: r.attempts.Load(),
	}
}
