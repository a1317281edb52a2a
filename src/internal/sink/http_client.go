// FILE: logship/src/internal/sink/http_client.go
package sink

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"logship/src/internal/core"
	"logship/src/internal/flow"
	"logship/src/internal/metrics"
	"logship/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// HTTPClientOptions configures delivery to the ingest endpoint
type HTTPClientOptions struct {
	Endpoint              string
	LicenseKey            string
	MaxRetries            int
	InitialBackoff        time.Duration
	BackoffMultiplier     float64
	Timeout               time.Duration
	MaxConcurrentRequests int
}

// Option customizes an HTTPClientSink
type Option func(*HTTPClientSink)

// WithDoer replaces the fasthttp client
func WithDoer(d Doer) Option {
	return func(h *HTTPClientSink) { h.client = d }
}

// WithPacer spaces attempts with a shared rate limit
func WithPacer(p *flow.Pacer) Option {
	return func(h *HTTPClientSink) { h.pacer = p }
}

// WithMetrics records attempts and payloads
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *HTTPClientSink) { h.metrics = m }
}

// WithTracer wraps each delivery in a span
func WithTracer(t trace.Tracer) Option {
	return func(h *HTTPClientSink) { h.tracer = t }
}

// HTTPClientSink delivers compressed payloads with retry and backoff.
// Safe for concurrent use; each Deliver call keeps its own retry state.
type HTTPClientSink struct {
	// Configuration
	opts HTTPClientOptions

	// Network
	client Doer
	pacer  *flow.Pacer

	// Application
	metrics *metrics.Metrics
	tracer  trace.Tracer
	logger  *log.Logger

	// Runtime
	startTime time.Time

	// Statistics
	totalPayloads  atomic.Uint64
	totalAttempts  atomic.Uint64
	failedPayloads atomic.Uint64
	activeRequests atomic.Int64
	lastDelivered  atomic.Value // time.Time
}

// NewHTTPClientSink creates a new HTTP client sink.
func NewHTTPClientSink(opts HTTPClientOptions, logger *log.Logger, options ...Option) (*HTTPClientSink, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("HTTP client sink endpoint cannot be empty")
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = core.MaxRetries
	}
	if opts.InitialBackoff < 0 {
		opts.InitialBackoff = core.InitialBackoffMS * time.Millisecond
	}
	if opts.BackoffMultiplier <= 0 {
		opts.BackoffMultiplier = core.BackoffMultiplier
	}
	if opts.Timeout <= 0 {
		opts.Timeout = core.RequestTimeoutSeconds * time.Second
	}
	if opts.MaxConcurrentRequests <= 0 {
		opts.MaxConcurrentRequests = core.MaxConcurrentRequests
	}

	h := &HTTPClientSink{
		opts:      opts,
		logger:    logger,
		startTime: time.Now(),
	}
	h.lastDelivered.Store(time.Time{})

	for _, o := range options {
		o(h)
	}

	if h.client == nil {
		h.client = &fasthttp.Client{
			Name:                          version.UserAgent(),
			MaxConnsPerHost:               opts.MaxConcurrentRequests,
			MaxIdleConnDuration:           10 * time.Second,
			ReadTimeout:                   opts.Timeout,
			WriteTimeout:                  opts.Timeout,
			DisableHeaderNamesNormalizing: true,
		}
	}
	if h.tracer == nil {
		h.tracer = trace.NewNoopTracerProvider().Tracer("logship")
	}

	return h, nil
}

// Deliver posts body until it is accepted, rejected or the retry budget is
// spent. Retryable failures never surface on their own: the caller sees
// either success, a *core.BadRequestError or a *core.RetryExhaustedError.
func (h *HTTPClientSink) Deliver(ctx context.Context, body []byte) (result Result, err error) {
	h.activeRequests.Add(1)
	defer h.activeRequests.Add(-1)
	h.totalPayloads.Add(1)
	h.metrics.RecordPayload(len(body))

	ctx, span := h.tracer.Start(ctx, "sink.deliver",
		trace.WithAttributes(
			attribute.String("http.url", h.opts.Endpoint),
			attribute.Int("payload.bytes", len(body)),
		))
	defer func() {
		span.SetAttributes(attribute.Int("delivery.attempts", result.Attempts))
		if err != nil {
			h.failedPayloads.Add(1)
			span.RecordError(err)
		}
		span.End()
	}()

	attempt := Attempt{Backoff: h.opts.InitialBackoff}
	var lastStatus int
	var lastErr error

	for attempt.Number < h.opts.MaxRetries {
		if attempt.Number > 0 {
			h.logger.Info("msg", "Retrying delivery",
				"component", "http_client_sink",
				"attempt", attempt.Number+1,
				"backoff", attempt.Backoff.String())
			if err := sleepContext(ctx, attempt.Backoff); err != nil {
				return Result{Attempts: attempt.Number}, err
			}
			attempt.next(h.opts.BackoffMultiplier)
		}
		attempt.Number++

		if err := h.pacer.Wait(ctx); err != nil {
			return Result{Attempts: attempt.Number - 1}, err
		}

		start := time.Now()
		status, respBody, sendErr := h.send(body)
		outcome, guidance := classify(status)
		h.totalAttempts.Add(1)
		h.metrics.RecordAttempt(outcome.String(), status, time.Since(start))
		span.AddEvent("attempt", trace.WithAttributes(
			attribute.Int("attempt", attempt.Number),
			attribute.Int("http.status_code", status),
			attribute.String("outcome", outcome.String()),
		))

		switch outcome {
		case OutcomeSuccess:
			h.lastDelivered.Store(time.Now())
			h.logger.Debug("msg", "Payload delivered",
				"component", "http_client_sink",
				"status_code", status,
				"bytes", len(body),
				"attempt", attempt.Number)
			return Result{StatusCode: status, URL: h.opts.Endpoint, Attempts: attempt.Number}, nil

		case OutcomeTerminal:
			h.logger.Error("msg", "Payload rejected by ingest endpoint",
				"component", "http_client_sink",
				"status_code", status,
				"guidance", guidance,
				"response", string(respBody))
			return Result{Attempts: attempt.Number}, &core.BadRequestError{
				StatusCode: status,
				Guidance:   guidance,
				Body:       string(respBody),
			}
		}

		lastStatus, lastErr = status, sendErr
		if sendErr != nil {
			h.logger.Warn("msg", "HTTP request failed",
				"component", "http_client_sink",
				"attempt", attempt.Number,
				"max_retries", h.opts.MaxRetries,
				"error", sendErr)
		} else {
			h.logger.Error("msg", "Ingest endpoint returned retryable status",
				"component", "http_client_sink",
				"attempt", attempt.Number,
				"status_code", status,
				"response", string(respBody))
		}
	}

	h.logger.Error("msg", "Failed to deliver payload after all retries",
		"component", "http_client_sink",
		"bytes", len(body),
		"retries", h.opts.MaxRetries,
		"last_status", lastStatus,
		"last_error", lastErr)
	return Result{Attempts: attempt.Number}, &core.RetryExhaustedError{
		Attempts:   attempt.Number,
		StatusCode: lastStatus,
		LastErr:    lastErr,
	}
}

// send performs one POST. A transport error reports status 0.
func (h *HTTPClientSink) send(body []byte) (int, []byte, error) {
	// Acquire resources per attempt, release immediately after use
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	req.SetRequestURI(h.opts.Endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("X-License-Key", h.opts.LicenseKey)
	req.Header.Set("X-Event-Source", "logs")
	req.Header.Set("User-Agent", version.UserAgent())
	req.SetBody(body)

	err := h.client.DoTimeout(req, resp, h.opts.Timeout)

	// Capture response before releasing
	statusCode := resp.StatusCode()
	var responseBody []byte
	if len(resp.Body()) > 0 {
		responseBody = make([]byte, len(resp.Body()))
		copy(responseBody, resp.Body())
	}

	fasthttp.ReleaseRequest(req)
	fasthttp.ReleaseResponse(resp)

	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	return statusCode, responseBody, nil
}

// GetStats returns the sink's statistics.
func (h *HTTPClientSink) GetStats() SinkStats {
	lastDelivered, _ := h.lastDelivered.Load().(time.Time)

	return SinkStats{
		Type:           "http_client",
		TotalPayloads:  h.totalPayloads.Load(),
		TotalAttempts:  h.totalAttempts.Load(),
		FailedPayloads: h.failedPayloads.Load(),
		ActiveRequests: h.activeRequests.Load(),
		StartTime:      h.startTime,
		LastDelivered:  lastDelivered,
		Details: map[string]any{
			"url":         h.opts.Endpoint,
			"max_retries": h.opts.MaxRetries,
			"pacer":       h.pacer.GetStats(),
		},
	}
}
