// FILE: logship/src/internal/telemetry/telemetry.go
package telemetry

import (
	"context"
	"fmt"
	"time"

	"logship/src/internal/version"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Config selects the OTLP collector. Tracing is off when Endpoint is empty.
type Config struct {
	Endpoint    string
	ServiceName string
	SampleRate  float64
}

// Telemetry owns the tracer provider for the process
type Telemetry struct {
	config         Config
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
}

// New creates the tracer provider. Without an endpoint it returns a Telemetry
// whose tracer records nothing.
func New(ctx context.Context, cfg Config) (*Telemetry, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "logship"
	}
	if cfg.Endpoint == "" {
		return &Telemetry{
			config: cfg,
			tracer: trace.NewNoopTracerProvider().Tracer(cfg.ServiceName),
		}, nil
	}
	if cfg.SampleRate <= 0 || cfg.SampleRate > 1 {
		cfg.SampleRate = 1.0
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version.Short()),
			attribute.String("plugin.version", version.PluginVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var sampler sdktrace.Sampler
	if cfg.SampleRate >= 1.0 {
		sampler = sdktrace.AlwaysSample()
	} else {
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	)
	otel.SetTracerProvider(tp)

	return &Telemetry{
		config:         cfg,
		tracerProvider: tp,
		tracer:         tp.Tracer(cfg.ServiceName),
	}, nil
}

// Tracer returns the tracer used for all spans
func (t *Telemetry) Tracer() trace.Tracer {
	if t == nil {
		return trace.NewNoopTracerProvider().Tracer("logship")
	}
	return t.tracer
}

// IsEnabled reports whether spans are exported.
func (t *Telemetry) IsEnabled() bool {
	return t != nil && t.tracerProvider != nil
}

// ForceFlush exports pending spans. Called at the end of every invocation
// because the execution environment may freeze between invocations.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	if !t.IsEnabled() {
		return nil
	}
	return t.tracerProvider.ForceFlush(ctx)
}

// Shutdown flushes and stops the provider.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if !t.IsEnabled() {
		return nil
	}
	return t.tracerProvider.Shutdown(ctx)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
