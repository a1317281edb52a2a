// FILE: logship/src/cmd/logship/bootstrap.go
package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"logship/src/internal/config"
	"logship/src/internal/core"
	"logship/src/internal/flow"
	"logship/src/internal/metrics"
	"logship/src/internal/service"
	"logship/src/internal/sink"
	"logship/src/internal/source"
	"logship/src/internal/telemetry"
	"logship/src/internal/trigger"
	"logship/src/internal/version"

	"github.com/lixenwraith/log"
)

// shipper holds the components built once per process and reused by every
// invocation
type shipper struct {
	svc       *service.Service
	pusher    *metrics.Pusher
	telemetry *telemetry.Telemetry
}

// bootstrapShipper wires store, sink and service from a resolved configuration.
// A non-empty console target replaces HTTP delivery with a console sink.
func bootstrapShipper(ctx context.Context, cfg *config.Config, store source.ObjectStore, function, console string) (*shipper, error) {
	tel, err := telemetry.New(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		SampleRate:  cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, err
	}

	m := metrics.New(cfg.Metrics.Namespace)

	deliverer, err := newDeliverer(cfg, m, tel, console)
	if err != nil {
		return nil, err
	}

	svc, err := service.New(cfg, store, deliverer, logger,
		service.WithMetrics(m),
		service.WithTracer(tel.Tracer()),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("msg", "logship initialized",
		"version", version.Short(),
		"plugin_version", version.PluginVersion,
		"endpoint", cfg.IngestEndpoint(),
		"log_type", cfg.LogType,
		"max_concurrent_requests", cfg.Delivery.MaxConcurrentRequests,
		"batch_threshold", cfg.BatchThreshold(),
		"metrics_push", cfg.Metrics.PushgatewayURL != "",
		"tracing", tel.IsEnabled())

	return &shipper{
		svc:       svc,
		pusher:    metrics.NewPusher(m, cfg.Metrics.PushgatewayURL, "logship", function),
		telemetry: tel,
	}, nil
}

func newDeliverer(cfg *config.Config, m *metrics.Metrics, tel *telemetry.Telemetry, console string) (sink.Deliverer, error) {
	if console != "" {
		return sink.NewConsoleSink(console, logger)
	}

	return sink.NewHTTPClientSink(sink.HTTPClientOptions{
		Endpoint:              cfg.IngestEndpoint(),
		LicenseKey:            cfg.LicenseKey,
		MaxRetries:            int(cfg.Delivery.MaxRetries),
		InitialBackoff:        cfg.InitialBackoff(),
		BackoffMultiplier:     cfg.Delivery.BackoffMultiplier,
		Timeout:               cfg.RequestTimeout(),
		MaxConcurrentRequests: int(cfg.Delivery.MaxConcurrentRequests),
	}, logger,
		sink.WithPacer(flow.NewPacer(cfg.Delivery.RequestsPerSecond, logger)),
		sink.WithMetrics(m),
		sink.WithTracer(tel.Tracer()),
	)
}

// invoke runs one object and flushes metrics and spans before returning, so
// nothing is lost when the runtime freezes the process between invocations
func (s *shipper) invoke(ctx context.Context, ref trigger.ObjectRef) (core.RunResult, error) {
	result, err := s.svc.Run(ctx, ref)
	if err != nil {
		logRunError(ref, err)
	}

	if pushErr := s.pusher.Push(ctx); pushErr != nil {
		logger.Warn("msg", "Failed to push metrics", "error", pushErr)
	}
	if flushErr := s.telemetry.ForceFlush(ctx); flushErr != nil {
		logger.Warn("msg", "Failed to flush spans", "error", flushErr)
	}

	return result, err
}

func (s *shipper) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.telemetry.Shutdown(ctx); err != nil {
		logger.Warn("msg", "Telemetry shutdown error", "error", err)
	}
}

// logRunError emits one line per failed object with a category specific message
func logRunError(ref trigger.ObjectRef, err error) {
	var (
		cfgErr    *core.ConfigurationError
		tooLarge  *core.ObjectTooLargeError
		readErr   *core.SourceReadError
		badReq    *core.BadRequestError
		exhausted *core.RetryExhaustedError
	)

	msg := "Failed to ship object"
	switch {
	case errors.As(err, &cfgErr):
		msg = "Invalid configuration"
	case errors.As(err, &tooLarge):
		msg = "Object exceeds size limit"
	case errors.Is(err, core.ErrInvalidEventTime):
		msg = "CloudTrail record has an invalid eventTime"
	case errors.As(err, &readErr):
		msg = "Failed to read object"
	case errors.As(err, &badReq):
		msg = "Ingest endpoint rejected payload"
	case errors.As(err, &exhausted):
		msg = "Ingest endpoint unavailable after retries"
	}

	logger.Error("msg", msg,
		"bucket", ref.Bucket,
		"key", ref.Key,
		"error", err)
}

// initializeLogger sets up the logger based on configuration
func initializeLogger(cfg *config.Config) error {
	logger = log.NewLogger()

	configArgs, err := loggerArgs(cfg.Logging)
	if err != nil {
		return err
	}
	return logger.InitWithDefaults(configArgs...)
}

func loggerArgs(cfg *config.LogConfig) ([]string, error) {
	if cfg == nil {
		cfg = config.DefaultLogConfig()
	}

	levelValue, err := parseLogLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	configArgs := []string{fmt.Sprintf("level=%d", levelValue)}

	switch cfg.Output {
	case "none":
		configArgs = append(configArgs, "disable_file=true", "enable_stdout=false")

	case "stdout", "":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stdout")

	case "stderr":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stderr")

	default:
		return nil, fmt.Errorf("invalid log output mode: %s", cfg.Output)
	}

	if cfg.Format != "" {
		configArgs = append(configArgs, fmt.Sprintf("format=%s", cfg.Format))
	}

	return configArgs, nil
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info", "":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			// Best effort - can't log the shutdown error
			Error("Logger shutdown error: %v\n", err)
		}
	}
}
