// FILE: logship/src/internal/config/config.go
package config

import (
	"strings"
	"time"

	"logship/src/internal/core"
)

// Config is the complete runtime configuration, resolved once at startup.
// Top-level keys keep the historical environment variable names.
type Config struct {
	LicenseKey           string  `toml:"license_key"`
	LogType              string  `toml:"log_type"`
	Endpoint             string  `toml:"nr_logging_endpoint"`
	DebugEnabled         bool    `toml:"debug_enabled"`
	IgnorePattern        string  `toml:"s3_ignore_pattern"`
	CloudTrailPattern    string  `toml:"s3_cloud_trail_log_pattern"`
	BatchSizeFactor      float64 `toml:"batch_size_factor"`
	AdditionalAttributes string  `toml:"additional_attributes"`

	Source    SourceConfig    `toml:"source"`
	Batch     BatchConfig     `toml:"batch"`
	Delivery  DeliveryConfig  `toml:"delivery"`
	Logging   *LogConfig      `toml:"logging"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Telemetry TelemetryConfig `toml:"telemetry"`

	// Parsed form of AdditionalAttributes, filled by Resolve
	Attributes map[string]any `toml:"-"`
}

type SourceConfig struct {
	// Objects larger than this are rejected before any read
	MaxFileSize int64 `toml:"max_file_size"`
}

type BatchConfig struct {
	// Batch estimate threshold before BatchSizeFactor is applied
	MaxBatchSize int64 `toml:"max_batch_size"`
}

type DeliveryConfig struct {
	MaxPayloadSize        int64   `toml:"max_payload_size"`
	MaxRetries            int64   `toml:"max_retries"`
	InitialBackoffMS      int64   `toml:"initial_backoff_ms"`
	BackoffMultiplier     float64 `toml:"backoff_multiplier"`
	MaxConcurrentRequests int64   `toml:"max_concurrent_requests"`
	TimeoutSeconds        int64   `toml:"timeout_seconds"`
	// 0 disables pacing
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

type MetricsConfig struct {
	// Metrics are pushed after every run when set
	PushgatewayURL string `toml:"pushgateway_url"`
	Namespace      string `toml:"namespace"`
}

type TelemetryConfig struct {
	// OTLP gRPC endpoint, tracing is off when empty
	Endpoint    string  `toml:"endpoint"`
	ServiceName string  `toml:"service_name"`
	SampleRate  float64 `toml:"sample_rate"`
}

func defaults() *Config {
	return &Config{
		IgnorePattern:        "$^",
		CloudTrailPattern:    `.*_CloudTrail_.*\.json.gz$`,
		BatchSizeFactor:      core.BatchSizeFactor,
		AdditionalAttributes: "{}",
		Source: SourceConfig{
			MaxFileSize: core.MaxFileSize,
		},
		Batch: BatchConfig{
			MaxBatchSize: core.MaxBatchSize,
		},
		Delivery: DeliveryConfig{
			MaxPayloadSize:        core.MaxPayloadSize,
			MaxRetries:            core.MaxRetries,
			InitialBackoffMS:      core.InitialBackoffMS,
			BackoffMultiplier:     core.BackoffMultiplier,
			MaxConcurrentRequests: core.MaxConcurrentRequests,
			TimeoutSeconds:        core.RequestTimeoutSeconds,
		},
		Logging: DefaultLogConfig(),
		Metrics: MetricsConfig{
			Namespace: "logship",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "logship",
			SampleRate:  1.0,
		},
	}
}

// Default returns a resolved configuration with every default applied.
func Default() *Config {
	cfg := defaults()
	cfg.Attributes = map[string]any{}
	return cfg
}

// IngestEndpoint returns the explicit endpoint override, or the regional host
// implied by the license key.
func (c *Config) IngestEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if strings.HasPrefix(c.LicenseKey, "eu") {
		return core.EULoggingIngestHost
	}
	return core.USLoggingIngestHost
}

// BatchThreshold is the size estimate above which a batch is sealed.
func (c *Config) BatchThreshold() int64 {
	return int64(float64(c.Batch.MaxBatchSize) * c.BatchSizeFactor)
}

// InitialBackoff returns the first retry delay.
func (c *Config) InitialBackoff() time.Duration {
	return time.Duration(c.Delivery.InitialBackoffMS) * time.Millisecond
}

// RequestTimeout bounds a single HTTP exchange.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Delivery.TimeoutSeconds) * time.Second
}
