// FILE: logship/src/internal/config/validation.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"logship/src/internal/core"

	lconfig "github.com/lixenwraith/config"
)

// Resolve turns a scanned configuration into its runtime form. Empty values
// fall back to defaults, patterns must compile and additional attributes must
// be a JSON object.
func (c *Config) Resolve() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}

	applyDefaults(c)

	if err := validatePattern("s3_ignore_pattern", c.IgnorePattern); err != nil {
		return err
	}
	if err := validatePattern("s3_cloud_trail_log_pattern", c.CloudTrailPattern); err != nil {
		return err
	}

	attrs, err := parseAttributes(c.AdditionalAttributes)
	if err != nil {
		return err
	}
	c.Attributes = attrs

	if c.DebugEnabled {
		c.Logging.Level = "debug"
	}
	if err := validateLogConfig(c.Logging); err != nil {
		return &core.ConfigurationError{Key: "logging", Err: err}
	}

	return validateDelivery(&c.Delivery)
}

func applyDefaults(c *Config) {
	d := defaults()

	if c.IgnorePattern == "" {
		c.IgnorePattern = d.IgnorePattern
	}
	if c.CloudTrailPattern == "" {
		c.CloudTrailPattern = d.CloudTrailPattern
	}
	if c.AdditionalAttributes == "" {
		c.AdditionalAttributes = d.AdditionalAttributes
	}
	if c.BatchSizeFactor <= 0 {
		c.BatchSizeFactor = d.BatchSizeFactor
	}
	if c.Source.MaxFileSize <= 0 {
		c.Source.MaxFileSize = d.Source.MaxFileSize
	}
	if c.Batch.MaxBatchSize <= 0 {
		c.Batch.MaxBatchSize = d.Batch.MaxBatchSize
	}
	if c.Delivery.MaxPayloadSize <= 0 {
		c.Delivery.MaxPayloadSize = d.Delivery.MaxPayloadSize
	}
	if c.Delivery.MaxRetries <= 0 {
		c.Delivery.MaxRetries = d.Delivery.MaxRetries
	}
	if c.Delivery.InitialBackoffMS < 0 {
		c.Delivery.InitialBackoffMS = d.Delivery.InitialBackoffMS
	}
	if c.Delivery.BackoffMultiplier <= 0 {
		c.Delivery.BackoffMultiplier = d.Delivery.BackoffMultiplier
	}
	if c.Delivery.MaxConcurrentRequests <= 0 {
		c.Delivery.MaxConcurrentRequests = d.Delivery.MaxConcurrentRequests
	}
	if c.Delivery.TimeoutSeconds <= 0 {
		c.Delivery.TimeoutSeconds = d.Delivery.TimeoutSeconds
	}
	if c.Logging == nil {
		c.Logging = d.Logging
	}
	if c.Logging.Output == "" {
		c.Logging.Output = d.Logging.Output
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = d.Telemetry.ServiceName
	}
	if c.Telemetry.SampleRate <= 0 || c.Telemetry.SampleRate > 1 {
		c.Telemetry.SampleRate = d.Telemetry.SampleRate
	}
}

func validatePattern(key, pattern string) error {
	if _, err := regexp.Compile(pattern); err != nil {
		return &core.ConfigurationError{Key: key, Err: err}
	}
	return nil
}

func parseAttributes(raw string) (map[string]any, error) {
	var attrs map[string]any
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, &core.ConfigurationError{
			Key: "additional_attributes",
			Err: fmt.Errorf("must be a JSON object: %w", err),
		}
	}
	// "null" decodes without error
	if attrs == nil {
		return nil, &core.ConfigurationError{
			Key: "additional_attributes",
			Err: errors.New("must be a JSON object"),
		}
	}
	return attrs, nil
}

func validateDelivery(d *DeliveryConfig) error {
	if d.RequestsPerSecond < 0 {
		return &core.ConfigurationError{
			Key: "delivery.requests_per_second",
			Err: fmt.Errorf("must be >= 0, got %v", d.RequestsPerSecond),
		}
	}
	return nil
}

// ValidateForDelivery checks the settings that only matter once a payload is
// about to be sent.
func (c *Config) ValidateForDelivery() error {
	if err := lconfig.NonEmpty(c.LicenseKey); err != nil {
		return &core.ConfigurationError{Key: "license_key", Err: err}
	}
	return nil
}
