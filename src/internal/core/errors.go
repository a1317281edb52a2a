// FILE: logship/src/internal/core/errors.go
package core

import (
	"errors"
	"fmt"
)

// ErrInvalidEventTime is returned when an audit event carries no parsable eventTime.
var ErrInvalidEventTime = errors.New("invalid eventTime in CloudTrail record")

// ErrMissingRecords is returned when an audit document has no Records array.
var ErrMissingRecords = errors.New("CloudTrail document has no Records array")

// ConfigurationError reports a setting that cannot be used. Raised before any
// network activity.
type ConfigurationError struct {
	Key string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %v", e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ObjectTooLargeError rejects an object whose size probe exceeds the limit.
type ObjectTooLargeError struct {
	Bucket string
	Key    string
	Size   int64
	Limit  int64
}

func (e *ObjectTooLargeError) Error() string {
	return fmt.Sprintf("object s3://%s/%s is %d bytes, larger than the supported max size of %d bytes",
		e.Bucket, e.Key, e.Size, e.Limit)
}

// SourceReadError wraps any failure to open or decode the source object.
type SourceReadError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("error processing the object %s from bucket %s: %v", e.Key, e.Bucket, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// BadRequestError is a terminal rejection by the ingest endpoint.
type BadRequestError struct {
	StatusCode int
	Guidance   string
	Body       string
}

func (e *BadRequestError) Error() string {
	if e.Guidance == "" {
		return fmt.Sprintf("ingest endpoint returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("ingest endpoint returned status %d. %s", e.StatusCode, e.Guidance)
}

// RetryExhaustedError is returned after the last retryable attempt failed.
type RetryExhaustedError struct {
	Attempts   int
	StatusCode int
	LastErr    error
}

func (e *RetryExhaustedError) Error() string {
	if e.LastErr != nil {
		return fmt.Sprintf("retry limit reached after %d attempts, failed to send log entry: %v", e.Attempts, e.LastErr)
	}
	return fmt.Sprintf("retry limit reached after %d attempts, failed to send log entry (last status %d)", e.Attempts, e.StatusCode)
}

func (e *RetryExhaustedError) Unwrap() error { return e.LastErr }
