// FILE: logship/src/internal/core/const.go
package core

// Object and payload size limits
const (
	MaxFileSize       = 400 * 1000 * 1024 // uncompressed object size, bytes
	MaxBatchSize      = 1000 * 1024       // batch estimate before the factor is applied
	BatchSizeFactor   = 1.5
	MaxPayloadSize    = 1000 * 1000 // compressed request body accepted by the ingest API
	EntryOverheadSize = 49          // per-record bookkeeping added to every size estimate
)

// Delivery defaults
const (
	MaxRetries            = 5
	InitialBackoffMS      = 1000
	BackoffMultiplier     = 2.0
	MaxConcurrentRequests = 25
	RequestTimeoutSeconds = 30
)

// Ingest endpoints, selected by license key region unless overridden
const (
	USLoggingIngestHost = "https://log-api.newrelic.com/log/v1"
	EULoggingIngestHost = "https://log-api.eu.newrelic.com/log/v1"
)

// Run result messages
const (
	StatusOK        = 200
	MessageIgnored  = "ignored this log"
	MessageUploaded = "Uploaded logs to New Relic"
)
