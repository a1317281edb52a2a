// FILE: logship/src/internal/core/types.go
package core

import "fmt"

// Invocation identifies the triggering invocation and the object it carries.
type Invocation struct {
	FunctionARN string
	RequestID   string
	Bucket      string
	Key         string
}

// URL returns the object location in s3://bucket/key form.
func (i Invocation) URL() string {
	return fmt.Sprintf("s3://%s/%s", i.Bucket, i.Key)
}

// Batch is an ordered group of entries sealed by the batcher.
// A sealed batch is handed to exactly one delivery and never modified.
type Batch struct {
	Seq     int
	Entries []LogEntry
	Size    int64
}

// Len returns the number of entries in the batch.
func (b Batch) Len() int {
	return len(b.Entries)
}

// RunResult is the outcome reported back to the invoker.
type RunResult struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`

	Records  int64 `json:"-"`
	Batches  int64 `json:"-"`
	Payloads int64 `json:"-"`
	Attempts int64 `json:"-"`
}
