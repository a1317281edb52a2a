// FILE: logship/src/internal/sink/sink.go
package sink

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
)

// Deliverer sends one compressed payload to the ingest endpoint
type Deliverer interface {
	// Deliver retries until success, a terminal response or exhaustion
	Deliver(ctx context.Context, body []byte) (Result, error)

	// GetStats returns sink statistics
	GetStats() SinkStats
}

// Doer performs a single HTTP exchange. *fasthttp.Client satisfies it.
type Doer interface {
	DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error
}

// Result describes a successful delivery
type Result struct {
	StatusCode int
	URL        string
	Attempts   int
}

// SinkStats contains statistics about a sink
type SinkStats struct {
	Type           string
	TotalPayloads  uint64
	TotalAttempts  uint64
	FailedPayloads uint64
	ActiveRequests int64
	StartTime      time.Time
	LastDelivered  time.Time
	Details        map[string]any
}

// Outcome is the handling class of one HTTP attempt
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRetryable
	OutcomeTerminal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	default:
		return "terminal"
	}
}

// Attempt is the retry state of a single Deliver call. It is never shared.
type Attempt struct {
	Number  int
	Backoff time.Duration
}

// next advances the backoff after a failed attempt
func (a *Attempt) next(multiplier float64) {
	a.Backoff = time.Duration(float64(a.Backoff) * multiplier)
}

// classify maps a response status to an outcome and, for known terminal
// statuses, a hint for the operator. A zero status means a transport error.
func classify(status int) (Outcome, string) {
	switch {
	case status == 0:
		return OutcomeRetryable, ""
	case status >= 200 && status < 300:
		return OutcomeSuccess, ""
	case status == http.StatusBadRequest:
		return OutcomeTerminal, "Unexpected payload"
	case status == http.StatusForbidden:
		return OutcomeTerminal, "Review your license key"
	case status == http.StatusNotFound:
		return OutcomeTerminal, "Review the region endpoint"
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return OutcomeRetryable, ""
	case status >= 400 && status < 500:
		return OutcomeTerminal, ""
	case status >= 500:
		return OutcomeRetryable, ""
	default:
		// 1xx and 3xx are not followed, retrying cannot change them
		return OutcomeTerminal, ""
	}
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
