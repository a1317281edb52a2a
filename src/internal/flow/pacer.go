// FILE: logship/src/internal/flow/pacer.go
package flow

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

// Pacer spaces outgoing requests to a steady rate shared by all deliveries
// of a run. A nil Pacer never waits.
type Pacer struct {
	limiter *rate.Limiter
	logger  *log.Logger

	// Statistics
	waitCount atomic.Uint64
	waitNanos atomic.Int64
}

// NewPacer creates a pacer allowing requestsPerSecond with a burst of the
// same size. A non-positive rate disables pacing and returns nil.
func NewPacer(requestsPerSecond float64, logger *log.Logger) *Pacer {
	if requestsPerSecond <= 0 {
		return nil
	}

	burst := int(math.Ceil(requestsPerSecond))
	if burst < 1 {
		burst = 1
	}

	logger.Debug("msg", "Request pacing enabled",
		"component", "pacer",
		"requests_per_second", requestsPerSecond,
		"burst", burst)

	return &Pacer{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		logger:  logger,
	}
}

// Wait blocks until a request may be sent or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}

	start := time.Now()
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	p.waitCount.Add(1)
	p.waitNanos.Add(int64(time.Since(start)))
	return nil
}

// GetStats returns statistics for the pacer.
func (p *Pacer) GetStats() map[string]any {
	if p == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"enabled":      true,
		"limit":        float64(p.limiter.Limit()),
		"burst":        p.limiter.Burst(),
		"waits_total":  p.waitCount.Load(),
		"waited_total": time.Duration(p.waitNanos.Load()).String(),
	}
}
