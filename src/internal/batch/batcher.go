// FILE: logship/src/internal/batch/batcher.go
package batch

import (
	"logship/src/internal/core"

	"github.com/lixenwraith/log"
)

// Batcher groups entries into batches bounded by an approximate byte size.
// It is single pass: a sealed batch is never reopened.
type Batcher struct {
	threshold int64
	logger    *log.Logger

	current core.Batch
	sealed  int
	added   int64
}

// New creates a batcher that seals a batch once its running estimate is
// strictly greater than threshold.
func New(threshold int64, logger *log.Logger) *Batcher {
	return &Batcher{
		threshold: threshold,
		logger:    logger,
	}
}

// Add appends an entry and returns the sealed batch when the threshold was
// crossed.
func (b *Batcher) Add(entry core.LogEntry) (core.Batch, bool) {
	b.current.Entries = append(b.current.Entries, entry)
	b.current.Size += entry.RawSize

	if b.added%500 == 0 {
		b.logger.Debug("msg", "Batch progress",
			"component", "batcher",
			"index", b.added,
			"batch_size", b.current.Size)
	}
	b.added++

	if b.current.Size > b.threshold {
		b.logger.Debug("msg", "Sealing batch",
			"component", "batcher",
			"batch", b.sealed+1,
			"batch_size", b.current.Size,
			"entries", len(b.current.Entries))
		return b.seal(), true
	}
	return core.Batch{}, false
}

// Flush seals whatever remains. An empty batch is still returned when no
// batch has been sealed yet, so every object yields at least one request.
func (b *Batcher) Flush() (core.Batch, bool) {
	if len(b.current.Entries) == 0 && b.sealed > 0 {
		return core.Batch{}, false
	}
	return b.seal(), true
}

// Sealed returns the number of batches emitted so far.
func (b *Batcher) Sealed() int {
	return b.sealed
}

func (b *Batcher) seal() core.Batch {
	out := b.current
	out.Seq = b.sealed
	b.sealed++
	b.current = core.Batch{}
	return out
}
