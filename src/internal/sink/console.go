// FILE: logship/src/internal/sink/console.go
package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/lixenwraith/log"
)

// ConsoleSink writes each payload, decompressed, to stdout or stderr instead
// of sending it. Used for dry runs.
type ConsoleSink struct {
	target    string
	output    io.Writer
	mu        sync.Mutex
	startTime time.Time
	logger    *log.Logger

	// Statistics
	totalPayloads atomic.Uint64
	lastDelivered atomic.Value // time.Time
}

// NewConsoleSink creates a console sink for "stdout" or "stderr"
func NewConsoleSink(target string, logger *log.Logger) (*ConsoleSink, error) {
	var output io.Writer
	switch target {
	case "stdout", "":
		target = "stdout"
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		return nil, fmt.Errorf("invalid console target: %s", target)
	}

	s := &ConsoleSink{
		target:    target,
		output:    output,
		startTime: time.Now(),
		logger:    logger,
	}
	s.lastDelivered.Store(time.Time{})

	logger.Info("msg", "Console sink enabled, payloads will not be sent",
		"component", "console_sink",
		"target", target)

	return s, nil
}

// Deliver writes the decompressed payload followed by a newline
func (s *ConsoleSink) Deliver(ctx context.Context, body []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	gr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("decompress payload: %w", err)
	}
	defer gr.Close()

	s.mu.Lock()
	_, err = io.Copy(s.output, gr)
	if err == nil {
		_, err = io.WriteString(s.output, "\n")
	}
	s.mu.Unlock()
	if err != nil {
		return Result{}, fmt.Errorf("write payload to %s: %w", s.target, err)
	}

	s.totalPayloads.Add(1)
	s.lastDelivered.Store(time.Now())
	return Result{StatusCode: 200, URL: s.target, Attempts: 1}, nil
}

func (s *ConsoleSink) GetStats() SinkStats {
	lastDelivered, _ := s.lastDelivered.Load().(time.Time)

	return SinkStats{
		Type:          "console",
		TotalPayloads: s.totalPayloads.Load(),
		TotalAttempts: s.totalPayloads.Load(),
		StartTime:     s.startTime,
		LastDelivered: lastDelivered,
		Details: map[string]any{
			"target": s.target,
		},
	}
}
