// FILE: logship/src/internal/service/dispatcher_test.go
package service

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"logship/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_Waves(t *testing.T) {
	var active, peak atomic.Int32
	var mu sync.Mutex
	var seen []int

	d := newDispatcher(3, func(b core.Batch) error {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		mu.Lock()
		seen = append(seen, b.Seq)
		mu.Unlock()
		return nil
	})

	for i := 0; i < 7; i++ {
		require.NoError(t, d.submit(core.Batch{Seq: i}))
	}
	require.NoError(t, d.wait())

	assert.Equal(t, 3, d.waves)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6}, seen)
}

func TestDispatcher_WaitWithNothingPending(t *testing.T) {
	d := newDispatcher(2, func(core.Batch) error { return nil })
	assert.NoError(t, d.wait())
	assert.Equal(t, 0, d.waves)
}

func TestDispatcher_FailedWaveCompletes(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32

	d := newDispatcher(2, func(b core.Batch) error {
		calls.Add(1)
		if b.Seq == 0 {
			return boom
		}
		time.Sleep(5 * time.Millisecond)
		return nil
	})

	require.NoError(t, d.submit(core.Batch{Seq: 0}))
	err := d.submit(core.Batch{Seq: 1})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), calls.Load())
	assert.NoError(t, d.wait())
}

func TestDispatcher_DefaultLimit(t *testing.T) {
	d := newDispatcher(0, func(core.Batch) error { return nil })
	assert.Equal(t, core.MaxConcurrentRequests, d.limit)
}
