// FILE: logship/src/internal/batch/batcher_test.go
package batch

import (
	"testing"

	"logship/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func entry(size int64) core.LogEntry {
	return core.LogEntry{Message: "x", RawSize: size}
}

func TestBatcher_SealsAboveThresholdOnly(t *testing.T) {
	b := New(100, newTestLogger())

	_, sealed := b.Add(entry(50))
	assert.False(t, sealed)

	// exactly at the threshold does not seal
	_, sealed = b.Add(entry(50))
	assert.False(t, sealed)

	batch, sealed := b.Add(entry(1))
	require.True(t, sealed)
	assert.Equal(t, 3, batch.Len())
	assert.Equal(t, int64(101), batch.Size)
	assert.Equal(t, 0, batch.Seq)
	assert.Greater(t, batch.Size, int64(100))
}

func TestBatcher_SequenceAndReset(t *testing.T) {
	b := New(10, newTestLogger())

	var batches []core.Batch
	for i := 0; i < 7; i++ {
		if batch, ok := b.Add(entry(6)); ok {
			batches = append(batches, batch)
		}
	}
	require.Len(t, batches, 3)
	for i, batch := range batches {
		assert.Equal(t, i, batch.Seq)
		assert.Equal(t, 2, batch.Len())
		assert.Equal(t, int64(12), batch.Size)
	}

	last, ok := b.Flush()
	require.True(t, ok)
	assert.Equal(t, 1, last.Len())
	assert.Equal(t, 3, last.Seq)
	assert.Equal(t, 4, b.Sealed())
}

func TestBatcher_Flush(t *testing.T) {
	t.Run("EmptyObjectStillEmitsOne", func(t *testing.T) {
		b := New(10, newTestLogger())
		batch, ok := b.Flush()
		require.True(t, ok)
		assert.Equal(t, 0, batch.Len())
		assert.Equal(t, 1, b.Sealed())
	})

	t.Run("NothingLeftAfterSeal", func(t *testing.T) {
		b := New(10, newTestLogger())
		_, sealed := b.Add(entry(11))
		require.True(t, sealed)

		_, ok := b.Flush()
		assert.False(t, ok)
	})

	t.Run("RemainderUnderThreshold", func(t *testing.T) {
		b := New(1000, newTestLogger())
		for i := 0; i < 10; i++ {
			_, sealed := b.Add(entry(10))
			require.False(t, sealed)
		}
		batch, ok := b.Flush()
		require.True(t, ok)
		assert.Equal(t, 10, batch.Len())
		assert.Equal(t, int64(100), batch.Size)
	})
}
