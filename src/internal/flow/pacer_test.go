// FILE: logship/src/internal/flow/pacer_test.go
package flow

import (
	"context"
	"testing"
	"time"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func TestNewPacer_Disabled(t *testing.T) {
	p := NewPacer(0, newTestLogger())
	assert.Nil(t, p)
	assert.NoError(t, p.Wait(context.Background()))
	assert.Equal(t, false, p.GetStats()["enabled"])
}

func TestPacer_Wait(t *testing.T) {
	p := NewPacer(20, newTestLogger())
	require.NotNil(t, p)

	// burst passes immediately, the next request waits about one interval
	for i := 0; i < 20; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}
	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)

	stats := p.GetStats()
	assert.Equal(t, true, stats["enabled"])
	assert.Equal(t, uint64(21), stats["waits_total"])
	assert.Equal(t, 20, stats["burst"])
}

func TestPacer_WaitCancelled(t *testing.T) {
	p := NewPacer(1, newTestLogger())
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Wait(ctx))
}
