package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTurn_MultipleReadersConcurrent(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	r1, err := m.GetTurn(ctx, "/a", false)
	require.NoError(t, err)
	r2, err := m.GetTurn(ctx, "/a", false)
	require.NoError(t, err)

	r1.End()
	r2.End()
}

func TestGetTurn_WriterExcludesReaders(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	w, err := m.GetTurn(ctx, "/a", true)
	require.NoError(t, err)

	cctx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	_, err = m.GetTurn(cctx, "/a", false)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	w.End()

	r, err := m.GetTurn(ctx, "/a", false)
	require.NoError(t, err)
	r.End()
}

func TestGetTurn_WaitingWriterBlocksNewReaders(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	r1, err := m.GetTurn(ctx, "/a", false)
	require.NoError(t, err)

	writerAdmitted := make(chan struct{})
	go func() {
		w, err := m.GetTurn(ctx, "/a", true)
		require.NoError(t, err)
		close(writerAdmitted)
		w.End()
	}()

	// Give the writer time to register as waiting.
	time.Sleep(20 * time.Millisecond)

	cctx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	_, err = m.GetTurn(cctx, "/a", false)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	r1.End()
	<-writerAdmitted
}

func TestGetTurn_IndependentPathsDoNotContend(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	wa, err := m.GetTurn(ctx, "/a", true)
	require.NoError(t, err)
	wb, err := m.GetTurn(ctx, "/b", true)
	require.NoError(t, err)

	wa.End()
	wb.End()
}

func TestGetTurn_CancellationDoesNotStickTurner(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	w, err := m.GetTurn(ctx, "/a", true)
	require.NoError(t, err)

	cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = m.GetTurn(cctx, "/a", true)
	assert.Error(t, err)

	w.End()

	w2, err := m.GetTurn(ctx, "/a", true)
	require.NoError(t, err)
	w2.End()
}

func TestEnd_IsIdempotent(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	turn, err := m.GetTurn(ctx, "/a", true)
	require.NoError(t, err)

	turn.End()
	assert.NotPanics(t, func() { turn.End() })

	w2, err := m.GetTurn(ctx, "/a", true)
	require.NoError(t, err)
	w2.End()
}

func TestAcquireGlobalLock_WaitsForOutstandingTurns(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	r, err := m.GetTurn(ctx, "/a", false)
	require.NoError(t, err)

	drainDone := make(chan struct{})
	go func() {
		require.NoError(t, m.AcquireGlobalLock(ctx))
		close(drainDone)
	}()

	select {
	case <-drainDone:
		t.Fatal("drain completed before outstanding reader ended")
	case <-time.After(30 * time.Millisecond):
	}

	r.End()
	<-drainDone
	m.ReleaseGlobalLock()
}

func TestAcquireGlobalLock_BlocksNewTurns(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	require.NoError(t, m.AcquireGlobalLock(ctx))

	cctx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	_, err := m.GetTurn(cctx, "/anything", false)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	m.ReleaseGlobalLock()

	turn, err := m.GetTurn(ctx, "/anything", false)
	require.NoError(t, err)
	turn.End()
}

func TestAcquireGlobalLock_SerializesConcurrentDrains(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	var order int32
	var wg sync.WaitGroup
	results := make([]int32, 2)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			require.NoError(t, m.AcquireGlobalLock(ctx))
			results[i] = atomic.AddInt32(&order, 1)
			time.Sleep(10 * time.Millisecond)
			m.ReleaseGlobalLock()
		}(i)
	}

	wg.Wait()
	assert.ElementsMatch(t, []int32{1, 2}, results)
}

func TestStats_ReportsTrackedPathsAndDrainState(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	turn, err := m.GetTurn(ctx, "/a", false)
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, 1, stats.TrackedPaths)
	assert.False(t, stats.Draining)

	turn.End()
	assert.Equal(t, 0, m.Stats().TrackedPaths)
}
