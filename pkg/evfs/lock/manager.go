// Package lock implements the core's concurrency control: a per-path
// multi-reader/single-writer turn for every logical path, plus a
// process-wide exclusive drain used by bulk operations such as clear
// (§4.4).
package lock

import (
	"context"
	"sync"
	"time"
)

// Manager owns one turner per logical path currently in use and
// coordinates the global drain.
//
// Manager is safe for concurrent use by multiple goroutines.
type Manager struct {
	mu       sync.Mutex
	turners  map[string]*turner
	draining bool
	drainEnd chan struct{}
	metrics  Metrics
}

// NewManager constructs an empty Manager. metrics may be nil, in which
// case turn-wait observations are skipped.
func NewManager(metrics Metrics) *Manager {
	return &Manager{
		turners: make(map[string]*turner),
		metrics: metrics,
	}
}

// Turn represents an admitted turn on a path. Callers must call End
// exactly once, on every exit path including cancellation and panics via
// defer.
type Turn struct {
	manager   *Manager
	path      string
	t         *turner
	exclusive bool
	ended     bool
}

// End releases the turn. It is safe to call End more than once; only the
// first call has effect.
func (turn *Turn) End() {
	if turn == nil || turn.ended {
		return
	}
	turn.ended = true
	turn.t.release(turn.exclusive)
	turn.manager.releaseRef(turn.path, turn.t)
}

// GetTurn blocks until a turn is admitted on path, or ctx is canceled. A
// reader turn (exclusive=false) may be held concurrently with other
// reader turns; a writer turn (exclusive=true) excludes every other turn
// on the same path. Every non-global call also waits out any in-progress
// global drain before a turner is even consulted.
func (m *Manager) GetTurn(ctx context.Context, path string, exclusive bool) (*Turn, error) {
	start := time.Now()

	var t *turner
	for {
		if err := m.waitOutDrain(ctx); err != nil {
			return nil, err
		}
		t = m.acquireTurnerRef(path)
		m.mu.Lock()
		draining := m.draining
		m.mu.Unlock()
		if !draining {
			break
		}
		m.releaseRef(path, t)
	}

	if err := t.acquire(ctx, exclusive); err != nil {
		m.releaseRef(path, t)
		return nil, err
	}

	if m.metrics != nil {
		m.metrics.ObserveTurnWait(exclusive, time.Since(start))
	}

	return &Turn{manager: m, path: path, t: t, exclusive: exclusive}, nil
}

// waitOutDrain blocks while a global drain is active.
func (m *Manager) waitOutDrain(ctx context.Context) error {
	for {
		m.mu.Lock()
		if !m.draining {
			m.mu.Unlock()
			return nil
		}
		end := m.drainEnd
		m.mu.Unlock()

		select {
		case <-end:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (m *Manager) acquireTurnerRef(path string) *turner {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.turners[path]
	if !ok {
		t = newTurner()
		m.turners[path] = t
	}
	t.refs++
	return t
}

func (m *Manager) releaseRef(path string, t *turner) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t.refs--
	if t.refs <= 0 {
		if existing, ok := m.turners[path]; ok && existing == t {
			delete(m.turners, path)
		}
	}
}

// AcquireGlobalLock waits until no drain is already in progress, locks
// every existing turner against new turns, waits for all of their
// outstanding turns to end, then installs a barrier that makes every
// subsequent GetTurn call (including on paths with no turner yet) wait
// until ReleaseGlobalLock is called (§4.4 "Global drain").
func (m *Manager) AcquireGlobalLock(ctx context.Context) error {
	for {
		m.mu.Lock()
		if !m.draining {
			break
		}
		end := m.drainEnd
		m.mu.Unlock()
		select {
		case <-end:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.draining = true
	m.drainEnd = make(chan struct{})
	turners := make([]*turner, 0, len(m.turners))
	for _, t := range m.turners {
		turners = append(turners, t)
	}
	m.mu.Unlock()

	for _, t := range turners {
		t.lockForDrain()
	}

	for _, t := range turners {
		if err := t.waitIdle(ctx); err != nil {
			// ctx was canceled with some turners still draining. Every
			// turner in this snapshot was already locked above, so they
			// all need unlocking, and draining/drainEnd must clear too —
			// otherwise every later GetTurn blocks forever in
			// waitOutDrain waiting for a drain that will never end.
			m.abortDrain(turners)
			return err
		}
	}

	return nil
}

// ReleaseGlobalLock unlocks every turner and clears the drain barrier,
// allowing blocked and future GetTurn calls to proceed.
func (m *Manager) ReleaseGlobalLock() {
	m.mu.Lock()
	turners := make([]*turner, 0, len(m.turners))
	for _, t := range m.turners {
		turners = append(turners, t)
	}
	m.mu.Unlock()

	m.abortDrain(turners)
}

// abortDrain unlocks every turner in turners and clears the drain
// barrier. Shared by ReleaseGlobalLock's normal teardown and
// AcquireGlobalLock's own rollback when waitIdle fails partway through.
func (m *Manager) abortDrain(turners []*turner) {
	for _, t := range turners {
		t.unlockForDrain()
	}

	m.mu.Lock()
	m.draining = false
	close(m.drainEnd)
	m.mu.Unlock()
}

// Stats reports current lock manager occupancy, used for diagnostics.
type Stats struct {
	TrackedPaths int
	Draining     bool
}

// Stats returns a snapshot of current manager state.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{TrackedPaths: len(m.turners), Draining: m.draining}
}
