package lock

import (
	"context"
	"sync"
)

// turner arbitrates concurrent access to a single logical path: any number
// of readers may hold a turn together, but a writer excludes everyone
// else, and a writer waiting for its turn blocks new readers from being
// admitted so it is never starved by a steady stream of readers (§4.4).
type turner struct {
	mu             sync.Mutex
	activeReaders  int
	writerActive   bool
	waitingWriters int
	drainLocked    bool // true while a global drain holds this turner closed
	notify         chan struct{}
	refs           int // live turns plus callers currently admitting, for map cleanup
}

func newTurner() *turner {
	return &turner{notify: make(chan struct{})}
}

// acquire blocks until a turn of the requested kind can be admitted, or
// ctx is done. exclusive requests a writer turn; !exclusive requests a
// reader turn.
func (t *turner) acquire(ctx context.Context, exclusive bool) error {
	t.mu.Lock()
	if exclusive {
		t.waitingWriters++
	}

	for {
		if t.admit(exclusive) {
			t.mu.Unlock()
			return nil
		}

		ch := t.notify
		t.mu.Unlock()

		select {
		case <-ch:
			t.mu.Lock()
		case <-ctx.Done():
			t.mu.Lock()
			if exclusive {
				t.waitingWriters--
			}
			t.mu.Unlock()
			return ctx.Err()
		}
	}
}

// admit checks and, if successful, applies the admission under t.mu held
// by the caller.
func (t *turner) admit(exclusive bool) bool {
	if t.drainLocked {
		return false
	}
	if exclusive {
		if t.activeReaders == 0 && !t.writerActive {
			t.waitingWriters--
			t.writerActive = true
			return true
		}
		return false
	}

	if t.writerActive || t.waitingWriters > 0 {
		return false
	}
	t.activeReaders++
	return true
}

// release ends a turn of the given kind and wakes any waiters.
func (t *turner) release(exclusive bool) {
	t.mu.Lock()
	if exclusive {
		t.writerActive = false
	} else {
		t.activeReaders--
	}
	t.wake()
	t.mu.Unlock()
}

// wake must be called with t.mu held. It broadcasts to every goroutine
// currently parked on the old notify channel and installs a fresh one.
func (t *turner) wake() {
	close(t.notify)
	t.notify = make(chan struct{})
}

// waitIdle blocks until the turner is idle or ctx is done.
func (t *turner) waitIdle(ctx context.Context) error {
	for {
		t.mu.Lock()
		if t.activeReaders == 0 && !t.writerActive {
			t.mu.Unlock()
			return nil
		}
		ch := t.notify
		t.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (t *turner) lockForDrain() {
	t.mu.Lock()
	t.drainLocked = true
	t.mu.Unlock()
}

func (t *turner) unlockForDrain() {
	t.mu.Lock()
	t.drainLocked = false
	t.wake()
	t.mu.Unlock()
}
