package catalog

import (
	"context"
	"sync"
)

// Ticket identifies one load started through a Tracker. The zero Ticket is
// never current.
type Ticket uint64

// Tracker binds asynchronous loads to the lifetime of a view. Starting a
// new load cancels the previous one, and results are only applied while
// their ticket is still current. The zero value is ready to use.
type Tracker struct {
	mu      sync.Mutex
	current Ticket
	cancel  context.CancelFunc
}

// Begin cancels any in-flight load and starts a new one derived from parent.
func (t *Tracker) Begin(parent context.Context) (context.Context, Ticket) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	t.current++
	t.cancel = cancel
	return ctx, t.current
}

// Current reports whether tk belongs to the most recent load.
func (t *Tracker) Current(tk Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tk != 0 && tk == t.current
}

// Finish releases the context of the load identified by tk and reports
// whether its result may be applied. A stale ticket returns false and
// leaves the current load alone.
func (t *Tracker) Finish(tk Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tk == 0 || tk != t.current {
		return false
	}
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	return true
}

// Stop cancels any in-flight load and invalidates every ticket issued so far.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.current++
}
