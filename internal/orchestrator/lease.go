package orchestrator

import (
	"context"
	"sync"
)

// leaseTable hands out exclusive per-name leases. Waiters for a held lease
// queue in FIFO order: a second install into the same bottle runs after the
// first, it is not rejected.
type leaseTable struct {
	mu    sync.Mutex
	names map[string]*leaseState
}

type leaseState struct {
	held    bool
	waiters []chan struct{}
}

func newLeaseTable() *leaseTable {
	return &leaseTable{names: map[string]*leaseState{}}
}

// Acquire blocks until the lease for name is free or ctx is done. On success
// the returned release function must be called exactly once.
func (t *leaseTable) Acquire(ctx context.Context, name string) (func(), error) {
	t.mu.Lock()
	state, ok := t.names[name]
	if !ok {
		state = &leaseState{}
		t.names[name] = state
	}
	if !state.held {
		state.held = true
		t.mu.Unlock()
		return func() { t.release(name) }, nil
	}

	ready := make(chan struct{})
	state.waiters = append(state.waiters, ready)
	t.mu.Unlock()

	select {
	case <-ready:
		return func() { t.release(name) }, nil
	case <-ctx.Done():
		t.abandon(name, ready)
		return nil, ctx.Err()
	}
}

func (t *leaseTable) release(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.names[name]
	if !ok {
		return
	}
	if len(state.waiters) > 0 {
		next := state.waiters[0]
		state.waiters = state.waiters[1:]
		close(next)
		return
	}
	state.held = false
	delete(t.names, name)
}

// abandon removes a cancelled waiter, passing the lease on if it was granted
// concurrently with cancellation.
func (t *leaseTable) abandon(name string, ready chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.names[name]
	if !ok {
		return
	}
	for i, w := range state.waiters {
		if w == ready {
			state.waiters = append(state.waiters[:i], state.waiters[i+1:]...)
			return
		}
	}
	// Not in the queue: the lease was already granted to us. Hand it on.
	select {
	case <-ready:
		if len(state.waiters) > 0 {
			next := state.waiters[0]
			state.waiters = state.waiters[1:]
			close(next)
		} else {
			state.held = false
			delete(t.names, name)
		}
	default:
	}
}
