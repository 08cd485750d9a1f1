package index

import (
	"context"
	"sync"

	"github.com/Sssan520/carbondata/schema"
	"golang.org/x/sync/errgroup"
)

// ListenerRegistry hands out per-range listeners and remembers every
// instance so that all of them get finalized at step close — not just
// whichever one was requested last.
type ListenerRegistry struct {
	spec schema.TableSpec

	mu        sync.Mutex
	listeners map[int]*Listener
}

func NewListenerRegistry(spec schema.TableSpec) *ListenerRegistry {
	return &ListenerRegistry{
		spec:      spec,
		listeners: make(map[int]*Listener),
	}
}

// ForRange returns the listener scoped to rangeID, creating it on
// first request.
func (r *ListenerRegistry) ForRange(rangeID int, location string) *Listener {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.listeners[rangeID]; ok {
		return l
	}

	l := NewListener(r.spec, rangeID, location)
	r.listeners[rangeID] = l

	return l
}

// Count returns how many per-range listeners were handed out.
func (r *ListenerRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

// FinishAll finalizes every registered listener concurrently and
// returns the first failure. Each listener still runs to completion.
func (r *ListenerRegistry) FinishAll(ctx context.Context) error {

	r.mu.Lock()
	snapshot := make([]*Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		snapshot = append(snapshot, l)
	}
	r.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)

	for _, l := range snapshot {
		g.Go(l.Finish)
	}

	return g.Wait()
}
