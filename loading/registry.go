package loading

import (
	"sync"

	"github.com/Sssan520/carbondata/store"
)

// HandlerRegistry tracks the fact handlers currently owned by range
// workers. A handler sits in here from the moment its worker creates it
// until the worker has finished and closed it, so the step teardown can
// force-finalize whatever the workers left behind.
type HandlerRegistry struct {
	mu       sync.Mutex
	handlers map[int]store.FactHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[int]store.FactHandler),
	}
}

func (r *HandlerRegistry) Add(rangeID int, h store.FactHandler) {
	r.mu.Lock()
	r.handlers[rangeID] = h
	r.mu.Unlock()
}

func (r *HandlerRegistry) Remove(rangeID int) {
	r.mu.Lock()
	delete(r.handlers, rangeID)
	r.mu.Unlock()
}

func (r *HandlerRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.handlers)
}

// Snapshot copies the current membership so teardown can iterate without
// holding the lock across handler calls.
func (r *HandlerRegistry) Snapshot() map[int]store.FactHandler {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[int]store.FactHandler, len(r.handlers))
	for rangeID, h := range r.handlers {
		out[rangeID] = h
	}

	return out
}
