// Package events carries the view-invalidation signal: every successful
// write to the record store publishes an Invalidation, and any cached view
// of the PC list subscribes instead of the services pushing at it directly.
package events

import (
	"sync"
	"time"
)

// Invalidation names the write that made cached PC-list views stale.
type Invalidation struct {
	// Entity is "pc" or "schedule".
	Entity string
	// Operation is the write that succeeded: "create", "update",
	// "delete", "upsert", "toggle" or "sync".
	Operation string
	Timestamp time.Time
}

// Hub fans invalidations out to subscribers. Publishing never blocks: a
// subscriber that is not draining its channel misses signals rather than
// stalling the write path.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan Invalidation
	nextID int
}

// NewHub creates an invalidation hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Invalidation)}
}

// Subscribe registers a subscriber and returns its channel along with a
// cancel function that must be called when the subscriber goes away.
func (h *Hub) Subscribe() (<-chan Invalidation, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Invalidation, 16)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

// Publish raises an invalidation to every subscriber.
func (h *Hub) Publish(entity, operation string) {
	inv := Invalidation{
		Entity:    entity,
		Operation: operation,
		Timestamp: time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- inv:
		default:
		}
	}
}
