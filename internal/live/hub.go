// Package live fans out "your applications changed" signals to the
// connections watching an account.
package live

import "sync"

// Hub tracks subscribers per account. The zero value is not usable; call
// NewHub.
type Hub struct {
	mu   sync.RWMutex
	subs map[uint]map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[chan struct{}]struct{})}
}

// Subscribe returns a channel that receives a value after each change to
// owner's applications, and a function that releases it. Signals coalesce:
// a slow reader sees at most one pending signal.
func (h *Hub) Subscribe(owner uint) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[owner] == nil {
		h.subs[owner] = make(map[chan struct{}]struct{})
	}
	h.subs[owner][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[owner], ch)
			if len(h.subs[owner]) == 0 {
				delete(h.subs, owner)
			}
			h.mu.Unlock()
		})
	}
}

// Publish signals every subscriber of owner without blocking.
func (h *Hub) Publish(owner uint) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[owner] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers reports how many connections watch owner.
func (h *Hub) Subscribers(owner uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[owner])
}
