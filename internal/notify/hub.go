// hub.go

package notify

import (
	"context"
	"sync"

	"shop-backend/internal/models"
)

// Hub broadcasts listings to in-process subscribers such as SSE streams.
// A subscriber whose buffer is full misses the listing; Publish never blocks.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan []models.Product]struct{}
	buf    int
	closed bool
}

func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{subs: make(map[chan []models.Product]struct{}), buf: buffer}
}

// Subscribe registers a subscriber. The returned cancel func must be called once
// the subscriber stops reading; it closes the channel. After Close, the
// channel comes back already closed.
func (h *Hub) Subscribe() (<-chan []models.Product, func()) {
	ch := make(chan []models.Product, h.buf)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	return ch, func() { h.drop(ch) }
}

func (h *Hub) drop(ch chan []models.Product) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *Hub) Publish(_ context.Context, products []models.Product) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- products:
		default:
		}
	}
	return nil
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription so streaming handlers can return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
	h.closed = true
}
