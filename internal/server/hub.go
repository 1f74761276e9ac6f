package server

import (
	"sync"

	"github.com/procboost/boostd/internal/monitor"
)

// Hub fans tick results out to SSE subscribers. Post never blocks the
// engine: a subscriber whose buffer is full loses that tick, but the ticks
// it does see stay in order.
type Hub struct {
	mu      sync.Mutex
	clients map[chan monitor.TickResult]struct{}
}

const clientBuffer = 4

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[chan monitor.TickResult]struct{})}
}

// Post implements monitor.Sink.
func (h *Hub) Post(result monitor.TickResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- result:
		default:
			// Slow client, drop this tick for it.
		}
	}
}

// Subscribe registers a new client. The returned cancel func must be
// called when the client goes away.
func (h *Hub) Subscribe() (<-chan monitor.TickResult, func()) {
	ch := make(chan monitor.TickResult, clientBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}
