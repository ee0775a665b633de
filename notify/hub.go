package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/stockwatch/alert"
	"github.com/rustyeddy/stockwatch/internal/metrics"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 32

// Hub broadcasts events to in-process subscribers such as websocket clients.
// A subscriber whose queue is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan alert.Event]struct{}
	buffer int
	log    zerolog.Logger
}

func NewHub(buffer int, log zerolog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[chan alert.Event]struct{}),
		buffer: buffer,
		log:    log,
	}
}

// Subscribe returns a receive channel and a cancel func that unsubscribes and
// closes the channel. Cancel is safe to call more than once.
func (h *Hub) Subscribe() (<-chan alert.Event, func()) {
	ch := make(chan alert.Event, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			// Close may already have closed it
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
		})
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Notify implements alert.Notifier without blocking.
func (h *Hub) Notify(ctx context.Context, ev alert.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
			metrics.NotificationsTotal.WithLabelValues("hub", "ok").Inc()
		default:
			metrics.NotificationsTotal.WithLabelValues("hub", "dropped").Inc()
			h.log.Warn().Int64("event_id", ev.ID).Msg("subscriber queue full, dropping event")
		}
	}
}

// Close unsubscribes everyone and closes their channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
