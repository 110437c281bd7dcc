// Package events fans state-change events out to subscriber channels.
// Publishing never blocks: an event that does not fit in a subscriber's
// buffer is dropped for that subscriber and counted.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// DefaultBuffer is used when Subscribe is called with a non-positive size.
const DefaultBuffer = 64

// Hub delivers events to every live subscriber.
type Hub struct {
	mu      sync.Mutex
	subs    map[uint64]chan types.Event
	next    uint64
	dropped atomic.Uint64
	logger  *zap.Logger
	now     func() time.Time
}

// NewHub creates a hub. A nil logger is replaced with a no-op logger.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[uint64]chan types.Event),
		logger: logger,
		now:    time.Now,
	}
}

// Subscribe returns a channel receiving every event published after the call
// and a cancel function that closes it. Cancel is idempotent.
func (h *Hub) Subscribe(buffer int) (<-chan types.Event, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan types.Event, buffer)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish stamps and delivers an event.
func (h *Hub) Publish(kind, subject, message string) types.Event {
	ev := types.Event{
		ID:      newEventID(),
		Kind:    kind,
		Subject: subject,
		Message: message,
		At:      h.now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.dropped.Add(1)
			h.logger.Debug("event dropped for slow subscriber",
				zap.Uint64("subscriber", id),
				zap.String("kind", kind),
				zap.String("subject", subject),
			)
		}
	}
	return ev
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped because a buffer was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// newEventID generates a UUID v7, falling back to v4.
func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
