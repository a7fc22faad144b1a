package navigation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
)

type EventType string

const (
	EventNavigate         EventType = "navigate"
	EventBanner           EventType = "banner"
	EventPermissionDenied EventType = "permission_denied"
)

type Event struct {
	Type         EventType                `json:"type"`
	Intent       *domain.NavigationIntent `json:"intent,omitempty"`
	Notification *domain.Notification     `json:"notification,omitempty"`
	At           time.Time                `json:"at"`
}

const defaultBuffer = 16

// Hub fans events out to subscribers. A subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]chan Event
	nextID uint64
	buffer int
	now    func() time.Time
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:   make(map[uint64]chan Event),
		buffer: buffer,
		now:    time.Now,
	}
}

// Subscribe returns a channel that is closed when ctx is done.
func (h *Hub) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

func (h *Hub) Publish(ctx context.Context, event Event) {
	if event.At.IsZero() {
		event.At = h.now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- event:
		default:
			slog.DebugContext(ctx, "navigation event dropped for slow subscriber",
				slog.Uint64("subscriber", id),
				slog.String("type", string(event.Type)),
			)
		}
	}
}

func (h *Hub) PublishIntent(ctx context.Context, intent domain.NavigationIntent) {
	h.Publish(ctx, Event{Type: EventNavigate, Intent: &intent})
}

func (h *Hub) PublishBanner(ctx context.Context, notification domain.Notification) {
	h.Publish(ctx, Event{Type: EventBanner, Notification: &notification})
}

func (h *Hub) PublishPermissionDenied(ctx context.Context) {
	h.Publish(ctx, Event{Type: EventPermissionDenied})
}

func (h *Hub) subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
