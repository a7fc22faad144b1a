package navigation

import (
	"context"
	"testing"
	"time"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestHub_BroadcastsToAllSubscribers(t *testing.T) {
	hub := NewHub(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := hub.Subscribe(ctx)
	second := hub.Subscribe(ctx)

	hub.PublishIntent(ctx, domain.NavigationIntent{QuestionID: 7, ReminderID: "r-1"})

	for _, ch := range []<-chan Event{first, second} {
		ev := receive(t, ch)
		if ev.Type != EventNavigate {
			t.Errorf("type: got %s, want %s", ev.Type, EventNavigate)
		}
		if ev.Intent == nil || ev.Intent.QuestionID != 7 {
			t.Errorf("intent: got %+v", ev.Intent)
		}
		if ev.At.IsZero() {
			t.Error("expected timestamp")
		}
	}
}

func TestHub_EventTypes(t *testing.T) {
	tests := []struct {
		name    string
		publish func(h *Hub, ctx context.Context)
		want    EventType
	}{
		{
			name: "banner",
			publish: func(h *Hub, ctx context.Context) {
				h.PublishBanner(ctx, domain.Notification{Trigger: domain.Trigger{ID: "t-1"}})
			},
			want: EventBanner,
		},
		{
			name:    "permission denied",
			publish: func(h *Hub, ctx context.Context) { h.PublishPermissionDenied(ctx) },
			want:    EventPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub(1)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			ch := hub.Subscribe(ctx)
			tt.publish(hub, ctx)

			if ev := receive(t, ch); ev.Type != tt.want {
				t.Errorf("type: got %s, want %s", ev.Type, tt.want)
			}
		})
	}
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := hub.Subscribe(ctx)

	done := make(chan struct{})
	go func() {
		for range 5 {
			hub.PublishPermissionDenied(ctx)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	receive(t, ch)
	select {
	case ev := <-ch:
		t.Errorf("expected dropped events, got %+v", ev)
	default:
	}
}

func TestHub_UnsubscribesOnCancel(t *testing.T) {
	hub := NewHub(1)
	ctx, cancel := context.WithCancel(context.Background())

	ch := hub.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}

	if got := hub.subscribers(); got != 0 {
		t.Errorf("subscribers: got %d, want 0", got)
	}
}
