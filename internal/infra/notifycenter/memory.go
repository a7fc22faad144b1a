package notifycenter

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
)

type memoryEntry struct {
	trigger domain.Trigger
	fireAt  time.Time
	timer   *time.Timer
}

// Memory keeps pending triggers in process and fires them with timers.
type Memory struct {
	mu         sync.Mutex
	pending    map[string]*memoryEntry
	order      []string
	categories []domain.Category
	delegate   domain.NotificationDelegate

	location *time.Location
	now      func() time.Time
	timers   bool
}

type MemoryOption func(*Memory)

func WithLocation(loc *time.Location) MemoryOption {
	return func(m *Memory) {
		if loc != nil {
			m.location = loc
		}
	}
}

func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// WithoutTimers keeps triggers pending until Fire is called explicitly.
func WithoutTimers() MemoryOption {
	return func(m *Memory) {
		m.timers = false
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		pending:  make(map[string]*memoryEntry),
		location: time.Local,
		now:      time.Now,
		timers:   true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) ListPending(_ context.Context) ([]domain.Trigger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	triggers := make([]domain.Trigger, 0, len(m.order))
	for _, id := range m.order {
		triggers = append(triggers, m.pending[id].trigger)
	}
	return triggers, nil
}

func (m *Memory) Remove(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		m.removeLocked(id)
	}
	return nil
}

func (m *Memory) Add(_ context.Context, trigger domain.Trigger) error {
	if trigger.ID == "" {
		return fmt.Errorf("%w: empty id", domain.ErrInvalidTrigger)
	}
	if err := trigger.Fire.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Same identifier replaces the pending request.
	m.removeLocked(trigger.ID)

	entry := &memoryEntry{
		trigger: trigger,
		fireAt:  trigger.Fire.Next(m.now(), m.location),
	}
	m.armLocked(entry)

	m.pending[trigger.ID] = entry
	m.order = append(m.order, trigger.ID)
	return nil
}

func (m *Memory) SetCategories(_ context.Context, categories []domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.categories = slices.Clone(categories)
	return nil
}

func (m *Memory) Categories() []domain.Category {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.categories)
}

func (m *Memory) SetDelegate(delegate domain.NotificationDelegate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.delegate = delegate
}

// NextFireTime reports when a pending trigger is due.
func (m *Memory) NextFireTime(id string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.pending[id]
	if !ok {
		return time.Time{}, false
	}
	return entry.fireAt, true
}

// Fire delivers a pending trigger immediately, as if its time had come.
func (m *Memory) Fire(ctx context.Context, id string) (domain.Notification, error) {
	m.mu.Lock()
	entry, ok := m.pending[id]
	if !ok {
		m.mu.Unlock()
		return domain.Notification{}, fmt.Errorf("trigger %s: %w", id, domain.ErrInvalidTrigger)
	}

	if entry.trigger.Fire.Repeats && entry.trigger.Fire.Kind != domain.FireAt {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		entry.fireAt = entry.trigger.Fire.Next(entry.fireAt, m.location)
		m.armLocked(entry)
	} else {
		m.removeLocked(id)
	}

	delegate := m.delegate
	m.mu.Unlock()

	notification := domain.Notification{
		Trigger:     entry.trigger,
		DeliveredAt: m.now(),
	}

	slog.DebugContext(ctx, "notification fired",
		slog.String("trigger_id", id),
	)

	if delegate != nil {
		delegate.OnPresented(ctx, notification)
	}

	return notification, nil
}

// Close stops every timer. Pending triggers stay listed.
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range m.pending {
		if entry.timer != nil {
			entry.timer.Stop()
			entry.timer = nil
		}
	}
	m.timers = false
}

func (m *Memory) armLocked(entry *memoryEntry) {
	if !m.timers {
		return
	}

	id := entry.trigger.ID
	delay := entry.fireAt.Sub(m.now())
	if delay < 0 {
		delay = 0
	}
	entry.timer = time.AfterFunc(delay, func() {
		if _, err := m.Fire(context.Background(), id); err != nil {
			slog.Debug("timer fired for retracted trigger",
				slog.String("trigger_id", id),
			)
		}
	})
}

func (m *Memory) removeLocked(id string) {
	entry, ok := m.pending[id]
	if !ok {
		return
	}
	if entry.timer != nil {
		entry.timer.Stop()
	}
	delete(m.pending, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
}
