package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
	"github.com/KasumiMercury/primind-practice-reminder/internal/infra/notifycenter"
	"github.com/KasumiMercury/primind-practice-reminder/internal/testutil"
)

var monday = testutil.Monday

func newMemoryCenter() *notifycenter.Memory {
	return notifycenter.NewMemory(
		notifycenter.WithoutTimers(),
		notifycenter.WithLocation(time.UTC),
		notifycenter.WithClock(testutil.FixedClock(monday)),
	)
}

func pendingFor(t *testing.T, center domain.NotificationCenter, reminderID string) []domain.Trigger {
	t.Helper()

	pending, err := center.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}

	var out []domain.Trigger
	for _, tr := range pending {
		if id, ok := tr.ReminderID(); ok && id == reminderID {
			out = append(out, tr)
		}
	}
	return out
}

func TestResync_ExpandsTriggers(t *testing.T) {
	tests := []struct {
		name       string
		reminder   *domain.Reminder
		wantCount  int
		wantKind   domain.FireKind
		wantFireAt []time.Time
	}{
		{
			name: "one-shot reminder fires at the next hour and minute",
			reminder: &domain.Reminder{
				ID:      "r-once",
				Time:    domain.TimeOfDay{Hour: 9, Minute: 0},
				Enabled: true,
			},
			wantCount:  1,
			wantKind:   domain.FireTimeOfDay,
			wantFireAt: []time.Time{time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC)},
		},
		{
			name: "repeating reminder gets one trigger per weekday",
			reminder: &domain.Reminder{
				ID:         "r-weekly",
				Time:       domain.TimeOfDay{Hour: 9, Minute: 0},
				RepeatDays: []domain.Weekday{domain.Tuesday, domain.Thursday},
				Enabled:    true,
			},
			wantCount: 2,
			wantKind:  domain.FireWeekday,
			wantFireAt: []time.Time{
				time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC),
				time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "disabled reminder has no triggers",
			reminder: &domain.Reminder{
				ID:         "r-off",
				Time:       domain.TimeOfDay{Hour: 7, Minute: 30},
				RepeatDays: []domain.Weekday{domain.Monday},
				Enabled:    false,
			},
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			center := newMemoryCenter()
			svc := NewService(center, nil, nil)

			result, err := svc.Resync(context.Background(), tt.reminder)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.Scheduled) != tt.wantCount {
				t.Errorf("scheduled: got %d, want %d", len(result.Scheduled), tt.wantCount)
			}

			pending := pendingFor(t, center, tt.reminder.ID)
			if len(pending) != tt.wantCount {
				t.Fatalf("pending: got %d, want %d", len(pending), tt.wantCount)
			}

			for i, tr := range pending {
				if tr.Fire.Kind != tt.wantKind {
					t.Errorf("fire kind: got %s, want %s", tr.Fire.Kind, tt.wantKind)
				}
				if tr.Fire.Repeats {
					t.Error("expected one-shot trigger")
				}
				if tr.Content.Title != NotificationTitle || tr.Content.Body != NotificationBody {
					t.Errorf("unexpected content: %+v", tr.Content)
				}
				if tr.Content.CategoryID != CategoryID {
					t.Errorf("category: got %q, want %q", tr.Content.CategoryID, CategoryID)
				}

				fireAt, ok := center.NextFireTime(tr.ID)
				if !ok {
					t.Fatalf("no fire time for %s", tr.ID)
				}
				if !fireAt.Equal(tt.wantFireAt[i]) {
					t.Errorf("fire time: got %v, want %v", fireAt, tt.wantFireAt[i])
				}
			}
		})
	}
}

func TestResync_IsIdempotent(t *testing.T) {
	center := newMemoryCenter()
	svc := NewService(center, nil, nil)

	reminder := &domain.Reminder{
		ID:         "r-1",
		Time:       domain.TimeOfDay{Hour: 9, Minute: 0},
		RepeatDays: []domain.Weekday{domain.Monday, domain.Wednesday, domain.Friday},
		Enabled:    true,
	}

	for i := range 3 {
		result, err := svc.Resync(context.Background(), reminder)
		if err != nil {
			t.Fatalf("resync %d: %v", i, err)
		}
		if i > 0 && result.Retracted != 3 {
			t.Errorf("resync %d retracted: got %d, want 3", i, result.Retracted)
		}
	}

	if got := len(pendingFor(t, center, "r-1")); got != 3 {
		t.Errorf("pending: got %d, want 3", got)
	}
}

func TestResync_LeavesOtherRemindersAlone(t *testing.T) {
	center := newMemoryCenter()
	svc := NewService(center, nil, nil)
	ctx := context.Background()

	a := &domain.Reminder{ID: "a", Time: domain.TimeOfDay{Hour: 8}, RepeatDays: []domain.Weekday{domain.Monday, domain.Tuesday}, Enabled: true}
	b := &domain.Reminder{ID: "b", Time: domain.TimeOfDay{Hour: 20}, Enabled: true}

	for _, r := range []*domain.Reminder{a, b} {
		if _, err := svc.Resync(ctx, r); err != nil {
			t.Fatalf("resync %s: %v", r.ID, err)
		}
	}

	a.Enabled = false
	if _, err := svc.Resync(ctx, a); err != nil {
		t.Fatalf("resync disabled: %v", err)
	}

	if got := len(pendingFor(t, center, "a")); got != 0 {
		t.Errorf("pending for a: got %d, want 0", got)
	}
	if got := len(pendingFor(t, center, "b")); got != 1 {
		t.Errorf("pending for b: got %d, want 1", got)
	}
}

func TestResync_ConcurrentSameID(t *testing.T) {
	center := newMemoryCenter()
	svc := NewService(center, nil, nil)

	reminder := &domain.Reminder{
		ID:         "r-race",
		Time:       domain.TimeOfDay{Hour: 6, Minute: 15},
		RepeatDays: []domain.Weekday{domain.Saturday, domain.Sunday},
		Enabled:    true,
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Resync(context.Background(), reminder); err != nil {
				t.Errorf("resync: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := len(pendingFor(t, center, "r-race")); got != 2 {
		t.Errorf("pending: got %d, want 2", got)
	}
	if got := svc.locks.(*keyedMutex).size(); got != 0 {
		t.Errorf("keyed locks left behind: %d", got)
	}
}

func TestResync_ListFailureAbortsWithoutAdding(t *testing.T) {
	ctrl := gomock.NewController(t)
	center := domain.NewMockNotificationCenter(ctrl)

	center.EXPECT().ListPending(gomock.Any()).Return(nil, errors.New("backend down"))
	center.EXPECT().Add(gomock.Any(), gomock.Any()).Times(0)
	center.EXPECT().Remove(gomock.Any(), gomock.Any()).Times(0)

	svc := NewService(center, nil, nil)

	_, err := svc.Resync(context.Background(), &domain.Reminder{
		ID:      "r-1",
		Time:    domain.TimeOfDay{Hour: 9},
		Enabled: true,
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestResync_AddFailureIsCollected(t *testing.T) {
	ctrl := gomock.NewController(t)
	center := domain.NewMockNotificationCenter(ctrl)

	stale := domain.Trigger{
		ID:      "old",
		Content: domain.Content{Payload: map[string]string{domain.PayloadReminderIDKey: "r-1"}},
	}
	other := domain.Trigger{
		ID:      "foreign",
		Content: domain.Content{Payload: map[string]string{domain.PayloadReminderIDKey: "r-2"}},
	}

	addErr := errors.New("quota exceeded")

	gomock.InOrder(
		center.EXPECT().ListPending(gomock.Any()).Return([]domain.Trigger{stale, other}, nil),
		center.EXPECT().Remove(gomock.Any(), []string{"old"}).Return(nil),
		center.EXPECT().Add(gomock.Any(), gomock.Any()).Return(nil),
		center.EXPECT().Add(gomock.Any(), gomock.Any()).Return(addErr),
		center.EXPECT().Add(gomock.Any(), gomock.Any()).Return(nil),
	)

	n := 0
	svc := NewService(center, nil, nil, WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("t-%d", n)
	}))

	result, err := svc.Resync(context.Background(), &domain.Reminder{
		ID:         "r-1",
		Time:       domain.TimeOfDay{Hour: 9},
		RepeatDays: []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday},
		Enabled:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Retracted != 1 {
		t.Errorf("retracted: got %d, want 1", result.Retracted)
	}
	if len(result.Scheduled) != 2 {
		t.Errorf("scheduled: got %d, want 2", len(result.Scheduled))
	}
	if len(result.Failures) != 1 || result.Failures[0].TriggerID != "t-2" {
		t.Fatalf("failures: got %+v", result.Failures)
	}
	if !errors.Is(result.Err(), addErr) {
		t.Errorf("Err() should wrap the add failure, got %v", result.Err())
	}
}

func TestResync_PermissionDeniedSurfacedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := domain.NewMockNavigationSink(ctrl)

	center := newMemoryCenter()
	authorizer := notifycenter.NewStaticAuthorizer(domain.AuthorizationDenied)
	svc := NewService(center, authorizer, sink)
	ctx := context.Background()

	reminder := &domain.Reminder{ID: "r-1", Time: domain.TimeOfDay{Hour: 9}, Enabled: true}

	sink.EXPECT().PublishPermissionDenied(gomock.Any()).Times(2)

	for range 2 {
		result, err := svc.Resync(ctx, reminder)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Skipped {
			t.Error("expected skipped result")
		}
	}
	if got := len(pendingFor(t, center, "r-1")); got != 0 {
		t.Errorf("pending while denied: got %d, want 0", got)
	}

	_ = authorizer.SetAuthorization(ctx, domain.AuthorizationGranted)
	if _, err := svc.Resync(ctx, reminder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(pendingFor(t, center, "r-1")); got != 1 {
		t.Errorf("pending after grant: got %d, want 1", got)
	}

	// Denied again after a grant: surfaced a second time.
	_ = authorizer.SetAuthorization(ctx, domain.AuthorizationDenied)
	if _, err := svc.Resync(ctx, reminder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResync_DisableWhileDeniedRetracts(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := domain.NewMockNavigationSink(ctrl)
	sink.EXPECT().PublishPermissionDenied(gomock.Any()).AnyTimes()

	ctx := context.Background()
	weekly := func(enabled bool) *domain.Reminder {
		return &domain.Reminder{
			ID:         "r-weekly",
			Time:       domain.TimeOfDay{Hour: 9},
			RepeatDays: []domain.Weekday{domain.Tuesday, domain.Thursday},
			Enabled:    enabled,
		}
	}

	tests := []struct {
		name        string
		reminder    *domain.Reminder
		wantPending int
		wantSkipped bool
	}{
		{name: "disabled reminder is retracted", reminder: weekly(false), wantPending: 0},
		{name: "edited reminder is retracted and not rescheduled", reminder: weekly(true), wantPending: 0, wantSkipped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			center := newMemoryCenter()
			authorizer := notifycenter.NewStaticAuthorizer(domain.AuthorizationGranted)
			svc := NewService(center, authorizer, sink)

			if _, err := svc.Resync(ctx, weekly(true)); err != nil {
				t.Fatalf("resync while granted: %v", err)
			}
			if got := len(pendingFor(t, center, "r-weekly")); got != 2 {
				t.Fatalf("pending after grant: got %d, want 2", got)
			}

			_ = authorizer.SetAuthorization(ctx, domain.AuthorizationDenied)

			result, err := svc.Resync(ctx, tt.reminder)
			if err != nil {
				t.Fatalf("resync while denied: %v", err)
			}
			if result.Retracted != 2 {
				t.Errorf("retracted: got %d, want 2", result.Retracted)
			}
			if result.Skipped != tt.wantSkipped {
				t.Errorf("skipped: got %v, want %v", result.Skipped, tt.wantSkipped)
			}
			if got := len(pendingFor(t, center, "r-weekly")); got != tt.wantPending {
				t.Errorf("pending: got %d, want %d", got, tt.wantPending)
			}
		})
	}
}

// rendezvousCenter holds every ListPending until a second caller arrives or the wait
// times out, so two unserialized resyncs both see the same stale snapshot.
type rendezvousCenter struct {
	*notifycenter.Memory

	mu      sync.Mutex
	arrived int
	both    chan struct{}
}

func newRendezvousCenter() *rendezvousCenter {
	return &rendezvousCenter{Memory: newMemoryCenter(), both: make(chan struct{})}
}

func (c *rendezvousCenter) ListPending(ctx context.Context) ([]domain.Trigger, error) {
	c.mu.Lock()
	c.arrived++
	if c.arrived == 2 {
		close(c.both)
	}
	c.mu.Unlock()

	select {
	case <-c.both:
	case <-time.After(200 * time.Millisecond):
	}
	return c.Memory.ListPending(ctx)
}

func TestResync_SharedLockerSerializesInstances(t *testing.T) {
	center := newRendezvousCenter()
	locker := newKeyedMutex()

	instances := []*Service{
		NewService(center, nil, nil, WithLocker(locker)),
		NewService(center, nil, nil, WithLocker(locker)),
	}
	reminder := &domain.Reminder{
		ID:         "r-shared",
		Time:       domain.TimeOfDay{Hour: 9},
		RepeatDays: []domain.Weekday{domain.Tuesday, domain.Thursday},
		Enabled:    true,
	}

	var wg sync.WaitGroup
	for _, svc := range instances {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Resync(context.Background(), reminder); err != nil {
				t.Errorf("resync: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := len(pendingFor(t, center, "r-shared")); got != 2 {
		t.Errorf("pending: got %d, want 2", got)
	}
}

type failingLocker struct{ err error }

func (l failingLocker) Lock(context.Context, string) (func(), error) { return nil, l.err }

func TestResync_LockFailureLeavesCenterUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	center := domain.NewMockNotificationCenter(ctrl)
	center.EXPECT().ListPending(gomock.Any()).Times(0)
	center.EXPECT().Add(gomock.Any(), gomock.Any()).Times(0)

	lockErr := errors.New("lock timeout")
	svc := NewService(center, nil, nil, WithLocker(failingLocker{err: lockErr}))

	_, err := svc.Resync(context.Background(), &domain.Reminder{ID: "r-1", Time: domain.TimeOfDay{Hour: 9}, Enabled: true})
	if !errors.Is(err, lockErr) {
		t.Errorf("got %v, want lock error", err)
	}
}

func TestResync_RejectsMissingID(t *testing.T) {
	svc := NewService(newMemoryCenter(), nil, nil)

	_, err := svc.Resync(context.Background(), &domain.Reminder{})
	if !errors.Is(err, domain.ErrInvalidReminder) {
		t.Errorf("got %v, want ErrInvalidReminder", err)
	}
}

func TestResyncAll(t *testing.T) {
	center := newMemoryCenter()
	svc := NewService(center, nil, nil)

	reminders := []*domain.Reminder{
		{ID: "a", Time: domain.TimeOfDay{Hour: 8}, Enabled: true},
		{ID: "b", Time: domain.TimeOfDay{Hour: 9}, RepeatDays: []domain.Weekday{domain.Friday}, Enabled: true},
		{ID: "c", Time: domain.TimeOfDay{Hour: 10}, Enabled: false},
	}

	results, err := svc.ResyncAll(context.Background(), reminders)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results: got %d, want 3", len(results))
	}
	for i, r := range results {
		if r.ReminderID != reminders[i].ID {
			t.Errorf("result %d: got %s, want %s", i, r.ReminderID, reminders[i].ID)
		}
	}

	pending, _ := center.ListPending(context.Background())
	if len(pending) != 2 {
		t.Errorf("pending: got %d, want 2", len(pending))
	}
}

func TestInit_RegistersCategoryAndDelegate(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := domain.NewMockNotificationDelegate(ctrl)

	center := newMemoryCenter()
	svc := NewService(center, nil, nil)

	if err := svc.Init(context.Background(), delegate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Init(context.Background(), delegate); err != nil {
		t.Fatalf("second init: %v", err)
	}

	categories := center.Categories()
	if len(categories) != 1 || categories[0].ID != CategoryID {
		t.Fatalf("categories: got %+v", categories)
	}
	if len(categories[0].Actions) != 1 || categories[0].Actions[0].ID != ActionOpenProblem {
		t.Errorf("actions: got %+v", categories[0].Actions)
	}

	if _, err := svc.Resync(context.Background(), &domain.Reminder{ID: "r-1", Time: domain.TimeOfDay{Hour: 9}, Enabled: true}); err != nil {
		t.Fatalf("resync: %v", err)
	}
	pending := pendingFor(t, center, "r-1")

	delegate.EXPECT().OnPresented(gomock.Any(), gomock.Any()).Return(domain.PresentationOptions{domain.PresentAlert})
	if _, err := center.Fire(context.Background(), pending[0].ID); err != nil {
		t.Fatalf("fire: %v", err)
	}
}
