package reminder

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
	"github.com/KasumiMercury/primind-practice-reminder/internal/infra/notifycenter"
	"github.com/KasumiMercury/primind-practice-reminder/internal/service/scheduler"
	"github.com/KasumiMercury/primind-practice-reminder/internal/testutil"
)

type fixture struct {
	repo   *domain.MockReminderRepository
	center *notifycenter.Memory
	sched  *scheduler.Service
	svc    *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := domain.NewMockReminderRepository(ctrl)
	center := notifycenter.NewMemory(
		notifycenter.WithoutTimers(),
		notifycenter.WithLocation(time.UTC),
		notifycenter.WithClock(testutil.FixedClock(testutil.Monday)),
	)
	sched := scheduler.NewService(center, nil, nil)

	return &fixture{
		repo:   repo,
		center: center,
		sched:  sched,
		svc:    NewService(repo, sched, time.UTC),
	}
}

func (f *fixture) pending(t *testing.T) []domain.Trigger {
	t.Helper()
	pending, err := f.center.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	return pending
}

func TestSave(t *testing.T) {
	tests := []struct {
		name        string
		input       SaveInput
		wantTime    domain.TimeOfDay
		wantDays    []domain.Weekday
		wantPending int
		wantErr     error
	}{
		{
			name: "seconds are dropped and weekdays normalized",
			input: SaveInput{
				Time:       time.Date(2026, 1, 1, 9, 0, 30, 0, time.UTC),
				RepeatDays: []domain.Weekday{domain.Thursday, domain.Tuesday, domain.Tuesday},
				Enabled:    true,
			},
			wantTime:    domain.TimeOfDay{Hour: 9, Minute: 0},
			wantDays:    []domain.Weekday{domain.Tuesday, domain.Thursday},
			wantPending: 2,
		},
		{
			name: "one-shot reminder schedules one trigger",
			input: SaveInput{
				Time:    time.Date(2026, 1, 1, 21, 45, 59, 0, time.UTC),
				Enabled: true,
			},
			wantTime:    domain.TimeOfDay{Hour: 21, Minute: 45},
			wantPending: 1,
		},
		{
			name: "disabled reminder is stored without triggers",
			input: SaveInput{
				Time:       time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC),
				RepeatDays: []domain.Weekday{domain.Sunday},
				Enabled:    false,
			},
			wantTime:    domain.TimeOfDay{Hour: 6, Minute: 0},
			wantDays:    []domain.Weekday{domain.Sunday},
			wantPending: 0,
		},
		{
			name: "weekday out of range is rejected",
			input: SaveInput{
				Time:       time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC),
				RepeatDays: []domain.Weekday{8},
				Enabled:    true,
			},
			wantErr: domain.ErrInvalidReminder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			if tt.wantErr == nil {
				f.repo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, r *domain.Reminder) error {
						if r.ID == "" {
							r.ID = "r-new"
						}
						return nil
					},
				)
			}

			saved, err := f.svc.Save(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error: got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if saved.Reminder.ID != "r-new" {
				t.Errorf("id: got %q, want r-new", saved.Reminder.ID)
			}
			if saved.Reminder.Time != tt.wantTime {
				t.Errorf("time: got %v, want %v", saved.Reminder.Time, tt.wantTime)
			}
			if !slices.Equal(saved.Reminder.RepeatDays, tt.wantDays) {
				t.Errorf("repeat days: got %v, want %v", saved.Reminder.RepeatDays, tt.wantDays)
			}
			if saved.Schedule == nil {
				t.Fatal("expected schedule result")
			}
			if got := len(f.pending(t)); got != tt.wantPending {
				t.Errorf("pending: got %d, want %d", got, tt.wantPending)
			}
		})
	}
}

func TestSave_StorageFailureIsReturned(t *testing.T) {
	f := newFixture(t)
	storeErr := errors.New("redis down")

	f.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(storeErr)

	_, err := f.svc.Save(context.Background(), SaveInput{
		Time:    time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		Enabled: true,
	})
	if !errors.Is(err, storeErr) {
		t.Fatalf("error: got %v, want %v", err, storeErr)
	}
	if got := len(f.pending(t)); got != 0 {
		t.Errorf("pending: got %d, want 0", got)
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name        string
		input       SaveInput
		repoErr     error
		wantErr     error
		wantPending int
	}{
		{
			name: "existing reminder is replaced and rescheduled",
			input: SaveInput{
				ID:         "r-1",
				Time:       time.Date(2026, 1, 1, 18, 30, 12, 0, time.UTC),
				RepeatDays: []domain.Weekday{domain.Tuesday, domain.Thursday},
				Enabled:    true,
			},
			wantPending: 2,
		},
		{
			name: "reminder deleted meanwhile is not re-created",
			input: SaveInput{
				ID:      "r-1",
				Time:    time.Date(2026, 1, 1, 18, 30, 0, 0, time.UTC),
				Enabled: true,
			},
			repoErr:     domain.ErrReminderNotFound,
			wantErr:     domain.ErrReminderNotFound,
			wantPending: 1,
		},
		{
			name:        "missing id is rejected before storage",
			input:       SaveInput{Time: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC), Enabled: true},
			wantErr:     domain.ErrInvalidReminder,
			wantPending: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			stale := &domain.Reminder{ID: "r-1", Time: domain.TimeOfDay{Hour: 9}, Enabled: true}
			if _, err := f.sched.Resync(ctx, stale); err != nil {
				t.Fatalf("resync: %v", err)
			}

			if tt.input.ID != "" {
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, r *domain.Reminder) error {
						if r.ID != tt.input.ID {
							t.Errorf("id: got %q, want %q", r.ID, tt.input.ID)
						}
						if r.Time != (domain.TimeOfDay{Hour: 18, Minute: 30}) {
							t.Errorf("time: got %v, want 18:30", r.Time)
						}
						return tt.repoErr
					})
			}
			f.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)

			saved, err := f.svc.Update(ctx, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error: got %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			} else if saved.Schedule == nil || len(saved.Schedule.Scheduled) != tt.wantPending {
				t.Errorf("schedule: got %+v", saved.Schedule)
			}

			if got := len(f.pending(t)); got != tt.wantPending {
				t.Errorf("pending: got %d, want %d", got, tt.wantPending)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reminder := &domain.Reminder{ID: "r-1", Time: domain.TimeOfDay{Hour: 9}, RepeatDays: []domain.Weekday{domain.Monday, domain.Friday}, Enabled: true}
	if _, err := f.sched.Resync(ctx, reminder); err != nil {
		t.Fatalf("resync: %v", err)
	}

	f.repo.EXPECT().Delete(gomock.Any(), "r-1").Return(nil)
	f.repo.EXPECT().Delete(gomock.Any(), "missing").Return(domain.ErrReminderNotFound)

	if err := f.svc.Delete(ctx, "r-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(f.pending(t)); got != 0 {
		t.Errorf("pending after delete: got %d, want 0", got)
	}

	if err := f.svc.Delete(ctx, "missing"); !errors.Is(err, domain.ErrReminderNotFound) {
		t.Errorf("error: got %v, want ErrReminderNotFound", err)
	}
}

func TestToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reminder := &domain.Reminder{ID: "r-1", Time: domain.TimeOfDay{Hour: 9}, Enabled: true}
	if _, err := f.sched.Resync(ctx, reminder); err != nil {
		t.Fatalf("resync: %v", err)
	}

	off := reminder.Clone()
	off.Enabled = false
	on := reminder.Clone()

	gomock.InOrder(
		f.repo.EXPECT().Toggle(gomock.Any(), "r-1").Return(off, nil),
		f.repo.EXPECT().Toggle(gomock.Any(), "r-1").Return(on, nil),
	)

	saved, err := f.svc.Toggle(ctx, "r-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Reminder.Enabled {
		t.Error("expected disabled reminder")
	}
	if got := len(f.pending(t)); got != 0 {
		t.Errorf("pending after disabling: got %d, want 0", got)
	}

	if _, err := f.svc.Toggle(ctx, "r-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(f.pending(t)); got != 1 {
		t.Errorf("pending after enabling: got %d, want 1", got)
	}
}

func TestDisableAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reminders := []*domain.Reminder{
		{ID: "a", Time: domain.TimeOfDay{Hour: 7}, Enabled: true},
		{ID: "b", Time: domain.TimeOfDay{Hour: 8}, RepeatDays: []domain.Weekday{domain.Monday, domain.Tuesday}, Enabled: true},
		{ID: "c", Time: domain.TimeOfDay{Hour: 9}, RepeatDays: []domain.Weekday{domain.Sunday}, Enabled: true},
	}
	if _, err := f.sched.ResyncAll(ctx, reminders); err != nil {
		t.Fatalf("resync all: %v", err)
	}
	if got := len(f.pending(t)); got != 4 {
		t.Fatalf("pending before: got %d, want 4", got)
	}

	disabled := make([]*domain.Reminder, 0, len(reminders))
	for _, r := range reminders {
		c := r.Clone()
		c.Enabled = false
		disabled = append(disabled, c)
	}
	f.repo.EXPECT().DisableAll(gomock.Any()).Return(disabled, nil)

	changed, err := f.svc.DisableAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changed) != 3 {
		t.Errorf("changed: got %d, want 3", len(changed))
	}
	if got := len(f.pending(t)); got != 0 {
		t.Errorf("pending after disable all: got %d, want 0", got)
	}
}

func TestList_Summaries(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().List(gomock.Any()).Return([]*domain.Reminder{
		{ID: "late", Time: domain.TimeOfDay{Hour: 21, Minute: 5}, Enabled: false},
		{
			ID:         "early",
			Time:       domain.TimeOfDay{Hour: 7, Minute: 30},
			RepeatDays: []domain.Weekday{domain.Tuesday, domain.Thursday},
			Enabled:    true,
			Filter:     &domain.QuestionFilter{Difficulties: []domain.Difficulty{domain.DifficultyEasy}},
		},
	}, nil)

	got, err := f.svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Rows follow the repository's order, not the time of day.
	want := []Summary{
		{ID: "late", Time: "21:05", RepeatLabels: []string{"Once"}, Enabled: false, HasFilter: false},
		{ID: "early", Time: "07:30", RepeatLabels: []string{"Tue", "Thu"}, Enabled: true, HasFilter: true},
	}

	if len(got) != len(want) {
		t.Fatalf("len: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Time != want[i].Time ||
			!slices.Equal(got[i].RepeatLabels, want[i].RepeatLabels) ||
			got[i].Enabled != want[i].Enabled || got[i].HasFilter != want[i].HasFilter {
			t.Errorf("summary %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestObserve(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan domain.ReminderChange, 1)
	first := []*domain.Reminder{{ID: "a", Time: domain.TimeOfDay{Hour: 8}, Enabled: true}}
	second := append(slices.Clone(first), &domain.Reminder{ID: "b", Time: domain.TimeOfDay{Hour: 9}, Enabled: true})

	f.repo.EXPECT().Subscribe(gomock.Any()).Return((<-chan domain.ReminderChange)(changes), nil)
	gomock.InOrder(
		f.repo.EXPECT().List(gomock.Any()).Return(first, nil),
		f.repo.EXPECT().List(gomock.Any()).Return(second, nil),
	)

	snapshots, err := f.svc.Observe(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	next := func() []Summary {
		select {
		case s := <-snapshots:
			return s
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for snapshot")
		}
		return nil
	}

	if got := next(); len(got) != 1 {
		t.Errorf("initial snapshot: got %d rows, want 1", len(got))
	}

	changes <- domain.ReminderChange{Kind: domain.ChangeSaved, IDs: []string{"b"}}

	if got := next(); len(got) != 2 {
		t.Errorf("second snapshot: got %d rows, want 2", len(got))
	}

	close(changes)
	select {
	case _, ok := <-snapshots:
		if ok {
			t.Error("expected closed channel after change feed ended")
		}
	case <-time.After(time.Second):
		t.Fatal("snapshot channel not closed")
	}
}

func TestReconcile(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().List(gomock.Any()).Return([]*domain.Reminder{
		{ID: "a", Time: domain.TimeOfDay{Hour: 8}, Enabled: true},
		{ID: "b", Time: domain.TimeOfDay{Hour: 9}, RepeatDays: []domain.Weekday{domain.Wednesday}, Enabled: true},
		{ID: "c", Time: domain.TimeOfDay{Hour: 9}, Enabled: false},
	}, nil)

	if err := f.svc.Reconcile(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(f.pending(t)); got != 2 {
		t.Errorf("pending: got %d, want 2", got)
	}
}
