package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
	"github.com/KasumiMercury/primind-practice-reminder/internal/service/scheduler"
)

// Scheduler keeps the notification center in step with stored reminders.
type Scheduler interface {
	Resync(ctx context.Context, reminder *domain.Reminder) (*scheduler.Result, error)
	ResyncAll(ctx context.Context, reminders []*domain.Reminder) ([]*scheduler.Result, error)
}

type SaveInput struct {
	ID         string
	Time       time.Time
	RepeatDays []domain.Weekday
	Enabled    bool
	Filter     *domain.QuestionFilter
}

// Saved is a persisted reminder with the outcome of scheduling it. Schedule is nil when
// the notification center could not be reached; the reminder is stored regardless.
type Saved struct {
	Reminder *domain.Reminder
	Schedule *scheduler.Result
}

type Service struct {
	repo      domain.ReminderRepository
	scheduler Scheduler
	location  *time.Location
}

func NewService(repo domain.ReminderRepository, sched Scheduler, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:      repo,
		scheduler: sched,
		location:  loc,
	}
}

// Save persists the reminder, dropping seconds from its time, and reschedules it.
func (s *Service) Save(ctx context.Context, in SaveInput) (*Saved, error) {
	reminder, err := s.build(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to save reminder: %w", err)
	}

	slog.InfoContext(ctx, "reminder saved",
		slog.String("reminder_id", reminder.ID),
		slog.String("time", reminder.Time.String()),
		slog.Bool("enabled", reminder.Enabled),
	)

	return &Saved{
		Reminder: reminder,
		Schedule: s.resync(ctx, reminder),
	}, nil
}

// Update replaces an existing reminder and reschedules it. A reminder deleted in the
// meantime stays deleted and ErrReminderNotFound is returned.
func (s *Service) Update(ctx context.Context, in SaveInput) (*Saved, error) {
	if in.ID == "" {
		return nil, fmt.Errorf("%w: reminder id is required", domain.ErrInvalidReminder)
	}

	reminder, err := s.build(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, reminder); err != nil {
		if errors.Is(err, domain.ErrReminderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}

	slog.InfoContext(ctx, "reminder updated",
		slog.String("reminder_id", reminder.ID),
		slog.String("time", reminder.Time.String()),
		slog.Bool("enabled", reminder.Enabled),
	)

	return &Saved{
		Reminder: reminder,
		Schedule: s.resync(ctx, reminder),
	}, nil
}

func (s *Service) build(in SaveInput) (*domain.Reminder, error) {
	reminder := &domain.Reminder{
		ID:         in.ID,
		Time:       domain.TimeOfDayFrom(in.Time.In(s.location)),
		RepeatDays: slices.Clone(in.RepeatDays),
		Enabled:    in.Enabled,
	}
	if in.Filter != nil {
		f := in.Filter.Clone()
		reminder.Filter = &f
	}

	if err := reminder.Normalize(); err != nil {
		return nil, err
	}
	return reminder, nil
}

// Delete removes the reminder and retracts every trigger it still has pending.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "reminder deleted",
		slog.String("reminder_id", id),
	)

	s.resync(ctx, &domain.Reminder{ID: id, Enabled: false})
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Reminder, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Summary, error) {
	reminders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return Summarize(reminders), nil
}

// Observe emits the current list and a fresh one after every committed change. The
// channel is closed when ctx is done or the change feed ends.
func (s *Service) Observe(ctx context.Context) (<-chan []Summary, error) {
	changes, err := s.repo.Subscribe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to reminder changes: %w", err)
	}

	initial, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan []Summary, 1)
	out <- initial

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				snapshot, err := s.List(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					slog.WarnContext(ctx, "failed to refresh reminder list",
						slog.String("error", err.Error()),
					)
					continue
				}
				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (s *Service) Toggle(ctx context.Context, id string) (*Saved, error) {
	reminder, err := s.repo.Toggle(ctx, id)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "reminder toggled",
		slog.String("reminder_id", id),
		slog.Bool("enabled", reminder.Enabled),
	)

	return &Saved{
		Reminder: reminder,
		Schedule: s.resync(ctx, reminder),
	}, nil
}

// DisableAll disables every enabled reminder in one write and retracts their triggers.
func (s *Service) DisableAll(ctx context.Context) ([]*domain.Reminder, error) {
	changed, err := s.repo.DisableAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to disable reminders: %w", err)
	}

	if _, err := s.scheduler.ResyncAll(ctx, changed); err != nil {
		slog.WarnContext(ctx, "failed to retract triggers of disabled reminders",
			slog.String("error", err.Error()),
		)
	}

	slog.InfoContext(ctx, "reminders disabled",
		slog.Int("count", len(changed)),
	)

	return changed, nil
}

// Reconcile resyncs every stored reminder.
func (s *Service) Reconcile(ctx context.Context) error {
	reminders, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list reminders: %w", err)
	}

	results, err := s.scheduler.ResyncAll(ctx, reminders)

	scheduled, failed := 0, 0
	for _, r := range results {
		if r == nil {
			continue
		}
		scheduled += len(r.Scheduled)
		failed += len(r.Failures)
	}

	slog.InfoContext(ctx, "reminders reconciled",
		slog.String("event", "reminder.reconcile"),
		slog.Int("reminders", len(reminders)),
		slog.Int("scheduled", scheduled),
		slog.Int("failed", failed),
	)

	return err
}

func (s *Service) resync(ctx context.Context, reminder *domain.Reminder) *scheduler.Result {
	result, err := s.scheduler.Resync(ctx, reminder)
	if err != nil {
		slog.WarnContext(ctx, "failed to resync reminder",
			slog.String("reminder_id", reminder.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if ferr := result.Err(); ferr != nil {
		slog.WarnContext(ctx, "some reminder triggers were not registered",
			slog.String("reminder_id", reminder.ID),
			slog.Int("failed", len(result.Failures)),
			slog.String("error", ferr.Error()),
		)
	}
	return result
}

// Summary is one row of the reminders list.
type Summary struct {
	ID           string   `json:"id"`
	Time         string   `json:"time"`
	RepeatLabels []string `json:"repeat_labels"`
	Enabled      bool     `json:"enabled"`
	HasFilter    bool     `json:"has_filter"`
}

const onceLabel = "Once"

// Summarize keeps the repository's order.
func Summarize(reminders []*domain.Reminder) []Summary {
	out := make([]Summary, 0, len(reminders))
	for _, r := range reminders {
		out = append(out, summarize(r))
	}
	return out
}

func summarize(r *domain.Reminder) Summary {
	labels := []string{onceLabel}
	if r.Repeats() {
		labels = make([]string, 0, len(r.RepeatDays))
		for _, d := range r.RepeatDays {
			labels = append(labels, d.Label())
		}
	}

	return Summary{
		ID:           r.ID,
		Time:         r.Time.String(),
		RepeatLabels: labels,
		Enabled:      r.Enabled,
		HasFilter:    r.Filter != nil && !r.Filter.IsEmpty(),
	}
}
