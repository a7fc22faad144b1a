package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
	"github.com/KasumiMercury/primind-practice-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-practice-reminder/internal/observability/tracing"
)

const (
	CategoryID        = "reminders"
	ActionOpenProblem = "open-problem"

	NotificationTitle = "Time to practice coding again!"
	NotificationBody  = "A coding problem is waiting for you to solve"

	resyncAllConcurrency = 4
)

// Failure is a trigger the notification center refused. It never rolls back the
// reminder or its sibling triggers.
type Failure struct {
	TriggerID string
	Fire      domain.FireSpec
	Err       error
}

type Result struct {
	ReminderID string
	Retracted  int
	Scheduled  []string
	Failures   []Failure
	// Skipped is set when notifications are not authorized: old triggers are still
	// retracted but nothing new is registered.
	Skipped bool
}

// Err joins the per-trigger failures.
func (r *Result) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("trigger %s: %w", f.TriggerID, f.Err))
	}
	return errors.Join(errs...)
}

// Locker serializes resyncs of one reminder id. The lock must cover every process that
// shares the notification center.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type Option func(*Service)

// WithLocker replaces the in-process lock, e.g. with a Redis lock when several
// instances share one notification center.
func WithLocker(l Locker) Option {
	return func(s *Service) {
		if l != nil {
			s.locks = l
		}
	}
}

func WithMetrics(m *metrics.SchedulerMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

type Service struct {
	center     domain.NotificationCenter
	authorizer domain.Authorizer
	sink       domain.NavigationSink
	metrics    *metrics.SchedulerMetrics
	newID      func() string
	locks      Locker

	initOnce sync.Once
	initErr  error

	deniedSurfaced atomic.Bool
}

func NewService(center domain.NotificationCenter, authorizer domain.Authorizer, sink domain.NavigationSink, opts ...Option) *Service {
	s := &Service{
		center:     center,
		authorizer: authorizer,
		sink:       sink,
		newID:      uuid.NewString,
		locks:      newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func ReminderCategory() domain.Category {
	return domain.Category{
		ID: CategoryID,
		Actions: []domain.Action{
			{ID: ActionOpenProblem, Title: "open problem", Foreground: true},
		},
		CustomDismiss: true,
	}
}

// Init registers the reminder category and the delegate. Later calls return the first result.
func (s *Service) Init(ctx context.Context, delegate domain.NotificationDelegate) error {
	s.initOnce.Do(func() {
		if delegate != nil {
			s.center.SetDelegate(delegate)
		}
		if err := s.center.SetCategories(ctx, []domain.Category{ReminderCategory()}); err != nil {
			s.initErr = fmt.Errorf("failed to register notification categories: %w", err)
			return
		}
		slog.InfoContext(ctx, "notification scheduler initialized",
			slog.String("event", "scheduler.init"),
			slog.String("category", CategoryID),
		)
	})
	return s.initErr
}

// Resync retracts every pending trigger for the reminder and, when it is enabled and
// notifications are authorized, registers its triggers again. Calls for the same id
// run one at a time.
func (s *Service) Resync(ctx context.Context, reminder *domain.Reminder) (*Result, error) {
	if reminder == nil || reminder.ID == "" {
		return nil, fmt.Errorf("%w: reminder id is required", domain.ErrInvalidReminder)
	}

	start := time.Now()
	ctx, span := tracing.StartResyncSpan(ctx, reminder.ID, reminder.Enabled, len(reminder.RepeatDays))
	defer span.End()

	unlock, err := s.locks.Lock(ctx, reminder.ID)
	if err != nil {
		err = fmt.Errorf("failed to lock reminder %s: %w", reminder.ID, err)
		tracing.RecordError(span, err)
		return nil, err
	}
	defer unlock()

	result := &Result{ReminderID: reminder.ID}

	retracted, err := s.retract(ctx, reminder.ID)
	if err != nil {
		tracing.RecordResyncResult(span, 0, 0, 0, err)
		return nil, err
	}
	result.Retracted = retracted

	if reminder.Enabled {
		permitted, err := s.permitted(ctx)
		if err != nil {
			tracing.RecordResyncResult(span, result.Retracted, 0, 0, err)
			return nil, err
		}
		if permitted {
			s.schedule(ctx, reminder, result)
		} else {
			result.Skipped = true
			slog.InfoContext(ctx, "scheduling skipped, notifications not authorized",
				slog.String("reminder_id", reminder.ID),
				slog.Int("retracted", result.Retracted),
			)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordTriggersRetracted(ctx, result.Retracted)
		s.metrics.RecordResyncDuration(ctx, reminder.Enabled, time.Since(start))
	}

	tracing.RecordResyncResult(span, result.Retracted, len(result.Scheduled), len(result.Failures), nil)

	slog.DebugContext(ctx, "reminder resynced",
		slog.String("reminder_id", reminder.ID),
		slog.Bool("enabled", reminder.Enabled),
		slog.Int("retracted", result.Retracted),
		slog.Int("scheduled", len(result.Scheduled)),
		slog.Int("failed", len(result.Failures)),
	)

	return result, nil
}

// ResyncAll resyncs each reminder independently. Results keep the input order; a reminder
// whose resync failed outright has a nil result.
func (s *Service) ResyncAll(ctx context.Context, reminders []*domain.Reminder) ([]*Result, error) {
	results := make([]*Result, len(reminders))
	errs := make([]error, len(reminders))

	var g errgroup.Group
	g.SetLimit(resyncAllConcurrency)

	for i, r := range reminders {
		g.Go(func() error {
			res, err := s.Resync(ctx, r)
			if err != nil {
				id := ""
				if r != nil {
					id = r.ID
				}
				errs[i] = fmt.Errorf("resync %s: %w", id, err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

// permitted reports whether triggers may be registered. A denial reaches the sink once
// until authorization is granted again.
func (s *Service) permitted(ctx context.Context) (bool, error) {
	if s.authorizer == nil {
		return true, nil
	}

	status, err := s.authorizer.AuthorizationStatus(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read authorization status: %w", err)
	}

	if status == domain.AuthorizationDenied {
		if s.deniedSurfaced.CompareAndSwap(false, true) && s.sink != nil {
			s.sink.PublishPermissionDenied(ctx)
		}
		return false, nil
	}

	s.deniedSurfaced.Store(false)
	return true, nil
}

func (s *Service) retract(ctx context.Context, reminderID string) (int, error) {
	ctx, span := tracing.StartRetractSpan(ctx, reminderID)
	defer span.End()

	pending, err := s.center.ListPending(ctx)
	if err != nil {
		err = fmt.Errorf("failed to list pending triggers: %w", err)
		tracing.RecordError(span, err)
		return 0, err
	}

	var ids []string
	for i := range pending {
		if id, ok := pending[i].ReminderID(); ok && id == reminderID {
			ids = append(ids, pending[i].ID)
		}
	}

	if len(ids) == 0 {
		tracing.RecordError(span, nil)
		return 0, nil
	}

	if err := s.center.Remove(ctx, ids); err != nil {
		err = fmt.Errorf("failed to remove pending triggers: %w", err)
		tracing.RecordError(span, err)
		return 0, err
	}

	tracing.RecordError(span, nil)
	return len(ids), nil
}

func (s *Service) schedule(ctx context.Context, reminder *domain.Reminder, result *Result) {
	content := domain.Content{
		Title:      NotificationTitle,
		Body:       NotificationBody,
		CategoryID: CategoryID,
		Payload:    map[string]string{domain.PayloadReminderIDKey: reminder.ID},
	}

	for _, fire := range FireSpecs(reminder) {
		trigger := domain.Trigger{
			ID:   s.newID(),
			Fire: fire,
			Content: domain.Content{
				Title:      content.Title,
				Body:       content.Body,
				CategoryID: content.CategoryID,
				Payload:    maps.Clone(content.Payload),
			},
		}

		if err := s.center.Add(ctx, trigger); err != nil {
			slog.WarnContext(ctx, "failed to register trigger",
				slog.String("reminder_id", reminder.ID),
				slog.String("trigger_id", trigger.ID),
				slog.String("fire_kind", string(fire.Kind)),
				slog.String("error", err.Error()),
			)
			result.Failures = append(result.Failures, Failure{
				TriggerID: trigger.ID,
				Fire:      fire,
				Err:       err,
			})
			if s.metrics != nil {
				s.metrics.RecordTriggerFailed(ctx, string(fire.Kind))
			}
			continue
		}

		result.Scheduled = append(result.Scheduled, trigger.ID)
		if s.metrics != nil {
			s.metrics.RecordTriggersScheduled(ctx, string(fire.Kind), 1)
		}
	}
}

// FireSpecs expands a reminder into one-shot fire specs: the next hour:minute when it
// does not repeat, otherwise one per weekday.
func FireSpecs(reminder *domain.Reminder) []domain.FireSpec {
	if !reminder.Repeats() {
		return []domain.FireSpec{{
			Kind:   domain.FireTimeOfDay,
			Hour:   reminder.Time.Hour,
			Minute: reminder.Time.Minute,
		}}
	}

	specs := make([]domain.FireSpec, 0, len(reminder.RepeatDays))
	for _, day := range reminder.RepeatDays {
		specs = append(specs, domain.FireSpec{
			Kind:    domain.FireWeekday,
			Hour:    reminder.Time.Hour,
			Minute:  reminder.Time.Minute,
			Weekday: day,
		})
	}
	return specs
}
