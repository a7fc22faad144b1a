package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
	"github.com/KasumiMercury/primind-practice-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-practice-reminder/internal/observability/tracing"
	"github.com/KasumiMercury/primind-practice-reminder/internal/service/scheduler"
)

const (
	OutcomeNavigate   = "navigate"
	OutcomeStale      = "stale"
	OutcomeNoMatch    = "no_match"
	OutcomeNoReminder = "no_reminder"
	OutcomeError      = "error"
)

// Picker returns an index in [0, n).
type Picker func(n int) int

// Rearmer re-registers the triggers of a reminder after one of them fired.
type Rearmer interface {
	Resync(ctx context.Context, reminder *domain.Reminder) (*scheduler.Result, error)
}

type Option func(*Service)

func WithPicker(p Picker) Option {
	return func(s *Service) {
		s.pick = p
	}
}

func WithMetrics(m *metrics.SchedulerMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRearm resyncs a repeating reminder whenever one of its one-shot triggers fires.
func WithRearm(r Rearmer) Option {
	return func(s *Service) {
		s.rearm = r
	}
}

// Service turns fired and activated notifications into navigation.
type Service struct {
	reminders domain.ReminderRepository
	questions domain.QuestionStore
	sink      domain.NavigationSink
	pick      Picker
	metrics   *metrics.SchedulerMetrics
	rearm     Rearmer
}

func NewService(reminders domain.ReminderRepository, questions domain.QuestionStore, sink domain.NavigationSink, opts ...Option) *Service {
	s := &Service{
		reminders: reminders,
		questions: questions,
		sink:      sink,
		pick:      rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnActivated resolves the payload of an activated notification to a random question
// matching the reminder's filter. A missing reminder or an empty match yields a nil
// intent without error.
func (s *Service) OnActivated(ctx context.Context, payload map[string]string) (*domain.NavigationIntent, error) {
	reminderID, ok := domain.ReminderIDFromPayload(payload)
	if !ok {
		s.record(ctx, OutcomeNoReminder)
		return nil, nil
	}

	ctx, span := tracing.StartResolveSpan(ctx, reminderID)
	defer span.End()

	reminder, err := s.reminders.Get(ctx, reminderID)
	if err != nil {
		if errors.Is(err, domain.ErrReminderNotFound) {
			slog.InfoContext(ctx, "activated notification for deleted reminder",
				slog.String("reminder_id", reminderID),
			)
			s.record(ctx, OutcomeStale)
			tracing.RecordError(span, nil)
			return nil, nil
		}
		err = fmt.Errorf("failed to load reminder: %w", err)
		s.record(ctx, OutcomeError)
		tracing.RecordError(span, err)
		return nil, err
	}

	s.rearmReminder(ctx, reminder)

	ids, err := s.questions.QueryMatching(ctx, reminder.Filter)
	if err != nil {
		err = fmt.Errorf("failed to query matching questions: %w", err)
		s.record(ctx, OutcomeError)
		tracing.RecordError(span, err)
		return nil, err
	}

	if len(ids) == 0 {
		slog.InfoContext(ctx, "no question matches reminder filter",
			slog.String("reminder_id", reminderID),
		)
		s.record(ctx, OutcomeNoMatch)
		tracing.RecordError(span, nil)
		return nil, nil
	}

	intent := &domain.NavigationIntent{
		QuestionID: ids[s.pick(len(ids))],
		ReminderID: reminderID,
	}

	if s.sink != nil {
		s.sink.PublishIntent(ctx, *intent)
	}

	slog.InfoContext(ctx, "notification resolved to question",
		slog.String("reminder_id", reminderID),
		slog.Int64("question_id", intent.QuestionID),
		slog.Int("candidates", len(ids)),
	)
	s.record(ctx, OutcomeNavigate)
	tracing.RecordError(span, nil)

	return intent, nil
}

// OnPresented always shows the notification while the app is running.
func (s *Service) OnPresented(ctx context.Context, notification domain.Notification) domain.PresentationOptions {
	if s.sink != nil {
		s.sink.PublishBanner(ctx, notification)
	}

	if s.rearm != nil {
		if id, ok := notification.Trigger.ReminderID(); ok {
			reminder, err := s.reminders.Get(ctx, id)
			if err == nil {
				s.rearmReminder(ctx, reminder)
			} else if !errors.Is(err, domain.ErrReminderNotFound) {
				slog.WarnContext(ctx, "failed to load reminder for re-arm",
					slog.String("reminder_id", id),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return domain.PresentationOptions{domain.PresentAlert}
}

func (s *Service) rearmReminder(ctx context.Context, reminder *domain.Reminder) {
	if s.rearm == nil || !reminder.Enabled || !reminder.Repeats() {
		return
	}
	if _, err := s.rearm.Resync(ctx, reminder); err != nil {
		slog.WarnContext(ctx, "failed to re-arm reminder",
			slog.String("reminder_id", reminder.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) record(ctx context.Context, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordResolution(ctx, outcome)
	}
}
