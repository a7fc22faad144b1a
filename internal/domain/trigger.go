package domain

import (
	"fmt"
	"time"
)

// PayloadReminderIDKey is the payload entry that correlates a trigger with its reminder.
const PayloadReminderIDKey = "reminderId"

type FireKind string

const (
	FireAt        FireKind = "at"
	FireTimeOfDay FireKind = "time_of_day"
	FireWeekday   FireKind = "weekday"
)

// FireSpec describes when a trigger fires. For calendar kinds the center resolves the
// next matching instant in its own location.
type FireSpec struct {
	Kind    FireKind  `json:"kind"`
	At      time.Time `json:"at,omitempty"`
	Hour    int       `json:"hour"`
	Minute  int       `json:"minute"`
	Weekday Weekday   `json:"weekday,omitempty"`
	Repeats bool      `json:"repeats"`
}

func (f FireSpec) Validate() error {
	switch f.Kind {
	case FireAt:
		if f.At.IsZero() {
			return fmt.Errorf("%w: absolute trigger without time", ErrInvalidTrigger)
		}
		return nil
	case FireTimeOfDay:
	case FireWeekday:
		if !f.Weekday.Valid() {
			return fmt.Errorf("%w: %w", ErrInvalidTrigger, ErrInvalidWeekday)
		}
	default:
		return fmt.Errorf("%w: unknown fire kind %q", ErrInvalidTrigger, f.Kind)
	}

	if err := (TimeOfDay{Hour: f.Hour, Minute: f.Minute}).Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTrigger, err)
	}
	return nil
}

// Next returns the first instant strictly after `after` matching f.
// Absolute triggers return their instant unchanged even when it already passed.
func (f FireSpec) Next(after time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}

	if f.Kind == FireAt {
		return f.At
	}

	now := after.In(loc)
	candidate := time.Date(now.Year(), now.Month(), now.Day(), f.Hour, f.Minute, 0, 0, loc)

	if f.Kind == FireWeekday {
		diff := (int(f.Weekday.TimeWeekday()) - int(candidate.Weekday()) + 7) % 7
		candidate = candidate.AddDate(0, 0, diff)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate
	}

	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

type Content struct {
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	CategoryID string            `json:"category_id"`
	Payload    map[string]string `json:"payload"`
}

// Trigger is a single pending notification request owned by a NotificationCenter.
type Trigger struct {
	ID      string   `json:"id"`
	Fire    FireSpec `json:"fire"`
	Content Content  `json:"content"`
}

// ReminderID extracts the correlated reminder id from the payload.
func (t *Trigger) ReminderID() (string, bool) {
	return ReminderIDFromPayload(t.Content.Payload)
}

func ReminderIDFromPayload(payload map[string]string) (string, bool) {
	if payload == nil {
		return "", false
	}
	id, ok := payload[PayloadReminderIDKey]
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

type Action struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Foreground bool   `json:"foreground"`
}

type Category struct {
	ID            string   `json:"id"`
	Actions       []Action `json:"actions"`
	CustomDismiss bool     `json:"custom_dismiss"`
}

// Notification is a trigger that has fired.
type Notification struct {
	Trigger     Trigger   `json:"trigger"`
	DeliveredAt time.Time `json:"delivered_at"`
}

type PresentationOption string

const (
	PresentAlert PresentationOption = "alert"
	PresentSound PresentationOption = "sound"
	PresentBadge PresentationOption = "badge"
)

type PresentationOptions []PresentationOption

func (o PresentationOptions) Show() bool {
	return len(o) > 0
}
