package domain

import (
	"fmt"
	"slices"
	"time"
)

// TimeOfDay is the wall-clock part of a reminder. Calendar date and seconds are not kept.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// TimeOfDayFrom drops everything below the minute so triggers built from the same
// reminder always match the same instant.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

func (t TimeOfDay) Validate() error {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, t.Hour, t.Minute)
	}
	return nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Weekday uses ISO numbering: 1 is Monday, 7 is Sunday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayLabels = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

func (w Weekday) Label() string {
	if !w.Valid() {
		return ""
	}
	return weekdayLabels[w]
}

func (w Weekday) TimeWeekday() time.Weekday {
	return time.Weekday(int(w) % 7)
}

func WeekdayOf(d time.Weekday) Weekday {
	if d == time.Sunday {
		return Sunday
	}
	return Weekday(d)
}

type Reminder struct {
	ID         string          `json:"id"`
	Time       TimeOfDay       `json:"date"`
	RepeatDays []Weekday       `json:"repeat_days"`
	Enabled    bool            `json:"enabled"`
	Filter     *QuestionFilter `json:"filter,omitempty"`
}

// Repeats reports whether the reminder fires on specific weekdays rather than once.
func (r *Reminder) Repeats() bool {
	return len(r.RepeatDays) > 0
}

// Normalize sorts and de-duplicates RepeatDays and validates every field.
func (r *Reminder) Normalize() error {
	if err := r.Time.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReminder, err)
	}

	days := make([]Weekday, 0, len(r.RepeatDays))
	for _, d := range r.RepeatDays {
		if !d.Valid() {
			return fmt.Errorf("%w: %w: %d", ErrInvalidReminder, ErrInvalidWeekday, d)
		}
		days = append(days, d)
	}
	slices.Sort(days)
	r.RepeatDays = slices.Compact(days)

	if r.Filter != nil {
		for _, d := range r.Filter.Difficulties {
			if !d.Valid() {
				return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidReminder, d)
			}
		}
		if r.Filter.IsEmpty() {
			r.Filter = nil
		}
	}

	return nil
}

func (r *Reminder) Clone() *Reminder {
	if r == nil {
		return nil
	}
	c := *r
	c.RepeatDays = slices.Clone(r.RepeatDays)
	if r.Filter != nil {
		f := r.Filter.Clone()
		c.Filter = &f
	}
	return &c
}
