package domain

import "errors"

var (
	ErrReminderNotFound = errors.New("reminder not found")
	ErrInvalidReminder  = errors.New("invalid reminder")
	ErrInvalidWeekday   = errors.New("weekday must be between 1 and 7")
	ErrInvalidTimeOfDay = errors.New("time of day out of range")
	ErrReminderConflict = errors.New("reminder modified concurrently")
	ErrQuestionNotFound = errors.New("question not found")
	ErrInvalidTrigger   = errors.New("invalid trigger")
)
