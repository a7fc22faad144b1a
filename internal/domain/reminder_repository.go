package domain

import "context"

//go:generate mockgen -source=reminder_repository.go -destination=reminder_repository_mock.go -package=domain

type ChangeKind string

const (
	ChangeSaved   ChangeKind = "saved"
	ChangeDeleted ChangeKind = "deleted"
	ChangeBulk    ChangeKind = "bulk"
)

type ReminderChange struct {
	Kind ChangeKind `json:"kind"`
	IDs  []string   `json:"ids"`
}

type ReminderRepository interface {
	// Save inserts or replaces by ID and assigns a new ID when it is empty.
	Save(ctx context.Context, reminder *Reminder) error
	Get(ctx context.Context, id string) (*Reminder, error)
	List(ctx context.Context) ([]*Reminder, error)
	// Update replaces an existing reminder and returns ErrReminderNotFound when it is gone.
	Update(ctx context.Context, reminder *Reminder) error
	// Delete returns ErrReminderNotFound, and publishes no change, when nothing was removed.
	Delete(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string) (*Reminder, error)
	// DisableAll disables every enabled reminder in one transaction and returns those it changed.
	DisableAll(ctx context.Context) ([]*Reminder, error)
	Subscribe(ctx context.Context) (<-chan ReminderChange, error)
}
