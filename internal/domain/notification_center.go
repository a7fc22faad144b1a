package domain

import "context"

//go:generate mockgen -source=notification_center.go -destination=notification_center_mock.go -package=domain

// NotificationCenter is the backend that holds pending triggers and fires them. It has
// no cancel-by-reminder primitive: callers list, filter by payload and remove.
type NotificationCenter interface {
	ListPending(ctx context.Context) ([]Trigger, error)
	Remove(ctx context.Context, ids []string) error
	Add(ctx context.Context, trigger Trigger) error
	SetCategories(ctx context.Context, categories []Category) error
	SetDelegate(delegate NotificationDelegate)
}

// NotificationDelegate is told about triggers that fire while the app is running.
type NotificationDelegate interface {
	OnPresented(ctx context.Context, notification Notification) PresentationOptions
}

type AuthorizationStatus string

const (
	AuthorizationNotDetermined AuthorizationStatus = "not_determined"
	AuthorizationGranted       AuthorizationStatus = "granted"
	AuthorizationDenied        AuthorizationStatus = "denied"
)

type Authorizer interface {
	AuthorizationStatus(ctx context.Context) (AuthorizationStatus, error)
	SetAuthorization(ctx context.Context, status AuthorizationStatus) error
}

type NavigationIntent struct {
	QuestionID int64  `json:"question_id"`
	ReminderID string `json:"reminder_id"`
}

// NavigationSink is the presentation side: it surfaces intents, banners and the
// permission prompt.
type NavigationSink interface {
	PublishIntent(ctx context.Context, intent NavigationIntent)
	PublishBanner(ctx context.Context, notification Notification)
	PublishPermissionDenied(ctx context.Context)
}
