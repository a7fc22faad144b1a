//go:build gcloud

package notifycenter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"sync"
	"time"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	taskspb "cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
)

var ErrNoDelegate = errors.New("no notification delegate registered")

// CloudTasks keeps each pending trigger as a Cloud Task whose HTTP body is the trigger
// itself. The queue calls TargetURL when the trigger is due.
type CloudTasks struct {
	client     *cloudtasks.Client
	queuePath  string
	targetURL  string
	location   *time.Location
	maxRetries int
	now        func() time.Time

	mu         sync.RWMutex
	categories []domain.Category
	delegate   domain.NotificationDelegate
}

type CloudTasksConfig struct {
	ProjectID  string
	LocationID string
	QueueID    string
	TargetURL  string
	MaxRetries int
	Location   *time.Location
}

func NewCloudTasks(ctx context.Context, cfg CloudTasksConfig) (*CloudTasks, error) {
	client, err := cloudtasks.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud tasks client: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &CloudTasks{
		client:     client,
		queuePath:  fmt.Sprintf("projects/%s/locations/%s/queues/%s", cfg.ProjectID, cfg.LocationID, cfg.QueueID),
		targetURL:  cfg.TargetURL,
		location:   loc,
		maxRetries: maxRetries,
		now:        time.Now,
	}, nil
}

func (c *CloudTasks) ListPending(ctx context.Context) ([]domain.Trigger, error) {
	it := c.client.ListTasks(ctx, &taskspb.ListTasksRequest{
		Parent:       c.queuePath,
		ResponseView: taskspb.Task_FULL,
	})

	triggers := make([]domain.Trigger, 0)
	for {
		task, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list cloud tasks: %w", err)
		}

		body := task.GetHttpRequest().GetBody()
		if len(body) == 0 {
			continue
		}

		var trigger domain.Trigger
		if err := json.Unmarshal(body, &trigger); err != nil {
			slog.WarnContext(ctx, "skipping foreign cloud task",
				slog.String("task_name", task.GetName()),
			)
			continue
		}
		if trigger.ID == "" {
			trigger.ID = path.Base(task.GetName())
		}
		triggers = append(triggers, trigger)
	}

	return triggers, nil
}

func (c *CloudTasks) Remove(ctx context.Context, ids []string) error {
	var errs []error
	for _, id := range ids {
		if err := c.withRetry(ctx, "delete", id, func() error {
			return c.deleteTask(ctx, id)
		}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *CloudTasks) Add(ctx context.Context, trigger domain.Trigger) error {
	if trigger.ID == "" {
		return fmt.Errorf("%w: empty id", domain.ErrInvalidTrigger)
	}
	if err := trigger.Fire.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(trigger)
	if err != nil {
		return ErrInvalidTriggerData
	}

	req := &taskspb.CreateTaskRequest{
		Parent: c.queuePath,
		Task: &taskspb.Task{
			Name:         c.queuePath + "/tasks/" + trigger.ID,
			ScheduleTime: timestamppb.New(trigger.Fire.Next(time.Now(), c.location)),
			MessageType: &taskspb.Task_HttpRequest{
				HttpRequest: &taskspb.HttpRequest{
					HttpMethod: taskspb.HttpMethod_POST,
					Url:        c.targetURL,
					Headers: map[string]string{
						"Content-Type": "application/json",
					},
					Body: body,
				},
			},
		},
	}

	return c.withRetry(ctx, "create", trigger.ID, func() error {
		created, err := c.client.CreateTask(ctx, req)
		if err != nil {
			if status.Code(err) == codes.AlreadyExists {
				return nil
			}
			return fmt.Errorf("failed to create cloud task: %w", err)
		}

		slog.DebugContext(ctx, "trigger registered to Cloud Tasks",
			slog.String("task_name", created.GetName()),
			slog.Time("schedule_time", created.GetScheduleTime().AsTime()),
		)
		return nil
	})
}

func (c *CloudTasks) SetCategories(_ context.Context, categories []domain.Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.categories = categories
	return nil
}

func (c *CloudTasks) SetDelegate(delegate domain.NotificationDelegate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.delegate = delegate
}

// Deliver hands a trigger pushed back by the queue to the delegate, the way in-process
// centers fire. Triggers of an unregistered category are still presented.
func (c *CloudTasks) Deliver(ctx context.Context, trigger domain.Trigger) (domain.Notification, error) {
	c.mu.RLock()
	delegate := c.delegate
	known := c.categories == nil || slices.ContainsFunc(c.categories, func(cat domain.Category) bool {
		return cat.ID == trigger.Content.CategoryID
	})
	c.mu.RUnlock()

	if delegate == nil {
		return domain.Notification{}, ErrNoDelegate
	}
	if !known {
		slog.WarnContext(ctx, "delivered trigger has an unregistered category",
			slog.String("trigger_id", trigger.ID),
			slog.String("category", trigger.Content.CategoryID),
		)
	}

	notification := domain.Notification{
		Trigger:     trigger,
		DeliveredAt: c.now(),
	}
	delegate.OnPresented(ctx, notification)
	return notification, nil
}

func (c *CloudTasks) Close() error {
	return c.client.Close()
}

func (c *CloudTasks) deleteTask(ctx context.Context, id string) error {
	err := c.client.DeleteTask(ctx, &taskspb.DeleteTaskRequest{
		Name: c.queuePath + "/tasks/" + id,
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			slog.DebugContext(ctx, "cloud task already gone",
				slog.String("trigger_id", id),
			)
			return nil
		}
		return fmt.Errorf("failed to delete cloud task: %w", err)
	}
	return nil
}

func (c *CloudTasks) withRetry(ctx context.Context, op, id string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
			slog.DebugContext(ctx, "retrying cloud task operation",
				slog.String("operation", op),
				slog.String("trigger_id", id),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("cloud task %s for %s failed after %d retries: %w", op, id, c.maxRetries, lastErr)
}
