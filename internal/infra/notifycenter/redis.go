package notifycenter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
)

const (
	pendingTriggersKey = "notify:pending"
	triggerScheduleKey = "notify:schedule"
	categoriesKey      = "notify:categories"

	defaultDispatchInterval = time.Second
)

var ErrInvalidTriggerData = errors.New("invalid trigger data")

// Redis stores pending triggers in a hash keyed by trigger id and indexes their next
// fire instant in a sorted set. Run dispatches due triggers to the delegate.
type Redis struct {
	client   *redis.Client
	location *time.Location
	interval time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	delegate domain.NotificationDelegate
}

type RedisConfig struct {
	Location         *time.Location
	DispatchInterval time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func NewRedis(client *redis.Client, cfg RedisConfig) *Redis {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	interval := cfg.DispatchInterval
	if interval <= 0 {
		interval = defaultDispatchInterval
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Redis{
		client:   client,
		location: loc,
		interval: interval,
		now:      now,
	}
}

func (r *Redis) ListPending(ctx context.Context) ([]domain.Trigger, error) {
	ids, err := r.client.ZRange(ctx, triggerScheduleKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list trigger schedule: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Trigger{}, nil
	}

	values, err := r.client.HMGet(ctx, pendingTriggersKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load pending triggers: %w", err)
	}

	triggers := make([]domain.Trigger, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Claimed by the dispatcher between the two reads.
			continue
		}

		var trigger domain.Trigger
		if err := json.Unmarshal([]byte(raw), &trigger); err != nil {
			slog.WarnContext(ctx, "skipping undecodable trigger",
				slog.String("trigger_id", ids[i]),
				slog.String("error", err.Error()),
			)
			continue
		}
		triggers = append(triggers, trigger)
	}

	return triggers, nil
}

func (r *Redis) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	members := make([]any, 0, len(ids))
	for _, id := range ids {
		members = append(members, id)
	}

	pipe := r.client.TxPipeline()
	pipe.HDel(ctx, pendingTriggersKey, ids...)
	pipe.ZRem(ctx, triggerScheduleKey, members...)

	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) Add(ctx context.Context, trigger domain.Trigger) error {
	if trigger.ID == "" {
		return fmt.Errorf("%w: empty id", domain.ErrInvalidTrigger)
	}
	if err := trigger.Fire.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(trigger)
	if err != nil {
		return ErrInvalidTriggerData
	}

	fireAt := trigger.Fire.Next(r.now(), r.location)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, pendingTriggersKey, trigger.ID, data)
	pipe.ZAdd(ctx, triggerScheduleKey, redis.Z{
		Score:  float64(fireAt.UnixMilli()),
		Member: trigger.ID,
	})

	_, err = pipe.Exec(ctx)
	return err
}

func (r *Redis) SetCategories(ctx context.Context, categories []domain.Category) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	return r.client.Set(ctx, categoriesKey, data, 0).Err()
}

func (r *Redis) Categories(ctx context.Context) ([]domain.Category, error) {
	data, err := r.client.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.Category{}, nil
		}
		return nil, err
	}

	var categories []domain.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

func (r *Redis) SetDelegate(delegate domain.NotificationDelegate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.delegate = delegate
}

// Run dispatches due triggers until ctx is cancelled.
func (r *Redis) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "notification dispatcher started",
		slog.Duration("interval", r.interval),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "notification dispatcher stopped")
			return nil
		case <-ticker.C:
			if _, err := r.DispatchDue(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.WarnContext(ctx, "notification dispatch failed",
					slog.String("event", "notify.dispatch.fail"),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// DispatchDue claims every trigger whose fire instant has passed and presents it.
// Claiming is a ZREM so concurrent dispatchers deliver each trigger once.
func (r *Redis) DispatchDue(ctx context.Context) (int, error) {
	now := r.now()

	ids, err := r.client.ZRangeByScore(ctx, triggerScheduleKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to query due triggers: %w", err)
	}

	delivered := 0
	for _, id := range ids {
		claimed, err := r.client.ZRem(ctx, triggerScheduleKey, id).Result()
		if err != nil {
			return delivered, fmt.Errorf("failed to claim trigger %s: %w", id, err)
		}
		if claimed == 0 {
			continue
		}

		trigger, err := r.takeTrigger(ctx, id, now)
		if err != nil {
			slog.WarnContext(ctx, "dropping claimed trigger",
				slog.String("trigger_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}

		r.present(ctx, domain.Notification{Trigger: *trigger, DeliveredAt: now})
		delivered++
	}

	return delivered, nil
}

func (r *Redis) takeTrigger(ctx context.Context, id string, now time.Time) (*domain.Trigger, error) {
	data, err := r.client.HGet(ctx, pendingTriggersKey, id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrInvalidTrigger
		}
		return nil, err
	}

	var trigger domain.Trigger
	if err := json.Unmarshal(data, &trigger); err != nil {
		return nil, ErrInvalidTriggerData
	}

	if trigger.Fire.Repeats && trigger.Fire.Kind != domain.FireAt {
		next := trigger.Fire.Next(now, r.location)
		err = r.client.ZAdd(ctx, triggerScheduleKey, redis.Z{
			Score:  float64(next.UnixMilli()),
			Member: id,
		}).Err()
	} else {
		err = r.client.HDel(ctx, pendingTriggersKey, id).Err()
	}
	if err != nil {
		return nil, err
	}

	return &trigger, nil
}

func (r *Redis) present(ctx context.Context, notification domain.Notification) {
	r.mu.RLock()
	delegate := r.delegate
	r.mu.RUnlock()

	if delegate == nil {
		return
	}
	delegate.OnPresented(ctx, notification)
}
