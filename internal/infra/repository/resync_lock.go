package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	resyncLockPrefix = "reminder:lock:"

	defaultResyncLockTTL   = 10 * time.Second
	resyncLockRetryInitial = 10 * time.Millisecond
	resyncLockRetryMax     = 200 * time.Millisecond
)

var ErrLockNotAcquired = errors.New("reminder lock not acquired")

// releaseResyncLock deletes the lock only while it still holds our token, so a holder
// whose TTL ran out never frees a lock someone else now owns.
var releaseResyncLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type ResyncLockOption func(*ResyncLocker)

func WithResyncLockTTL(ttl time.Duration) ResyncLockOption {
	return func(l *ResyncLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// ResyncLocker is a per-reminder lock shared by every instance on the same Redis.
type ResyncLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResyncLocker(client *redis.Client, opts ...ResyncLockOption) *ResyncLocker {
	l := &ResyncLocker{
		client: client,
		ttl:    defaultResyncLockTTL,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock blocks until the lock for key is held or ctx is done.
func (l *ResyncLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := resyncLockPrefix + key
	token := uuid.NewString()
	backoff := resyncLockRetryInitial

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRedisConnection, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrLockNotAcquired, key, ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, resyncLockRetryMax)
	}

	return func() {
		// The caller's context may already be cancelled; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()

		released, err := releaseResyncLock.Run(releaseCtx, l.client, []string{lockKey}, token).Int()
		if err != nil {
			slog.WarnContext(ctx, "failed to release reminder lock",
				slog.String("reminder_id", key),
				slog.String("error", err.Error()),
			)
			return
		}
		if released == 0 {
			slog.WarnContext(ctx, "reminder lock expired before release",
				slog.String("reminder_id", key),
			)
		}
	}, nil
}
