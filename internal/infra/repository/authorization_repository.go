package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
)

const authorizationKey = "notify:authorization"

type authorizationRepository struct {
	client *redis.Client
}

// NewAuthorizationRepository stores the user's notification permission decision.
// An unset key reads as not determined, which the scheduler treats as allowed.
func NewAuthorizationRepository(client *redis.Client) domain.Authorizer {
	return &authorizationRepository{
		client: client,
	}
}

func (r *authorizationRepository) AuthorizationStatus(ctx context.Context) (domain.AuthorizationStatus, error) {
	val, err := r.client.Get(ctx, authorizationKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.AuthorizationNotDetermined, nil
		}
		return domain.AuthorizationNotDetermined, fmt.Errorf("%w: %w", ErrRedisConnection, err)
	}

	return domain.AuthorizationStatus(val), nil
}

func (r *authorizationRepository) SetAuthorization(ctx context.Context, status domain.AuthorizationStatus) error {
	if err := r.client.Set(ctx, authorizationKey, string(status), 0).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisConnection, err)
	}
	return nil
}
