package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/auth-service/internal/domain"
)

type redisSessionRepository struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisSessionRepository stores one key per user holding the raw refresh
// token. Keys expire together with the refresh token they hold; ttl <= 0
// keeps them forever.
func NewRedisSessionRepository(client redis.Cmdable, prefix string, ttl time.Duration) SessionRepository {
	if ttl < 0 {
		ttl = 0
	}
	return &redisSessionRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *redisSessionRepository) key(userID string) string {
	return r.prefix + userID
}

func (r *redisSessionRepository) Put(ctx context.Context, userID, refreshToken string) error {
	return r.client.Set(ctx, r.key(userID), refreshToken, r.ttl).Err()
}

func (r *redisSessionRepository) Get(ctx context.Context, userID string) (*domain.SessionEntry, error) {
	token, err := r.client.Get(ctx, r.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &domain.SessionEntry{UserID: userID, RefreshToken: token}, nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}
