package session

import (
	"context"
	"errors"
	"fmt"

	"fleet-dashboard/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisIdentityStore keeps the slot as a plain string key.
type RedisIdentityStore struct {
	client redis.Cmdable
	key    string
}

func NewRedisIdentityStore(client redis.Cmdable, key string) *RedisIdentityStore {
	if key == "" {
		key = DefaultStorageKey
	}
	return &RedisIdentityStore{client: client, key: key}
}

func (s *RedisIdentityStore) Load(ctx context.Context) (*models.User, error) {
	value, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read identity from redis: %w", err)
	}
	return decodeIdentity(value)
}

func (s *RedisIdentityStore) Save(ctx context.Context, user models.User) error {
	value, err := encodeIdentity(user)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write identity to redis: %w", err)
	}
	return nil
}

func (s *RedisIdentityStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear identity in redis: %w", err)
	}
	return nil
}

func (s *RedisIdentityStore) Name() string { return "redis" }
