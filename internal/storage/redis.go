package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"storefront/client/internal/domain"
)

type redisStore struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisStore(redisClient *redis.Client, keyPrefix string) KeyValueStore {
	return &redisStore{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
	}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.redisClient.Get(ctx, s.keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil // Nothing saved yet
		}
		return "", false, &domain.PersistenceError{Op: "get", Key: key, Err: err}
	}

	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	err := s.redisClient.Set(ctx, s.keyPrefix+key, value, 0).Err() // No expiration
	if err != nil {
		return &domain.PersistenceError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *redisStore) Close() error {
	if s.redisClient != nil {
		return s.redisClient.Close()
	}
	return nil
}
