package verifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "verification:"

// redisClient is the part of redis.Cmdable the store uses.
type redisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

// RedisStore keeps tokens in Redis so that every backend instance can redeem
// them.
type RedisStore struct {
	rdb redisClient
}

func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Put(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Take(ctx context.Context, token string) (string, error) {
	userID, err := s.rdb.GetDel(ctx, key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis getdel: %w", err)
	}
	return userID, nil
}

func key(token string) string {
	return keyPrefix + token
}
