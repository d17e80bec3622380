package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces processed-event keys in Redis.
const redisKeyPrefix = "moderation:events:processed:"

// RedisIdempotencyStore is a Redis-backed implementation of IdempotencyStore.
// Entries expire after the configured TTL so the key space stays bounded.
// Safe to share across worker instances, unlike MemoryIdempotencyStore.
//
// Keys are namespaced per consumer group: the same event is delivered once to
// every group consuming the topic, and each group keeps its own processed set.
type RedisIdempotencyStore struct {
	client *redis.Client
	group  string
	ttl    time.Duration
}

// NewRedisIdempotencyStore creates a Redis-backed idempotency store for the
// given consumer group, with the given TTL for processed-event markers.
func NewRedisIdempotencyStore(client *redis.Client, group string, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		client: client,
		group:  group,
		ttl:    ttl,
	}
}

func (s *RedisIdempotencyStore) key(eventID string) string {
	return redisKeyPrefix + s.group + ":" + eventID
}

// Contains reports whether the event ID has a live processed marker.
func (s *RedisIdempotencyStore) Contains(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// Add marks the event ID as processed with the configured TTL.
func (s *RedisIdempotencyStore) Add(ctx context.Context, eventID string) error {
	if err := s.client.Set(ctx, s.key(eventID), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
