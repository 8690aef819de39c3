package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists thread contexts as JSON blobs with a TTL. It is a
// convenience for surviving restarts, not a durability guarantee.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func threadKey(threadID string) string {
	return "thread:" + threadID
}

// Load returns the stored context or a fresh one for unknown threads.
func (s *RedisStore) Load(ctx context.Context, threadID string) (*ThreadContext, error) {
	data, err := s.client.Get(ctx, threadKey(threadID)).Result()
	if errors.Is(err, redis.Nil) {
		return NewThreadContext(threadID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load thread from Redis: %w", err)
	}

	var tc ThreadContext
	if err := json.Unmarshal([]byte(data), &tc); err != nil {
		return nil, fmt.Errorf("failed to parse thread context: %w", err)
	}
	return &tc, nil
}

// Save persists the context, refreshing its TTL.
func (s *RedisStore) Save(ctx context.Context, tc *ThreadContext) error {
	data, err := json.Marshal(tc)
	if err != nil {
		return fmt.Errorf("failed to marshal thread context: %w", err)
	}
	if err := s.client.Set(ctx, threadKey(tc.ThreadID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save thread to Redis: %w", err)
	}
	return nil
}

// Delete removes a thread.
func (s *RedisStore) Delete(ctx context.Context, threadID string) error {
	return s.client.Del(ctx, threadKey(threadID)).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping verifies the Redis connection is alive.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
