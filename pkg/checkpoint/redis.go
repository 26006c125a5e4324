package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSink persists checkpoints in Redis under a namespaced key, with a
// TTL so abandoned runs don't accumulate forever.
type RedisSink struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSink builds a RedisSink against an already-constructed client.
func NewRedisSink(client *redis.Client, ttl time.Duration) *RedisSink {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSink{client: client, ttl: ttl}
}

func checkpointKey(runID string) string {
	return "newsletter:checkpoint:" + runID
}

func (s *RedisSink) Save(ctx context.Context, runID string, data []byte) error {
	if err := s.client.Set(ctx, checkpointKey(runID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis checkpoint save: %w", err)
	}
	return nil
}

func (s *RedisSink) Load(ctx context.Context, runID string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, checkpointKey(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis checkpoint load: %w", err)
	}
	return data, true, nil
}

func (s *RedisSink) Delete(ctx context.Context, runID string) error {
	if err := s.client.Del(ctx, checkpointKey(runID)).Err(); err != nil {
		return fmt.Errorf("redis checkpoint delete: %w", err)
	}
	return nil
}
