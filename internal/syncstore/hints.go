package syncstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProgressHints optionally persists video progress fractions. Hints are a
// display nicety, not authoritative state: every implementation is
// best-effort and a lost hint is not an error worth surfacing.
type ProgressHints interface {
	Set(ctx context.Context, identity, resourceID string, fraction float64) error
	Get(ctx context.Context, identity, resourceID string) (float64, bool, error)
}

// NopHints discards all hints.
type NopHints struct{}

func (NopHints) Set(context.Context, string, string, float64) error { return nil }

func (NopHints) Get(context.Context, string, string) (float64, bool, error) { return 0, false, nil }

// RedisHints keeps progress fractions in Redis under a TTL.
type RedisHints struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisHints creates a Redis-backed hint store. A zero TTL defaults to
// thirty days.
func NewRedisHints(client *redis.Client, ttl time.Duration) *RedisHints {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisHints{client: client, ttl: ttl}
}

func hintKey(identity, resourceID string) string {
	return fmt.Sprintf("skillbite:progress:%s:%s", identity, resourceID)
}

func (h *RedisHints) Set(ctx context.Context, identity, resourceID string, fraction float64) error {
	return h.client.Set(ctx, hintKey(identity, resourceID), fraction, h.ttl).Err()
}

func (h *RedisHints) Get(ctx context.Context, identity, resourceID string) (float64, bool, error) {
	val, err := h.client.Get(ctx, hintKey(identity, resourceID)).Float64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}
