// Package cache mirrors session records in Redis for the verify hot path.
// Postgres stays the source of truth; revocation deletes the mirrored keys so
// a completed invalidation is visible everywhere, and expiry falls out of the
// key TTL.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"nomnom/session-service/internal/session/domain"
)

const keyPrefix = "session:"

// Cache is the session mirror consumed by the manager. Implementations must
// treat misses and decode failures as (nil, nil) so callers fall through to
// the durable store.
type Cache interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Del(ctx context.Context, sessionIDs ...string) error
}

// RedisCache implements Cache on go-redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache returns a Redis-backed session cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func key(sessionID string) string { return keyPrefix + sessionID }

// Put stores the session as JSON with TTL equal to its remaining lifetime.
// Already-expired sessions are not stored.
func (c *RedisCache) Put(ctx context.Context, s *domain.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(s.ID), data, ttl).Err()
}

// Get returns the mirrored session, or nil on miss or undecodable payload.
func (c *RedisCache) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	val, err := c.client.Get(ctx, key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s domain.Session
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, nil
	}
	return &s, nil
}

// PingContext reports Redis reachability for health checks.
func (c *RedisCache) PingContext(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Del removes the mirrored keys for the given session ids.
func (c *RedisCache) Del(ctx context.Context, sessionIDs ...string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	keys := make([]string, len(sessionIDs))
	for i, id := range sessionIDs {
		keys[i] = key(id)
	}
	return c.client.Del(ctx, keys...).Err()
}
