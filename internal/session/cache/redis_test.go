package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"nomnom/session-service/internal/session/domain"
)

func openTestCache(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis connection failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client)
}

func TestRedisCache_PutGetDel(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	now := time.Now().UTC()
	s := &domain.Session{
		ID:         uuid.New().String(),
		UserID:     "u1",
		DeviceInfo: "test-agent",
		IPAddress:  "1.1.1.1",
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Minute),
		IsValid:    true,
	}

	if err := c.Put(ctx, s); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := c.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for mirrored session")
	}
	if got.UserID != s.UserID || got.IPAddress != s.IPAddress || !got.IsValid {
		t.Errorf("Get: got %+v, want %+v", got, s)
	}

	if err := c.Del(ctx, s.ID); err != nil {
		t.Fatalf("Del: %v", err)
	}
	got, err = c.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get after Del: %v", err)
	}
	if got != nil {
		t.Error("Get after Del should miss")
	}
}

func TestRedisCache_PutExpiredIsNoop(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	s := &domain.Session{
		ID:        uuid.New().String(),
		UserID:    "u1",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
		IsValid:   true,
	}
	if err := c.Put(ctx, s); err != nil {
		t.Fatalf("Put expired: %v", err)
	}
	got, err := c.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Error("expired session should not be mirrored")
	}
}

func TestRedisCache_GetMiss(t *testing.T) {
	c := openTestCache(t)
	got, err := c.Get(context.Background(), uuid.New().String())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("Get miss: got %+v, want nil", got)
	}
}

func TestRedisCache_DelEmpty(t *testing.T) {
	c := openTestCache(t)
	if err := c.Del(context.Background()); err != nil {
		t.Errorf("Del with no ids should be a no-op, got %v", err)
	}
}
