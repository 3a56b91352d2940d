package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// redisCache connects to the instance named by NETPLOT_TEST_REDIS
// (for example redis://localhost:6379/15) or skips the test.
func redisCache(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("NETPLOT_TEST_REDIS")
	if url == "" {
		t.Skip("NETPLOT_TEST_REDIS not set")
	}
	c, err := NewRedisCache(context.Background(), RedisConfig{URL: url, Prefix: "netplot-test:" + uuid.NewString() + ":"})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisCache(t *testing.T) {
	c := redisCache(t)
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get(k) = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisConfig{URL: "not-a-url://"}); err == nil {
		t.Error("expected error for malformed URL")
	}
}
