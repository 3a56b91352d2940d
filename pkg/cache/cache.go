// Package cache stores synthesized layouts and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: sharded JSON files on disk, for the CLI
//   - [RedisCache]: a shared Redis instance, for the server
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] derives keys from content hashes and the options that influence
// the cached value, so equal inputs share an entry and any option change
// misses. [ScopedKeyer] prefixes keys to separate tenants or deployments
// that share one backend.
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(graph.Hash(), cache.LayoutKeyOpts{Engine: "spring"})
//	if data, hit, err := c.Get(ctx, key); err == nil && hit {
//	    // use data
//	}
package cache

import (
	"context"
	"fmt"
	"time"
)

// Default time-to-live per entry kind. A zero TTL never expires.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
//
// Get reports a miss with hit=false and a nil error; errors are reserved for
// backend failures. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config selects and configures a cache backend.
type Config struct {
	// Backend is one of "file" (default), "redis" or "none".
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"` // file backend; empty means DefaultDir()
	Redis   RedisConfig `toml:"redis"`
}

// Open creates the configured cache.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case BackendNone:
		return NewNullCache(), nil
	case BackendFile, "":
		dir := cfg.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, fmt.Errorf("resolve cache dir: %w", err)
			}
			dir = d
		}
		c, err := NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
