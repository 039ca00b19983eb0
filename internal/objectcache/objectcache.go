// Package objectcache connects to the persistent object cache backends a
// WordPress site may use: Redis and Memcached.
package objectcache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/redis/go-redis/v9"
)

// Connect initializes a Redis client from a redis:// URL or host:port.
func Connect(ctx context.Context, redisURL string) (redis.UniversalClient, error) {
	redisURL = strings.TrimSpace(redisURL)
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", redisURL, err)
	}
	return client, nil
}

// scanBatch is the COUNT hint for SCAN and the DEL batch size.
const scanBatch = 500

// DeleteMatching removes every key matching pattern using SCAN, so large
// keyspaces are never blocked by KEYS. It returns the number deleted.
func DeleteMatching(ctx context.Context, rdb redis.UniversalClient, pattern string) (int64, error) {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis scan %q: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("redis del: %w", err)
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

// memcachedTimeout bounds each Memcached round trip when ctx has no
// earlier deadline.
const memcachedTimeout = 5 * time.Second

// FlushMemcached sends flush_all to a Memcached server.
func FlushMemcached(ctx context.Context, addr string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mc := memcache.New(addr)
	mc.Timeout = memcachedTimeout
	if dl, ok := ctx.Deadline(); ok {
		mc.Timeout = min(mc.Timeout, time.Until(dl))
	}
	if err := mc.FlushAll(); err != nil {
		return fmt.Errorf("memcached flush_all %s: %w", addr, err)
	}
	return nil
}

// AnyMatching reports whether at least one key matches pattern.
func AnyMatching(ctx context.Context, rdb redis.UniversalClient, pattern string) (bool, error) {
	var cursor uint64
	for {
		keys, next, err := rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return false, fmt.Errorf("redis scan %q: %w", pattern, err)
		}
		if len(keys) > 0 {
			return true, nil
		}
		cursor = next
		if cursor == 0 {
			return false, nil
		}
	}
}
