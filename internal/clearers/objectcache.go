package clearers

import (
	"context"
	"errors"

	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/objectcache"
	"nathanbeddoewebdev/ccev/internal/wpcli"
)

var errNoObjectCache = errors.New("no object cache access configured")

// flushObjectCache empties the site's object cache through WP-CLI, or the
// selected Redis database when the CLI is unavailable.
func flushObjectCache(ctx context.Context, d *Deps) error {
	switch {
	case d.WP != nil:
		_, err := d.WP.Run(ctx, "cache", "flush")
		return err
	case d.Redis != nil:
		return d.Redis.FlushDB(ctx).Err()
	}
	return errNoObjectCache
}

func evalPHP(ctx context.Context, d *Deps, requires, call string) error {
	if d.WP == nil {
		return errors.New("WP-CLI not configured")
	}
	return wpcli.Eval(ctx, d.WP, requires, call)
}

func wpCacheFlush(d *Deps) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
		err := flushObjectCache(ctx, d)
		switch {
		case errors.Is(err, errNoObjectCache):
			return domain.Skipped("No WP-CLI or Redis configured.")
		case err != nil:
			d.Log.WithError(err).WithField("action", "wp_cache_flush").Warn("object cache flush failed")
			return domain.Failed("wp_cache_flush() returned false.")
		}
		return domain.Succeeded()
	})
}

// redisMemcached flushes the first persistent backend it can reach: Redis,
// then Memcached, then the object cache API.
func redisMemcached(d *Deps) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
		log := d.Log.WithField("action", "redis_memcached")

		if d.Redis != nil {
			if err := d.Redis.FlushAll(ctx).Err(); err != nil {
				log.WithError(err).Warn("redis flushall failed")
				return domain.Failed("Redis flushAll() failed.")
			}
			return domain.Succeeded()
		}
		if addr := d.Config.MemcachedAddr; addr != "" {
			if err := objectcache.FlushMemcached(ctx, addr); err != nil {
				log.WithError(err).Warn("memcached flush failed")
				return domain.Failed("Memcached flush() failed.")
			}
			return domain.Succeeded()
		}
		if d.WP != nil {
			if _, err := d.WP.Run(ctx, "cache", "flush"); err == nil {
				return domain.Succeeded()
			}
		}
		return domain.Failed("No persistent cache backend flushed.")
	})
}

// sessions removes PHP sessions kept in Redis and checks none survived.
func sessions(d *Deps) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
		if d.Redis == nil {
			return domain.Skipped("No session store configured.")
		}
		pattern := d.Config.SessionKeyPattern()

		n, err := objectcache.DeleteMatching(ctx, d.Redis, pattern)
		if err != nil {
			d.Log.WithError(err).WithField("action", "sessions").Warn("session purge failed")
			return domain.Failedf("Failed to destroy sessions: %v", err)
		}
		d.Log.WithField("action", "sessions").Debugf("deleted %d session keys", n)

		if left, err := objectcache.AnyMatching(ctx, d.Redis, pattern); err == nil && left {
			return domain.Failed("Session data still present after destroy.")
		}
		return domain.Succeeded()
	})
}
