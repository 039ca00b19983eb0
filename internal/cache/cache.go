// Package cache keeps small JSON values on disk under the user cache dir.
// Values carry their fetch time, so callers choose freshness per read:
// Get for a plain TTL, GetOrFetch for stale-while-revalidate.
package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const refreshTimeout = 30 * time.Second

// Cache is a directory of JSON entries. A nil Cache, or one with no
// directory, caches nothing.
type Cache struct {
	dir string
	now func() time.Time
}

// entry wraps a cached value with its fetch time.
type entry[T any] struct {
	Data      T         `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
}

// New returns a cache rooted at dir.
func New(dir string) *Cache {
	return &Cache{dir: dir, now: time.Now}
}

// NewDefault returns a cache rooted at the OS user cache dir.
func NewDefault() *Cache {
	return New(defaultDir())
}

// Sub returns a cache in a subdirectory, sharing the clock.
func (c *Cache) Sub(name string) *Cache {
	if c == nil || c.dir == "" {
		return c
	}
	return &Cache{dir: filepath.Join(c.dir, sanitizeKey(name)), now: c.now}
}

// SetClock replaces the wall clock. Intended for tests.
func (c *Cache) SetClock(now func() time.Time) { c.now = now }

// Get decodes the entry for key into dest when it is younger than ttl.
// Expired entries are removed.
func (c *Cache) Get(key string, ttl time.Duration, dest any) (bool, error) {
	if c == nil || c.dir == "" || ttl <= 0 {
		return false, nil
	}
	e, ok, err := read[json.RawMessage](c, key)
	if err != nil || !ok {
		return false, err
	}
	if c.age(e.FetchedAt) > ttl {
		_ = c.Invalidate(key)
		return false, nil
	}
	if err := json.Unmarshal(e.Data, dest); err != nil {
		return false, nil
	}
	return true, nil
}

// Set stores data under key, stamped with the current time.
func (c *Cache) Set(key string, data any) error {
	if c == nil || c.dir == "" {
		return nil
	}
	return write(c, key, entry[any]{Data: data, FetchedAt: c.now()})
}

// GetOrFetch returns the cached value for key. Within fresh it is returned
// as is. Up to maxStale it is returned while a background fetch refreshes
// it. Older or missing values are fetched before returning. A fetch error
// is returned only when there is nothing cached to fall back on.
func GetOrFetch[T any](c *Cache, ctx context.Context, key string, fresh, maxStale time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	if c == nil || c.dir == "" {
		return fetch(ctx)
	}

	e, ok, err := read[T](c, key)
	if err != nil || !ok || e.FetchedAt.IsZero() {
		return fetchAndStore(c, ctx, key, fetch)
	}

	age := c.age(e.FetchedAt)
	switch {
	case age < 0:
		return fetchAndStore(c, ctx, key, fetch)
	case age <= fresh:
		return e.Data, nil
	case age <= maxStale:
		go func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
			defer cancel()
			_, _ = fetchAndStore(c, ctx, key, fetch)
		}()
		return e.Data, nil
	}
	return fetchAndStore(c, ctx, key, fetch)
}

// Invalidate removes a single cached entry.
func (c *Cache) Invalidate(key string) error {
	if c == nil || c.dir == "" {
		return nil
	}
	err := os.Remove(c.pathForKey(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every entry in the cache directory.
func (c *Cache) Clear() error {
	if c == nil || c.dir == "" {
		return nil
	}
	err := os.RemoveAll(c.dir)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (c *Cache) age(fetchedAt time.Time) time.Duration {
	return c.now().Sub(fetchedAt)
}

func fetchAndStore[T any](c *Cache, ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	data, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	_ = write(c, key, entry[T]{Data: data, FetchedAt: c.now()})
	return data, nil
}

func read[T any](c *Cache, key string) (entry[T], bool, error) {
	var e entry[T]
	data, err := os.ReadFile(c.pathForKey(key))
	if err != nil {
		if os.IsNotExist(err) {
			return e, false, nil
		}
		return e, false, err
	}
	if err := json.Unmarshal(data, &e); err != nil {
		// Unreadable entries count as misses and get overwritten.
		return e, false, nil
	}
	return e, true, nil
}

// write replaces the entry atomically via a temp file in the same dir.
func write[T any](c *Cache, key string, e entry[T]) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, sanitizeKey(key)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, c.pathForKey(key))
}

func (c *Cache) pathForKey(key string) string {
	return filepath.Join(c.dir, sanitizeKey(key)+".json")
}

func defaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "ccev")
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "cache"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, key)
}
