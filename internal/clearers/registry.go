// Package clearers holds the built-in cache-clearing handlers and the
// registry the runner resolves them from by action key.
package clearers

import (
	"fmt"
	"sort"
	"sync"

	"nathanbeddoewebdev/ccev/internal/config"
	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/util"
)

// Factory builds the handler for one action from the shared dependencies.
type Factory func(d *Deps) domain.Handler

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds a factory for key. It panics on an empty key, a nil factory
// or a duplicate registration.
func Register(key string, factory Factory) {
	normalizedKey := util.NormalizeKey(key)
	if normalizedKey == "" {
		panic("clearers: empty action key")
	}
	if factory == nil {
		panic("clearers: nil factory")
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[normalizedKey]; exists {
		panic(fmt.Sprintf("clearers: handler %q already registered", key))
	}
	registry[normalizedKey] = factory
}

// Get builds the handler registered for key.
func Get(key string, d *Deps) (domain.Handler, bool) {
	mu.RLock()
	factory, ok := registry[util.NormalizeKey(key)]
	mu.RUnlock()
	if !ok {
		return nil, false
	}
	return factory(d.withDefaults()), true
}

// Reset clears the registry. Intended for use in tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = map[string]Factory{}
}

// List returns the registered keys in sorted order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	keys := make([]string, 0, len(registry))
	for key := range registry {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Resolver adapts the registry to the runner's lookup function.
func Resolver(d *Deps) func(key string) (domain.Handler, bool) {
	return func(key string) (domain.Handler, bool) {
		return Get(key, d)
	}
}

// LiveResolver is Resolver with the configuration read from live on every
// lookup, so reloaded settings reach the handlers. Connections in d are not
// reopened.
func LiveResolver(d Deps, live *config.Live) func(key string) (domain.Handler, bool) {
	return func(key string) (domain.Handler, bool) {
		cur := d
		cur.Config = live.Load()
		return Get(key, &cur)
	}
}
