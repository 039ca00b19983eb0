package config

import "sync/atomic"

// Live holds the current configuration and lets a watcher swap it while
// other goroutines read it.
type Live struct {
	cur atomic.Pointer[Config]
}

// NewLive returns a Live seeded with cfg. A nil cfg is replaced by a zero
// Config.
func NewLive(cfg *Config) *Live {
	l := &Live{}
	l.Store(cfg)
	return l
}

// Load returns the current configuration. Callers must not mutate it.
func (l *Live) Load() *Config {
	return l.cur.Load()
}

// Store replaces the current configuration.
func (l *Live) Store(cfg *Config) {
	if cfg == nil {
		cfg = &Config{}
	}
	l.cur.Store(cfg)
}

// Enabled resolves an action switch against the current configuration.
func (l *Live) Enabled(key string, def bool) bool {
	return l.Load().IsEnabled(key, def)
}
