// Package config handles persistent configuration for ccev.
//
// Configuration is stored as JSON at ~/.config/ccev/config.json (or the
// platform-equivalent path returned by os.UserConfigDir).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	appDir   = "ccev"
	fileName = "config.json"

	DefaultTablePrefix    = "wp_"
	DefaultSessionPattern = "PHPREDIS_SESSION:*"
	DefaultListenAddr     = "127.0.0.1:8787"
	DefaultWPCLI          = "wp"
)

// pathOverride, when non-empty, replaces the default config file path.
// Intended for testing. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override, reverting to the default. Intended for testing.
func ResetPath() { pathOverride = "" }

// Config holds the site connection details and per-action switches.
type Config struct {
	SiteURL     string `json:"site_url,omitempty"`
	WPPath      string `json:"wp_path,omitempty"`
	WPCLI       string `json:"wp_cli,omitempty"`
	DBDriver    string `json:"db_driver,omitempty"`
	DBDSN       string `json:"db_dsn,omitempty"`
	TablePrefix string `json:"table_prefix,omitempty"`

	RedisURL       string `json:"redis_url,omitempty"`
	SessionPattern string `json:"session_pattern,omitempty"`
	MemcachedAddr  string `json:"memcached_addr,omitempty"`

	HostingPurgeURL string `json:"hosting_purge_url,omitempty"`
	OpcacheResetURL string `json:"opcache_reset_url,omitempty"`
	CloudflareZone  string `json:"cloudflare_zone,omitempty"`

	// Enabled holds explicit per-action switches. Keys missing from the map
	// fall back to the action's default.
	Enabled map[string]bool `json:"enabled,omitempty"`

	Schedule    string `json:"schedule,omitempty"`
	ListenAddr  string `json:"listen_addr,omitempty"`
	ShowSkipped bool   `json:"show_skipped,omitempty"`
	LogResults  bool   `json:"log_results,omitempty"`
	LogLevel    string `json:"log_level,omitempty"`
	ActionsFile string `json:"actions_file,omitempty"`

	// Timezone is an IANA zone name used for result datetimes.
	Timezone string `json:"timezone,omitempty"`
}

// IsEnabled returns the stored switch for key, or def when none is stored.
func (c *Config) IsEnabled(key string, def bool) bool {
	if c == nil {
		return def
	}
	if v, ok := c.Enabled[key]; ok {
		return v
	}
	return def
}

// SetEnabled records an explicit switch for key.
func (c *Config) SetEnabled(key string, on bool) {
	if c.Enabled == nil {
		c.Enabled = make(map[string]bool)
	}
	c.Enabled[key] = on
}

// EnabledKeys returns the keys with an explicit switch, sorted.
func (c *Config) EnabledKeys() []string {
	keys := make([]string, 0, len(c.Enabled))
	for k := range c.Enabled {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Prefix returns the table prefix, falling back to the WordPress default.
func (c *Config) Prefix() string {
	if c.TablePrefix == "" {
		return DefaultTablePrefix
	}
	return c.TablePrefix
}

// SessionKeyPattern returns the Redis key pattern that identifies PHP sessions.
func (c *Config) SessionKeyPattern() string {
	if c.SessionPattern == "" {
		return DefaultSessionPattern
	}
	return c.SessionPattern
}

// Location returns the zone result datetimes are rendered in: Timezone
// when it names a known zone, else the local zone.
func (c *Config) Location() *time.Location {
	if c == nil || c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Listen returns the HTTP listen address for "ccev serve".
func (c *Config) Listen() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

// WPCLIBinary returns the WP-CLI executable to invoke.
func (c *Config) WPCLIBinary() string {
	if c.WPCLI == "" {
		return DefaultWPCLI
	}
	return c.WPCLI
}

// Path returns the absolute path to the config file.
// If SetPath has been called, that value is returned instead.
func Path() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the config file from disk and returns the parsed Config.
// If the file does not exist, a zero-value Config is returned (not an error).
func Load() (*Config, error) {
	return loadFrom("")
}

func loadFrom(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the parent directory if needed.
func (c *Config) Save() error {
	return c.saveTo("")
}

func (c *Config) saveTo(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	// The file may carry database credentials.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}

	return nil
}

// LoadFrom reads the config from the given path. Intended for testing.
func LoadFrom(path string) (*Config, error) {
	return loadFrom(path)
}

// SaveTo writes the config to the given path. Intended for testing.
func (c *Config) SaveTo(path string) error {
	return c.saveTo(path)
}
