package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// EnablePrefix addresses per-action switches, e.g. "enable.transients".
const EnablePrefix = "enable."

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "site-url").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory only;
	// the caller is responsible for calling Save).
	Set func(cfg *Config, value string) error
}

func stringKey(name, desc string, field func(cfg *Config) *string) KeySpec {
	return KeySpec{
		Name:        name,
		Description: desc,
		Get:         func(cfg *Config) string { return *field(cfg) },
		Set: func(cfg *Config, v string) error {
			*field(cfg) = strings.TrimSpace(v)
			return nil
		},
	}
}

func urlKey(name, desc string, field func(cfg *Config) *string) KeySpec {
	spec := stringKey(name, desc, field)
	spec.Set = func(cfg *Config, v string) error {
		v = strings.TrimSpace(v)
		if v != "" {
			if err := validateURL(v); err != nil {
				return err
			}
		}
		*field(cfg) = v
		return nil
	}
	return spec
}

func boolKey(name, desc string, field func(cfg *Config) *bool) KeySpec {
	return KeySpec{
		Name:        name,
		Description: desc,
		Get:         func(cfg *Config) string { return strconv.FormatBool(*field(cfg)) },
		Set: func(cfg *Config, v string) error {
			b, err := ParseBool(v)
			if err != nil {
				return err
			}
			*field(cfg) = b
			return nil
		},
	}
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	urlKey("site-url", "Public URL of the site (used for Varnish probes and trigger links)",
		func(c *Config) *string { return &c.SiteURL }),
	stringKey("wp-path", "WordPress install path passed to WP-CLI as --path",
		func(c *Config) *string { return &c.WPPath }),
	stringKey("wp-cli", "WP-CLI executable (default \"wp\")",
		func(c *Config) *string { return &c.WPCLI }),
	{
		Name:        "db-driver",
		Description: "Site database driver: mysql or sqlite",
		Get:         func(c *Config) string { return c.DBDriver },
		Set: func(c *Config, v string) error {
			v = strings.ToLower(strings.TrimSpace(v))
			switch v {
			case "", "mysql", "sqlite":
				c.DBDriver = v
				return nil
			}
			return fmt.Errorf("unsupported database driver %q (valid: mysql, sqlite)", v)
		},
	},
	stringKey("db-dsn", "Site database DSN (user:pass@host:port/dbname, or a file path for sqlite)",
		func(c *Config) *string { return &c.DBDSN }),
	stringKey("table-prefix", "WordPress table prefix (default \"wp_\")",
		func(c *Config) *string { return &c.TablePrefix }),
	stringKey("redis-url", "Redis object cache URL (redis://host:port/db or host:port)",
		func(c *Config) *string { return &c.RedisURL }),
	stringKey("session-pattern", "Redis key pattern for PHP sessions (default \"PHPREDIS_SESSION:*\")",
		func(c *Config) *string { return &c.SessionPattern }),
	stringKey("memcached-addr", "Memcached address (host:port)",
		func(c *Config) *string { return &c.MemcachedAddr }),
	urlKey("hosting-purge-url", "URL requested to purge the hosting provider's cache",
		func(c *Config) *string { return &c.HostingPurgeURL }),
	urlKey("opcache-reset-url", "URL of a site endpoint that calls opcache_reset()",
		func(c *Config) *string { return &c.OpcacheResetURL }),
	stringKey("cloudflare-zone", "Cloudflare zone name (defaults to the site-url host)",
		func(c *Config) *string { return &c.CloudflareZone }),
	stringKey("schedule", "Scheduled full clear for 'ccev serve' (cron expression or duration such as 6h)",
		func(c *Config) *string { return &c.Schedule }),
	stringKey("listen-addr", "HTTP listen address for 'ccev serve'",
		func(c *Config) *string { return &c.ListenAddr }),
	boolKey("show-skipped", "Include skipped actions in clear notices",
		func(c *Config) *bool { return &c.ShowSkipped }),
	boolKey("log-results", "Log every action result after a pass",
		func(c *Config) *bool { return &c.LogResults }),
	stringKey("log-level", "Log level: debug, info, warn, error",
		func(c *Config) *string { return &c.LogLevel }),
	stringKey("actions-file", "YAML file with custom actions",
		func(c *Config) *string { return &c.ActionsFile }),
	{
		Name:        "timezone",
		Description: "IANA time zone for result datetimes, e.g. Europe/Berlin (default: local)",
		Get:         func(c *Config) string { return c.Timezone },
		Set: func(c *Config, v string) error {
			v = strings.TrimSpace(v)
			if v != "" {
				if _, err := time.LoadLocation(v); err != nil {
					return fmt.Errorf("unknown time zone %q", v)
				}
			}
			c.Timezone = v
			return nil
		},
	},
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
// Names of the form "enable.<action>" resolve to a per-action switch.
func Lookup(name string) *KeySpec {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	if action, ok := strings.CutPrefix(normalized, EnablePrefix); ok && action != "" {
		spec := enableKey(action)
		return &spec
	}
	return nil
}

func enableKey(action string) KeySpec {
	return KeySpec{
		Name:        EnablePrefix + action,
		Description: fmt.Sprintf("Enable the %q action", action),
		Get: func(c *Config) string {
			v, ok := c.Enabled[action]
			if !ok {
				return ""
			}
			return strconv.FormatBool(v)
		},
		Set: func(c *Config, v string) error {
			if strings.TrimSpace(v) == "default" {
				delete(c.Enabled, action)
				return nil
			}
			b, err := ParseBool(v)
			if err != nil {
				return err
			}
			c.SetEnabled(action, b)
			return nil
		},
	}
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, EnablePrefix+"<action>", "Turn an action on or off (true, false, default)")
	return b.String()
}

// ParseBool accepts the usual spellings of a switch.
func ParseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q (use true or false)", v)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL %q: missing host", raw)
	}
	return nil
}
