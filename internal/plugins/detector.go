// Package plugins reports which WordPress plugins are active on the site.
package plugins

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"nathanbeddoewebdev/ccev/internal/cache"
	"nathanbeddoewebdev/ccev/internal/sitedb"
	"nathanbeddoewebdev/ccev/internal/wpcli"

	"github.com/elliotchance/phpserialize"
)

// Detector returns the active plugin files, e.g. "wp-rocket/wp-rocket.php".
type Detector interface {
	ActivePlugins(ctx context.Context) ([]string, error)
}

// Static is a Detector with a fixed answer.
type Static []string

func (s Static) ActivePlugins(context.Context) ([]string, error) {
	return append([]string(nil), s...), nil
}

// DBDetector reads the active plugin options from the site database:
// active_plugins, plus active_sitewide_plugins for network-activated
// plugins on multisite.
type DBDetector struct {
	DB sitedb.DB
}

// pluginOptions hold the active plugin lists, site-level first.
var pluginOptions = []string{"active_plugins", "active_sitewide_plugins"}

func (d DBDetector) ActivePlugins(ctx context.Context) ([]string, error) {
	if d.DB == nil {
		return nil, nil
	}
	var out []string
	for _, name := range pluginOptions {
		raw, ok, err := d.DB.Option(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("plugins: %w", err)
		}
		if !ok {
			continue
		}
		files, err := ParseSerialized(raw)
		if err != nil {
			return nil, fmt.Errorf("plugins: decode %s: %w", name, err)
		}
		out = append(out, files...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// ParseSerialized decodes a PHP-serialized plugin list. It accepts the
// indexed form of active_plugins (i => file) and the map form of
// active_sitewide_plugins (file => activation time). Files come back
// sorted.
func ParseSerialized(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	arr, err := phpserialize.UnmarshalAssociativeArray([]byte(raw))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(arr))
	for k, v := range arr {
		if file, ok := v.(string); ok && file != "" {
			out = append(out, file)
			continue
		}
		if file, ok := k.(string); ok && file != "" {
			out = append(out, file)
		}
	}
	slices.Sort(out)
	return out, nil
}

// CLIDetector asks WP-CLI for the active plugins. It is used when no site
// database is configured.
type CLIDetector struct {
	WP wpcli.Runner
}

func (d CLIDetector) ActivePlugins(ctx context.Context) ([]string, error) {
	if d.WP == nil {
		return nil, nil
	}
	var out []string
	for _, status := range []string{"active", "active-network"} {
		res, err := d.WP.Run(ctx, "plugin", "list", "--status="+status, "--field=file")
		if err != nil {
			return nil, fmt.Errorf("plugins: %w", err)
		}
		for _, line := range strings.Split(res.Stdout, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// Cached answers from a disk cache, refreshing in the background once the
// answer is older than Fresh. WP-CLI boots all of WordPress per call, so the
// plugin list is reused across invocations.
type Cached struct {
	Detector Detector
	Cache    *cache.Cache
	Key      string
	Fresh    time.Duration
	MaxStale time.Duration
}

// Default freshness for Cached.
const (
	DefaultFresh    = 5 * time.Minute
	DefaultMaxStale = 24 * time.Hour
)

func (c Cached) ActivePlugins(ctx context.Context) ([]string, error) {
	fresh, maxStale := c.Fresh, c.MaxStale
	if fresh <= 0 {
		fresh = DefaultFresh
	}
	if maxStale < fresh {
		maxStale = DefaultMaxStale
	}
	return cache.GetOrFetch(c.Cache, ctx, c.Key, fresh, maxStale, c.Detector.ActivePlugins)
}
