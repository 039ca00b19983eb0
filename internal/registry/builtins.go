package registry

import "nathanbeddoewebdev/ccev/internal/domain"

// Builtins returns the fixed actions in registry order. Enabled is left
// unset; List resolves it against the stored switches.
func Builtins() []domain.Action {
	return []domain.Action{
		{
			Key: "rewrite_rules", Title: "Rewrite Rules",
			Context: domain.ContextImmediate, DefaultEnabled: true, Section: domain.SectionDefaults,
			Comments: "Deletes the stored rewrite rules so WordPress rebuilds them.",
		},
		{
			Key: "wp_cache_flush", Title: "Object Cache",
			Context: domain.ContextImmediate, DefaultEnabled: true, Section: domain.SectionDefaults,
			Comments: "Flushes the object cache through WP-CLI, or the configured Redis database.",
		},
		{
			Key: "transients", Title: "Transients",
			Context: domain.ContextImmediate, DefaultEnabled: true, Section: domain.SectionDefaults,
		},
		{
			Key: "sessions", Title: "Sessions",
			Context: domain.ContextImmediate, DefaultEnabled: true, Section: domain.SectionDefaults,
			Comments: "Removes PHP sessions stored in Redis.",
		},
		{
			Key: "redis_memcached", Title: "Redis / Memcached",
			Context: domain.ContextImmediate, DefaultEnabled: false, Section: domain.SectionDefaults,
			Comments: "Flushes every Redis database, or Memcached when Redis is not configured.",
		},
		{
			Key: "fragment_cache", Title: "Fragment Cache",
			Context: domain.ContextImmediate, DefaultEnabled: false, Section: domain.SectionDefaults,
		},
		{
			Key: "rest_api_cache", Title: "REST API Cache",
			Context: domain.ContextImmediate, DefaultEnabled: false, Section: domain.SectionDefaults,
		},
		{
			Key: "opcache_reset", Title: "PHP OPcache",
			Context: domain.ContextImmediate, DefaultEnabled: false, Section: domain.SectionDefaults,
			Comments: "Requests the configured OPcache reset endpoint on the site.",
		},
		{
			Key: "varnish", Title: "Varnish",
			Context: domain.ContextImmediate, DefaultEnabled: false, Section: domain.SectionHosting,
		},
		{
			Key: "hosting_cache", Title: "Hosting Cache",
			Context: domain.ContextImmediate, DefaultEnabled: false, Section: domain.SectionHosting,
			Comments: "Requests the hosting provider's purge URL.",
		},
		{
			Key: "cookies", Title: "Cookies",
			Context: domain.ContextDeferred, DefaultEnabled: true, Section: domain.SectionDefaults,
			Comments: "Expires every cookie on the triggering request except the login cookie.",
		},
		{
			Key: "browser_cache", Title: "Browser Cache",
			Context: domain.ContextDeferred, DefaultEnabled: true, Section: domain.SectionDefaults,
			Comments: "Sends no-cache headers on the triggering response.",
		},
	}
}
