package clearers

import integrations "nathanbeddoewebdev/ccev/internal/registry"

// RegisterBuiltins registers the handler for every built-in action and
// known integration.
func RegisterBuiltins() {
	Register("rewrite_rules", rewriteRules)
	Register("wp_cache_flush", wpCacheFlush)
	Register("transients", transients)
	Register("sessions", sessions)
	Register("redis_memcached", redisMemcached)
	Register("fragment_cache", fragmentCache)
	Register("rest_api_cache", restAPICache)
	Register("opcache_reset", opcacheReset)
	Register("varnish", varnish)
	Register("hosting_cache", hostingCache)
	Register("cookies", cookies)
	Register("browser_cache", browserCache)

	for _, in := range integrations.Integrations() {
		if in.Call == "" {
			continue
		}
		Register(in.Key, pluginFlush(in))
	}
	Register("cloudflare", cloudflarePurge)
}
