package registry

// Integration is a third-party cache plugin that can be flushed when it is
// active on the site.
type Integration struct {
	Key     string
	Title   string
	Plugins []string

	// Call is the PHP statement that flushes the plugin's cache, and
	// Requires names the function or class::method it depends on.
	Call     string
	Requires string

	// Missing replaces the generic message reported when Requires does not
	// exist on the site.
	Missing string
}

// Integrations returns the known cache plugins in registry order.
func Integrations() []Integration {
	return []Integration{
		{
			Key: "cornerstone", Title: "Cornerstone",
			Plugins:  []string{"cornerstone/cornerstone.php"},
			Call:     `do_action('cs_purge_tmp');`,
			Requires: "do_action",
		},
		{
			Key: "elementor", Title: "Elementor",
			Plugins:  []string{"elementor/elementor.php"},
			Call:     `\Elementor\Plugin::$instance->files_manager->clear_cache();`,
			Requires: `\Elementor\Plugin`,
			Missing:  "Elementor class not found.",
		},
		{
			Key: "wp_super_cache", Title: "WP Super Cache",
			Plugins:  []string{"wp-super-cache/wp-cache.php"},
			Call:     `wp_cache_clear_cache();`,
			Requires: "wp_cache_clear_cache",
		},
		{
			Key: "w3_total_cache", Title: "W3 Total Cache",
			Plugins:  []string{"w3-total-cache/w3-total-cache.php"},
			Call:     `w3tc_flush_all();`,
			Requires: "w3tc_flush_all",
		},
		{
			Key: "wp_rocket", Title: "WP Rocket",
			Plugins:  []string{"wp-rocket/wp-rocket.php"},
			Call:     `rocket_clean_domain();`,
			Requires: "rocket_clean_domain",
		},
		{
			Key: "litespeed_cache", Title: "LiteSpeed Cache",
			Plugins:  []string{"litespeed-cache/litespeed-cache.php"},
			Call:     `do_action('litespeed_purge_all');`,
			Requires: "do_action",
		},
		{
			Key: "sg_optimizer", Title: "SiteGround Optimizer",
			Plugins:  []string{"sg-cachepress/sg-cachepress.php"},
			Call:     `\SG_CachePress_Supercacher::purge_cache();`,
			Requires: `\SG_CachePress_Supercacher::purge_cache`,
		},
		{
			Key: "cloudflare", Title: "Cloudflare",
			Plugins: []string{"cloudflare/cloudflare.php"},
			Missing: "Cloudflare Hooks class not found.",
		},
		{
			Key: "autoptimize", Title: "Autoptimize",
			Plugins:  []string{"autoptimize/autoptimize.php"},
			Call:     `\autoptimizeCache::clearall();`,
			Requires: `\autoptimizeCache::clearall`,
		},
		{
			Key: "swift_performance", Title: "Swift Performance",
			Plugins:  []string{"swift-performance-lite/performance.php", "swift-performance/performance.php"},
			Call:     `swift_performance_cache_clear();`,
			Requires: "swift_performance_cache_clear",
		},
		{
			Key: "comet_cache", Title: "Comet Cache",
			Plugins:  []string{"comet-cache/comet-cache.php"},
			Call:     `comet_cache_clear_cache();`,
			Requires: "comet_cache_clear_cache",
		},
		{
			Key: "wp_fastest_cache", Title: "WP Fastest Cache",
			Plugins:  []string{"wp-fastest-cache/wpFastestCache.php"},
			Call:     `wpfc_clear_cache();`,
			Requires: "wpfc_clear_cache",
		},
		{
			Key: "hummingbird_cache", Title: "Hummingbird",
			Plugins:  []string{"hummingbird-performance/hummingbird.php"},
			Call:     `\Hummingbird\Cache::clear_all_cache();`,
			Requires: `\Hummingbird\Cache::clear_all_cache`,
		},
		{
			Key: "nginx_helper", Title: "Nginx Helper",
			Plugins:  []string{"nginx-helper/nginx-helper.php"},
			Call:     `nginx_helper_flush_cache();`,
			Requires: "nginx_helper_flush_cache",
		},
		{
			Key: "wp_optimize", Title: "WP-Optimize",
			Plugins:  []string{"wp-optimize/wp-optimize.php"},
			Call:     `wp_optimize_clear_cache();`,
			Requires: "wp_optimize_clear_cache",
		},
	}
}

// LookupIntegration returns the integration with the given key.
func LookupIntegration(key string) (Integration, bool) {
	for _, in := range Integrations() {
		if in.Key == key {
			return in, true
		}
	}
	return Integration{}, false
}
