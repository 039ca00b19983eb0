package clearers

import (
	"context"

	"nathanbeddoewebdev/ccev/internal/domain"
)

// Option name patterns. Backslash escapes the LIKE wildcards.
var (
	transientPatterns = []string{`\_transient\_%`, `\_site\_transient\_%`}

	fragmentPatterns = []string{`%\_fragment\_%`, `%\_fragment\_cache\_%`}
	fragmentExcludes = []string{`%clear\_cache\_everywhere\_fragment\_cache%`}

	restPatterns = []string{`%rest\_cache%`, `%api\_cache%`}
)

const (
	rewriteRulesOption = "rewrite_rules"
	restCacheHook      = "cceverywhere_clear_rest_cache"

	msgNoSiteAccess = "No site database or WP-CLI configured."
)

func rewriteRules(d *Deps) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
		if d.SiteDB == nil && d.WP == nil {
			return domain.Skipped(msgNoSiteAccess)
		}

		if d.SiteDB != nil {
			n, err := d.SiteDB.DeleteOption(ctx, rewriteRulesOption)
			if err != nil {
				d.Log.WithError(err).WithField("action", "rewrite_rules").Warn("delete option failed")
				return domain.Failed("Failed to delete rewrite_rules option.")
			}
			d.Log.WithField("action", "rewrite_rules").Debugf("deleted %d option rows", n)
		}

		// WordPress rebuilds the rules on the next request when the CLI
		// is not available to do it now.
		if d.WP != nil {
			if _, err := d.WP.Run(ctx, "rewrite", "flush"); err != nil {
				return domain.Failedf("Failed to flush rewrite rules: %v", err)
			}
		}
		return domain.Succeeded()
	})
}

func transients(d *Deps) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
		switch {
		case d.SiteDB != nil:
			if _, err := d.SiteDB.DeleteOptionsLike(ctx, transientPatterns, nil); err != nil {
				d.Log.WithError(err).WithField("action", "transients").Warn("delete transients failed")
				return domain.Failed("Failed to delete transients from database.")
			}
		case d.WP != nil:
			if _, err := d.WP.Run(ctx, "transient", "delete", "--all"); err != nil {
				d.Log.WithError(err).WithField("action", "transients").Warn("wp transient delete failed")
				return domain.Failed("Failed to delete transients from database.")
			}
		default:
			return domain.Skipped(msgNoSiteAccess)
		}

		// Transients may live in the object cache too. Its result does not
		// change the outcome.
		if err := flushObjectCache(ctx, d); err != nil {
			d.Log.WithError(err).WithField("action", "transients").Debug("object cache flush after transients failed")
		}
		return domain.Succeeded()
	})
}

func fragmentCache(d *Deps) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
		if d.SiteDB == nil {
			return domain.Skipped("No site database configured.")
		}
		if _, err := d.SiteDB.DeleteOptionsLike(ctx, fragmentPatterns, fragmentExcludes); err != nil {
			d.Log.WithError(err).WithField("action", "fragment_cache").Warn("delete fragments failed")
			return domain.Failed("Failed to clear fragment cache.")
		}
		return domain.Succeeded()
	})
}

func restAPICache(d *Deps) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
		if d.SiteDB == nil && d.WP == nil {
			return domain.Skipped(msgNoSiteAccess)
		}

		if d.SiteDB != nil {
			if _, err := d.SiteDB.DeleteOptionsLike(ctx, restPatterns, nil); err != nil {
				d.Log.WithError(err).WithField("action", "rest_api_cache").Warn("delete rest cache options failed")
				return domain.Failed("REST API cache clear failed.")
			}
		}
		if d.WP != nil {
			call := "do_action('" + restCacheHook + "');"
			if err := evalPHP(ctx, d, "do_action", call); err != nil {
				d.Log.WithError(err).WithField("action", "rest_api_cache").Warn("rest cache hook failed")
				return domain.Failed("REST API cache clear failed.")
			}
		}
		return domain.Succeeded()
	})
}
