package clearers

import (
	"context"
	"errors"
	"strings"

	"nathanbeddoewebdev/ccev/internal/cloudflare"
	"nathanbeddoewebdev/ccev/internal/domain"
	integrations "nathanbeddoewebdev/ccev/internal/registry"
	"nathanbeddoewebdev/ccev/internal/services/auth"
	"nathanbeddoewebdev/ccev/internal/wpcli"
)

// missingMessage returns the message for a missing PHP symbol, preferring
// override when set.
func missingMessage(err error, override string) (string, bool) {
	var missing *wpcli.ErrMissing
	if !errors.As(err, &missing) {
		return "", false
	}
	if override != "" {
		return override, true
	}
	return missing.Error(), true
}

// pluginFlush runs an integration's flush call inside WordPress.
func pluginFlush(in integrations.Integration) Factory {
	return func(d *Deps) domain.Handler {
		return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
			if d.WP == nil {
				return domain.Skipped("WP-CLI not configured.")
			}
			err := wpcli.Eval(ctx, d.WP, in.Requires, in.Call)
			if err == nil {
				return domain.Succeeded()
			}
			if msg, ok := missingMessage(err, in.Missing); ok {
				return domain.Failed(msg)
			}
			d.Log.WithError(err).WithField("action", in.Key).Warn("plugin flush failed")
			return domain.Failed(err.Error())
		})
	}
}

// cloudflarePurge purges the zone through the Cloudflare API rather than
// the plugin, which needs an admin session to act.
func cloudflarePurge(d *Deps) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
		if d.Auth == nil {
			return domain.Failed("Cloudflare API token not found.")
		}
		client, err := cloudflare.FromStore(d.Auth, d.Zones)
		if err != nil {
			if errors.Is(err, auth.ErrTokenNotFound) {
				return domain.Failed("Cloudflare API token not found.")
			}
			return domain.Failed(err.Error())
		}

		zone := strings.TrimSpace(d.Config.CloudflareZone)
		if zone == "" {
			zone = cloudflare.ZoneName(d.Config.SiteURL)
		}
		if zone == "" {
			return domain.Failed("No Cloudflare zone configured.")
		}

		if err := client.PurgeZone(ctx, zone); err != nil {
			d.Log.WithError(err).WithField("action", "cloudflare").Warn("cloudflare purge failed")
			return domain.Failed(err.Error())
		}
		return domain.Succeeded()
	})
}
