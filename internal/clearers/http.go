package clearers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"nathanbeddoewebdev/ccev/internal/domain"
)

const methodPurge = "PURGE"

func (d *Deps) send(ctx context.Context, method, target string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if host := header.Get("Host"); host != "" {
		req.Host = host
	}
	req.Header.Set("User-Agent", "ccev")

	resp, err := d.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	// Only the status and headers are used.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	return resp, nil
}

func hostingCache(d *Deps) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
		target := strings.TrimSpace(d.Config.HostingPurgeURL)
		if target == "" {
			return domain.Skipped("No hosting purge URL configured.")
		}

		resp, err := d.send(ctx, http.MethodGet, target, nil)
		if err != nil {
			return domain.Failed(err.Error())
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return domain.Failedf("Hosting purge returned HTTP %d.", resp.StatusCode)
		}
		return domain.Succeeded()
	})
}

// varnishDetected looks for the headers Varnish adds to responses.
func varnishDetected(h http.Header) bool {
	if h.Get("X-Varnish") != "" {
		return true
	}
	return strings.Contains(strings.ToLower(h.Get("Via")), "varnish")
}

func varnish(d *Deps) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
		home := strings.TrimSpace(d.Config.SiteURL)
		if home == "" {
			return domain.Skipped("No site URL configured.")
		}
		u, err := url.Parse(home)
		if err != nil || u.Host == "" {
			return domain.Failedf("Invalid site URL %q.", home)
		}

		probe, err := d.send(ctx, http.MethodHead, home, nil)
		if err != nil {
			d.Log.WithError(err).WithField("action", "varnish").Debug("varnish probe failed")
			return domain.Informed("Unable to detect Varnish headers.")
		}
		if !varnishDetected(probe.Header) {
			return domain.Informed("Varnish not detected.")
		}

		resp, err := d.send(ctx, methodPurge, home, http.Header{"Host": {u.Host}})
		if err != nil {
			d.Log.WithError(err).WithField("action", "varnish").Warn("varnish purge failed")
			return domain.Failed("Varnish PURGE request failed.")
		}
		switch resp.StatusCode {
		case http.StatusOK, http.StatusNoContent:
			return domain.Succeeded()
		}
		return domain.Failed(fmt.Sprintf("Unexpected Varnish response code: %d", resp.StatusCode))
	})
}

// opcacheReset calls a reset endpoint on the web server when one is
// configured. The CLI's OPcache is separate from the one serving requests,
// so WP-CLI is only a fallback.
func opcacheReset(d *Deps) domain.Handler {
	return domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
		if target := strings.TrimSpace(d.Config.OpcacheResetURL); target != "" {
			resp, err := d.send(ctx, http.MethodPost, target, nil)
			if err != nil || resp.StatusCode >= http.StatusBadRequest {
				if err == nil {
					err = fmt.Errorf("HTTP %d", resp.StatusCode)
				}
				d.Log.WithError(err).WithField("action", "opcache_reset").Warn("opcache reset endpoint failed")
				return domain.Failed("opcache_reset() failed.")
			}
			return domain.Succeeded()
		}

		if d.WP == nil {
			return domain.Skipped("No OPcache reset URL configured.")
		}
		err := evalPHP(ctx, d, "opcache_reset", "if (!opcache_reset()) { return; }")
		if err != nil {
			if msg, ok := missingMessage(err, ""); ok {
				return domain.Failed(msg)
			}
			return domain.Failed("opcache_reset() failed.")
		}
		return domain.Succeeded()
	})
}
