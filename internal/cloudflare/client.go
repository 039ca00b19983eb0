// Package cloudflare is a minimal Cloudflare API v4 client for purging a
// zone's edge cache.
package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nathanbeddoewebdev/ccev/internal/cache"
	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/retry"
	"nathanbeddoewebdev/ccev/internal/services/auth"
)

const (
	baseURL = "https://api.cloudflare.com/client/v4"
	timeout = 30 * time.Second

	// TokenName is the keychain entry holding the API token. The token
	// needs Zone:Read and Cache Purge permissions.
	TokenName = "cloudflare"

	zoneCacheTTL = 24 * time.Hour
)

// Client talks to the Cloudflare API with a scoped API token.
type Client struct {
	token   string
	baseURL string
	client  *http.Client
	zones   *cache.Cache
	retry   retry.Policy
}

// New creates a Client. zones may be nil to disable zone ID caching.
func New(token string, zones *cache.Cache) *Client {
	return &Client{
		token:   token,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		zones:   zones,
		retry:   retry.Policy{Attempts: 3, Base: time.Second, Cap: 8 * time.Second},
	}
}

// FromStore builds a Client from the token saved by "ccev auth login cloudflare".
func FromStore(store auth.Store, zones *cache.Cache) (*Client, error) {
	token, err := store.GetToken(TokenName)
	if err != nil {
		return nil, fmt.Errorf("cloudflare: token not found (run 'ccev auth login cloudflare'): %w", err)
	}
	return New(token, zones), nil
}

// envelope is the standard Cloudflare API response wrapper.
type envelope[T any] struct {
	Success bool       `json:"success"`
	Errors  []apiError `json:"errors"`
	Result  T          `json:"result"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type zone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type purgeResult struct {
	ID string `json:"id"`
}

// envelopeError maps a failed response to a domain sentinel where one fits.
func envelopeError(success bool, errs []apiError, httpStatus int) error {
	if success {
		return nil
	}

	switch httpStatus {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, errorString(errs))
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, errorString(errs))
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, errorString(errs))
	}

	for _, e := range errs {
		msg := strings.ToLower(e.Message)
		switch {
		case e.Code == 9109 || e.Code == 10000 || strings.Contains(msg, "authentication"):
			return fmt.Errorf("%w: %s", domain.ErrUnauthorized, e.Message)
		case strings.Contains(msg, "not found"):
			return fmt.Errorf("%w: %s", domain.ErrNotFound, e.Message)
		}
	}

	return fmt.Errorf("cloudflare: %s", errorString(errs))
}

func errorString(errs []apiError) string {
	if len(errs) == 0 {
		return "unknown error"
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf("[%d] %s", e.Code, e.Message))
	}
	return strings.Join(msgs, "; ")
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) (int, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("cloudflare: failed to encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, fmt.Errorf("cloudflare: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("cloudflare: request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("cloudflare: failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// ZoneID resolves a zone name such as "example.com" to its ID. Results are
// cached for a day. Rate-limited or timed-out lookups are retried.
func (c *Client) ZoneID(ctx context.Context, name string) (string, error) {
	var id string
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		id, err = c.lookupZone(ctx, name)
		return err
	})
	return id, err
}

func (c *Client) lookupZone(ctx context.Context, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	cacheKey := zoneCacheKey(name)

	var cached string
	if ok, _ := c.zones.Get(cacheKey, zoneCacheTTL, &cached); ok && cached != "" {
		return cached, nil
	}

	var out envelope[[]zone]
	status, err := c.doJSON(ctx, http.MethodGet, "/zones?per_page=1&name="+url.QueryEscape(name), nil, &out)
	if err != nil {
		return "", fmt.Errorf("failed to look up zone for %q: %w", name, err)
	}
	if apiErr := envelopeError(out.Success, out.Errors, status); apiErr != nil {
		return "", fmt.Errorf("failed to look up zone for %q: %w", name, apiErr)
	}
	if len(out.Result) == 0 {
		return "", fmt.Errorf("zone for %q: %w", name, domain.ErrNotFound)
	}

	id := out.Result[0].ID
	_ = c.zones.Set(cacheKey, id)
	return id, nil
}

// PurgeEverything drops every cached file for the zone. It is sent once.
func (c *Client) PurgeEverything(ctx context.Context, zoneID string) error {
	var out envelope[purgeResult]
	body := map[string]bool{"purge_everything": true}
	status, err := c.doJSON(ctx, http.MethodPost, "/zones/"+url.PathEscape(zoneID)+"/purge_cache", body, &out)
	if err != nil {
		return err
	}
	return envelopeError(out.Success, out.Errors, status)
}

// PurgeZone resolves name and purges it. A not-found purge drops the cached
// zone ID so the next call looks it up again.
func (c *Client) PurgeZone(ctx context.Context, name string) error {
	id, err := c.ZoneID(ctx, name)
	if err != nil {
		return err
	}
	if err := c.PurgeEverything(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = c.zones.Invalidate(zoneCacheKey(name))
		}
		return err
	}
	return nil
}

func zoneCacheKey(name string) string {
	return "cloudflare-zone-" + strings.ToLower(strings.TrimSpace(name))
}

// ZoneName derives the zone from a site URL: the host with a leading
// "www." removed.
func ZoneName(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
