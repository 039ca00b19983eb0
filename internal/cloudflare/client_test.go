package cloudflare

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"nathanbeddoewebdev/ccev/internal/cache"
	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/retry"
	"nathanbeddoewebdev/ccev/internal/services/auth"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New("test-token", cache.New(t.TempDir()))
	c.baseURL = srv.URL
	c.retry = retry.Policy{Attempts: 2}
	return c
}

func TestPurgeZone(t *testing.T) {
	var zoneLookups, purges atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /zones", func(w http.ResponseWriter, r *http.Request) {
		zoneLookups.Add(1)
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Query().Get("name") != "example.com" {
			t.Errorf("zone name = %q", r.URL.Query().Get("name"))
		}
		w.Write([]byte(`{"success":true,"errors":[],"result":[{"id":"zone-123","name":"example.com"}]}`))
	})
	mux.HandleFunc("POST /zones/zone-123/purge_cache", func(w http.ResponseWriter, r *http.Request) {
		purges.Add(1)
		var body map[string]bool
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body["purge_everything"] {
			t.Errorf("body = %v, %v", body, err)
		}
		w.Write([]byte(`{"success":true,"errors":[],"result":{"id":"zone-123"}}`))
	})
	c := newTestClient(t, mux)

	for range 2 {
		if err := c.PurgeZone(context.Background(), "Example.com"); err != nil {
			t.Fatalf("PurgeZone failed: %v", err)
		}
	}
	if zoneLookups.Load() != 1 {
		t.Errorf("zone looked up %d times, want 1 (cached)", zoneLookups.Load())
	}
	if purges.Load() != 2 {
		t.Errorf("purged %d times, want 2", purges.Load())
	}
}

func TestPurgeZone_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"unauthorized", http.StatusForbidden, `{"success":false,"errors":[{"code":10000,"message":"Authentication error"}]}`, domain.ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, `{"success":false,"errors":[{"code":971,"message":"slow down"}]}`, domain.ErrRateLimited},
		{"no zone", http.StatusOK, `{"success":true,"errors":[],"result":[]}`, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			err := c.PurgeZone(context.Background(), "example.com")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestZoneID_RetriesRateLimit(t *testing.T) {
	var lookups, purges atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /zones", func(w http.ResponseWriter, r *http.Request) {
		if lookups.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"errors":[{"code":971,"message":"slow down"}]}`))
			return
		}
		w.Write([]byte(`{"success":true,"errors":[],"result":[{"id":"zone-123","name":"example.com"}]}`))
	})
	mux.HandleFunc("POST /zones/zone-123/purge_cache", func(w http.ResponseWriter, r *http.Request) {
		purges.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"success":false,"errors":[{"code":971,"message":"slow down"}]}`))
	})
	c := newTestClient(t, mux)

	err := c.PurgeZone(context.Background(), "example.com")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("err = %v, want rate limited purge", err)
	}
	if lookups.Load() != 2 {
		t.Errorf("zone lookups = %d, want 2", lookups.Load())
	}
	if purges.Load() != 1 {
		t.Errorf("purge attempts = %d, want 1", purges.Load())
	}
}

func TestFromStore(t *testing.T) {
	store := auth.NewMockStore()
	if _, err := FromStore(store, nil); !errors.Is(err, auth.ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound, got %v", err)
	}
	_ = store.SetToken(TokenName, "abc")
	c, err := FromStore(store, nil)
	if err != nil || c.token != "abc" {
		t.Errorf("FromStore = %+v, %v", c, err)
	}
}

func TestZoneName(t *testing.T) {
	tests := map[string]string{
		"https://www.Example.com/blog": "example.com",
		"http://shop.example.org":      "shop.example.org",
		"not a url":                    "",
	}
	for in, want := range tests {
		if got := ZoneName(in); got != want {
			t.Errorf("ZoneName(%q) = %q, want %q", in, got, want)
		}
	}
}
