package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fixedClock returns a clock pinned at *t.
func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestGetSet_TTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(t.TempDir())
	c.SetClock(fixedClock(&now))

	if err := c.Set("cloudflare_zone_example.com", "zone-123"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	var got string
	ok, err := c.Get("cloudflare_zone_example.com", time.Hour, &got)
	if err != nil || !ok || got != "zone-123" {
		t.Fatalf("Get = %v, %v, %q; want hit zone-123", ok, err, got)
	}

	now = now.Add(2 * time.Hour)
	ok, _ = c.Get("cloudflare_zone_example.com", time.Hour, &got)
	if ok {
		t.Fatal("expected expired entry to miss")
	}
	if _, err := os.Stat(c.pathForKey("cloudflare_zone_example.com")); !os.IsNotExist(err) {
		t.Fatal("expected expired entry to be removed")
	}
}

func TestGet_NilAndDisabled(t *testing.T) {
	var c *Cache
	var dest string
	if ok, err := c.Get("k", time.Hour, &dest); ok || err != nil {
		t.Fatalf("nil cache Get = %v, %v", ok, err)
	}
	if err := c.Set("k", "v"); err != nil {
		t.Fatalf("nil cache Set error: %v", err)
	}
	if ok, _ := New(t.TempDir()).Get("k", 0, &dest); ok {
		t.Fatal("zero ttl should never hit")
	}
}

func TestGet_CorruptEntryMisses(t *testing.T) {
	c := New(t.TempDir())
	if err := os.WriteFile(c.pathForKey("bad"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	var dest string
	if ok, err := c.Get("bad", time.Hour, &dest); ok || err != nil {
		t.Fatalf("Get = %v, %v; want miss", ok, err)
	}
}

func TestGetOrFetch_Fresh(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(t.TempDir())
	c.SetClock(fixedClock(&now))
	if err := c.Set("plugins", []string{"cached.php"}); err != nil {
		t.Fatal(err)
	}

	called := 0
	got, err := GetOrFetch(c, context.Background(), "plugins", time.Minute, time.Hour, func(context.Context) ([]string, error) {
		called++
		return []string{"fresh.php"}, nil
	})
	if err != nil || len(got) != 1 || got[0] != "cached.php" {
		t.Fatalf("GetOrFetch = %v, %v", got, err)
	}
	if called != 0 {
		t.Fatalf("fetch called %d times, want 0", called)
	}
}

func TestGetOrFetch_StaleRevalidatesInBackground(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(t.TempDir())
	c.SetClock(fixedClock(&now))
	if err := c.Set("plugins", "cached"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(10 * time.Minute)

	called := make(chan struct{}, 1)
	got, err := GetOrFetch(c, context.Background(), "plugins", time.Minute, time.Hour, func(context.Context) (string, error) {
		called <- struct{}{}
		return "fresh", nil
	})
	if err != nil || got != "cached" {
		t.Fatalf("GetOrFetch = %q, %v; want stale value", got, err)
	}

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("expected background revalidation")
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		e, ok, _ := read[string](c, "plugins")
		if ok && e.Data == "fresh" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected the entry to be refreshed")
}

func TestGetOrFetch_ExpiredFetchesSync(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(t.TempDir())
	c.SetClock(fixedClock(&now))
	if err := c.Set("plugins", "cached"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Hour)

	got, err := GetOrFetch(c, context.Background(), "plugins", time.Minute, time.Hour, func(context.Context) (string, error) {
		return "fresh", nil
	})
	if err != nil || got != "fresh" {
		t.Fatalf("GetOrFetch = %q, %v", got, err)
	}
}

func TestGetOrFetch_MissPropagatesError(t *testing.T) {
	boom := errors.New("wp-cli missing")
	_, err := GetOrFetch(New(t.TempDir()), context.Background(), "plugins", time.Minute, time.Hour, func(context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestSubAndClear(t *testing.T) {
	root := New(t.TempDir())
	sub := root.Sub("plugins/site a")
	if err := sub.Set("k", 1); err != nil {
		t.Fatal(err)
	}
	if filepath.Base(sub.dir) != "plugins_site_a" {
		t.Errorf("sub dir = %s", sub.dir)
	}
	if err := sub.Clear(); err != nil {
		t.Fatal(err)
	}
	var n int
	if ok, _ := sub.Get("k", time.Hour, &n); ok {
		t.Fatal("expected cleared entry to miss")
	}
	if err := New(filepath.Join(t.TempDir(), "missing")).Clear(); err != nil {
		t.Fatalf("Clear on missing dir: %v", err)
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := map[string]string{
		"":                      "cache",
		"cloudflare_zone_a.com": "cloudflare_zone_a_com",
		" spaced key ":          "spaced_key",
	}
	for in, want := range tests {
		if got := sanitizeKey(in); got != want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}
