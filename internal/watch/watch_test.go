package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nathanbeddoewebdev/ccev/internal/config"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestConfig_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := (&config.Config{SiteURL: "https://old.example.com"}).SaveTo(path); err != nil {
		t.Fatal(err)
	}
	live := config.NewLive(&config.Config{SiteURL: "https://old.example.com"})

	reloaded := make(chan *config.Config, 4)
	log, _ := test.NewNullLogger()
	w := NewConfig(path, live, log, func(c *config.Config) { reloaded <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	// A broken file is ignored.
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(3 * settle)
	if got := live.Load().SiteURL; got != "https://old.example.com" {
		t.Fatalf("SiteURL after bad write = %q, want old value kept", got)
	}

	if err := (&config.Config{SiteURL: "https://new.example.com"}).SaveTo(path); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-reloaded:
		if c.SiteURL != "https://new.example.com" {
			t.Errorf("reloaded SiteURL = %q", c.SiteURL)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
	if got := live.Load().SiteURL; got != "https://new.example.com" {
		t.Errorf("live SiteURL = %q", got)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestConfig_MissingDirectory(t *testing.T) {
	log, _ := test.NewNullLogger()
	w := NewConfig(filepath.Join(t.TempDir(), "nope", "config.json"), config.NewLive(nil), log, nil)
	if err := w.Run(context.Background()); err == nil {
		t.Error("expected error for missing directory")
	}
}
