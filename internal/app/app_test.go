package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"nathanbeddoewebdev/ccev/internal/clearers"
	"nathanbeddoewebdev/ccev/internal/config"
	"nathanbeddoewebdev/ccev/internal/database"
	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/services/auth"
	"nathanbeddoewebdev/ccev/internal/sitedb"

	"github.com/sirupsen/logrus/hooks/test"
)

func setupPaths(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	config.SetPath(filepath.Join(dir, "config.json"))
	database.SetPath(filepath.Join(dir, "ccev.db"))
	t.Cleanup(func() {
		config.ResetPath()
		database.ResetPath()
	})
	return dir
}

func seedSite(t *testing.T, path string) {
	t.Helper()
	ctx := context.Background()
	db, err := sitedb.OpenSQLite(path, "wp_")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	if err := db.PutOption(ctx, "active_plugins", `a:1:{i:0;s:23:"wp-rocket/wp-rocket.php";}`); err != nil {
		t.Fatal(err)
	}
	if err := db.PutOption(ctx, "rewrite_rules", "a:0:{}"); err != nil {
		t.Fatal(err)
	}
}

func keys(actions []domain.Action) map[string]domain.Action {
	out := make(map[string]domain.Action, len(actions))
	for _, a := range actions {
		out[a.Key] = a
	}
	return out
}

func TestOpen_WiresSiteAndCustomActions(t *testing.T) {
	clearers.Reset()
	clearers.RegisterBuiltins()
	t.Cleanup(clearers.Reset)

	dir := setupPaths(t)
	sitePath := filepath.Join(dir, "site.db")
	seedSite(t, sitePath)

	actionsPath := filepath.Join(dir, "actions.yaml")
	if err := os.WriteFile(actionsPath, []byte("remove: [opcache_reset]\n"+
		"actions:\n  - {key: purge_cdn, title: Purge CDN, http: {url: 'https://cdn.example.com/purge'}}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{DBDriver: "sqlite", DBDSN: sitePath, ActionsFile: actionsPath}
	cfg.SetEnabled("transients", false)
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	log, _ := test.NewNullLogger()
	a, err := Open(context.Background(), Options{Log: log, Auth: auth.NewMockStore()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })

	got := keys(a.Service.Actions(context.Background()))
	if _, ok := got["wp_rocket"]; !ok {
		t.Error("expected wp_rocket integration for the active plugin")
	}
	if _, ok := got["purge_cdn"]; !ok {
		t.Error("expected custom purge_cdn action")
	}
	if _, ok := got["opcache_reset"]; ok {
		t.Error("opcache_reset should have been removed")
	}
	if got["transients"].Enabled {
		t.Error("transients should be disabled by config")
	}

	payload, err := a.Service.RunAction(context.Background(), "rewrite_rules", false)
	if err != nil {
		t.Fatal(err)
	}
	if payload.Status != domain.StatusSuccess {
		t.Errorf("rewrite_rules = %s %v, want success", payload.Status, payload.ErrorMessage)
	}
}

func TestOpen_OfflineWithoutConfig(t *testing.T) {
	setupPaths(t)
	log, _ := test.NewNullLogger()

	a, err := Open(context.Background(), Options{Log: log, Auth: auth.NewMockStore(), Offline: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	if a.Deps.SiteDB != nil || a.Deps.Redis != nil || a.Deps.WP != nil {
		t.Error("offline open should not connect backends")
	}
	if len(a.Service.Actions(context.Background())) != 12 {
		t.Errorf("want the 12 built-in actions")
	}
}

func TestOpen_BadActionsFile(t *testing.T) {
	dir := setupPaths(t)
	bad := filepath.Join(dir, "actions.yaml")
	if err := os.WriteFile(bad, []byte("extras: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := (&config.Config{ActionsFile: bad}).Save(); err != nil {
		t.Fatal(err)
	}

	log, _ := test.NewNullLogger()
	if _, err := Open(context.Background(), Options{Log: log, Auth: auth.NewMockStore(), Offline: true}); err == nil {
		t.Error("expected error for invalid actions file")
	}
}

func TestSigner_CreatesSecretOnce(t *testing.T) {
	setupPaths(t)
	log, _ := test.NewNullLogger()
	store := auth.NewMockStore()
	a, err := Open(context.Background(), Options{Log: log, Auth: store, Offline: true})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	s, err := a.Signer()
	if err != nil {
		t.Fatal(err)
	}
	tok, err := s.Issue("admin", 0)
	if err != nil {
		t.Fatal(err)
	}
	s2, _ := a.Signer()
	if _, err := s2.Verify(tok); err != nil {
		t.Errorf("second signer rejected token: %v", err)
	}
}
