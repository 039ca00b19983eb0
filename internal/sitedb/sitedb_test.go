package sitedb

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"nathanbeddoewebdev/ccev/internal/config"
	"nathanbeddoewebdev/ccev/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func tempSite(t *testing.T, names ...string) *SQLite {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "site.db"), "wp_")
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	for _, n := range names {
		if err := db.PutOption(ctx, n, "v"); err != nil {
			t.Fatal(err)
		}
	}
	return db
}

func remaining(t *testing.T, db *SQLite) []string {
	t.Helper()
	rows, err := db.db.Query(`SELECT option_name FROM wp_options`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		_ = rows.Scan(&n)
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func TestDeleteOptionsLike_EscapesUnderscore(t *testing.T) {
	db := tempSite(t,
		"_transient_feed_1",
		"_site_transient_update_core",
		"xtransientx",
		"siteurl",
	)

	n, err := db.DeleteOptionsLike(context.Background(),
		[]string{`\_transient\_%`, `\_site\_transient\_%`}, nil)
	if err != nil {
		t.Fatalf("DeleteOptionsLike failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d rows, want 2", n)
	}
	if diff := cmp.Diff([]string{"siteurl", "xtransientx"}, remaining(t, db)); diff != "" {
		t.Errorf("remaining (-want +got):\n%s", diff)
	}
}

func TestDeleteOptionsLike_Excludes(t *testing.T) {
	db := tempSite(t,
		"theme_fragment_header",
		"clear_cache_everywhere_fragment_cache",
		"blogname",
	)

	_, err := db.DeleteOptionsLike(context.Background(),
		[]string{"%" + EscapeLike("_fragment_") + "%"},
		[]string{"%clear" + EscapeLike("_cache_everywhere_") + "%"})
	if err != nil {
		t.Fatalf("DeleteOptionsLike failed: %v", err)
	}
	if diff := cmp.Diff([]string{"blogname", "clear_cache_everywhere_fragment_cache"}, remaining(t, db)); diff != "" {
		t.Errorf("remaining (-want +got):\n%s", diff)
	}
}

func TestOptionAndDeleteOption(t *testing.T) {
	ctx := context.Background()
	db := tempSite(t, "rewrite_rules")

	v, ok, err := db.Option(ctx, "rewrite_rules")
	if err != nil || !ok || v != "v" {
		t.Fatalf("Option = %q, %v, %v", v, ok, err)
	}

	n, err := db.DeleteOption(ctx, "rewrite_rules")
	if err != nil || n != 1 {
		t.Fatalf("DeleteOption = %d, %v", n, err)
	}
	if _, ok, _ := db.Option(ctx, "rewrite_rules"); ok {
		t.Error("option still present after delete")
	}
}

func TestOptionsTable_RejectsBadPrefix(t *testing.T) {
	if _, err := optionsTable("wp_; DROP TABLE x"); err == nil {
		t.Error("expected error for unsafe prefix")
	}
	if got, _ := optionsTable("site2_"); got != "site2_options" {
		t.Errorf("optionsTable = %q", got)
	}
}

func TestParseMySQLDSN(t *testing.T) {
	tests := []struct {
		dsn     string
		want    MySQLConfig
		wantErr bool
	}{
		{
			dsn:  "wp:s3cr@t@db.internal/wordpress",
			want: MySQLConfig{User: "wp", Password: "s3cr@t", Addr: "db.internal:3306", DBName: "wordpress"},
		},
		{
			dsn:  "root@tcp(127.0.0.1:3307)/site?charset=utf8mb4",
			want: MySQLConfig{User: "root", Addr: "127.0.0.1:3307", DBName: "site"},
		},
		{dsn: "nohost", wantErr: true},
		{dsn: "u:p@host:3306", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMySQLDSN(tt.dsn)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMySQLDSN(%q) expected error", tt.dsn)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMySQLDSN(%q) error: %v", tt.dsn, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseMySQLDSN(%q) (-want +got):\n%s", tt.dsn, diff)
		}
	}
}

func TestOpen_NotConfigured(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{})
	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
