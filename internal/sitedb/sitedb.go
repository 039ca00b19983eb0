// Package sitedb talks to the WordPress database of the site being cleared.
// Only the options table is touched.
package sitedb

import (
	"context"
	"fmt"
	"strings"

	"nathanbeddoewebdev/ccev/internal/config"
	"nathanbeddoewebdev/ccev/internal/domain"
)

var errNotConfigured = fmt.Errorf("sitedb: no database DSN: %w", domain.ErrNotConfigured)

// DB is the subset of site database access the clearers need.
type DB interface {
	// Option returns the raw value of a site option.
	Option(ctx context.Context, name string) (string, bool, error)

	// DeleteOption removes one option and reports how many rows went.
	DeleteOption(ctx context.Context, name string) (int64, error)

	// DeleteOptionsLike removes every option whose name matches one of the
	// LIKE patterns and none of the exclusions. Patterns use backslash as
	// the escape character.
	DeleteOptionsLike(ctx context.Context, patterns, excludes []string) (int64, error)

	Close() error
}

// Open connects to the site database described by cfg. It returns
// domain.ErrNotConfigured wrapped when no DSN is set.
func Open(ctx context.Context, cfg *config.Config) (DB, error) {
	if strings.TrimSpace(cfg.DBDSN) == "" {
		return nil, errNotConfigured
	}
	switch cfg.DBDriver {
	case "", "mysql":
		return OpenMySQL(ctx, cfg.DBDSN, cfg.Prefix())
	case "sqlite":
		return OpenSQLite(cfg.DBDSN, cfg.Prefix())
	default:
		return nil, fmt.Errorf("sitedb: unsupported driver %q", cfg.DBDriver)
	}
}

// dialect carries the small SQL differences between drivers.
type dialect struct {
	// escape is the ESCAPE clause naming backslash as the LIKE escape.
	escape string
}

var (
	mysqlDialect  = dialect{escape: `ESCAPE '\\'`}
	sqliteDialect = dialect{escape: `ESCAPE '\'`}
)

func optionsTable(prefix string) (string, error) {
	for _, r := range prefix {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return "", fmt.Errorf("sitedb: invalid table prefix %q", prefix)
		}
	}
	return prefix + "options", nil
}

func (d dialect) selectOption(table string) string {
	return "SELECT option_value FROM " + table + " WHERE option_name = ? LIMIT 1"
}

func (d dialect) deleteOption(table string) string {
	return "DELETE FROM " + table + " WHERE option_name = ?"
}

func (d dialect) deleteLike(table string, patterns, excludes []string) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(patterns)+len(excludes))

	b.WriteString("DELETE FROM ")
	b.WriteString(table)
	b.WriteString(" WHERE (")
	for i, p := range patterns {
		if i > 0 {
			b.WriteString(" OR ")
		}
		b.WriteString("option_name LIKE ? ")
		b.WriteString(d.escape)
		args = append(args, p)
	}
	b.WriteString(")")
	for _, e := range excludes {
		b.WriteString(" AND option_name NOT LIKE ? ")
		b.WriteString(d.escape)
		args = append(args, e)
	}
	return b.String(), args
}

// EscapeLike escapes LIKE wildcards in s with backslashes.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
