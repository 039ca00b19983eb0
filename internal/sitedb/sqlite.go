package sitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nathanbeddoewebdev/ccev/internal/database"
)

// SQLite is a DB for sites running on the SQLite database integration, and
// for tests.
type SQLite struct {
	db    *sql.DB
	table string
}

// OpenSQLite opens the site database file at path.
func OpenSQLite(path, prefix string) (*SQLite, error) {
	table, err := optionsTable(prefix)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sitedb: %w", err)
	}
	return &SQLite{db: db, table: table}, nil
}

// EnsureSchema creates the options table if it is missing.
func (s *SQLite) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+s.table+` (
			option_id    INTEGER PRIMARY KEY AUTOINCREMENT,
			option_name  TEXT NOT NULL UNIQUE,
			option_value TEXT NOT NULL DEFAULT '',
			autoload     TEXT NOT NULL DEFAULT 'yes'
		)`)
	if err != nil {
		return fmt.Errorf("sitedb: create %s: %w", s.table, err)
	}
	return nil
}

// PutOption upserts an option.
func (s *SQLite) PutOption(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO `+s.table+` (option_name, option_value) VALUES (?, ?)
		ON CONFLICT(option_name) DO UPDATE SET option_value = excluded.option_value`,
		name, value)
	if err != nil {
		return fmt.Errorf("sitedb: put option %q: %w", name, err)
	}
	return nil
}

func (s *SQLite) Option(ctx context.Context, name string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, sqliteDialect.selectOption(s.table), name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sitedb: read option %q: %w", name, err)
	}
	return v, true, nil
}

func (s *SQLite) DeleteOption(ctx context.Context, name string) (int64, error) {
	return s.exec(ctx, sqliteDialect.deleteOption(s.table), name)
}

func (s *SQLite) DeleteOptionsLike(ctx context.Context, patterns, excludes []string) (int64, error) {
	if len(patterns) == 0 {
		return 0, nil
	}
	q, args := sqliteDialect.deleteLike(s.table, patterns, excludes)
	return s.exec(ctx, q, args...)
}

func (s *SQLite) exec(ctx context.Context, q string, args ...any) (int64, error) {
	res, err := database.Exec(ctx, s.db, q, args...)
	if err != nil {
		return 0, fmt.Errorf("sitedb: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
