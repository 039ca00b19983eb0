// Package options provides a small named-value store, modelled on the
// options table of the site being cleared. It holds the last-results map and
// short-lived notices handed from a clearing pass to the next page view.
//
// Storage is backed by the SQLite database at ~/.config/ccev/ccev.db
// (shared with history, separate table).
package options

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nathanbeddoewebdev/ccev/internal/database"
)

// Repository defines the persistence interface for named values.
type Repository interface {
	// Get returns the value stored under name. Expired values are reported
	// as missing.
	Get(ctx context.Context, name string) (string, bool, error)

	// Set upserts a value. A ttl of zero keeps it until overwritten.
	Set(ctx context.Context, name, value string, ttl time.Duration) error

	// Delete removes a value. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// Consume returns a value and deletes it, so it is seen at most once.
	Consume(ctx context.Context, name string) (string, bool, error)

	Close() error
}

// SQLiteRepository implements Repository backed by a local SQLite database.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the repository at the default path.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	return OpenAt(path)
}

// OpenAt creates or opens a SQLite database at the given path.
func OpenAt(path string) (*SQLiteRepository, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}

	r := &SQLiteRepository{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) migrate() error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS options (
			name       TEXT PRIMARY KEY,
			value      TEXT NOT NULL DEFAULT '',
			expires_at TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("options: migration failed: %w", err)
	}
	return nil
}

// Get returns the value stored under name.
func (r *SQLiteRepository) Get(ctx context.Context, name string) (string, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value, expires_at FROM options WHERE name = ?`, name)

	var value, expiresStr string
	err := row.Scan(&value, &expiresStr)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("options: query %q failed: %w", name, err)
	}
	if r.expired(expiresStr) {
		return "", false, nil
	}
	return value, true, nil
}

// Set upserts a value.
func (r *SQLiteRepository) Set(ctx context.Context, name, value string, ttl time.Duration) error {
	now := r.now().UTC()
	expires := ""
	if ttl > 0 {
		expires = now.Add(ttl).Format(time.RFC3339Nano)
	}

	_, err := database.Exec(ctx, r.db, `
		INSERT INTO options (name, value, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		name, value, expires, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("options: upsert %q failed: %w", name, err)
	}
	return nil
}

// Delete removes a value.
func (r *SQLiteRepository) Delete(ctx context.Context, name string) error {
	if _, err := database.Exec(ctx, r.db, `DELETE FROM options WHERE name = ?`, name); err != nil {
		return fmt.Errorf("options: delete %q failed: %w", name, err)
	}
	return nil
}

// Consume returns a value and deletes it in one statement, so two readers
// cannot both see it.
func (r *SQLiteRepository) Consume(ctx context.Context, name string) (string, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`DELETE FROM options WHERE name = ? RETURNING value, expires_at`, name)

	var value, expiresStr string
	err := row.Scan(&value, &expiresStr)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("options: consume %q failed: %w", name, err)
	}
	if r.expired(expiresStr) {
		return "", false, nil
	}
	return value, true, nil
}

// Close releases database resources.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) expired(expiresStr string) bool {
	if expiresStr == "" {
		return false
	}
	expires, err := time.Parse(time.RFC3339Nano, expiresStr)
	if err != nil {
		return false
	}
	return !r.now().UTC().Before(expires)
}
