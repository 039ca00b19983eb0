package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestDefaultPathOverride(t *testing.T) {
	t.Cleanup(ResetPath)

	path := filepath.Join(t.TempDir(), "ccev.db")
	SetPath(path)

	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath error: %v", err)
	}
	if got != path {
		t.Fatalf("DefaultPath = %q, want %q", got, path)
	}
}

func TestOpenCreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ccev.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := db.Ping(); err != nil {
		t.Fatalf("Ping error: %v", err)
	}
}

func TestExec(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "ccev.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if _, err := Exec(ctx, db, `CREATE TABLE t (v TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := Exec(ctx, db, `INSERT INTO t (v) VALUES (?), (?)`, "a", "b")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 2 {
		t.Errorf("RowsAffected = %d, want 2", n)
	}

	if _, err := Exec(ctx, db, `INSERT INTO missing (v) VALUES (1)`); err == nil {
		t.Error("expected error for missing table")
	}
}

func TestIsBusy_NonSQLiteError(t *testing.T) {
	if IsBusy(errors.New("database is locked")) {
		t.Error("plain errors must not be treated as busy")
	}
	if IsBusy(nil) {
		t.Error("nil is not busy")
	}
}
