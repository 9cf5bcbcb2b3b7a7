package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Napageneral/rolodex/internal/db"
)

// OpenTestDB returns an in-memory database with the rolodex schema. The
// pool is pinned to one connection so every query sees the same memory DB.
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	d.SetMaxOpenConns(1)
	if _, err := d.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := db.ApplySchema(d); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}
