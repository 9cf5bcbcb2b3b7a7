// Package state keeps small scoped key/value records next to the address
// book: ID counters, live watcher status and the last import.
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func ensureTable(db Querier) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS state (
			scope TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (scope, key)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure state table: %w", err)
	}
	return nil
}

func Get(db Querier, scope string, key string) (string, bool, error) {
	if err := ensureTable(db); err != nil {
		return "", false, err
	}
	var v string
	err := db.QueryRow(`SELECT value FROM state WHERE scope = ? AND key = ?`, scope, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get state: %w", err)
	}
	return v, true, nil
}

func Set(db Querier, scope string, key string, value string) error {
	if err := ensureTable(db); err != nil {
		return err
	}
	now := time.Now().Unix()
	_, err := db.Exec(`
		INSERT INTO state (scope, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, scope, key, value, now)
	if err != nil {
		return fmt.Errorf("failed to set state: %w", err)
	}
	return nil
}

// GetJSON decodes the stored value into out. It reports false when the key
// is absent.
func GetJSON(db Querier, scope string, key string, out any) (bool, error) {
	raw, ok, err := Get(db, scope, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return true, fmt.Errorf("failed to decode state %s/%s: %w", scope, key, err)
	}
	return true, nil
}

func SetJSON(db Querier, scope string, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode state %s/%s: %w", scope, key, err)
	}
	return Set(db, scope, key, string(b))
}
