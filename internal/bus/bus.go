// Package bus is the append-only change log. Every command that modifies the
// address book, and every live import, leaves one entry.
package bus

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TypeCommand = "command.executed"
	TypeImport  = "import.completed"
)

type Event struct {
	Seq       int64   `json:"seq"`
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Source    *string `json:"source,omitempty"`
	CreatedAt int64   `json:"created_at"`
	Payload   *string `json:"payload_json,omitempty"`
}

func ensureTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bus_events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			source TEXT,
			created_at INTEGER NOT NULL,
			payload_json TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure bus_events table: %w", err)
	}
	return nil
}

// Emit appends an event and returns its ID. source names the caller
// (shell, exec, live) and may be empty.
func Emit(db *sql.DB, typ string, source string, payload any) (string, error) {
	if typ == "" {
		return "", fmt.Errorf("type is required")
	}
	if err := ensureTable(db); err != nil {
		return "", err
	}
	now := time.Now().Unix()
	id := uuid.New().String()

	var sourceVal any
	if source != "" {
		sourceVal = source
	}
	var payloadVal any
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("failed to marshal payload: %w", err)
		}
		payloadVal = string(b)
	}

	_, err := db.Exec(`
		INSERT INTO bus_events (id, type, source, created_at, payload_json)
		VALUES (?, ?, ?, ?, ?)
	`, id, typ, sourceVal, now, payloadVal)
	if err != nil {
		return "", fmt.Errorf("failed to insert bus event: %w", err)
	}
	return id, nil
}

func List(db *sql.DB, afterSeq int64, limit int) ([]Event, error) {
	if err := ensureTable(db); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`
		SELECT seq, id, type, source, created_at, payload_json
		FROM bus_events
		WHERE seq > ?
		ORDER BY seq ASC
		LIMIT ?
	`, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bus events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var source sql.NullString
		var payload sql.NullString
		if err := rows.Scan(&e.Seq, &e.ID, &e.Type, &source, &e.CreatedAt, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan bus event: %w", err)
		}
		if source.Valid {
			e.Source = &source.String
		}
		if payload.Valid {
			e.Payload = &payload.String
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating bus events: %w", err)
	}
	return out, nil
}

// Tail returns the last n events in ascending order.
func Tail(db *sql.DB, n int) ([]Event, error) {
	if err := ensureTable(db); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = 20
	}
	var maxSeq int64
	if err := db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM bus_events`).Scan(&maxSeq); err != nil {
		return nil, fmt.Errorf("failed to read bus head: %w", err)
	}
	return List(db, max(maxSeq-int64(n), 0), n)
}
