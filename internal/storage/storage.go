// Package storage persists the whole address book to SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Napageneral/rolodex/internal/addressbook"
	"github.com/Napageneral/rolodex/internal/model"
	"github.com/Napageneral/rolodex/internal/state"
)

const (
	stateScope  = "addressbook"
	countersKey = "counters"
	versionKey  = "version"
)

// Queryer is satisfied by *sql.DB and *sql.Tx.
type Queryer interface {
	state.Querier
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Begin starts a transaction that already holds the database write lock, so
// what it reads stays current until it commits.
func Begin(ctx context.Context, db *sql.DB) (*sql.Tx, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO state (scope, key, value, updated_at)
		VALUES (?, ?, '0', ?)
		ON CONFLICT(scope, key) DO NOTHING
	`, stateScope, versionKey, time.Now().Unix()); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to lock address book: %w", err)
	}
	return tx, nil
}

// Version returns how many saves the stored address book has seen.
func Version(q state.Querier) (int64, error) {
	raw, ok, err := state.Get(q, stateScope, versionKey)
	if err != nil || !ok {
		return 0, err
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad address book version %q: %w", raw, err)
	}
	return v, nil
}

// Save replaces the stored address book with book in one transaction.
func Save(ctx context.Context, db *sql.DB, book addressbook.ReadOnlyAddressBook) error {
	tx, err := Begin(ctx, db)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := SaveTx(ctx, tx, book); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}
	return nil
}

// SaveTx replaces the stored address book with book inside tx and bumps the
// stored version. It returns the new version.
func SaveTx(ctx context.Context, tx *sql.Tx, book addressbook.ReadOnlyAddressBook) (int64, error) {
	version, err := Version(tx)
	if err != nil {
		return 0, err
	}

	for _, stmt := range []string{
		`DELETE FROM person_events`,
		`DELETE FROM persons`,
		`DELETE FROM events`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("failed to clear tables: %w", err)
		}
	}

	insEvent, err := tx.PrepareContext(ctx, `
		INSERT INTO events (id, position, name, start_at, end_at, location, description, recurrence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer insEvent.Close()
	for i, e := range book.Events().All() {
		var end any
		if !e.End.IsZero() {
			end = e.End.Format(time.RFC3339)
		}
		if _, err := insEvent.ExecContext(ctx, e.ID, i, e.Name, e.Start.Format(time.RFC3339), end,
			e.Location, e.Description, e.Recurrence); err != nil {
			return 0, fmt.Errorf("failed to insert event %d: %w", e.ID, err)
		}
	}

	insPerson, err := tx.PrepareContext(ctx, `
		INSERT INTO persons (id, position, name, phone, email, address, tags_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer insPerson.Close()
	insLink, err := tx.PrepareContext(ctx, `INSERT INTO person_events (person_id, event_id) VALUES (?, ?)`)
	if err != nil {
		return 0, err
	}
	defer insLink.Close()

	for i, p := range book.Persons().All() {
		tags := make([]string, len(p.Tags))
		for j, t := range p.Tags {
			tags[j] = string(t)
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return 0, err
		}
		if _, err := insPerson.ExecContext(ctx, p.ID, i, string(p.Name), string(p.Phone), string(p.Email),
			string(p.Address), string(tagsJSON)); err != nil {
			return 0, fmt.Errorf("failed to insert person %d: %w", p.ID, err)
		}
		for _, eventID := range p.EventIDs {
			if _, err := insLink.ExecContext(ctx, p.ID, eventID); err != nil {
				return 0, fmt.Errorf("failed to link person %d to event %d: %w", p.ID, eventID, err)
			}
		}
	}

	if err := state.SetJSON(tx, stateScope, countersKey, book.Counters()); err != nil {
		return 0, err
	}
	version++
	if err := state.Set(tx, stateScope, versionKey, strconv.FormatInt(version, 10)); err != nil {
		return 0, err
	}
	return version, nil
}

// Load reads the stored address book from db or an open transaction. An
// empty database yields an empty book.
func Load(ctx context.Context, db Queryer) (*addressbook.AddressBook, error) {
	book := addressbook.New()

	events, err := loadEvents(ctx, db)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if _, err := book.AddEvent(e); err != nil {
			return nil, fmt.Errorf("stored event %d: %w", e.ID, err)
		}
	}

	persons, err := loadPersons(ctx, db)
	if err != nil {
		return nil, err
	}
	for _, p := range persons {
		if _, err := book.AddPerson(p); err != nil {
			return nil, fmt.Errorf("stored person %d: %w", p.ID, err)
		}
	}

	var counters addressbook.IDCounterList
	if _, err := state.GetJSON(db, stateScope, countersKey, &counters); err != nil {
		return nil, err
	}
	book.RaiseCounters(counters)
	return book, nil
}

func loadEvents(ctx context.Context, db Queryer) ([]*model.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, start_at, end_at, location, description, recurrence
		FROM events
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []*model.Event
	for rows.Next() {
		var e model.Event
		var start string
		var end sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &start, &end, &e.Location, &e.Description, &e.Recurrence); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if e.Start, err = time.Parse(time.RFC3339, start); err != nil {
			return nil, fmt.Errorf("event %d has bad start %q: %w", e.ID, start, err)
		}
		if end.Valid {
			if e.End, err = time.Parse(time.RFC3339, end.String); err != nil {
				return nil, fmt.Errorf("event %d has bad end %q: %w", e.ID, end.String, err)
			}
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating events: %w", err)
	}
	return out, nil
}

func loadPersons(ctx context.Context, db Queryer) ([]*model.Person, error) {
	links, err := loadLinks(ctx, db)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, phone, email, address, tags_json
		FROM persons
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	var out []*model.Person
	for rows.Next() {
		var id int
		var name, phone, email, address, tagsJSON string
		if err := rows.Scan(&id, &name, &phone, &email, &address, &tagsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		var raw []string
		if err := json.Unmarshal([]byte(tagsJSON), &raw); err != nil {
			return nil, fmt.Errorf("person %d has bad tags: %w", id, err)
		}
		tags := make([]model.Tag, len(raw))
		for i, t := range raw {
			tags[i] = model.Tag(t)
		}
		p := model.NewPerson(model.Name(name), model.Phone(phone), model.Email(email), model.Address(address), tags)
		p.ID = id
		for _, eventID := range links[id] {
			p.LinkEvent(eventID)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating persons: %w", err)
	}
	return out, nil
}

func loadLinks(ctx context.Context, db Queryer) (map[int][]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT person_id, event_id FROM person_events`)
	if err != nil {
		return nil, fmt.Errorf("failed to query person events: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]int)
	for rows.Next() {
		var personID, eventID int
		if err := rows.Scan(&personID, &eventID); err != nil {
			return nil, fmt.Errorf("failed to scan person event: %w", err)
		}
		out[personID] = append(out[personID], eventID)
	}
	return out, rows.Err()
}
