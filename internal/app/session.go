// Package app ties the command model to its SQLite store: every line is
// parsed, executed, and, when it changed the address book, saved and logged
// to the bus.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Napageneral/rolodex/internal/bus"
	"github.com/Napageneral/rolodex/internal/command"
	"github.com/Napageneral/rolodex/internal/config"
	"github.com/Napageneral/rolodex/internal/db"
	"github.com/Napageneral/rolodex/internal/parser"
	"github.com/Napageneral/rolodex/internal/state"
	"github.com/Napageneral/rolodex/internal/storage"
)

const (
	importerScope = "importer"
	lastImportKey = "last_import"
)

// Session is one open address book.
type Session struct {
	DB     *sql.DB
	Model  *command.Model
	Parser *parser.Parser
	// Source is recorded on bus events (shell, exec, live).
	Source string

	opts command.Options
	// version is the stored version Model was loaded at; -1 forces a reload.
	version int64
}

// CommandPayload is the bus payload of a mutating command.
type CommandPayload struct {
	Line     string `json:"line"`
	Feedback string `json:"feedback"`
}

// ImportRecord describes one file import, stored as the last import and
// emitted on the bus.
type ImportRecord struct {
	BatchID  string `json:"batch_id"`
	File     string `json:"file"`
	Feedback string `json:"feedback"`
	At       int64  `json:"at"`
}

// Open opens the configured database and loads the address book.
func Open(ctx context.Context, cfg *config.Config, source string) (*Session, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}
	d, err := db.OpenConfigured(cfg)
	if err != nil {
		return nil, err
	}
	s, err := New(ctx, d, opts, source)
	if err != nil {
		d.Close()
		return nil, err
	}
	return s, nil
}

// Options derives command options from cfg and makes sure the import
// directory exists.
func Options(cfg *config.Config) (command.Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return command.Options{}, err
	}
	importDir, err := cfg.ImportPath()
	if err != nil {
		return command.Options{}, err
	}
	if err := os.MkdirAll(importDir, 0755); err != nil {
		return command.Options{}, fmt.Errorf("failed to create import directory: %w", err)
	}
	return command.Options{
		ImportDir:   importDir,
		Location:    loc,
		HorizonDays: cfg.Calendar.HorizonDays,
	}, nil
}

// New loads the address book stored in d.
func New(ctx context.Context, d *sql.DB, opts command.Options, source string) (*Session, error) {
	version, err := storage.Version(d)
	if err != nil {
		return nil, fmt.Errorf("failed to load address book: %w", err)
	}
	book, err := storage.Load(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("failed to load address book: %w", err)
	}
	m := command.NewModel(book, opts)
	return &Session{
		DB:      d,
		Model:   m,
		Parser:  parser.New(m.Options().Location),
		Source:  source,
		opts:    opts,
		version: version,
	}, nil
}

func (s *Session) Close() error {
	return s.DB.Close()
}

// Execute parses and runs one command line.
func (s *Session) Execute(ctx context.Context, line string) (command.Result, error) {
	cmd, err := s.Parser.Parse(line)
	if err != nil {
		return command.Result{}, err
	}
	return s.Run(ctx, cmd, line)
}

// Run executes an already built command. line is what gets logged on the
// bus when the command changed the address book.
func (s *Session) Run(ctx context.Context, cmd command.Command, line string) (command.Result, error) {
	res, err := s.run(ctx, cmd)
	if err != nil {
		return res, err
	}
	if res.Changed {
		if _, err := bus.Emit(s.DB, bus.TypeCommand, s.Source, CommandPayload{Line: line, Feedback: res.Feedback}); err != nil {
			return res, err
		}
	}
	return res, nil
}

// ImportFile imports the CSV file at path as one batch.
func (s *Session) ImportFile(ctx context.Context, path string) (command.Result, error) {
	res, err := s.run(ctx, &command.Import{File: path})
	if err != nil {
		return res, err
	}
	rec := ImportRecord{
		BatchID:  uuid.New().String(),
		File:     path,
		Feedback: res.Feedback,
		At:       time.Now().Unix(),
	}
	if err := state.SetJSON(s.DB, importerScope, lastImportKey, rec); err != nil {
		return res, err
	}
	if _, err := bus.Emit(s.DB, bus.TypeImport, s.Source, rec); err != nil {
		return res, err
	}
	return res, nil
}

// LastImport returns the most recent file import, if any.
func (s *Session) LastImport() (ImportRecord, bool, error) {
	var rec ImportRecord
	ok, err := state.GetJSON(s.DB, importerScope, lastImportKey, &rec)
	return rec, ok, err
}

// run executes cmd against the stored book and saves it when it changed.
// The whole step holds the write lock: if another session saved since the
// last call, the book is reloaded first so its changes and issued IDs are
// kept.
func (s *Session) run(ctx context.Context, cmd command.Command) (command.Result, error) {
	tx, err := storage.Begin(ctx, s.DB)
	if err != nil {
		return command.Result{}, err
	}
	defer tx.Rollback()

	if err := s.refresh(ctx, tx); err != nil {
		return command.Result{}, err
	}

	res, err := cmd.Execute(s.Model)
	if err != nil || !res.Changed {
		return res, err
	}

	version, err := storage.SaveTx(ctx, tx, s.Model.AddressBook())
	if err == nil {
		err = tx.Commit()
	}
	if err != nil {
		s.version = -1
		tx.Rollback()
		if rerr := s.refresh(ctx, s.DB); rerr != nil {
			return command.Result{}, fmt.Errorf("failed to save address book: %w (reload: %v)", err, rerr)
		}
		return command.Result{}, fmt.Errorf("failed to save address book: %w", err)
	}
	s.version = version
	return res, nil
}

// refresh reloads the book when the stored version moved, keeping the
// current filter.
func (s *Session) refresh(ctx context.Context, q storage.Queryer) error {
	version, err := storage.Version(q)
	if err != nil {
		return err
	}
	if version == s.version {
		return nil
	}
	book, err := storage.Load(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to reload address book: %w", err)
	}
	filter := s.Model.Filter()
	s.Model = command.NewModel(book, s.opts)
	s.Model.UpdateFilteredPersons(filter)
	s.version = version
	return nil
}
