package storage

import (
	"context"
	"testing"

	"github.com/Napageneral/rolodex/internal/addressbook"
	"github.com/Napageneral/rolodex/internal/testutil"
)

func TestLoad_Empty(t *testing.T) {
	d := testutil.OpenTestDB(t)
	book, err := Load(context.Background(), d)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !book.Equal(addressbook.New()) {
		t.Fatalf("expected empty book, got %s", book)
	}
}

func TestSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	d := testutil.OpenTestDB(t)

	book := testutil.TypicalAddressBook()
	if err := book.LinkPersonToEvent(1, 2); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := book.LinkPersonToEvent(3, 2); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := Save(ctx, d, book); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(ctx, d)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Equal(book) {
		t.Fatalf("loaded book differs:\nwant %s\ngot  %s", book, loaded)
	}
	if loaded.Counters() != book.Counters() {
		t.Fatalf("expected counters %+v, got %+v", book.Counters(), loaded.Counters())
	}
}

func TestSaveReplacesPreviousContents(t *testing.T) {
	ctx := context.Background()
	d := testutil.OpenTestDB(t)

	if err := Save(ctx, d, testutil.TypicalAddressBook()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	book := testutil.TypicalAddressBook()
	george, _ := book.PersonByID(7)
	if err := book.RemovePerson(george); err != nil {
		t.Fatalf("RemovePerson: %v", err)
	}
	if err := book.ResetData(addressbook.New()); err != nil {
		t.Fatalf("ResetData: %v", err)
	}
	if err := Save(ctx, d, book); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(ctx, d)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Persons().Len() != 0 || loaded.Events().Len() != 0 {
		t.Fatalf("expected empty book, got %s", loaded)
	}
	if got := loaded.GenerateNewPersonID(); got != 8 {
		t.Fatalf("cleared IDs must not be reused, next person ID %d", got)
	}
	if got := loaded.GenerateNewEventID(); got != 3 {
		t.Fatalf("cleared IDs must not be reused, next event ID %d", got)
	}
}

func TestSaveBumpsVersion(t *testing.T) {
	ctx := context.Background()
	d := testutil.OpenTestDB(t)

	if v, err := Version(d); err != nil || v != 0 {
		t.Fatalf("expected version 0 on an empty database, got %d (%v)", v, err)
	}
	if err := Save(ctx, d, testutil.TypicalAddressBook()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := Save(ctx, d, addressbook.New()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if v, err := Version(d); err != nil || v != 2 {
		t.Fatalf("expected version 2, got %d (%v)", v, err)
	}

	tx, err := Begin(ctx, d)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	v, err := SaveTx(ctx, tx, testutil.TypicalAddressBook())
	if err != nil || v != 3 {
		t.Fatalf("SaveTx returned %d (%v)", v, err)
	}
	book, err := Load(ctx, tx)
	if err != nil || book.Persons().Len() != len(testutil.TypicalPersons()) {
		t.Fatalf("Load inside the transaction: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if v, err := Version(d); err != nil || v != 2 {
		t.Fatalf("rolled back save must not bump the version, got %d (%v)", v, err)
	}
}
