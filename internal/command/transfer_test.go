package command_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Napageneral/rolodex/internal/addressbook"
	"github.com/Napageneral/rolodex/internal/command"
	"github.com/Napageneral/rolodex/internal/importer"
	"github.com/Napageneral/rolodex/internal/testutil"
)

const csvHeader = "Name,Phone Number,Email Address,Address,Tags\n"

func writeImport(t *testing.T, m *command.Model, name, body string) {
	t.Helper()
	path := filepath.Join(m.Options().ImportDir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestImport_Valid(t *testing.T) {
	m := newModel(t)
	writeImport(t, m, "new.csv", csvHeader+
		`Amy Bee,11111111,amy@example.com,"Block 312, Amy Street 1",friend`+"\n"+
		`Bob Choo,22222222,bob@example.com,"Block 123, Bobby Street 3",husband;friend`+"\n")

	res := mustExecute(t, m, &command.Import{File: "new.csv"})
	if res.Feedback != "Imported 2 persons from new.csv" || !res.Changed {
		t.Fatalf("unexpected result: %+v", res)
	}
	persons := m.AddressBook().Persons()
	if persons.Len() != 9 {
		t.Fatalf("expected 9 persons, got %d", persons.Len())
	}
	if !persons.At(8).IsSamePerson(testutil.Bob()) || persons.At(8).ID != 9 {
		t.Fatalf("unexpected last person: %v", persons.At(8))
	}
}

func TestImport_MissingFile(t *testing.T) {
	m := newModel(t)
	err := expectFailure(t, m, &command.Import{File: "missing.csv"}, "The file missing.csv does not exist.")
	if !errors.Is(err, importer.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestImport_IncorrectFormat(t *testing.T) {
	cases := map[string]string{
		"header only":  csvHeader,
		"two fields":   csvHeader + "Amy Bee,11111111\n",
		"six fields":   csvHeader + "Amy Bee,11111111,amy@example.com,street,friend,extra\n",
		"invalid name": csvHeader + ".,11111111,amy@example.com,street,friend\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			m := newModel(t)
			writeImport(t, m, "bad.csv", body)
			err := expectFailure(t, m, &command.Import{File: "bad.csv"}, "")
			if !errors.Is(err, importer.ErrIncorrectFileFormat) {
				t.Fatalf("expected ErrIncorrectFileFormat, got %v", err)
			}
		})
	}
}

func TestImport_ExistingPersonImportsNothing(t *testing.T) {
	m := newModel(t)
	writeImport(t, m, "mixed.csv", csvHeader+
		`Amy Bee,11111111,amy@example.com,street,friend`+"\n"+
		`Alice Pauline,94351253,alice@example.com,somewhere,`+"\n")

	err := expectFailure(t, m, &command.Import{File: "mixed.csv"},
		"Could not import mixed.csv: Alice Pauline already exists in the address book")
	if !errors.Is(err, addressbook.ErrDuplicatePerson) {
		t.Fatalf("expected ErrDuplicatePerson, got %v", err)
	}
	if m.AddressBook().Persons().Len() != 7 {
		t.Fatalf("partial import happened")
	}
}

func TestExportThenImport(t *testing.T) {
	m := newModel(t)
	out := filepath.Join(m.Options().ImportDir, "backup.csv")
	res := mustExecute(t, m, &command.Export{File: out})
	if res.Feedback != "Exported 7 persons to "+out || res.Changed {
		t.Fatalf("unexpected result: %+v", res)
	}

	empty := command.NewModel(addressbook.New(), m.Options())
	mustExecute(t, empty, &command.Import{File: "backup.csv"})
	want := m.AddressBook().Persons().All()
	got := empty.AddressBook().Persons().All()
	if len(got) != len(want) {
		t.Fatalf("expected %d persons, got %d", len(want), len(got))
	}
	for i := range want {
		if !want[i].Equal(got[i]) {
			t.Fatalf("person %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestExportICSThenImportICS(t *testing.T) {
	m := newModel(t)
	out := filepath.Join(m.Options().ImportDir, "events.ics")
	mustExecute(t, m, &command.ExportICS{File: out})

	empty := command.NewModel(addressbook.New(), m.Options())
	res := mustExecute(t, empty, &command.ImportICS{File: "events.ics"})
	if res.Feedback != "Imported 2 events from events.ics (0 skipped)" {
		t.Fatalf("unexpected feedback: %q", res.Feedback)
	}
	if !m.AddressBook().Events().At(0).Equal(empty.AddressBook().Events().At(0)) ||
		!m.AddressBook().Events().At(1).Equal(empty.AddressBook().Events().At(1)) {
		t.Fatalf("events differ after round trip:\n%v\n%v", m.AddressBook(), empty.AddressBook())
	}

	res = mustExecute(t, m, &command.ImportICS{File: "events.ics"})
	if res.Changed || res.Feedback != "No new events in events.ics (2 skipped)" {
		t.Fatalf("unexpected re-import result: %+v", res)
	}
}
