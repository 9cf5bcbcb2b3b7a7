package command

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Napageneral/rolodex/internal/addressbook"
	"github.com/Napageneral/rolodex/internal/calendar"
	"github.com/Napageneral/rolodex/internal/importer"
)

const ImportUsage = "import: Imports persons from a CSV file in the import directory. " +
	"The first row must be Name,Phone Number,Email Address,Address,Tags. " +
	"Nothing is imported unless every row is valid and new.\n" +
	"Parameters: FILE_NAME\n" +
	"Example: import contacts.csv"

// Import adds every person in a CSV file, or none of them.
type Import struct {
	File string
}

func (c *Import) Execute(m *Model) (Result, error) {
	persons, err := importer.ReadFile(m.ResolvePath(c.File))
	if err != nil {
		var ie *importer.Error
		if errors.As(err, &ie) {
			return Result{}, fail(err, "%s", ie.Error())
		}
		return Result{}, fail(err, "Could not import %s: %v", c.File, err)
	}

	staged, err := addressbook.Copy(m.book)
	if err != nil {
		return Result{}, fail(err, "Could not import %s: %v", c.File, err)
	}
	for _, p := range persons {
		if _, err := staged.AddPerson(p); err != nil {
			if errors.Is(err, addressbook.ErrDuplicatePerson) {
				return Result{}, fail(err, "Could not import %s: %s already exists in the address book",
					filepath.Base(c.File), p.Name)
			}
			return Result{}, fail(err, "Could not import %s: %v", c.File, err)
		}
	}
	if err := m.book.ResetData(staged); err != nil {
		return Result{}, fail(err, "Could not import %s: %v", c.File, err)
	}
	m.UpdateFilteredPersons(nil)
	return Result{
		Feedback: fmt.Sprintf("Imported %d persons from %s", len(persons), filepath.Base(c.File)),
		Changed:  true,
	}, nil
}

const ExportUsage = "export: Writes every person to a CSV file that import can read back.\n" +
	"Parameters: FILE_PATH\n" +
	"Example: export backup.csv"

// Export writes all persons to a CSV file. Relative paths are relative to
// the working directory.
type Export struct {
	File string
}

func (c *Export) Execute(m *Model) (Result, error) {
	persons := m.book.Persons().All()
	if err := importer.WriteFile(c.File, persons); err != nil {
		return Result{}, fail(err, "Could not export to %s: %v", c.File, err)
	}
	return Result{Feedback: fmt.Sprintf("Exported %d persons to %s", len(persons), c.File)}, nil
}

const ImportICSUsage = "importics: Imports events from an iCalendar (.ics) file in the import directory. " +
	"Events already in the address book are skipped.\n" +
	"Parameters: FILE_NAME\n" +
	"Example: importics team.ics"

// ImportICS adds the events of an iCalendar file. Events identical to
// stored ones are skipped; any other failure imports nothing.
type ImportICS struct {
	File string
}

func (c *ImportICS) Execute(m *Model) (Result, error) {
	events, err := calendar.ReadFile(m.ResolvePath(c.File), m.opts.Location)
	if err != nil {
		return Result{}, fail(err, "Could not import %s: %v", c.File, err)
	}

	staged, err := addressbook.Copy(m.book)
	if err != nil {
		return Result{}, fail(err, "Could not import %s: %v", c.File, err)
	}
	added, skipped := 0, 0
	for _, e := range events {
		if dup, _ := staged.HasEvent(e); dup {
			skipped++
			continue
		}
		if _, err := staged.AddEvent(e); err != nil {
			return Result{}, fail(err, "Could not import %s: %v", c.File, err)
		}
		added++
	}
	if added == 0 {
		return Result{Feedback: fmt.Sprintf("No new events in %s (%d skipped)", filepath.Base(c.File), skipped)}, nil
	}
	if err := m.book.ResetData(staged); err != nil {
		return Result{}, fail(err, "Could not import %s: %v", c.File, err)
	}
	return Result{
		Feedback: fmt.Sprintf("Imported %d events from %s (%d skipped)", added, filepath.Base(c.File), skipped),
		Changed:  true,
	}, nil
}

const ExportICSUsage = "exportics: Writes every event to an iCalendar (.ics) file.\n" +
	"Parameters: FILE_PATH\n" +
	"Example: exportics events.ics"

// ExportICS writes all events to an iCalendar file.
type ExportICS struct {
	File string
}

func (c *ExportICS) Execute(m *Model) (Result, error) {
	events := m.Events()
	if err := calendar.WriteFile(c.File, events, m.opts.Now()); err != nil {
		return Result{}, fail(err, "Could not export to %s: %v", c.File, err)
	}
	return Result{Feedback: fmt.Sprintf("Exported %d events to %s", len(events), c.File)}, nil
}
