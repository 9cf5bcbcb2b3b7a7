package command

import (
	"path/filepath"
	"time"

	"github.com/Napageneral/rolodex/internal/addressbook"
	"github.com/Napageneral/rolodex/internal/model"
	"github.com/Napageneral/rolodex/internal/predicate"
)

// Options tune how commands resolve files and times.
type Options struct {
	// ImportDir is where relative import paths are resolved.
	ImportDir string
	// Location is used for event times typed without a zone.
	Location *time.Location
	// HorizonDays is the default window for upcoming.
	HorizonDays int
	// Now returns the current time; tests pin it.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.HorizonDays <= 0 {
		o.HorizonDays = 30
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Model is the state commands operate on: the address book plus the
// currently displayed person filter.
type Model struct {
	book   *addressbook.AddressBook
	filter predicate.Predicate
	opts   Options
}

func NewModel(book *addressbook.AddressBook, opts Options) *Model {
	if book == nil {
		book = addressbook.New()
	}
	return &Model{book: book, filter: predicate.All{}, opts: opts.withDefaults()}
}

func (m *Model) AddressBook() *addressbook.AddressBook { return m.book }

func (m *Model) Options() Options { return m.opts }

// Filter returns the predicate behind FilteredPersons.
func (m *Model) Filter() predicate.Predicate { return m.filter }

// UpdateFilteredPersons changes the displayed persons. nil shows everyone.
func (m *Model) UpdateFilteredPersons(pred predicate.Predicate) {
	if pred == nil {
		pred = predicate.All{}
	}
	m.filter = pred
}

// FilteredPersons returns copies of the displayed persons in store order.
func (m *Model) FilteredPersons() []*model.Person {
	return m.book.Persons().Filter(m.filter.Test)
}

// Events returns copies of every event in store order.
func (m *Model) Events() []*model.Event {
	return m.book.Events().All()
}

// ResolvePath resolves a user supplied file name against the import dir.
func (m *Model) ResolvePath(name string) string {
	if filepath.IsAbs(name) || m.opts.ImportDir == "" {
		return name
	}
	return filepath.Join(m.opts.ImportDir, name)
}

func (m *Model) personAt(index int) (*model.Person, error) {
	shown := m.FilteredPersons()
	if index < 1 || index > len(shown) {
		return nil, fail(ErrInvalidIndex, MessageInvalidPersonIndex)
	}
	return shown[index-1], nil
}

func (m *Model) eventAt(index int) (*model.Event, error) {
	events := m.Events()
	if index < 1 || index > len(events) {
		return nil, fail(ErrInvalidIndex, MessageInvalidEventIndex)
	}
	return events[index-1], nil
}
