// Package addressbook holds the in-memory collection of persons and events.
//
// The address book owns its records: values passed in are copied, and the
// accessors hand out copies or read-only views. Identity duplicates are
// rejected on every path that inserts or replaces records.
package addressbook

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Napageneral/rolodex/internal/model"
)

var (
	ErrNullArgument    = errors.New("argument must not be nil")
	ErrDuplicatePerson = errors.New("operation would result in duplicate persons")
	ErrDuplicateEvent  = errors.New("operation would result in duplicate events")
	ErrDuplicateID     = errors.New("record id already in use")
	ErrPersonNotFound  = errors.New("person not found")
	ErrEventNotFound   = errors.New("event not found")
)

// ReadOnlyAddressBook is the read surface shared by AddressBook and any
// source of replacement data for ResetData.
type ReadOnlyAddressBook interface {
	Persons() ReadOnlyList[*model.Person]
	Events() ReadOnlyList[*model.Event]
	Counters() IDCounterList
}

// AddressBook is the record store.
type AddressBook struct {
	persons  []*model.Person
	events   []*model.Event
	counters IDCounterList
}

func New() *AddressBook {
	return &AddressBook{}
}

// Copy returns a deep copy of data as a new AddressBook. Duplicate checks
// apply as in ResetData.
func Copy(data ReadOnlyAddressBook) (*AddressBook, error) {
	ab := New()
	if err := ab.ResetData(data); err != nil {
		return nil, err
	}
	return ab, nil
}

func (ab *AddressBook) Persons() ReadOnlyList[*model.Person] { return NewReadOnlyList(ab.persons) }

func (ab *AddressBook) Events() ReadOnlyList[*model.Event] { return NewReadOnlyList(ab.events) }

func (ab *AddressBook) Counters() IDCounterList { return ab.counters }

// RaiseCounters merges c into the stored counters. Counters never decrease.
func (ab *AddressBook) RaiseCounters(c IDCounterList) {
	ab.counters = ab.counters.Merge(c)
}

// ResetData replaces every person and event with the contents of other.
// The replacement is validated first; on error the address book is left
// untouched.
func (ab *AddressBook) ResetData(other ReadOnlyAddressBook) error {
	if other == nil {
		return ErrNullArgument
	}
	if o, ok := other.(*AddressBook); ok && o == nil {
		return ErrNullArgument
	}

	next := &AddressBook{counters: ab.counters.Merge(other.Counters())}
	for _, e := range other.Events().All() {
		if err := next.insertEvent(e); err != nil {
			return err
		}
	}
	for _, p := range other.Persons().All() {
		if err := next.insertPerson(p); err != nil {
			return err
		}
	}

	*ab = *next
	return nil
}

// HasPerson reports whether an identity-equal person is stored.
func (ab *AddressBook) HasPerson(p *model.Person) (bool, error) {
	if p == nil {
		return false, ErrNullArgument
	}
	return ab.indexOfSamePerson(p, -1) >= 0, nil
}

// AddPerson stores a copy of p and returns it. A person without an ID gets
// a newly generated one.
func (ab *AddressBook) AddPerson(p *model.Person) (*model.Person, error) {
	if p == nil {
		return nil, ErrNullArgument
	}
	c := p.Clone()
	if err := ab.insertPerson(c); err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// SetPerson replaces target with edited. The stored ID is kept whatever
// edited carries.
func (ab *AddressBook) SetPerson(target, edited *model.Person) (*model.Person, error) {
	if target == nil || edited == nil {
		return nil, ErrNullArgument
	}
	i := ab.indexOfPerson(target)
	if i < 0 {
		return nil, ErrPersonNotFound
	}
	c := edited.Clone()
	c.ID = ab.persons[i].ID
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if ab.indexOfSamePerson(c, i) >= 0 {
		return nil, ErrDuplicatePerson
	}
	if err := ab.checkEventLinks(c); err != nil {
		return nil, err
	}
	ab.persons[i] = c
	return c.Clone(), nil
}

// RemovePerson deletes the stored person matching p.
func (ab *AddressBook) RemovePerson(p *model.Person) error {
	if p == nil {
		return ErrNullArgument
	}
	i := ab.indexOfPerson(p)
	if i < 0 {
		return ErrPersonNotFound
	}
	ab.persons = slices.Delete(ab.persons, i, i+1)
	return nil
}

// PersonByID returns a copy of the person with id.
func (ab *AddressBook) PersonByID(id int) (*model.Person, bool) {
	for _, p := range ab.persons {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return nil, false
}

// FindPersonsWithName returns every person whose whole name equals name,
// ignoring case, in insertion order.
func (ab *AddressBook) FindPersonsWithName(name model.Name) ([]*model.Person, error) {
	if name == "" {
		return nil, ErrNullArgument
	}
	out := []*model.Person{}
	for _, p := range ab.persons {
		if p.Name.EqualFold(name) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

// GenerateNewPersonID returns an ID greater than any person ID stored now
// or issued before.
func (ab *AddressBook) GenerateNewPersonID() int {
	highest := ab.counters.Person
	for _, p := range ab.persons {
		highest = max(highest, p.ID)
	}
	return highest + 1
}

// HasEvent reports whether an identity-equal event is stored.
func (ab *AddressBook) HasEvent(e *model.Event) (bool, error) {
	if e == nil {
		return false, ErrNullArgument
	}
	return ab.indexOfSameEvent(e, -1) >= 0, nil
}

// AddEvent stores a copy of e and returns it.
func (ab *AddressBook) AddEvent(e *model.Event) (*model.Event, error) {
	if e == nil {
		return nil, ErrNullArgument
	}
	c := e.Clone()
	if err := ab.insertEvent(c); err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// SetEvent replaces target with edited, keeping the stored ID.
func (ab *AddressBook) SetEvent(target, edited *model.Event) (*model.Event, error) {
	if target == nil || edited == nil {
		return nil, ErrNullArgument
	}
	i := ab.indexOfEvent(target)
	if i < 0 {
		return nil, ErrEventNotFound
	}
	c := edited.Clone()
	c.ID = ab.events[i].ID
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if ab.indexOfSameEvent(c, i) >= 0 {
		return nil, ErrDuplicateEvent
	}
	ab.events[i] = c
	return c.Clone(), nil
}

// RemoveEvent deletes the stored event matching e and unlinks it from every
// person.
func (ab *AddressBook) RemoveEvent(e *model.Event) error {
	if e == nil {
		return ErrNullArgument
	}
	i := ab.indexOfEvent(e)
	if i < 0 {
		return ErrEventNotFound
	}
	id := ab.events[i].ID
	ab.events = slices.Delete(ab.events, i, i+1)
	for _, p := range ab.persons {
		p.UnlinkEvent(id)
	}
	return nil
}

// EventByID returns a copy of the event with id.
func (ab *AddressBook) EventByID(id int) (*model.Event, bool) {
	for _, e := range ab.events {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return nil, false
}

// GenerateNewEventID returns an ID greater than any event ID stored now or
// issued before.
func (ab *AddressBook) GenerateNewEventID() int {
	highest := ab.counters.Event
	for _, e := range ab.events {
		highest = max(highest, e.ID)
	}
	return highest + 1
}

// LinkPersonToEvent records that the person attends the event.
func (ab *AddressBook) LinkPersonToEvent(personID, eventID int) error {
	if _, ok := ab.EventByID(eventID); !ok {
		return ErrEventNotFound
	}
	for _, p := range ab.persons {
		if p.ID == personID {
			p.LinkEvent(eventID)
			return nil
		}
	}
	return ErrPersonNotFound
}

// UnlinkPersonFromEvent removes the link between person and event.
func (ab *AddressBook) UnlinkPersonFromEvent(personID, eventID int) error {
	if _, ok := ab.EventByID(eventID); !ok {
		return ErrEventNotFound
	}
	for _, p := range ab.persons {
		if p.ID == personID {
			p.UnlinkEvent(eventID)
			return nil
		}
	}
	return ErrPersonNotFound
}

// Equal compares stored persons and events in order. Counters are not
// compared.
func (ab *AddressBook) Equal(other *AddressBook) bool {
	if ab == other {
		return true
	}
	if ab == nil || other == nil {
		return false
	}
	return slices.EqualFunc(ab.persons, other.persons, (*model.Person).Equal) &&
		slices.EqualFunc(ab.events, other.events, (*model.Event).Equal)
}

func (ab *AddressBook) String() string {
	return fmt.Sprintf("AddressBook{persons=%v, events=%v}", ab.persons, ab.events)
}

func (ab *AddressBook) insertPerson(p *model.Person) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if ab.indexOfSamePerson(p, -1) >= 0 {
		return ErrDuplicatePerson
	}
	if p.ID == 0 {
		p.ID = ab.GenerateNewPersonID()
	} else if _, taken := ab.PersonByID(p.ID); taken {
		return fmt.Errorf("%w: person %d", ErrDuplicateID, p.ID)
	}
	if err := ab.checkEventLinks(p); err != nil {
		return err
	}
	ab.persons = append(ab.persons, p)
	ab.counters.observePerson(p.ID)
	return nil
}

func (ab *AddressBook) insertEvent(e *model.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if ab.indexOfSameEvent(e, -1) >= 0 {
		return ErrDuplicateEvent
	}
	if e.ID == 0 {
		e.ID = ab.GenerateNewEventID()
	} else if _, taken := ab.EventByID(e.ID); taken {
		return fmt.Errorf("%w: event %d", ErrDuplicateID, e.ID)
	}
	ab.events = append(ab.events, e)
	ab.counters.observeEvent(e.ID)
	return nil
}

func (ab *AddressBook) checkEventLinks(p *model.Person) error {
	for _, id := range p.EventIDs {
		if _, ok := ab.EventByID(id); !ok {
			return fmt.Errorf("%w: event %d linked to %s", ErrEventNotFound, id, p.Name)
		}
	}
	return nil
}

// indexOfPerson locates target by ID, or by identity when target has no ID.
func (ab *AddressBook) indexOfPerson(target *model.Person) int {
	if target.ID != 0 {
		return slices.IndexFunc(ab.persons, func(p *model.Person) bool { return p.ID == target.ID })
	}
	return ab.indexOfSamePerson(target, -1)
}

func (ab *AddressBook) indexOfSamePerson(target *model.Person, skip int) int {
	for i, p := range ab.persons {
		if i != skip && p.IsSamePerson(target) {
			return i
		}
	}
	return -1
}

func (ab *AddressBook) indexOfEvent(target *model.Event) int {
	if target.ID != 0 {
		return slices.IndexFunc(ab.events, func(e *model.Event) bool { return e.ID == target.ID })
	}
	return ab.indexOfSameEvent(target, -1)
}

func (ab *AddressBook) indexOfSameEvent(target *model.Event, skip int) int {
	for i, e := range ab.events {
		if i != skip && e.IsSameEvent(target) {
			return i
		}
	}
	return -1
}
