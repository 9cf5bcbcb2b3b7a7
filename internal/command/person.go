package command

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Napageneral/rolodex/internal/addressbook"
	"github.com/Napageneral/rolodex/internal/model"
	"github.com/Napageneral/rolodex/internal/predicate"
)

const AddUsage = "add: Adds a person to the address book. " +
	"Parameters: n/NAME p/PHONE e/EMAIL a/ADDRESS [t/TAG]...\n" +
	"Example: add n/John Doe p/98765432 e/johnd@example.com a/311, Clementi Ave 2, #02-25 t/friends t/owesMoney"

// Add inserts a new person.
type Add struct {
	Person *model.Person
}

func (c *Add) Execute(m *Model) (Result, error) {
	added, err := m.book.AddPerson(c.Person)
	if errors.Is(err, addressbook.ErrDuplicatePerson) {
		return Result{}, fail(err, MessageDuplicatePerson)
	}
	if err != nil {
		return Result{}, fail(err, "Could not add person: %v", err)
	}
	return Result{Feedback: "New person added: " + FormatPerson(added), Changed: true}, nil
}

const EditUsage = "edit: Edits the details of the person identified by the index number used in the displayed " +
	"person list. Existing values will be overwritten by the input values.\n" +
	"Parameters: INDEX (must be a positive integer) [n/NAME] [p/PHONE] [e/EMAIL] [a/ADDRESS] [t/TAG]...\n" +
	"Example: edit 1 p/91234567 e/johndoe@example.com"

const MessageNotEdited = "At least one field to edit must be provided."

// EditPersonDescriptor holds the fields to change; nil fields keep their
// current value. SetTags replaces the tags with Tags, which may be empty.
type EditPersonDescriptor struct {
	Name    *model.Name
	Phone   *model.Phone
	Email   *model.Email
	Address *model.Address
	Tags    []model.Tag
	SetTags bool
}

// AnyFieldEdited reports whether the descriptor changes anything.
func (d EditPersonDescriptor) AnyFieldEdited() bool {
	return d.Name != nil || d.Phone != nil || d.Email != nil || d.Address != nil || d.SetTags
}

func (d EditPersonDescriptor) apply(p *model.Person) *model.Person {
	out := p.Clone()
	if d.Name != nil {
		out.Name = *d.Name
	}
	if d.Phone != nil {
		out.Phone = *d.Phone
	}
	if d.Email != nil {
		out.Email = *d.Email
	}
	if d.Address != nil {
		out.Address = *d.Address
	}
	if d.SetTags {
		out.Tags = model.NormalizeTags(d.Tags)
	}
	return out
}

// Edit changes the person shown at Index.
type Edit struct {
	Index      int
	Descriptor EditPersonDescriptor
}

func (c *Edit) Execute(m *Model) (Result, error) {
	target, err := m.personAt(c.Index)
	if err != nil {
		return Result{}, err
	}
	edited, err := m.book.SetPerson(target, c.Descriptor.apply(target))
	if errors.Is(err, addressbook.ErrDuplicatePerson) {
		return Result{}, fail(err, MessageDuplicatePerson)
	}
	if err != nil {
		return Result{}, fail(err, "Could not edit person: %v", err)
	}
	m.UpdateFilteredPersons(nil)
	return Result{Feedback: "Edited Person: " + FormatPerson(edited), Changed: true}, nil
}

const DeleteUsage = "delete: Deletes the person identified by the index number used in the displayed person list.\n" +
	"Parameters: INDEX (must be a positive integer)\n" +
	"Example: delete 1"

// Delete removes the person shown at Index.
type Delete struct {
	Index int
}

func (c *Delete) Execute(m *Model) (Result, error) {
	target, err := m.personAt(c.Index)
	if err != nil {
		return Result{}, err
	}
	if err := m.book.RemovePerson(target); err != nil {
		return Result{}, fail(err, "Could not delete person: %v", err)
	}
	return Result{Feedback: "Deleted Person: " + FormatPerson(target), Changed: true}, nil
}

const ListUsage = "list: Lists all persons.\nExample: list"

// List shows every person.
type List struct{}

func (List) Execute(m *Model) (Result, error) {
	m.UpdateFilteredPersons(nil)
	return Result{Feedback: "Listed all persons"}, nil
}

const ClearUsage = "clear: Removes every person and event.\nExample: clear"

// Clear empties the address book. ID counters survive.
type Clear struct{}

func (Clear) Execute(m *Model) (Result, error) {
	if err := m.book.ResetData(addressbook.New()); err != nil {
		return Result{}, fail(err, "Could not clear address book: %v", err)
	}
	m.UpdateFilteredPersons(nil)
	return Result{Feedback: "Address book has been cleared!", Changed: true}, nil
}

const FindUsage = "find: Finds all persons whose names contain any of the specified keywords " +
	"(case-insensitive) and displays them as a list with index numbers.\n" +
	"Parameters: KEYWORD [MORE_KEYWORDS]...\n" +
	"Example: find alice bob charlie"

// Find filters persons by name keywords.
type Find struct {
	Predicate predicate.NameContains
}

func (c *Find) Execute(m *Model) (Result, error) {
	m.UpdateFilteredPersons(c.Predicate)
	return Result{Feedback: fmt.Sprintf(MessagePersonsListed, len(m.FilteredPersons()))}, nil
}

const SearchUsage = "search: Searches persons by one field. Name and Address match whole words, " +
	"Phone and Email match any part, Tags match whole tags; all matching ignores case except Phone.\n" +
	"Parameters: f/FIELD KEYWORD [MORE_KEYWORDS]...\n" +
	"FIELD is one of Name, Phone, Email, Address, Tags\n" +
	"Example: search f/Address Clementi Jurong"

// Search filters persons with a field-scoped predicate.
type Search struct {
	Predicate predicate.Predicate
}

func (c *Search) Execute(m *Model) (Result, error) {
	m.UpdateFilteredPersons(c.Predicate)
	return Result{Feedback: fmt.Sprintf(MessagePersonsListed, len(m.FilteredPersons()))}, nil
}

// Equal reports whether two searches carry equal predicates.
func (c *Search) Equal(other *Search) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.Predicate == nil || other.Predicate == nil {
		return c.Predicate == other.Predicate
	}
	return c.Predicate.Equal(other.Predicate)
}

// personsByNames resolves whole names to persons, failing on unknown or
// ambiguous names.
func personsByNames(m *Model, names []model.Name) ([]*model.Person, error) {
	var out []*model.Person
	for _, n := range names {
		found, err := m.book.FindPersonsWithName(n)
		if err != nil {
			return nil, fail(err, "Invalid person name: %v", err)
		}
		switch len(found) {
		case 0:
			return nil, fail(addressbook.ErrPersonNotFound, MessageUnknownPersonName, n)
		case 1:
			if !slices.ContainsFunc(out, func(p *model.Person) bool { return p.ID == found[0].ID }) {
				out = append(out, found[0])
			}
		default:
			return nil, fail(nil, MessageAmbiguousPersonName, n)
		}
	}
	return out, nil
}
