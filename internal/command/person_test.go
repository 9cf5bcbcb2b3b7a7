package command_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Napageneral/rolodex/internal/addressbook"
	"github.com/Napageneral/rolodex/internal/command"
	"github.com/Napageneral/rolodex/internal/model"
	"github.com/Napageneral/rolodex/internal/predicate"
	"github.com/Napageneral/rolodex/internal/testutil"
)

func newModel(t *testing.T) *command.Model {
	t.Helper()
	return command.NewModel(testutil.TypicalAddressBook(), command.Options{
		ImportDir: t.TempDir(),
		Location:  time.UTC,
		Now:       func() time.Time { return time.Date(2024, 2, 28, 9, 0, 0, 0, time.UTC) },
	})
}

func mustExecute(t *testing.T, m *command.Model, c command.Command) command.Result {
	t.Helper()
	res, err := c.Execute(m)
	if err != nil {
		t.Fatalf("Execute(%T): %v", c, err)
	}
	return res
}

func expectFailure(t *testing.T, m *command.Model, c command.Command, message string) error {
	t.Helper()
	before := m.AddressBook().String()
	_, err := c.Execute(m)
	if err == nil {
		t.Fatalf("Execute(%T): expected failure", c)
	}
	var ce *command.Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *command.Error, got %T: %v", err, err)
	}
	if message != "" && ce.Message != message {
		t.Fatalf("expected message %q, got %q", message, ce.Message)
	}
	if after := m.AddressBook().String(); after != before {
		t.Fatalf("failed command changed the address book:\nbefore %s\nafter  %s", before, after)
	}
	return err
}

func TestAdd(t *testing.T) {
	m := newModel(t)
	res := mustExecute(t, m, &command.Add{Person: testutil.Amy()})
	if !res.Changed {
		t.Fatalf("expected Changed")
	}
	if res.Feedback != "New person added: "+command.FormatPerson(testutil.Amy()) {
		t.Fatalf("unexpected feedback: %q", res.Feedback)
	}
	if got := m.AddressBook().Persons().Len(); got != 8 {
		t.Fatalf("expected 8 persons, got %d", got)
	}
	if id := m.AddressBook().Persons().At(7).ID; id != 8 {
		t.Fatalf("expected new person to get ID 8, got %d", id)
	}
}

func TestAdd_Duplicate(t *testing.T) {
	m := newModel(t)
	dup := testutil.NewPersonBuilder(testutil.Alice()).WithName("ALICE PAULINE").WithAddress("elsewhere").Build()
	err := expectFailure(t, m, &command.Add{Person: dup}, command.MessageDuplicatePerson)
	if !errors.Is(err, addressbook.ErrDuplicatePerson) {
		t.Fatalf("expected ErrDuplicatePerson, got %v", err)
	}
}

func TestEdit(t *testing.T) {
	m := newModel(t)
	phone := model.Phone("91234567")
	res := mustExecute(t, m, &command.Edit{Index: 1, Descriptor: command.EditPersonDescriptor{Phone: &phone}})
	if !res.Changed {
		t.Fatalf("expected Changed")
	}
	got := m.AddressBook().Persons().At(0)
	if got.Phone != phone || got.ID != 1 || got.Name != "Alice Pauline" {
		t.Fatalf("unexpected edited person: %v", got)
	}
}

func TestEdit_ClearTags(t *testing.T) {
	m := newModel(t)
	mustExecute(t, m, &command.Edit{Index: 2, Descriptor: command.EditPersonDescriptor{SetTags: true}})
	if tags := m.AddressBook().Persons().At(1).Tags; len(tags) != 0 {
		t.Fatalf("expected tags cleared, got %v", tags)
	}
}

func TestEdit_InvalidIndexAndDuplicate(t *testing.T) {
	m := newModel(t)
	name := model.Name("Benson Meier")
	phone := model.Phone("98765432")
	email := model.Email("johnd@example.com")

	err := expectFailure(t, m, &command.Edit{Index: 8, Descriptor: command.EditPersonDescriptor{Name: &name}},
		command.MessageInvalidPersonIndex)
	if !errors.Is(err, command.ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}

	expectFailure(t, m, &command.Edit{Index: 1, Descriptor: command.EditPersonDescriptor{
		Name: &name, Phone: &phone, Email: &email,
	}}, command.MessageDuplicatePerson)
}

func TestEdit_UsesFilteredIndex(t *testing.T) {
	m := newModel(t)
	mustExecute(t, m, &command.Find{Predicate: predicate.NameContains{"Carl"}})
	address := model.Address("new street")
	mustExecute(t, m, &command.Edit{Index: 1, Descriptor: command.EditPersonDescriptor{Address: &address}})
	if got := m.AddressBook().Persons().At(2).Address; got != address {
		t.Fatalf("expected Carl's address edited, got %q", got)
	}
	if n := len(m.FilteredPersons()); n != 7 {
		t.Fatalf("edit should reset the filter, got %d persons", n)
	}
}

func TestDelete(t *testing.T) {
	m := newModel(t)
	res := mustExecute(t, m, &command.Delete{Index: 7})
	if res.Feedback != "Deleted Person: "+command.FormatPerson(testutil.George()) {
		t.Fatalf("unexpected feedback: %q", res.Feedback)
	}
	mustExecute(t, m, &command.Add{Person: testutil.Amy()})
	if id := m.AddressBook().Persons().At(6).ID; id != 8 {
		t.Fatalf("deleted ID reused: got %d, want 8", id)
	}
	expectFailure(t, m, &command.Delete{Index: 0}, command.MessageInvalidPersonIndex)
}

func TestListAndClear(t *testing.T) {
	m := newModel(t)
	mustExecute(t, m, &command.Find{Predicate: predicate.NameContains{"Meier"}})
	if n := len(m.FilteredPersons()); n != 2 {
		t.Fatalf("expected 2 Meiers, got %d", n)
	}
	mustExecute(t, m, command.List{})
	if n := len(m.FilteredPersons()); n != 7 {
		t.Fatalf("expected everyone listed, got %d", n)
	}

	res := mustExecute(t, m, command.Clear{})
	if !res.Changed || m.AddressBook().Persons().Len() != 0 || m.AddressBook().Events().Len() != 0 {
		t.Fatalf("clear left data behind: %s", m.AddressBook())
	}
	if got := m.AddressBook().GenerateNewPersonID(); got != 8 {
		t.Fatalf("expected counters to survive clear, next ID %d", got)
	}
}

func TestFind(t *testing.T) {
	m := newModel(t)
	res := mustExecute(t, m, &command.Find{Predicate: predicate.NameContains{"kurz", "Elle", "Kunz"}})
	if res.Feedback != fmt.Sprintf(command.MessagePersonsListed, 3) {
		t.Fatalf("unexpected feedback: %q", res.Feedback)
	}
	if res.Changed {
		t.Fatalf("find must not report a change")
	}
}

func TestSearch(t *testing.T) {
	cases := []struct {
		field    predicate.Field
		keywords []string
		want     int
	}{
		{predicate.FieldName, []string{"meier"}, 2},
		{predicate.FieldPhone, []string{"9482"}, 3},
		{predicate.FieldEmail, []string{"EXAMPLE.COM"}, 7},
		{predicate.FieldAddress, []string{"street"}, 3},
		{predicate.FieldTags, []string{"FRIENDS"}, 3},
		{predicate.FieldTags, []string{"enemies"}, 0},
	}
	for _, tc := range cases {
		t.Run(string(tc.field), func(t *testing.T) {
			m := newModel(t)
			pred, err := predicate.Resolve(tc.field, tc.keywords)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			res := mustExecute(t, m, &command.Search{Predicate: pred})
			if res.Feedback != fmt.Sprintf(command.MessagePersonsListed, tc.want) {
				t.Fatalf("expected %d persons, got %q", tc.want, res.Feedback)
			}
		})
	}
}

func TestSearchEqual(t *testing.T) {
	a := &command.Search{Predicate: predicate.NameContains{"alice"}}
	b := &command.Search{Predicate: predicate.NameContains{"alice"}}
	c := &command.Search{Predicate: predicate.PhoneContains{"alice"}}
	if !a.Equal(b) {
		t.Fatalf("expected equal searches")
	}
	if a.Equal(c) || a.Equal(nil) {
		t.Fatalf("expected different searches")
	}
}

func TestHelpAndExit(t *testing.T) {
	m := newModel(t)
	if res := mustExecute(t, m, command.Help{}); !res.ShowHelp || res.Feedback != command.Usages() {
		t.Fatalf("unexpected help result: %+v", res)
	}
	if res := mustExecute(t, m, command.Exit{}); !res.Exit {
		t.Fatalf("expected exit")
	}
}
