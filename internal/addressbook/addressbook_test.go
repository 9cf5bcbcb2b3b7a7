package addressbook_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/Napageneral/rolodex/internal/addressbook"
	"github.com/Napageneral/rolodex/internal/model"
	"github.com/Napageneral/rolodex/internal/testutil"
)

// stubBook is a ReadOnlyAddressBook whose lists may violate the address
// book's constraints.
type stubBook struct {
	persons []*model.Person
	events  []*model.Event
}

func (s stubBook) Persons() addressbook.ReadOnlyList[*model.Person] {
	return addressbook.NewReadOnlyList(s.persons)
}

func (s stubBook) Events() addressbook.ReadOnlyList[*model.Event] {
	return addressbook.NewReadOnlyList(s.events)
}

func (s stubBook) Counters() addressbook.IDCounterList { return addressbook.IDCounterList{} }

func editedAlice() *model.Person {
	return testutil.NewPersonBuilder(testutil.Alice()).
		WithAddress("Block 123, Bobby Street 3").
		WithTags("husband").
		Build()
}

func TestNewIsEmpty(t *testing.T) {
	ab := addressbook.New()
	if ab.Persons().Len() != 0 || ab.Events().Len() != 0 {
		t.Fatalf("expected empty address book")
	}
}

func TestResetData_Nil(t *testing.T) {
	ab := addressbook.New()
	if err := ab.ResetData(nil); !errors.Is(err, addressbook.ErrNullArgument) {
		t.Fatalf("expected ErrNullArgument, got %v", err)
	}
	var typedNil *addressbook.AddressBook
	if err := ab.ResetData(typedNil); !errors.Is(err, addressbook.ErrNullArgument) {
		t.Fatalf("expected ErrNullArgument for typed nil, got %v", err)
	}
}

func TestResetData_ReplacesData(t *testing.T) {
	ab := addressbook.New()
	newData := testutil.TypicalAddressBook()
	if err := ab.ResetData(newData); err != nil {
		t.Fatalf("ResetData: %v", err)
	}
	if !ab.Equal(newData) {
		t.Fatalf("expected %v, got %v", newData, ab)
	}
}

func TestResetData_DuplicatePersonsLeavesStateUnchanged(t *testing.T) {
	ab := addressbook.New()
	if _, err := ab.AddPerson(testutil.Bob()); err != nil {
		t.Fatalf("AddPerson: %v", err)
	}
	before, _ := addressbook.Copy(ab)

	stub := stubBook{persons: []*model.Person{testutil.Alice(), editedAlice()}}
	if err := ab.ResetData(stub); !errors.Is(err, addressbook.ErrDuplicatePerson) {
		t.Fatalf("expected ErrDuplicatePerson, got %v", err)
	}
	if !ab.Equal(before) {
		t.Fatalf("address book changed after failed reset: %v", ab)
	}
}

func TestResetData_DuplicateEvents(t *testing.T) {
	ab := addressbook.New()
	stub := stubBook{events: []*model.Event{testutil.Meeting(), testutil.Meeting()}}
	if err := ab.ResetData(stub); !errors.Is(err, addressbook.ErrDuplicateEvent) {
		t.Fatalf("expected ErrDuplicateEvent, got %v", err)
	}
}

func TestHasPerson(t *testing.T) {
	ab := addressbook.New()
	if _, err := ab.HasPerson(nil); !errors.Is(err, addressbook.ErrNullArgument) {
		t.Fatalf("expected ErrNullArgument, got %v", err)
	}
	if ok, _ := ab.HasPerson(testutil.Alice()); ok {
		t.Fatalf("expected Alice absent")
	}
	if _, err := ab.AddPerson(testutil.Alice()); err != nil {
		t.Fatalf("AddPerson: %v", err)
	}
	if ok, _ := ab.HasPerson(testutil.Alice()); !ok {
		t.Fatalf("expected Alice present")
	}
	if ok, _ := ab.HasPerson(editedAlice()); !ok {
		t.Fatalf("expected identity match for edited Alice")
	}
}

func TestAddPerson_DuplicateIdentity(t *testing.T) {
	ab := addressbook.New()
	if _, err := ab.AddPerson(testutil.Alice()); err != nil {
		t.Fatalf("AddPerson: %v", err)
	}
	if _, err := ab.AddPerson(editedAlice()); !errors.Is(err, addressbook.ErrDuplicatePerson) {
		t.Fatalf("expected ErrDuplicatePerson, got %v", err)
	}
	if ab.Persons().Len() != 1 {
		t.Fatalf("expected one person, got %d", ab.Persons().Len())
	}
}

func TestAddPerson_AssignsIDs(t *testing.T) {
	ab := addressbook.New()
	a, err := ab.AddPerson(testutil.Alice())
	if err != nil {
		t.Fatalf("AddPerson: %v", err)
	}
	b, err := ab.AddPerson(testutil.Bob())
	if err != nil {
		t.Fatalf("AddPerson: %v", err)
	}
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("expected IDs 1 and 2, got %d and %d", a.ID, b.ID)
	}
	if _, err := ab.AddPerson(testutil.Amy().WithID(2)); !errors.Is(err, addressbook.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestFindPersonsWithName(t *testing.T) {
	ab := addressbook.New()
	if _, err := ab.FindPersonsWithName(""); !errors.Is(err, addressbook.ErrNullArgument) {
		t.Fatalf("expected ErrNullArgument, got %v", err)
	}

	alice := testutil.Alice()
	got, err := ab.FindPersonsWithName(alice.Name)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v (err %v)", got, err)
	}

	stored, err := ab.AddPerson(alice)
	if err != nil {
		t.Fatalf("AddPerson: %v", err)
	}

	name := string(alice.Name)
	cases := map[string]int{
		name:                  1,
		strings.ToLower(name): 1,
		strings.ToUpper(name): 1,
		name[:len(name)-1]:    0,
		"Alice":               0,
	}
	for query, want := range cases {
		got, err := ab.FindPersonsWithName(model.Name(query))
		if err != nil {
			t.Fatalf("FindPersonsWithName(%q): %v", query, err)
		}
		if len(got) != want {
			t.Fatalf("FindPersonsWithName(%q) returned %d persons, want %d", query, len(got), want)
		}
		if want == 1 && !got[0].Equal(stored) {
			t.Fatalf("FindPersonsWithName(%q)=%v want %v", query, got[0], stored)
		}
	}
}

func TestGenerateNewPersonID(t *testing.T) {
	ab := addressbook.New()
	if _, err := ab.AddPerson(testutil.Alice().WithID(1)); err != nil {
		t.Fatalf("AddPerson: %v", err)
	}
	if _, err := ab.AddPerson(testutil.Amy().WithID(2)); err != nil {
		t.Fatalf("AddPerson: %v", err)
	}
	if got := ab.GenerateNewPersonID(); got != 3 {
		t.Fatalf("GenerateNewPersonID()=%d want 3", got)
	}
}

func TestGenerateNewEventID(t *testing.T) {
	ab := addressbook.New()
	if _, err := ab.AddEvent(testutil.Meeting().WithID(1)); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if _, err := ab.AddEvent(testutil.Workshop().WithID(2)); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if got := ab.GenerateNewEventID(); got != 3 {
		t.Fatalf("GenerateNewEventID()=%d want 3", got)
	}
}

func TestIDsAreNeverReused(t *testing.T) {
	ab := addressbook.New()
	alice, _ := ab.AddPerson(testutil.Alice())
	bob, _ := ab.AddPerson(testutil.Bob())
	if err := ab.RemovePerson(bob); err != nil {
		t.Fatalf("RemovePerson: %v", err)
	}
	amy, err := ab.AddPerson(testutil.Amy())
	if err != nil {
		t.Fatalf("AddPerson: %v", err)
	}
	if amy.ID == bob.ID || amy.ID == alice.ID {
		t.Fatalf("id %d reused", amy.ID)
	}

	if err := ab.ResetData(addressbook.New()); err != nil {
		t.Fatalf("ResetData: %v", err)
	}
	carl, _ := ab.AddPerson(testutil.Carl())
	if carl.ID <= amy.ID {
		t.Fatalf("id %d issued after clear, expected > %d", carl.ID, amy.ID)
	}
}

func TestPersonsViewIsReadOnly(t *testing.T) {
	ab := testutil.TypicalAddressBook()
	view := ab.Persons()
	all := view.All()
	all[0] = nil
	first := view.At(0)
	first.Name = "Mallory"

	if ab.Persons().Len() != len(testutil.TypicalPersons()) {
		t.Fatalf("underlying list changed size")
	}
	if ab.Persons().At(0).Name != testutil.Alice().Name {
		t.Fatalf("underlying record changed through view")
	}
}

func TestSetPerson(t *testing.T) {
	ab := testutil.TypicalAddressBook()
	alice := ab.Persons().At(0)

	edited := testutil.NewPersonBuilder(alice).WithAddress("Block 123, Bobby Street 3").WithID(99).Build()
	got, err := ab.SetPerson(alice, edited)
	if err != nil {
		t.Fatalf("SetPerson: %v", err)
	}
	if got.ID != alice.ID || got.Address != "Block 123, Bobby Street 3" {
		t.Fatalf("unexpected edited person %v", got)
	}

	benson := ab.Persons().At(1)
	clash := testutil.NewPersonBuilder(benson).WithName(string(alice.Name)).WithPhone(string(alice.Phone)).WithEmail(string(alice.Email)).Build()
	if _, err := ab.SetPerson(benson, clash); !errors.Is(err, addressbook.ErrDuplicatePerson) {
		t.Fatalf("expected ErrDuplicatePerson, got %v", err)
	}

	if _, err := ab.SetPerson(testutil.Amy(), testutil.Amy()); !errors.Is(err, addressbook.ErrPersonNotFound) {
		t.Fatalf("expected ErrPersonNotFound, got %v", err)
	}
}

func TestRemoveEventUnlinksPersons(t *testing.T) {
	ab := testutil.TypicalAddressBook()
	meeting := ab.Events().At(0)
	alice := ab.Persons().At(0)
	benson := ab.Persons().At(1)
	if err := ab.LinkPersonToEvent(alice.ID, meeting.ID); err != nil {
		t.Fatalf("LinkPersonToEvent: %v", err)
	}
	if err := ab.LinkPersonToEvent(benson.ID, meeting.ID); err != nil {
		t.Fatalf("LinkPersonToEvent: %v", err)
	}
	if err := ab.RemoveEvent(meeting); err != nil {
		t.Fatalf("RemoveEvent: %v", err)
	}
	for _, p := range ab.Persons().All() {
		if p.HasEvent(meeting.ID) {
			t.Fatalf("%s still linked to removed event", p.Name)
		}
	}
	if err := ab.LinkPersonToEvent(alice.ID, meeting.ID); !errors.Is(err, addressbook.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestAddPersonRejectsUnknownEventLink(t *testing.T) {
	ab := addressbook.New()
	p := testutil.NewPersonBuilder(testutil.Alice()).WithEventIDs(7).Build()
	if _, err := ab.AddPerson(p); !errors.Is(err, addressbook.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestString(t *testing.T) {
	ab := addressbook.New()
	if got := ab.String(); !strings.HasPrefix(got, "AddressBook{persons=") {
		t.Fatalf("unexpected String(): %s", got)
	}
}

func TestPersonsFilterHandsOutCopies(t *testing.T) {
	ab := testutil.TypicalAddressBook()
	got := ab.Persons().Filter(func(p *model.Person) bool {
		p.Name = "Mallory"
		return true
	})
	if len(got) != len(testutil.TypicalPersons()) {
		t.Fatalf("expected every person, got %d", len(got))
	}
	got[0].Phone = "000"
	stored := ab.Persons().At(0)
	if stored.Name != testutil.Alice().Name || stored.Phone != testutil.Alice().Phone {
		t.Fatalf("underlying record changed through Filter: %v", stored)
	}
}

func TestAddPersonRejectsInvalidFields(t *testing.T) {
	ab := addressbook.New()
	cases := map[string]*model.Person{
		"name":    testutil.NewPersonBuilder(testutil.Amy()).WithName(".").Build(),
		"phone":   testutil.NewPersonBuilder(testutil.Amy()).WithPhone("x").Build(),
		"email":   testutil.NewPersonBuilder(testutil.Amy()).WithEmail("nope").Build(),
		"address": testutil.NewPersonBuilder(testutil.Amy()).WithAddress(" ").Build(),
		"tag":     testutil.NewPersonBuilder(testutil.Amy()).WithTags("two words").Build(),
		"id":      testutil.NewPersonBuilder(testutil.Amy()).WithID(-5).Build(),
	}
	for field, p := range cases {
		if _, err := ab.AddPerson(p); !errors.Is(err, model.ErrInvalidField) {
			t.Fatalf("%s: expected ErrInvalidField, got %v", field, err)
		}
	}
	if ab.Persons().Len() != 0 {
		t.Fatalf("invalid persons were stored: %s", ab)
	}
	if got := ab.GenerateNewPersonID(); got != 1 {
		t.Fatalf("rejected persons must not consume IDs, next ID %d", got)
	}
}

func TestSetPersonRejectsInvalidFields(t *testing.T) {
	ab := testutil.TypicalAddressBook()
	alice := ab.Persons().At(0)
	bad := testutil.NewPersonBuilder(alice).WithEmail("alice@").Build()
	if _, err := ab.SetPerson(alice, bad); !errors.Is(err, model.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	if !ab.Persons().At(0).Equal(alice) {
		t.Fatalf("stored person changed after a rejected edit")
	}
}

func TestAddEventRejectsNegativeID(t *testing.T) {
	ab := addressbook.New()
	if _, err := ab.AddEvent(testutil.Meeting().WithID(-1)); !errors.Is(err, model.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}
