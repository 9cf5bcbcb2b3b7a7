package testutil

import (
	"time"

	"github.com/Napageneral/rolodex/internal/addressbook"
	"github.com/Napageneral/rolodex/internal/model"
)

// PersonBuilder builds persons for tests, starting from a copy of a base.
type PersonBuilder struct {
	p *model.Person
}

func NewPersonBuilder(base *model.Person) *PersonBuilder {
	return &PersonBuilder{p: base.Clone()}
}

func (b *PersonBuilder) WithName(n string) *PersonBuilder       { b.p.Name = model.Name(n); return b }
func (b *PersonBuilder) WithPhone(s string) *PersonBuilder      { b.p.Phone = model.Phone(s); return b }
func (b *PersonBuilder) WithEmail(s string) *PersonBuilder      { b.p.Email = model.Email(s); return b }
func (b *PersonBuilder) WithAddress(s string) *PersonBuilder    { b.p.Address = model.Address(s); return b }
func (b *PersonBuilder) WithID(id int) *PersonBuilder           { b.p.ID = id; return b }
func (b *PersonBuilder) WithEventIDs(ids ...int) *PersonBuilder { b.p.EventIDs = ids; return b }

func (b *PersonBuilder) WithTags(tags ...string) *PersonBuilder {
	b.p.Tags = nil
	for _, t := range tags {
		b.p.Tags = append(b.p.Tags, model.Tag(t))
	}
	return b
}

func (b *PersonBuilder) Build() *model.Person {
	out := model.NewPerson(b.p.Name, b.p.Phone, b.p.Email, b.p.Address, b.p.Tags)
	out.ID = b.p.ID
	out.EventIDs = b.p.EventIDs
	return out
}

func person(name, phone, email, address string, tags ...string) *model.Person {
	ts := make([]model.Tag, len(tags))
	for i, t := range tags {
		ts[i] = model.Tag(t)
	}
	return model.NewPerson(model.Name(name), model.Phone(phone), model.Email(email), model.Address(address), ts)
}

func Alice() *model.Person {
	return person("Alice Pauline", "94351253", "alice@example.com", "123, Jurong West Ave 6, #08-111", "friends")
}

func Benson() *model.Person {
	return person("Benson Meier", "98765432", "johnd@example.com", "311, Clementi Ave 2, #02-25", "owesMoney", "friends")
}

func Carl() *model.Person {
	return person("Carl Kurz", "95352563", "heinz@example.com", "wall street")
}

func Daniel() *model.Person {
	return person("Daniel Meier", "87652533", "cornelia@example.com", "10th street", "friends")
}

func Elle() *model.Person {
	return person("Elle Meyer", "9482224", "werner@example.com", "michegan ave")
}

func Fiona() *model.Person {
	return person("Fiona Kunz", "9482427", "lydia@example.com", "little tokyo")
}

func George() *model.Person {
	return person("George Best", "9482442", "anna@example.com", "4th street")
}

// Amy and Bob are not in the typical address book.
func Amy() *model.Person {
	return person("Amy Bee", "11111111", "amy@example.com", "Block 312, Amy Street 1", "friend")
}

func Bob() *model.Person {
	return person("Bob Choo", "22222222", "bob@example.com", "Block 123, Bobby Street 3", "husband", "friend")
}

func TypicalPersons() []*model.Person {
	return []*model.Person{Alice(), Benson(), Carl(), Daniel(), Elle(), Fiona(), George()}
}

func Meeting() *model.Event {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.Event{Name: "Team Meeting", Start: start, End: start.Add(time.Hour), Location: "Room 1"}
}

func Workshop() *model.Event {
	start := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	return &model.Event{Name: "Go Workshop", Start: start, End: start.Add(3 * time.Hour), Description: "Bring a laptop"}
}

func TypicalEvents() []*model.Event {
	return []*model.Event{Meeting(), Workshop()}
}

// TypicalAddressBook returns a book holding TypicalEvents and TypicalPersons
// with IDs assigned in order starting at 1.
func TypicalAddressBook() *addressbook.AddressBook {
	ab := addressbook.New()
	for _, e := range TypicalEvents() {
		if _, err := ab.AddEvent(e); err != nil {
			panic(err)
		}
	}
	for _, p := range TypicalPersons() {
		if _, err := ab.AddPerson(p); err != nil {
			panic(err)
		}
	}
	return ab
}
