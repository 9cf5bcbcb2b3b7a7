package model

import (
	"fmt"
	"slices"
	"strings"
)

// Person is a contact in the address book.
//
// ID is 0 until the address book assigns one; once set it never changes.
// Tags and EventIDs behave as sets and are kept sorted.
type Person struct {
	ID       int
	Name     Name
	Phone    Phone
	Email    Email
	Address  Address
	Tags     []Tag
	EventIDs []int
}

// NewPerson builds a person without an ID.
func NewPerson(name Name, phone Phone, email Email, address Address, tags []Tag) *Person {
	return &Person{
		Name:    name,
		Phone:   phone,
		Email:   email,
		Address: address,
		Tags:    NormalizeTags(tags),
	}
}

// Validate re-checks every field against its constructor. Stored persons
// must pass it; IDs may be 0 (unassigned) but never negative.
func (p *Person) Validate() error {
	if p.ID < 0 {
		return invalid(IDConstraints)
	}
	if n, err := ParseName(string(p.Name)); err != nil {
		return err
	} else if n != p.Name {
		return invalid(NameConstraints)
	}
	if ph, err := ParsePhone(string(p.Phone)); err != nil {
		return err
	} else if ph != p.Phone {
		return invalid(PhoneConstraints)
	}
	if e, err := ParseEmail(string(p.Email)); err != nil {
		return err
	} else if e != p.Email {
		return invalid(EmailConstraints)
	}
	if a, err := ParseAddress(string(p.Address)); err != nil {
		return err
	} else if a != p.Address {
		return invalid(AddressConstraints)
	}
	for _, t := range p.Tags {
		if parsed, err := ParseTag(string(t)); err != nil {
			return err
		} else if parsed != t {
			return invalid(TagConstraints)
		}
	}
	for _, id := range p.EventIDs {
		if id <= 0 {
			return invalid(IDConstraints)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (p *Person) Clone() *Person {
	if p == nil {
		return nil
	}
	c := *p
	c.Tags = slices.Clone(p.Tags)
	c.EventIDs = slices.Clone(p.EventIDs)
	return &c
}

// WithID returns a copy of p carrying id.
func (p *Person) WithID(id int) *Person {
	c := p.Clone()
	c.ID = id
	return c
}

// IsSamePerson reports identity equality: same name ignoring case, same
// phone and same email. Address, tags, event links and ID are ignored.
func (p *Person) IsSamePerson(other *Person) bool {
	if p == other {
		return true
	}
	if p == nil || other == nil {
		return false
	}
	return p.Name.EqualFold(other.Name) && p.Phone == other.Phone && p.Email == other.Email
}

// Equal reports full structural equality.
func (p *Person) Equal(other *Person) bool {
	if p == other {
		return true
	}
	if p == nil || other == nil {
		return false
	}
	return p.ID == other.ID &&
		p.Name == other.Name &&
		p.Phone == other.Phone &&
		p.Email == other.Email &&
		p.Address == other.Address &&
		slices.Equal(NormalizeTags(p.Tags), NormalizeTags(other.Tags)) &&
		slices.Equal(normalizeIDs(p.EventIDs), normalizeIDs(other.EventIDs))
}

// HasEvent reports whether the person is linked to eventID.
func (p *Person) HasEvent(eventID int) bool {
	return slices.Contains(p.EventIDs, eventID)
}

// LinkEvent adds eventID to the person's event set.
func (p *Person) LinkEvent(eventID int) {
	if p.HasEvent(eventID) {
		return
	}
	p.EventIDs = normalizeIDs(append(p.EventIDs, eventID))
}

// UnlinkEvent removes eventID from the person's event set.
func (p *Person) UnlinkEvent(eventID int) {
	p.EventIDs = slices.DeleteFunc(p.EventIDs, func(id int) bool { return id == eventID })
}

func (p *Person) String() string {
	tags := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = t.String()
	}
	return fmt.Sprintf("Person{id=%d, name=%s, phone=%s, email=%s, address=%s, tags=%s, eventIds=%v}",
		p.ID, p.Name, p.Phone, p.Email, p.Address, strings.Join(tags, ""), p.EventIDs)
}

// NormalizeTags returns a sorted copy of tags without duplicates.
func NormalizeTags(tags []Tag) []Tag {
	out := slices.Clone(tags)
	slices.Sort(out)
	return slices.Compact(out)
}

func normalizeIDs(ids []int) []int {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
