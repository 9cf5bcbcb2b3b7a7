// Package predicate resolves a field name plus keywords into a matcher over
// persons.
package predicate

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Napageneral/rolodex/internal/model"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrNoKeywords   = errors.New("at least one keyword is required")
)

// Field names a searchable person attribute.
type Field string

const (
	FieldName    Field = "Name"
	FieldPhone   Field = "Phone"
	FieldEmail   Field = "Email"
	FieldAddress Field = "Address"
	FieldTags    Field = "Tags"
)

// Fields lists every searchable field in display order.
var Fields = []Field{FieldName, FieldPhone, FieldEmail, FieldAddress, FieldTags}

// Predicate matches persons.
type Predicate interface {
	Test(p *model.Person) bool
	Equal(other Predicate) bool
	String() string
}

var constructors = map[Field]func(keywords []string) Predicate{
	FieldName:    func(k []string) Predicate { return NameContains(k) },
	FieldPhone:   func(k []string) Predicate { return PhoneContains(k) },
	FieldEmail:   func(k []string) Predicate { return EmailContains(k) },
	FieldAddress: func(k []string) Predicate { return AddressContains(k) },
	FieldTags:    func(k []string) Predicate { return TagsContain(k) },
}

// ParseField maps a field token to a Field. Matching is exact.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if _, ok := constructors[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// Resolve builds the predicate for field over keywords.
func Resolve(field Field, keywords []string) (Predicate, error) {
	build, ok := constructors[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, string(field))
	}
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}
	return build(slices.Clone(keywords)), nil
}

// NameContains matches when any keyword equals a whole word of the name,
// ignoring case.
type NameContains []string

func (k NameContains) Test(p *model.Person) bool {
	return anyKeyword(k, func(kw string) bool { return containsWordFold(string(p.Name), kw, nil) })
}

func (k NameContains) Equal(other Predicate) bool {
	o, ok := other.(NameContains)
	return ok && slices.Equal(k, o)
}

func (k NameContains) String() string { return describe("name", k) }

// PhoneContains matches when any keyword is a substring of the phone.
type PhoneContains []string

func (k PhoneContains) Test(p *model.Person) bool {
	return anyKeyword(k, func(kw string) bool { return strings.Contains(string(p.Phone), kw) })
}

func (k PhoneContains) Equal(other Predicate) bool {
	o, ok := other.(PhoneContains)
	return ok && slices.Equal(k, o)
}

func (k PhoneContains) String() string { return describe("phone", k) }

// EmailContains matches when any keyword is a substring of the email,
// ignoring case.
type EmailContains []string

func (k EmailContains) Test(p *model.Person) bool {
	email := strings.ToLower(string(p.Email))
	return anyKeyword(k, func(kw string) bool { return strings.Contains(email, strings.ToLower(kw)) })
}

func (k EmailContains) Equal(other Predicate) bool {
	o, ok := other.(EmailContains)
	return ok && slices.Equal(k, o)
}

func (k EmailContains) String() string { return describe("email", k) }

// AddressContains matches when any keyword equals a whole word of the
// address, ignoring case. Commas separate words as well as whitespace.
type AddressContains []string

func (k AddressContains) Test(p *model.Person) bool {
	sep := func(r rune) bool { return r == ',' }
	return anyKeyword(k, func(kw string) bool { return containsWordFold(string(p.Address), kw, sep) })
}

func (k AddressContains) Equal(other Predicate) bool {
	o, ok := other.(AddressContains)
	return ok && slices.Equal(k, o)
}

func (k AddressContains) String() string { return describe("address", k) }

// TagsContain matches when any keyword equals one of the tags, ignoring case.
type TagsContain []string

func (k TagsContain) Test(p *model.Person) bool {
	return anyKeyword(k, func(kw string) bool {
		return slices.ContainsFunc(p.Tags, func(t model.Tag) bool { return strings.EqualFold(string(t), kw) })
	})
}

func (k TagsContain) Equal(other Predicate) bool {
	o, ok := other.(TagsContain)
	return ok && slices.Equal(k, o)
}

func (k TagsContain) String() string { return describe("tags", k) }

// EventIDs matches persons linked to any of the ids.
type EventIDs []int

func (ids EventIDs) Test(p *model.Person) bool {
	return slices.ContainsFunc(ids, p.HasEvent)
}

func (ids EventIDs) Equal(other Predicate) bool {
	o, ok := other.(EventIDs)
	return ok && slices.Equal(ids, o)
}

func (ids EventIDs) String() string { return fmt.Sprintf("eventIds%v", []int(ids)) }

// All matches every person.
type All struct{}

func (All) Test(*model.Person) bool { return true }

func (All) Equal(other Predicate) bool {
	_, ok := other.(All)
	return ok
}

func (All) String() string { return "all" }

func anyKeyword(keywords []string, match func(string) bool) bool {
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if match(kw) {
			return true
		}
	}
	return false
}

// containsWordFold reports whether word is one of the words of sentence,
// ignoring case. extraSep, when non-nil, adds separator runes to whitespace.
func containsWordFold(sentence, word string, extraSep func(rune) bool) bool {
	if strings.ContainsFunc(word, isSpace) {
		return false
	}
	words := strings.FieldsFunc(sentence, func(r rune) bool {
		return isSpace(r) || (extraSep != nil && extraSep(r))
	})
	for _, w := range words {
		if strings.EqualFold(w, word) {
			return true
		}
	}
	return false
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func describe(field string, keywords []string) string {
	return fmt.Sprintf("%s contains any of [%s]", field, strings.Join(keywords, ", "))
}
