package predicate

import (
	"errors"
	"testing"

	"github.com/Napageneral/rolodex/internal/model"
)

func person() *model.Person {
	p := model.NewPerson("Alice Pauline", "94351253", "alice@example.com",
		"123, Jurong West Ave 6, #08-111", []model.Tag{"friends", "owesMoney"})
	p.EventIDs = []int{2, 5}
	return p
}

func TestParseField(t *testing.T) {
	for _, f := range Fields {
		got, err := ParseField(string(f))
		if err != nil {
			t.Fatalf("ParseField(%q): %v", f, err)
		}
		if got != f {
			t.Fatalf("ParseField(%q)=%q", f, got)
		}
	}
	for _, bad := range []string{"Bogus", "name", "", "Tag"} {
		if _, err := ParseField(bad); !errors.Is(err, ErrUnknownField) {
			t.Fatalf("ParseField(%q) err=%v want ErrUnknownField", bad, err)
		}
	}
}

func TestResolveRejectsEmptyKeywords(t *testing.T) {
	if _, err := Resolve(FieldName, nil); !errors.Is(err, ErrNoKeywords) {
		t.Fatalf("expected ErrNoKeywords, got %v", err)
	}
	if _, err := Resolve("Bogus", []string{"x"}); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestFieldMatching(t *testing.T) {
	p := person()
	cases := []struct {
		field    Field
		keywords []string
		want     bool
	}{
		{FieldName, []string{"alice"}, true},
		{FieldName, []string{"PAULINE"}, true},
		{FieldName, []string{"Ali"}, false},
		{FieldName, []string{"Bob", "Pauline"}, true},
		{FieldName, []string{"Alice Pauline"}, false},
		{FieldPhone, []string{"9435"}, true},
		{FieldPhone, []string{"1253"}, true},
		{FieldPhone, []string{"0000"}, false},
		{FieldEmail, []string{"ALICE@"}, true},
		{FieldEmail, []string{"example.com"}, true},
		{FieldEmail, []string{"bob"}, false},
		{FieldAddress, []string{"jurong"}, true},
		{FieldAddress, []string{"123"}, true},
		{FieldAddress, []string{"Jur"}, false},
		{FieldTags, []string{"FRIENDS"}, true},
		{FieldTags, []string{"owesmoney"}, true},
		{FieldTags, []string{"friend"}, false},
	}
	for _, tc := range cases {
		pred, err := Resolve(tc.field, tc.keywords)
		if err != nil {
			t.Fatalf("Resolve(%s, %v): %v", tc.field, tc.keywords, err)
		}
		if got := pred.Test(p); got != tc.want {
			t.Errorf("%s %v: got %v want %v", tc.field, tc.keywords, got, tc.want)
		}
	}
}

func TestResolveBuildsFieldType(t *testing.T) {
	want := map[Field]Predicate{
		FieldName:    NameContains{"a"},
		FieldPhone:   PhoneContains{"a"},
		FieldEmail:   EmailContains{"a"},
		FieldAddress: AddressContains{"a"},
		FieldTags:    TagsContain{"a"},
	}
	for f, w := range want {
		got, err := Resolve(f, []string{"a"})
		if err != nil {
			t.Fatalf("Resolve(%s): %v", f, err)
		}
		if !got.Equal(w) {
			t.Errorf("Resolve(%s)=%v want %v", f, got, w)
		}
	}
	if NameContains([]string{"a"}).Equal(PhoneContains([]string{"a"})) {
		t.Fatalf("predicates of different fields must not be equal")
	}
}

func TestEventIDs(t *testing.T) {
	p := person()
	if !(EventIDs{5}).Test(p) {
		t.Fatalf("expected match on linked event")
	}
	if (EventIDs{1, 3}).Test(p) {
		t.Fatalf("expected no match on unlinked events")
	}
	if !(EventIDs{1, 2}).Equal(EventIDs{1, 2}) {
		t.Fatalf("expected equal predicates")
	}
}
