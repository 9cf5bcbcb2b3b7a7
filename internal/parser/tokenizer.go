package parser

import (
	"slices"
	"strings"
)

// Prefix marks the start of a named argument, e.g. "n/".
type Prefix string

const (
	PrefixName        Prefix = "n/"
	PrefixPhone       Prefix = "p/"
	PrefixEmail       Prefix = "e/"
	PrefixAddress     Prefix = "a/"
	PrefixTag         Prefix = "t/"
	PrefixField       Prefix = "f/"
	PrefixFrom        Prefix = "from/"
	PrefixTo          Prefix = "to/"
	PrefixLocation    Prefix = "l/"
	PrefixDescription Prefix = "d/"
	PrefixRecurrence  Prefix = "rr/"
	PrefixPersonIndex Prefix = "pi/"
)

// ArgumentMultimap holds the values found for each prefix plus the text
// before the first prefix.
type ArgumentMultimap struct {
	preamble string
	values   map[Prefix][]string
}

// Value returns the last value given for p.
func (a *ArgumentMultimap) Value(p Prefix) (string, bool) {
	vs := a.values[p]
	if len(vs) == 0 {
		return "", false
	}
	return vs[len(vs)-1], true
}

// AllValues returns every value given for p in input order.
func (a *ArgumentMultimap) AllValues(p Prefix) []string {
	return slices.Clone(a.values[p])
}

func (a *ArgumentMultimap) Has(p Prefix) bool {
	return len(a.values[p]) > 0
}

func (a *ArgumentMultimap) Preamble() string { return a.preamble }

// VerifyNoDuplicatePrefixesFor fails when any of prefixes was given more
// than once.
func (a *ArgumentMultimap) VerifyNoDuplicatePrefixesFor(prefixes ...Prefix) error {
	var dups []Prefix
	for _, p := range prefixes {
		if len(a.values[p]) > 1 && !slices.Contains(dups, p) {
			dups = append(dups, p)
		}
	}
	if len(dups) > 0 {
		return &DuplicatePrefixError{Prefixes: dups}
	}
	return nil
}

type marker struct {
	prefix Prefix
	at     int
}

// Tokenize splits args into prefix values. A prefix only counts when it
// starts the input or follows whitespace; values are trimmed.
func Tokenize(args string, prefixes ...Prefix) *ArgumentMultimap {
	var marks []marker
	for _, p := range prefixes {
		marks = append(marks, findPrefix(args, p)...)
	}
	slices.SortFunc(marks, func(a, b marker) int { return a.at - b.at })

	out := &ArgumentMultimap{values: make(map[Prefix][]string)}
	end := len(args)
	if len(marks) > 0 {
		end = marks[0].at
	}
	out.preamble = strings.TrimSpace(args[:end])

	for i, m := range marks {
		stop := len(args)
		if i+1 < len(marks) {
			stop = marks[i+1].at
		}
		value := strings.TrimSpace(args[m.at+len(m.prefix) : stop])
		out.values[m.prefix] = append(out.values[m.prefix], value)
	}
	return out
}

func findPrefix(args string, p Prefix) []marker {
	var out []marker
	from := 0
	for {
		i := strings.Index(args[from:], string(p))
		if i < 0 {
			return out
		}
		at := from + i
		if at == 0 || isSpace(args[at-1]) {
			out = append(out, marker{prefix: p, at: at})
		}
		from = at + 1
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
