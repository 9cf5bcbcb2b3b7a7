package addressbook

import "slices"

type cloner[T any] interface {
	Clone() T
}

// ReadOnlyList is a snapshot view over stored records. It has no mutators;
// every record handed out is a copy, so changes made by the caller never
// reach the address book.
type ReadOnlyList[T cloner[T]] struct {
	items []T
}

// NewReadOnlyList snapshots items into a view.
func NewReadOnlyList[T cloner[T]](items []T) ReadOnlyList[T] {
	return ReadOnlyList[T]{items: slices.Clone(items)}
}

// Len returns the number of records.
func (l ReadOnlyList[T]) Len() int { return len(l.items) }

// At returns a copy of the i-th record. It panics when i is out of range,
// like slice indexing.
func (l ReadOnlyList[T]) At(i int) T { return l.items[i].Clone() }

// All returns copies of every record in order. The returned slice is owned
// by the caller.
func (l ReadOnlyList[T]) All() []T {
	out := make([]T, len(l.items))
	for i, it := range l.items {
		out[i] = it.Clone()
	}
	return out
}

// Filter returns copies of the records accepted by keep, in order. keep
// sees copies too.
func (l ReadOnlyList[T]) Filter(keep func(T) bool) []T {
	var out []T
	for _, it := range l.items {
		c := it.Clone()
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
