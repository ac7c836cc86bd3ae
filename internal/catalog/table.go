// Package catalog holds the immutable candidate tables the generator picks
// from: syscalls, open flags, aio completion strategies, offset modes and file
// types.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Entry associates a name with a value and a set of flag bits.
type Entry[V comparable] struct {
	Name  string
	Value V
	Flags uint32
}

// Has reports whether all bits in f are set on the entry.
func (e Entry[V]) Has(f uint32) bool { return e.Flags&f == f }

// Table is an ordered, immutable set of entries with lookup by name and by
// value. Several names may share a value; lookup by value returns the first.
type Table[V comparable] struct {
	entries []Entry[V]
	byName  map[string]int
	byValue map[V]int
}

// ErrUnknownName is returned when a name is not present in a table.
var ErrUnknownName = errors.New("unknown name")

// NewTable builds a table. Names must be non-empty and unique.
func NewTable[V comparable](entries ...Entry[V]) (*Table[V], error) {
	t := &Table[V]{
		entries: make([]Entry[V], len(entries)),
		byName:  make(map[string]int, len(entries)),
		byValue: make(map[V]int, len(entries)),
	}
	copy(t.entries, entries)
	for i, e := range t.entries {
		if e.Name == "" {
			return nil, fmt.Errorf("entry %d: empty name", i)
		}
		if _, dup := t.byName[e.Name]; dup {
			return nil, fmt.Errorf("duplicate name %q", e.Name)
		}
		t.byName[e.Name] = i
		if _, seen := t.byValue[e.Value]; !seen {
			t.byValue[e.Value] = i
		}
	}
	return t, nil
}

func mustTable[V comparable](entries ...Entry[V]) *Table[V] {
	t, err := NewTable(entries...)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return t
}

// Lookup returns the entry named name.
func (t *Table[V]) Lookup(name string) (Entry[V], bool) {
	i, ok := t.byName[name]
	if !ok {
		return Entry[V]{}, false
	}
	return t.entries[i], true
}

// ByValue returns the first entry whose value is v.
func (t *Table[V]) ByValue(v V) (Entry[V], bool) {
	i, ok := t.byValue[v]
	if !ok {
		return Entry[V]{}, false
	}
	return t.entries[i], true
}

// NameOf returns the name of the first entry with value v, or "unknown".
func (t *Table[V]) NameOf(v V) string {
	if e, ok := t.ByValue(v); ok {
		return e.Name
	}
	return "unknown"
}

// Len returns the number of entries.
func (t *Table[V]) Len() int { return len(t.entries) }

// Entries returns a copy of the entries in table order.
func (t *Table[V]) Entries() []Entry[V] {
	out := make([]Entry[V], len(t.entries))
	copy(out, t.entries)
	return out
}

// Names returns the entry names in table order.
func (t *Table[V]) Names() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Name
	}
	return out
}

// Select resolves names into entries, preserving order and duplicates.
// Duplicates are kept because they weight the uniform pick.
func (t *Table[V]) Select(names []string) ([]Entry[V], error) {
	out := make([]Entry[V], 0, len(names))
	for _, n := range names {
		e, ok := t.Lookup(strings.TrimSpace(n))
		if !ok {
			return nil, fmt.Errorf("%w %q (valid: %s)", ErrUnknownName, n, strings.Join(t.Names(), ", "))
		}
		out = append(out, e)
	}
	return out, nil
}
