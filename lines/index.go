// Package lines maps original text offsets to line and column numbers.
package lines

import "sort"

// Entry records that the line numbered Line starts at byte Offset of the
// original text.
type Entry struct {
	Offset int
	Line   int
}

// Index is an ordered newline table. The zero value is empty; lookups on an
// empty index return -1.
type Index struct {
	entries []Entry
}

// New returns an index seeded with the given entries. Entries out of order
// are dropped, as with Add.
func New(entries ...Entry) *Index {
	idx := &Index{}
	for _, e := range entries {
		idx.Add(e.Offset, e.Line)
	}
	return idx
}

// Add appends an entry. Offsets must be strictly increasing; an entry at or
// before the last recorded offset replaces nothing and is ignored.
func (x *Index) Add(offset, line int) bool {
	if n := len(x.entries); n > 0 && offset <= x.entries[n-1].Offset {
		return false
	}
	x.entries = append(x.entries, Entry{Offset: offset, Line: line})
	return true
}

// Len returns the number of entries.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.entries)
}

// Entries returns a copy of the table.
func (x *Index) Entries() []Entry {
	if x == nil {
		return nil
	}
	return append([]Entry(nil), x.entries...)
}

// Last returns the most recent entry.
func (x *Index) Last() (Entry, bool) {
	if x.Len() == 0 {
		return Entry{}, false
	}
	return x.entries[len(x.entries)-1], true
}

// floor returns the position of the greatest entry whose offset is <= offset,
// or -1.
func (x *Index) floor(offset int) int {
	if x == nil {
		return -1
	}
	i := sort.Search(len(x.entries), func(i int) bool {
		return x.entries[i].Offset > offset
	})
	return i - 1
}

// Line returns the line containing the original offset, or -1 if the offset
// precedes the first entry.
func (x *Index) Line(offset int) int {
	i := x.floor(offset)
	if i < 0 {
		return -1
	}
	return x.entries[i].Line
}

// Column returns the 1-based column of the original offset within its line,
// or -1 if the offset precedes the first entry.
func (x *Index) Column(offset int) int {
	i := x.floor(offset)
	if i < 0 {
		return -1
	}
	return offset - x.entries[i].Offset + 1
}

// Slice returns the part of the table needed to resolve offsets in
// [from, to]: the entry in force at from and every entry up to to.
func (x *Index) Slice(from, to int) *Index {
	out := &Index{}
	if x.Len() == 0 || to < from {
		return out
	}
	i := x.floor(from)
	if i < 0 {
		i = 0
	}
	for ; i < len(x.entries) && x.entries[i].Offset <= to; i++ {
		out.entries = append(out.entries, x.entries[i])
	}
	return out
}

// View returns an index sharing the entries x holds now. Later appends to x
// do not show through the view.
func (x *Index) View() *Index {
	if x == nil {
		return &Index{}
	}
	return &Index{entries: x.entries[:len(x.entries):len(x.entries)]}
}
