package rawtext

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jamesainslie/go-rawtext/lines"
)

// TagSpan is a tagged range [Start, End) of processed text.
type TagSpan struct {
	Name  string
	Value string
	Start int
	End   int
}

// Sentence is one slice of processed text with its mapping back to the
// original. Offsets passed to and returned by its methods are relative to
// the sentence text unless stated otherwise.
//
// A Sentence is immutable and safe for concurrent use.
type Sentence struct {
	text     string
	index    []int
	segments map[int]string
	tags     []TagSpan
	newlines *lines.Index

	start    int
	boundary int
	complete bool
	fileName string
	divider  string

	// set on leftovers only
	pending *pending
}

// Text returns the normalised sentence text.
func (s *Sentence) Text() string { return s.text }

func (s *Sentence) String() string { return s.text }

// Len returns the length of the text in bytes.
func (s *Sentence) Len() int { return len(s.text) }

// IsComplete reports whether the sentence ended at a boundary or at the end
// of the stream. Leftovers are incomplete.
func (s *Sentence) IsComplete() bool { return s.complete }

// Start returns the global processed offset the sentence was cut from.
func (s *Sentence) Start() int { return s.start }

// Boundary returns the global processed offset of the sentence's last byte
// before normalisation, or -1 for an incomplete sentence.
func (s *Sentence) Boundary() int { return s.boundary }

// FileName returns the name of the file the sentence came from.
func (s *Sentence) FileName() string { return s.fileName }

// OriginalIndex returns the original offset of byte i. One past the end
// maps to one past the last byte's origin. An empty sentence maps every
// offset to itself. Other out of range offsets return -1.
func (s *Sentence) OriginalIndex(i int) int {
	switch {
	case i < 0:
		return -1
	case len(s.index) == 0:
		return i
	case i < len(s.index):
		return s.index[i]
	case i == len(s.index):
		return s.index[len(s.index)-1] + 1
	default:
		return -1
	}
}

// OriginalIndexes returns the original offset of every byte.
func (s *Sentence) OriginalIndexes() []int { return slices.Clone(s.index) }

// OriginalTextSegments returns the elided original text, keyed by the
// offset in the sentence text where it was removed.
func (s *Sentence) OriginalTextSegments() map[int]string { return maps.Clone(s.segments) }

// Tags returns the tags overlapping the sentence, clipped to it.
func (s *Sentence) Tags() []TagSpan { return slices.Clone(s.tags) }

// Newlines returns the part of the newline table covering the sentence.
func (s *Sentence) Newlines() []lines.Entry { return s.newlines.Entries() }

// LineNumber returns the 1-based line of byte i in the original file, or -1.
func (s *Sentence) LineNumber(i int) int {
	o := s.OriginalIndex(i)
	if o < 0 {
		return -1
	}
	return s.newlines.Line(o)
}

// ColumnNumber returns the 1-based column of byte i in the original file,
// counted in bytes, or -1.
func (s *Sentence) ColumnNumber(i int) int {
	o := s.OriginalIndex(i)
	if o < 0 {
		return -1
	}
	return s.newlines.Column(o)
}

// RawInput returns the elided original text removed in (start, end],
// joined with the output divider.
func (s *Sentence) RawInput(start, end int) (string, bool) {
	var parts []string
	for _, k := range sortedKeys(s.segments) {
		if k > start && k <= end {
			parts = append(parts, s.segments[k])
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, s.divider), true
}

// PrecedingOriginalTextSegment returns the last elided text removed at or
// before byte i, and the offset it was removed at.
func (s *Sentence) PrecedingOriginalTextSegment(i int) (int, string, bool) {
	best := -1
	for k := range s.segments {
		if k <= i && k > best {
			best = k
		}
	}
	if best < 0 {
		return 0, "", false
	}
	return best, s.segments[best], true
}

// Location formats the origin of byte i as file:line:column.
func (s *Sentence) Location(i int) string {
	name := s.fileName
	if name == "" {
		name = "-"
	}
	return fmt.Sprintf("%s:%d:%d", name, s.LineNumber(i), s.ColumnNumber(i))
}
