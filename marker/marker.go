// Package marker defines the positional events that text filters emit and
// the rolling processor consumes.
//
// A Marker says what should happen to the raw text at a byte position of the
// segment it was found in: start or stop skipping, re-include skipped text,
// insert replacement text, open or close a named tag, or mark a sentence
// boundary. Markers are plain values; the processor decides the order in
// which markers sharing a position are applied (see Sort).
package marker

import (
	"fmt"
	"strings"
)

// Kind identifies what a marker does.
type Kind int

// Marker kinds. The set is closed.
const (
	KindPushSkip Kind = iota + 1
	KindPopSkip
	KindPushOutput
	KindPopOutput
	KindPushInclude
	KindPopInclude
	KindStop
	KindStart
	KindStopOutput
	KindStartOutput
	KindInsert
	KindTagStart
	KindTagStop
	KindSentenceBreak
	KindSpace
)

var kindNames = map[Kind]string{
	KindPushSkip:      "push-skip",
	KindPopSkip:       "pop-skip",
	KindPushOutput:    "push-output",
	KindPopOutput:     "pop-output",
	KindPushInclude:   "push-include",
	KindPopInclude:    "pop-include",
	KindStop:          "stop",
	KindStart:         "start",
	KindStopOutput:    "stop-output",
	KindStartOutput:   "start-output",
	KindInsert:        "insert",
	KindTagStart:      "tag-start",
	KindTagStop:       "tag-stop",
	KindSentenceBreak: "sentence-break",
	KindSpace:         "space",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind returns the kind with the given name. Names are the kebab-case
// forms returned by Kind.String; underscores are accepted in place of dashes.
func ParseKind(name string) (Kind, error) {
	want := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for k, n := range kindNames {
		if n == want {
			return k, nil
		}
	}
	return 0, fmt.Errorf("marker: unknown kind %q", name)
}

// Marker is a single positional event.
//
// Position is a byte offset into the segment handed to the processor
// together with the marker. Text is the payload of an Insert marker; Name and
// Value are the attribute of a TagStart marker (TagStop only needs Name).
type Marker struct {
	Kind     Kind
	Position int
	Text     string
	Name     string
	Value    string
}

func (m Marker) String() string {
	switch m.Kind {
	case KindInsert:
		return fmt.Sprintf("%s@%d(%q)", m.Kind, m.Position, m.Text)
	case KindTagStart:
		return fmt.Sprintf("%s@%d(%s=%q)", m.Kind, m.Position, m.Name, m.Value)
	case KindTagStop:
		return fmt.Sprintf("%s@%d(%s)", m.Kind, m.Position, m.Name)
	default:
		return fmt.Sprintf("%s@%d", m.Kind, m.Position)
	}
}

// At returns a copy of m moved to pos.
func (m Marker) At(pos int) Marker {
	m.Position = pos
	return m
}

// PushSkip opens a nested skip region.
func PushSkip(pos int) Marker { return Marker{Kind: KindPushSkip, Position: pos} }

// PopSkip closes the innermost skip region.
func PopSkip(pos int) Marker { return Marker{Kind: KindPopSkip, Position: pos} }

// PushOutput opens a nested output override.
func PushOutput(pos int) Marker { return Marker{Kind: KindPushOutput, Position: pos} }

// PopOutput closes the innermost output override.
func PopOutput(pos int) Marker { return Marker{Kind: KindPopOutput, Position: pos} }

// PushInclude opens a nested include override.
func PushInclude(pos int) Marker { return Marker{Kind: KindPushInclude, Position: pos} }

// PopInclude closes the innermost include override.
func PopInclude(pos int) Marker { return Marker{Kind: KindPopInclude, Position: pos} }

// Stop switches the skip toggle on. The toggle does not nest.
func Stop(pos int) Marker { return Marker{Kind: KindStop, Position: pos} }

// Start switches the skip toggle off.
func Start(pos int) Marker { return Marker{Kind: KindStart, Position: pos} }

// StopOutput switches the output toggle off.
func StopOutput(pos int) Marker { return Marker{Kind: KindStopOutput, Position: pos} }

// StartOutput switches the output toggle on.
func StartOutput(pos int) Marker { return Marker{Kind: KindStartOutput, Position: pos} }

// Insert emits text at pos.
func Insert(pos int, text string) Marker {
	return Marker{Kind: KindInsert, Position: pos, Text: text}
}

// TagStart opens a tag named name carrying value.
func TagStart(pos int, name, value string) Marker {
	return Marker{Kind: KindTagStart, Position: pos, Name: name, Value: value}
}

// TagStop closes the most recently opened tag named name.
func TagStop(pos int, name string) Marker {
	return Marker{Kind: KindTagStop, Position: pos, Name: name}
}

// SentenceBreak marks the end of a sentence on the last text emitted
// before pos.
func SentenceBreak(pos int) Marker { return Marker{Kind: KindSentenceBreak, Position: pos} }

// Space forces a separating space at pos.
func Space(pos int) Marker { return Marker{Kind: KindSpace, Position: pos} }

// Skip returns the markers that drop the raw text in [start, end).
func Skip(start, end int) []Marker {
	return []Marker{PushSkip(start), PopSkip(end)}
}

// Replace returns the markers that substitute text for the raw text in
// [start, end).
func Replace(start, end int, text string) []Marker {
	return []Marker{Insert(start, text), PushSkip(start), PopSkip(end)}
}

// Tag returns the markers that wrap [start, end) in a named tag.
func Tag(start, end int, name, value string) []Marker {
	return []Marker{TagStart(start, name, value), TagStop(end, name)}
}
