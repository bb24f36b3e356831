package marker

import (
	"slices"
	"strings"
)

// Priority returns the application rank of k among markers sharing a
// position; lower ranks are applied first. Regions are closed before new
// ones are opened so a zero-width gap between two regions stays empty, and
// replacement text is inserted before the skip that hides the original.
func (k Kind) Priority() int {
	switch k {
	case KindTagStop:
		return 0
	case KindPopSkip, KindStart, KindPopInclude, KindPopOutput, KindStopOutput:
		return 1
	case KindSentenceBreak:
		return 2
	case KindTagStart:
		return 3
	case KindInsert:
		return 4
	case KindSpace:
		return 5
	case KindPushSkip, KindStop, KindPushInclude, KindPushOutput, KindStartOutput:
		return 6
	default:
		return 7
	}
}

// Compare orders markers by position, then priority, then kind and payload,
// so that any two permutations of the same marker set sort identically.
func Compare(a, b Marker) int {
	if a.Position != b.Position {
		return a.Position - b.Position
	}
	if pa, pb := a.Kind.Priority(), b.Kind.Priority(); pa != pb {
		return pa - pb
	}
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := strings.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	return strings.Compare(a.Text, b.Text)
}

// Sort returns a sorted copy of ms. The input is not modified.
func Sort(ms []Marker) []Marker {
	out := slices.Clone(ms)
	slices.SortStableFunc(out, Compare)
	return out
}

// Window selects the markers of a whole document that fall into the
// segment [start, end) and rebases them to segment-relative positions.
// A marker exactly at end belongs to the following segment, unless final is
// set, in which case there is no following segment and it is kept.
func Window(ms []Marker, start, end int, final bool) []Marker {
	var out []Marker
	for _, m := range ms {
		if m.Position < start || m.Position > end {
			continue
		}
		if m.Position == end && !final {
			continue
		}
		out = append(out, m.At(m.Position-start))
	}
	return out
}
