package rawtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/go-rawtext/lines"
	"github.com/jamesainslie/go-rawtext/marker"
)

const roundTripDoc = "Hello <b>World</b>. How  are\nyou? Fine"

func roundTripMarkers() []marker.Marker {
	return []marker.Marker{
		marker.PushSkip(6),
		marker.PushOutput(9),
		marker.PopOutput(14),
		marker.PopSkip(18),
		marker.SentenceBreak(19),
		marker.TagStart(20, "w", "x"),
		marker.TagStop(23, "w"),
		marker.SentenceBreak(33),
	}
}

// overrideBreakDoc ends a sentence inside an override region that closes
// after the sentence is complete.
const overrideBreakDoc = "<x>A.</x><y>C</y>"

func overrideBreakMarkers() []marker.Marker {
	return []marker.Marker{
		marker.PushSkip(0),
		marker.PushOutput(3),
		marker.SentenceBreak(5),
		marker.PopOutput(5),
		marker.PopSkip(9),
		marker.PushSkip(9),
		marker.PushOutput(12),
		marker.PopOutput(13),
		marker.PopSkip(17),
	}
}

// roundTripCases are the documents the cut-anywhere tests split.
func roundTripCases() map[string]struct {
	doc string
	ms  []marker.Marker
} {
	return map[string]struct {
		doc string
		ms  []marker.Marker
	}{
		"markup":         {roundTripDoc, roundTripMarkers()},
		"override break": {overrideBreakDoc, overrideBreakMarkers()},
	}
}

type sentenceView struct {
	Text     string
	Index    []int
	Segments map[int]string
	Tags     []TagSpan
	Complete bool
	Boundary int
	Newlines []lines.Entry
}

func views(ss []*Sentence) []sentenceView {
	out := make([]sentenceView, len(ss))
	for i, s := range ss {
		out[i] = sentenceView{
			Text:     s.Text(),
			Index:    s.OriginalIndexes(),
			Segments: s.OriginalTextSegments(),
			Tags:     s.Tags(),
			Complete: s.IsComplete(),
			Boundary: s.Boundary(),
			Newlines: s.Newlines(),
		}
	}
	return out
}

func TestDetectSentences_WholeDocument(t *testing.T) {
	sents := collect(t, newTestProcessor(),
		[]string{roundTripDoc}, [][]marker.Marker{roundTripMarkers()})

	require.Equal(t, []string{"Hello World.", "How are\nyou?", "Fine"}, texts(sents))

	first := sents[0]
	assert.Equal(t, map[int]string{6: "<b>World</b>"}, first.OriginalTextSegments())
	assert.Equal(t, 9, first.OriginalIndex(6))
	assert.Equal(t, 11, first.Boundary())

	second := sents[1]
	assert.Equal(t, []TagSpan{{Name: "w", Value: "x", Start: 0, End: 3}}, second.Tags())
	assert.Equal(t, 20, second.OriginalIndex(0))
	y := indexOf(second.Text(), "you")
	assert.Equal(t, 2, second.LineNumber(y))
	assert.Equal(t, 1, second.ColumnNumber(y))
	assert.Equal(t, 25, second.Boundary())

	third := sents[2]
	assert.True(t, third.IsComplete())
	assert.Equal(t, 34, third.OriginalIndex(0))
	assert.Equal(t, 2, third.LineNumber(0))
	assert.Equal(t, 6, third.ColumnNumber(0))
}

func TestDetectSentences_LeftoverRoundTrip(t *testing.T) {
	for name, tc := range roundTripCases() {
		t.Run(name, func(t *testing.T) {
			want := views(collect(t, newTestProcessor(), []string{tc.doc}, [][]marker.Marker{tc.ms}))

			for k := 0; k <= len(tc.doc); k++ {
				segs, windows := split(tc.doc, tc.ms, k)
				got := views(collect(t, newTestProcessor(), segs, windows))
				require.Equal(t, want, got, "cut at %d", k)
			}
		})
	}
}

func TestDetectSentences_LeftoverRoundTripTwoCuts(t *testing.T) {
	for name, tc := range roundTripCases() {
		t.Run(name, func(t *testing.T) {
			want := views(collect(t, newTestProcessor(), []string{tc.doc}, [][]marker.Marker{tc.ms}))

			for a := 0; a <= len(tc.doc); a++ {
				for b := a; b <= len(tc.doc); b++ {
					segs, windows := split(tc.doc, tc.ms, a, b)
					got := views(collect(t, newTestProcessor(), segs, windows))
					require.Equal(t, want, got, "cuts at %d and %d", a, b)
				}
			}
		})
	}
}

func TestDetectSentences_IndexesAreMonotonic(t *testing.T) {
	doc, ms := roundTripDoc, roundTripMarkers()
	for k := 0; k <= len(doc); k += 5 {
		segs, windows := split(doc, ms, k)
		prev := -1
		for _, s := range collect(t, newTestProcessor(), segs, windows) {
			for _, o := range s.OriginalIndexes() {
				require.GreaterOrEqual(t, o, prev)
				prev = o
			}
		}
	}
}

func TestDetectSentences_Slicing(t *testing.T) {
	p := newTestProcessor()
	h, err := p.Process("Hello World. How are you?  Fine,  ", []marker.Marker{
		marker.SentenceBreak(12),
		marker.SentenceBreak(25),
	})
	require.NoError(t, err)

	sents, left, err := h.DetectSentences(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello World.", "How are you?"}, texts(sents))
	assert.Equal(t, 13, sents[1].OriginalIndex(0))

	require.NotNil(t, left)
	assert.Equal(t, "Fine, ", left.Text())
	assert.False(t, left.IsComplete())
	assert.Equal(t, -1, left.Boundary())
	assert.Equal(t, 27, left.OriginalIndex(0))

	h, err = p.Process("thanks.", nil)
	require.NoError(t, err)
	sents, left, err = h.DetectSentences(left)
	require.NoError(t, err)
	assert.Empty(t, sents)
	assert.Equal(t, "Fine, thanks.", left.Text())
}

func TestDetectSentences_SkipsEmptySentences(t *testing.T) {
	p := newTestProcessor()
	h, err := p.Process("A.  B.", nil)
	require.NoError(t, err)
	for _, b := range []int{1, 3, 5} {
		require.NoError(t, h.AddBoundary(b))
	}

	sents, left, err := h.DetectSentences(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.", "B."}, texts(sents))
	assert.Nil(t, left)
}

func TestDetectSentences_WhitespaceLeftoverIsCarried(t *testing.T) {
	p := newTestProcessor()
	h, err := p.Process("A.   ", []marker.Marker{marker.SentenceBreak(2)})
	require.NoError(t, err)

	_, left, err := h.DetectSentences(nil)
	require.NoError(t, err)
	require.NotNil(t, left)
	assert.Equal(t, "", left.Text())

	h, err = p.Process("B", nil)
	require.NoError(t, err)
	_, left, err = h.DetectSentences(left)
	require.NoError(t, err)
	assert.Equal(t, "B", left.Text())
	assert.Equal(t, 5, left.OriginalIndex(0))
}

func TestDetectSentences_ElidedTextFollowsBoundary(t *testing.T) {
	doc, ms := overrideBreakDoc, overrideBreakMarkers()
	want := collect(t, newTestProcessor(WithOutputDivider("|")), []string{doc}, [][]marker.Marker{ms})

	require.Equal(t, []string{"A.", "C"}, texts(want))
	assert.Empty(t, want[0].OriginalTextSegments())
	assert.Equal(t, map[int]string{0: "<x>A.</x>|<y>C</y>"}, want[1].OriginalTextSegments())

	for k := 0; k <= len(doc); k++ {
		segs, windows := split(doc, ms, k)
		got := collect(t, newTestProcessor(WithOutputDivider("|")), segs, windows)
		require.Equal(t, views(want), views(got), "cut at %d", k)
	}
}

func TestDetectSentences_ElidedTextAcrossHolders(t *testing.T) {
	p := newTestProcessor(WithOutputDivider("|"))

	h, err := p.Process("<x>A.", []marker.Marker{
		marker.PushSkip(0), marker.PushOutput(3), marker.SentenceBreak(5),
	})
	require.NoError(t, err)
	sents, left, err := h.DetectSentences(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A."}, texts(sents))
	assert.Nil(t, left)

	h, err = p.Process("</x>", []marker.Marker{marker.PopOutput(0), marker.PopSkip(4)})
	require.NoError(t, err)
	assert.Equal(t, map[int]string{2: "<x>A.</x>"}, h.OriginalTextSegments())

	sents, left, err = h.DetectSentences(nil)
	require.NoError(t, err)
	assert.Empty(t, sents)
	require.NotNil(t, left)
	assert.Equal(t, map[int]string{0: "<x>A.</x>"}, left.OriginalTextSegments())
}

func TestDetectSentences_BoundaryBeforeLeftoverIgnored(t *testing.T) {
	p := newTestProcessor()
	h, err := p.Process("One. Two", []marker.Marker{marker.SentenceBreak(4)})
	require.NoError(t, err)
	_, left, err := h.DetectSentences(nil)
	require.NoError(t, err)

	h, err = p.Process(" three.", nil)
	require.NoError(t, err)
	require.NoError(t, h.AddBoundary(0))
	require.NoError(t, h.AddBoundary(h.Base()+h.Len()-1))

	sents, left, err := h.DetectSentences(left)
	require.NoError(t, err)
	assert.Nil(t, left)
	assert.Equal(t, []string{"Two three."}, texts(sents))
}

func TestDetectSentences_OpenTagsClipToCompleteSentences(t *testing.T) {
	p := newTestProcessor()
	h, err := p.Process("a. b c", []marker.Marker{
		marker.TagStart(0, "p", ""),
		marker.SentenceBreak(2),
	})
	require.NoError(t, err)

	sents, left, err := h.DetectSentences(nil)
	require.NoError(t, err)
	require.Len(t, sents, 1)
	assert.Equal(t, []TagSpan{{Name: "p", Start: 0, End: 2}}, sents[0].Tags())
	assert.Empty(t, left.Tags())
}

func TestAddBoundary(t *testing.T) {
	p := newTestProcessor()
	h, err := p.Process("abcde", nil)
	require.NoError(t, err)

	assert.NoError(t, h.AddBoundary(4))
	assert.NoError(t, h.AddBoundary(4))
	assert.Equal(t, []int{4}, h.Boundaries())

	for _, off := range []int{-1, 5, 100} {
		err := h.AddBoundary(off)
		assert.ErrorIs(t, err, ErrInvalidSentenceBoundary)
		var be *BoundaryError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, off, be.Offset)
		assert.Equal(t, 5, be.Max)
	}
}

func TestDetectSentences_LeftoverMismatch(t *testing.T) {
	p1 := newTestProcessor()
	h1, err := p1.Process("abc", nil)
	require.NoError(t, err)
	_, left, err := h1.DetectSentences(nil)
	require.NoError(t, err)

	p2 := newTestProcessor()
	h2, err := p2.Process("def", nil)
	require.NoError(t, err)
	_, _, err = h2.DetectSentences(left)
	assert.ErrorIs(t, err, ErrLeftoverMismatch)

	fin, _ := p1.Finish()
	done, _, err := fin.DetectSentences(left)
	require.NoError(t, err)
	require.Len(t, done, 1)

	h3, err := newTestProcessor().Process("x", nil)
	require.NoError(t, err)
	_, _, err = h3.DetectSentences(done[0])
	assert.ErrorIs(t, err, ErrLeftoverMismatch)
}

func TestKeepMask(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		trailing bool
		want     string
	}{
		{"trim both", "  a  b  ", true, "a b"},
		{"keep trailing run start", "  a  b  ", false, "a b "},
		{"run keeps first rune", "a\n\n b", true, "a\nb"},
		{"byte order mark", "\ufeffa", true, "a"},
		{"non-breaking space run", "a\u00a0\u00a0b", true, "a\u00a0b"},
		{"all whitespace", " \t\n", true, ""},
		{"empty", "", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keep := keepMask(tt.raw, tt.trailing)
			var got []byte
			for i := range len(tt.raw) {
				if keep[i] {
					got = append(got, tt.raw[i])
				}
			}
			assert.Equal(t, tt.want, string(got))
		})
	}
}
