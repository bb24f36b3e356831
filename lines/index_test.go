package lines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// "Hello World.\nHow\nare you? Fine\nthanks."
func sampleIndex() *Index {
	return New(
		Entry{Offset: 0, Line: 1},
		Entry{Offset: len("Hello World.\n"), Line: 2},
		Entry{Offset: len("Hello World.\nHow\n"), Line: 3},
		Entry{Offset: len("Hello World.\nHow\nare you? Fine\n"), Line: 4},
	)
}

func TestIndex_LineColumn(t *testing.T) {
	idx := sampleIndex()

	tests := []struct {
		name     string
		offset   int
		wantLine int
		wantCol  int
	}{
		{"first char", 0, 1, 1},
		{"end of first line", len("Hello World."), 1, 13},
		{"start of second line", len("Hello World.\n"), 2, 1},
		{"w of How", len("Hello World.\nHo"), 2, 3},
		{"e of are", len("Hello World.\nHow\nar"), 3, 3},
		{"past last newline", len("Hello World.\nHow\nare you? Fine\nthanks"), 4, 7},
		{"negative", -1, -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLine, idx.Line(tt.offset))
			assert.Equal(t, tt.wantCol, idx.Column(tt.offset))
		})
	}
}

func TestIndex_AddRejectsOutOfOrder(t *testing.T) {
	idx := New(Entry{Offset: 0, Line: 1})
	assert.True(t, idx.Add(5, 2))
	assert.False(t, idx.Add(5, 3))
	assert.False(t, idx.Add(2, 3))
	assert.Equal(t, 2, idx.Len())

	last, ok := idx.Last()
	require.True(t, ok)
	assert.Equal(t, Entry{Offset: 5, Line: 2}, last)
}

func TestIndex_Empty(t *testing.T) {
	var idx *Index
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, -1, idx.Line(3))
	assert.Equal(t, -1, idx.Column(3))
	assert.Nil(t, idx.Entries())

	_, ok := (&Index{}).Last()
	assert.False(t, ok)
}

func TestIndex_Slice(t *testing.T) {
	idx := sampleIndex()

	// "How\nare you?" spans lines 2 and 3
	from := len("Hello World.\n")
	to := len("Hello World.\nHow\nare you?") - 1
	sub := idx.Slice(from, to)

	assert.Equal(t, []Entry{
		{Offset: from, Line: 2},
		{Offset: len("Hello World.\nHow\n"), Line: 3},
	}, sub.Entries())
	assert.Equal(t, idx.Line(to), sub.Line(to))
	assert.Equal(t, idx.Column(to), sub.Column(to))

	// starting mid-line keeps the entry in force
	mid := idx.Slice(3, 5)
	assert.Equal(t, []Entry{{Offset: 0, Line: 1}}, mid.Entries())
	assert.Equal(t, 4, mid.Column(3))

	assert.Equal(t, 0, idx.Slice(5, 3).Len())
}

func TestIndex_ViewIsStable(t *testing.T) {
	idx := New(Entry{Offset: 0, Line: 1})
	view := idx.View()
	idx.Add(10, 2)

	assert.Equal(t, 1, view.Len())
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, 1, view.Line(12))
}
