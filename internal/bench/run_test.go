package bench

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/go-rawtext"
	"github.com/jamesainslie/go-rawtext/marker"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func markupDoc() *Document {
	ms := append(marker.Skip(3, 6), marker.Skip(11, 15)...)
	ms = append(ms, marker.SentenceBreak(16), marker.SentenceBreak(21))
	return &Document{ID: "markup", Text: "Hi <b>there</b>. Bye.", Markers: ms}
}

func plainDoc() *Document {
	text := "Hello world. How are you? Fine."
	return &Document{ID: "plain", Text: text, Markers: marker.Scan(text, PunctuationFilter)}
}

func TestCuts(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []int
	}{
		{"empty", "", 4, nil},
		{"whole", "abc", 0, []int{3}},
		{"exact", "abcd", 4, []int{4}},
		{"larger than text", "abcd", 10, []int{4}},
		{"even", "abcdef", 2, []int{2, 4, 6}},
		{"rune boundaries", "héllo wörld", 2, []int{3, 5, 7, 10, 12, 13}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cuts(tt.text, tt.size))
		})
	}
}

func TestRunner_Run(t *testing.T) {
	r := NewRunner(quietLogger())
	ctx := context.Background()

	for _, doc := range []*Document{plainDoc(), markupDoc()} {
		whole, err := r.Run(ctx, doc, 0)
		require.NoError(t, err, doc.ID)
		assert.Equal(t, doc.Truth(), whole.Boundaries, doc.ID)

		for _, size := range []int{1, 3, 4, 7} {
			split, err := r.Run(ctx, doc, size)
			require.NoError(t, err, "%s/%d", doc.ID, size)
			assert.Equal(t, whole.Boundaries, split.Boundaries, "%s/%d", doc.ID, size)
			assert.Equal(t, whole.Sentences, split.Sentences, "%s/%d", doc.ID, size)
		}
	}

	assert.Equal(t, 10, r.Runs())
}

func TestRunner_MalformedMarkers(t *testing.T) {
	doc := &Document{ID: "broken", Text: "abc def", Markers: []marker.Marker{marker.PopSkip(2)}}

	_, err := NewRunner(quietLogger()).Run(context.Background(), doc, 3)
	assert.ErrorIs(t, err, rawtext.ErrMalformedMarkerStream)
}

func TestRunner_Anomalies(t *testing.T) {
	doc := &Document{ID: "open", Text: "abc def", Markers: []marker.Marker{marker.PushSkip(4)}}

	res, err := NewRunner(quietLogger()).Run(context.Background(), doc, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Anomalies)
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(quietLogger()).Run(ctx, plainDoc(), 4)
	assert.ErrorIs(t, err, context.Canceled)
}
