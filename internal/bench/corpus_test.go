package bench

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/go-rawtext/internal/config"
	"github.com/jamesainslie/go-rawtext/marker"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     Header
		wantBody string
		wantErr  bool
	}{
		{
			name: "valid header",
			input: `# Source: https://example.com/page
# Title: My Page

Hello world.`,
			want: Header{
				Source: "https://example.com/page",
				Title:  "My Page",
			},
			wantBody: "Hello world.",
		},
		{
			name: "body keeps its own whitespace",
			input: `# Source: ud-ewt

  Indented.
`,
			want:     Header{Source: "ud-ewt"},
			wantBody: "  Indented.\n",
		},
		{
			name: "missing source",
			input: `# Title: My Page

Hello.`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, body, err := ParseHeader(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestParseSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Sentence
	}{
		{
			name:  "simple sentences",
			input: "Hello world. How are you?",
			want: []Sentence{
				{Text: "Hello world.", Start: 0, End: 12},
				{Text: "How are you?", Start: 13, End: 25},
			},
		},
		{
			name:  "exclamation",
			input: "Wow! That's great.",
			want: []Sentence{
				{Text: "Wow!", Start: 0, End: 4},
				{Text: "That's great.", Start: 5, End: 18},
			},
		},
		{
			name:  "abbreviation Mr.",
			input: "Mr. Smith went home. He was tired.",
			want: []Sentence{
				{Text: "Mr. Smith went home.", Start: 0, End: 20},
				{Text: "He was tired.", Start: 21, End: 34},
			},
		},
		{
			name:  "unterminated remainder",
			input: "Done. and then",
			want: []Sentence{
				{Text: "Done.", Start: 0, End: 5},
				{Text: "and then", Start: 6, End: 14},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSentences(tt.input))
		})
	}
}

func TestDocument_Truth(t *testing.T) {
	doc := &Document{Markers: []marker.Marker{
		marker.SentenceBreak(25),
		marker.PushSkip(3),
		marker.SentenceBreak(12),
		marker.SentenceBreak(12),
		marker.SentenceBreak(0),
		marker.PopSkip(6),
	}}

	assert.Equal(t, []int{11, 24}, doc.Truth())
}

func TestLoadDocument_Sidecar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.txt")
	content := `# Source: https://example.com
# Title: Test Title

Hi <b>there</b>. Bye.`

	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	sidecar := append(marker.Skip(3, 6), marker.Skip(11, 15)...)
	sidecar = append(sidecar, marker.SentenceBreak(16), marker.SentenceBreak(21))
	require.NoError(t, config.WriteMarkers(filepath.Join(dir, "page"+MarkerSuffix), sidecar))

	doc, err := LoadDocument(path)
	require.NoError(t, err)

	assert.Equal(t, "page", doc.ID)
	assert.Equal(t, "Test Title", doc.Title)
	assert.Equal(t, "Hi <b>there</b>. Bye.", doc.Text)
	assert.Len(t, doc.Markers, 6)
}

func TestLoadDocument_PunctuationFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.txt")
	content := `# Source: https://example.com

Hello world. How are you?`

	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, []marker.Marker{marker.SentenceBreak(12), marker.SentenceBreak(25)}, doc.Markers)
}

func TestLoadDocument_BadSidecar(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.txt"), []byte("# Source: x\n\nHello."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad"+MarkerSuffix), []byte("markers:\n  - kind: wobble\n    pos: 1\n"), 0o644))

	_, err := LoadDocument(filepath.Join(dir, "bad.txt"))
	assert.Error(t, err)
}

func TestLoadCorpus(t *testing.T) {
	dir := t.TempDir()

	// Create two test files
	for _, name := range []string{"doc1.txt", "doc2.txt"} {
		content := `# Source: https://example.com
# Title: Title

Hello.`
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	// Files that are not .txt are ignored, sidecars included
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Readme"), 0o644))
	require.NoError(t, config.WriteMarkers(filepath.Join(dir, "doc1"+MarkerSuffix), []marker.Marker{marker.SentenceBreak(6)}))

	docs, err := LoadCorpus(dir)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}
