// Package bench measures how segment size affects the sentences a stream
// produces.
package bench

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jamesainslie/go-rawtext/internal/config"
	"github.com/jamesainslie/go-rawtext/marker"
)

// MarkerSuffix names the marker sidecar of a corpus document: doc.txt is
// paired with doc.markers.yaml.
const MarkerSuffix = ".markers.yaml"

// Header contains metadata parsed from a document header.
type Header struct {
	Source string
	Title  string
}

// ParseHeader extracts metadata from leading "# Key: value" comment lines.
// Returns the header, the body after the header, and any error.
// The body is returned verbatim so marker positions stay valid.
func ParseHeader(text string) (Header, string, error) {
	var h Header
	scanner := bufio.NewScanner(strings.NewReader(text))
	bodyStart := 0
	consumed := 0

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "#") {
			if strings.TrimSpace(line) == "" {
				consumed += len(line) + 1
				continue
			}
			break
		}
		consumed += len(line) + 1
		bodyStart = consumed

		line = strings.TrimPrefix(line, "# ")
		if value, ok := strings.CutPrefix(line, "Source:"); ok {
			h.Source = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Title:"); ok {
			h.Title = strings.TrimSpace(value)
		}
	}

	if err := scanner.Err(); err != nil {
		return Header{}, "", fmt.Errorf("scan header: %w", err)
	}

	if h.Source == "" {
		return Header{}, "", errors.New("missing Source in header")
	}

	// blank lines between header and body belong to the header
	for bodyStart < len(text) && (text[bodyStart] == '\n' || text[bodyStart] == '\r') {
		bodyStart++
	}
	return h, text[min(bodyStart, len(text)):], nil
}

// Sentence represents a reference sentence with byte offsets.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// Common abbreviations that shouldn't end sentences
var abbreviations = regexp.MustCompile(`(?i)\b(Mr|Mrs|Ms|Dr|Prof|Sr|Jr|vs|etc|i\.e|e\.g|U\.S|U\.K)\.$`)

// ParseSentences splits text into sentences at sentence-ending punctuation.
// Handles common abbreviations to avoid false splits.
func ParseSentences(text string) []Sentence {
	if text == "" {
		return nil
	}

	var sentences []Sentence
	start := 0

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch != '.' && ch != '?' && ch != '!' {
			continue
		}
		isEnd := i == len(text)-1 || text[i+1] == ' ' || text[i+1] == '\n'
		if !isEnd {
			continue
		}
		candidate := text[start : i+1]
		if ch == '.' && abbreviations.MatchString(candidate) {
			continue
		}

		end := i + 1
		sentences = append(sentences, Sentence{
			Text:  strings.TrimSpace(text[start:end]),
			Start: start,
			End:   end,
		})

		for i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\n') {
			i++
		}
		start = i + 1
	}

	if start < len(text) {
		remaining := strings.TrimSpace(text[start:])
		if remaining != "" {
			sentences = append(sentences, Sentence{
				Text:  remaining,
				Start: start,
				End:   len(text),
			})
		}
	}

	return sentences
}

// PunctuationFilter places a sentence break after every sentence found by
// ParseSentences. Documents without a sidecar use it.
var PunctuationFilter = marker.FilterFunc(func(text string) []marker.Marker {
	var out []marker.Marker
	for _, s := range ParseSentences(text) {
		out = append(out, marker.SentenceBreak(s.End))
	}
	return out
})

// Document is a corpus text with its document-level markers.
type Document struct {
	ID      string // filename without extension
	Source  string
	Title   string
	Text    string
	Markers []marker.Marker
}

// Truth returns the original offsets of the last byte of each reference
// sentence: the byte before every sentence break.
func (d *Document) Truth() []int {
	var out []int
	for _, m := range marker.Sort(d.Markers) {
		if m.Kind == marker.KindSentenceBreak && m.Position > 0 {
			if n := len(out); n == 0 || out[n-1] != m.Position-1 {
				out = append(out, m.Position-1)
			}
		}
	}
	return out
}

// LoadDocument loads a document and its marker sidecar. Without a sidecar
// the markers come from PunctuationFilter.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	header, body, err := ParseHeader(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	base := filepath.Base(path)
	id := strings.TrimSuffix(base, filepath.Ext(base))

	sidecar := strings.TrimSuffix(path, filepath.Ext(path)) + MarkerSuffix
	ms, err := config.LoadMarkers(sidecar)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		ms = marker.Scan(body, PunctuationFilter)
	case err != nil:
		return nil, fmt.Errorf("load markers: %w", err)
	}

	return &Document{
		ID:      id,
		Source:  header.Source,
		Title:   header.Title,
		Text:    body,
		Markers: ms,
	}, nil
}

// LoadCorpus loads all .txt documents from a directory.
func LoadCorpus(dir string) ([]*Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var docs []*Document
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".txt" {
			continue
		}

		doc, err := LoadDocument(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
		}
		docs = append(docs, doc)
	}

	return docs, nil
}
