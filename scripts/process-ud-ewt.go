//go:build ignore

// Process UD English Web Treebank CoNLL-U files into benchmark corpus format.
// Writes one document per split with a sentence-break marker sidecar holding
// the gold-standard boundaries.
// Usage: go run ./scripts/process-ud-ewt.go
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/go-rawtext/internal/bench"
	"github.com/jamesainslie/go-rawtext/internal/config"
	"github.com/jamesainslie/go-rawtext/marker"
)

const source = "https://github.com/UniversalDependencies/UD_English-EWT"

// document is a processed split: its text and the sentence-break markers.
type document struct {
	Name    string
	Text    string
	Markers []marker.Marker
}

func main() {
	inDir := "testdata/ud-ewt"
	outDir := "testdata/corpus"

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", outDir, err)
		os.Exit(1)
	}

	for _, split := range []string{"train", "dev", "test"} {
		inFile := filepath.Join(inDir, fmt.Sprintf("en_ewt-ud-%s.conllu", split))

		fmt.Printf("Processing %s...\n", split)
		doc, err := processCoNLLU(inFile, split)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inFile, err)
			continue
		}

		outFile, err := writeDocument(outDir, doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", doc.Name, err)
			continue
		}

		fmt.Printf("  -> %s (%d sentences, %d bytes)\n", outFile, len(doc.Markers), len(doc.Text))
	}

	fmt.Printf("\nDone! Corpus files created in %s/\n", outDir)
}

// processCoNLLU joins the sentence texts of a CoNLL-U file. Sentences are
// separated by a space, paragraphs by a newline.
func processCoNLLU(path, split string) (*document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	var (
		text    strings.Builder
		markers []marker.Marker
		newPar  bool
	)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "# newpar") {
			newPar = true
			continue
		}

		sent, ok := strings.CutPrefix(line, "# text = ")
		if !ok {
			continue
		}
		if text.Len() > 0 {
			if newPar {
				text.WriteString("\n")
			} else {
				text.WriteString(" ")
			}
		}
		newPar = false
		text.WriteString(sent)
		markers = append(markers, marker.SentenceBreak(text.Len()))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning file: %w", err)
	}

	return &document{
		Name:    "ud-ewt-" + split,
		Text:    text.String(),
		Markers: markers,
	}, nil
}

func writeDocument(dir string, doc *document) (string, error) {
	path := filepath.Join(dir, doc.Name+".txt")
	header := fmt.Sprintf("# Source: %s\n# Title: UD English EWT (%s)\n\n", source, strings.TrimPrefix(doc.Name, "ud-ewt-"))
	if err := os.WriteFile(path, []byte(header+doc.Text), 0o644); err != nil {
		return "", fmt.Errorf("writing text: %w", err)
	}
	if err := config.WriteMarkers(filepath.Join(dir, doc.Name+bench.MarkerSuffix), doc.Markers); err != nil {
		return "", fmt.Errorf("writing markers: %w", err)
	}
	return path, nil
}
