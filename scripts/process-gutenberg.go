//go:build ignore

// Process raw Project Gutenberg downloads into corpus format.
// The raw text is kept verbatim; the marker sidecar skips the license
// boilerplate and illustration captions, turns soft line wraps into spaces
// and places sentence breaks.
// Usage: go run ./scripts/process-gutenberg.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jamesainslie/go-rawtext/internal/bench"
	"github.com/jamesainslie/go-rawtext/internal/config"
	"github.com/jamesainslie/go-rawtext/marker"
)

// Book metadata
var books = map[string]struct {
	Title  string
	Author string
	Year   string
}{
	"pride_and_prejudice": {"Pride and Prejudice", "Jane Austen", "1813"},
	"moby_dick":           {"Moby Dick", "Herman Melville", "1851"},
	"great_expectations":  {"Great Expectations", "Charles Dickens", "1861"},
	"origin_of_species":   {"On the Origin of Species", "Charles Darwin", "1859"},
	"tom_sawyer":          {"The Adventures of Tom Sawyer", "Mark Twain", "1876"},
	"jane_eyre":           {"Jane Eyre", "Charlotte Brontë", "1847"},
}

var (
	startPatterns = []string{
		"*** START OF THE PROJECT GUTENBERG EBOOK",
		"*** START OF THIS PROJECT GUTENBERG EBOOK",
		"*END*THE SMALL PRINT",
	}
	endPatterns = []string{
		"*** END OF THE PROJECT GUTENBERG EBOOK",
		"*** END OF THIS PROJECT GUTENBERG EBOOK",
		"End of Project Gutenberg",
		"End of the Project Gutenberg",
	}
	illustrationRe = regexp.MustCompile(`\[Illustration[^\]]*\]`)
	// a single line break between two non-blank lines
	softWrapRe = regexp.MustCompile(`[^\r\n](\r?\n)[^\r\n]`)
)

// maxBody bounds the kept text for a reasonable benchmark size.
const maxBody = 50000

func main() {
	inDir := "testdata/gutenberg"
	outDir := "testdata/corpus"

	files, err := filepath.Glob(filepath.Join(inDir, "*_raw.txt"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding files: %v\n", err)
		os.Exit(1)
	}

	if len(files) == 0 {
		fmt.Println("No raw files found. Download books to testdata/gutenberg/<name>_raw.txt first.")
		os.Exit(1)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", outDir, err)
		os.Exit(1)
	}

	for _, rawFile := range files {
		baseName := strings.TrimSuffix(filepath.Base(rawFile), "_raw.txt")
		outFile := filepath.Join(outDir, baseName+".txt")

		meta, ok := books[baseName]
		if !ok {
			fmt.Printf("Skipping unknown book: %s\n", baseName)
			continue
		}

		fmt.Printf("Processing %s...\n", baseName)
		n, err := processBook(rawFile, outFile, meta.Title, meta.Author, meta.Year)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", baseName, err)
			continue
		}
		fmt.Printf("  -> %s (%d markers)\n", outFile, n)
	}

	fmt.Printf("\nDone! Corpus files created in %s/\n", outDir)
}

func processBook(inPath, outPath, title, author, year string) (int, error) {
	content, err := os.ReadFile(inPath)
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	// the corpus loader drops leading line breaks of the body
	text := strings.TrimLeft(string(content), "\r\n")

	start, end := bodyRange(text)
	if end-start > maxBody {
		if i := strings.Index(text[start+maxBody:end], "\n\n"); i != -1 {
			end = start + maxBody + i
		}
		text = text[:end]
	}

	var ms []marker.Marker
	if start > 0 {
		ms = append(ms, marker.Skip(0, start)...)
	}
	if end < len(text) {
		ms = append(ms, marker.Skip(end, len(text))...)
	}

	skipped := [][2]int{{0, start}, {end, len(text)}}
	for _, loc := range illustrationRe.FindAllStringIndex(text[start:end], -1) {
		ms = append(ms, marker.Skip(start+loc[0], start+loc[1])...)
		skipped = append(skipped, [2]int{start + loc[0], start + loc[1]})
	}

	for _, loc := range softWrapRe.FindAllStringSubmatchIndex(text[start:end], -1) {
		ms = append(ms, marker.Replace(start+loc[2], start+loc[3], " ")...)
	}

	for _, m := range marker.Scan(text, bench.PunctuationFilter) {
		if !inside(skipped, m.Position-1) {
			ms = append(ms, m)
		}
	}

	header := fmt.Sprintf("# Source: https://www.gutenberg.org/\n# Title: %s, %s (%s)\n\n", title, author, year)
	if err := os.WriteFile(outPath, []byte(header+text), 0o644); err != nil {
		return 0, fmt.Errorf("writing text: %w", err)
	}

	sidecar := strings.TrimSuffix(outPath, ".txt") + bench.MarkerSuffix
	if err := config.WriteMarkers(sidecar, marker.Sort(ms)); err != nil {
		return 0, fmt.Errorf("writing markers: %w", err)
	}
	return len(ms), nil
}

// bodyRange returns the book text between the license header and footer.
func bodyRange(text string) (int, int) {
	start := 0
	for _, pattern := range startPatterns {
		if idx := strings.Index(text, pattern); idx != -1 {
			if eol := strings.Index(text[idx:], "\n"); eol != -1 {
				start = idx + eol + 1
			}
			break
		}
	}

	end := len(text)
	for _, pattern := range endPatterns {
		if idx := strings.Index(text[start:], pattern); idx != -1 {
			end = start + idx
			break
		}
	}
	return start, end
}

func inside(ranges [][2]int, pos int) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}
