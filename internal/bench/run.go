package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/jamesainslie/go-rawtext"
	"github.com/jamesainslie/go-rawtext/marker"
)

// Result describes one run of a document through a stream.
type Result struct {
	DocID      string
	Size       int   // segment size in bytes, 0 for the whole document
	Boundaries []int // original offset of the last byte of each complete sentence
	Sentences  int
	Anomalies  int
	Bytes      int
	Elapsed    time.Duration
}

// Cuts returns the end offsets of the segments text is split into. Each
// segment holds at least size bytes and ends on a rune start. A size of 0
// or less yields one segment.
func Cuts(text string, size int) []int {
	if len(text) == 0 {
		return nil
	}
	if size <= 0 {
		return []int{len(text)}
	}

	var cuts []int
	for end := size; end < len(text); end += size {
		for end < len(text) && !utf8.RuneStart(text[end]) {
			end++
		}
		if end >= len(text) {
			break
		}
		if n := len(cuts); n > 0 && cuts[n-1] >= end {
			continue
		}
		cuts = append(cuts, end)
	}
	return append(cuts, len(text))
}

// Runner pushes documents through fresh streams. A Runner is not safe for
// concurrent use; share runners through a Pool.
type Runner struct {
	logger *slog.Logger
	runs   int
}

// NewRunner creates a Runner logging to logger.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Runs returns how many documents r has processed.
func (r *Runner) Runs() int { return r.runs }

// Run splits doc into segments of size bytes, writes them to a new stream
// with the document markers rebased to each segment, and closes it.
func (r *Runner) Run(ctx context.Context, doc *Document, size int) (Result, error) {
	res := Result{DocID: doc.ID, Size: size, Bytes: len(doc.Text)}
	stream := rawtext.NewStream(
		rawtext.WithLogger(r.logger),
		rawtext.WithFileName(doc.ID),
	)
	ms := marker.Sort(doc.Markers)

	collect := func(sents []*rawtext.Sentence) {
		for _, s := range sents {
			res.Sentences++
			if s.IsComplete() && s.Len() > 0 {
				res.Boundaries = append(res.Boundaries, s.OriginalIndex(s.Len()-1))
			}
		}
	}

	started := time.Now()
	start := 0
	cuts := Cuts(doc.Text, size)
	for i, end := range cuts {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		final := i == len(cuts)-1
		sents, err := stream.Write(doc.Text[start:end], marker.Window(ms, start, end, final))
		if err != nil {
			return Result{}, fmt.Errorf("%s: segment at %d: %w", doc.ID, start, err)
		}
		collect(sents)
		start = end
	}

	sents, anomalies, err := stream.Close()
	if err != nil {
		return Result{}, fmt.Errorf("%s: close: %w", doc.ID, err)
	}
	collect(sents)
	res.Anomalies = len(anomalies)
	res.Elapsed = time.Since(started)
	r.runs++

	r.logger.Debug("document processed",
		"doc", doc.ID,
		"stream", stream.ID(),
		"size", size,
		"segments", len(cuts),
		"sentences", res.Sentences,
		"elapsed", res.Elapsed,
	)
	return res, nil
}
