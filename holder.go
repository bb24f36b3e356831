package rawtext

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jamesainslie/go-rawtext/lines"
)

// Holder is the processed text of one segment: the text itself, the
// original offset of every byte, elided original text, tags and the
// sentence boundaries found so far. Offsets a Holder reports are global
// processed offsets, counted from the start of the stream.
//
// A Holder is not safe for concurrent use.
type Holder struct {
	base       int
	text       []byte
	index      []int
	segments   map[int]string
	tags       []TagSpan
	open       []TagSpan
	boundaries []int
	newlines   *lines.Index
	firstLine  int
	final      bool

	divider  string
	fileName string
	logger   *slog.Logger
}

// Base returns the global processed offset of the holder's first byte.
func (h *Holder) Base() int { return h.base }

// Len returns the number of processed bytes in the holder.
func (h *Holder) Len() int { return len(h.text) }

// Text returns the processed text.
func (h *Holder) Text() string { return string(h.text) }

// IsFinal reports whether the holder ends the stream or a file.
func (h *Holder) IsFinal() bool { return h.final }

// OriginalIndexes returns the original offset of each processed byte.
func (h *Holder) OriginalIndexes() []int { return slices.Clone(h.index) }

// OriginalTextSegments returns the elided original text keyed by global
// processed offset.
func (h *Holder) OriginalTextSegments() map[int]string { return maps.Clone(h.segments) }

// TagSpans returns the tags completed in this holder, in global processed
// offsets.
func (h *Holder) TagSpans() []TagSpan { return slices.Clone(h.tags) }

// Newlines returns the line starts found by the call that produced the
// holder, in original offsets of the current file.
func (h *Holder) Newlines() []lines.Entry { return h.newlines.Entries()[h.firstLine:] }

// Boundaries returns the sentence boundaries recorded so far, sorted and
// without duplicates. Each is the global processed offset of the last byte
// of a sentence.
func (h *Holder) Boundaries() []int {
	out := slices.Clone(h.boundaries)
	slices.Sort(out)
	return slices.Compact(out)
}

// AddBoundary records that a sentence ends with the byte at the global
// processed offset. Boundaries may fall in text carried over from earlier
// holders, but not past the end of this one.
func (h *Holder) AddBoundary(offset int) error {
	end := h.base + len(h.text)
	if offset < 0 || offset >= end {
		return &BoundaryError{Offset: offset, Min: 0, Max: end}
	}
	h.boundaries = append(h.boundaries, offset)
	return nil
}

func (h *Holder) addSegment(key int, text string) {
	if h.segments == nil {
		h.segments = make(map[int]string)
	}
	if prev, ok := h.segments[key]; ok {
		text = prev + h.divider + text
	}
	h.segments[key] = text
}

// pending is the unconsumed tail of a stream in global coordinates, before
// whitespace normalisation.
type pending struct {
	base     int
	text     string
	index    []int
	segments map[int]string
	tags     []TagSpan
}

func (c *pending) end() int { return c.base + len(c.text) }

// DetectSentences slices the leftover of the previous holder plus this
// holder's text at the recorded boundaries. It returns the complete
// sentences and the new leftover, which is nil when nothing remains.
// On a final holder the remainder is returned as a complete sentence.
func (h *Holder) DetectSentences(leftover *Sentence) ([]*Sentence, *Sentence, error) {
	c, err := h.combine(leftover)
	if err != nil {
		return nil, nil, err
	}

	var out []*Sentence
	start, end := c.base, c.end()
	for _, b := range h.Boundaries() {
		if b < start || b >= end {
			continue
		}
		if s := h.slice(c, start, b+1, true, false); s != nil {
			h.logger.Debug("sentence", "start", s.Start(), "boundary", s.Boundary(), "len", s.Len())
			out = append(out, s)
		}
		start = b + 1
	}

	rest := h.slice(c, start, end, h.final, true)
	h.logger.Debug("sentences detected",
		"complete", len(out),
		"leftover", rest != nil && !h.final,
		"base", c.base,
		"end", end)
	if rest == nil {
		return out, nil, nil
	}
	if h.final {
		return append(out, rest), nil, nil
	}
	return out, rest, nil
}

func (h *Holder) combine(leftover *Sentence) (*pending, error) {
	c := &pending{
		base:  h.base,
		text:  string(h.text),
		index: h.index,
		tags:  h.tags,
	}
	var prev map[int]string
	if leftover != nil {
		l := leftover.pending
		if l == nil {
			return nil, fmt.Errorf("%w: leftover is a complete sentence", ErrLeftoverMismatch)
		}
		if l.end() != h.base {
			return nil, fmt.Errorf("%w: leftover ends at %d, holder starts at %d",
				ErrLeftoverMismatch, l.end(), h.base)
		}
		c.base = l.base
		c.text = l.text + c.text
		c.index = append(slices.Clone(l.index), h.index...)
		c.tags = append(slices.Clone(l.tags), h.tags...)
		prev = l.segments
	}

	c.segments = make(map[int]string, len(prev)+len(h.segments))
	// Boundaries added by the caller can end a sentence ahead of an elided
	// region that is still open, so its key may precede the leftover.
	add := func(key int, text string) {
		key = max(key, c.base)
		if old, ok := c.segments[key]; ok {
			text = old + h.divider + text
		}
		c.segments[key] = text
	}
	for _, k := range sortedKeys(prev) {
		add(k, prev[k])
	}
	for _, k := range sortedKeys(h.segments) {
		add(k, h.segments[k])
	}
	return c, nil
}

// slice builds the sentence covering global processed offsets [s, e).
// The last slice also takes elided text keyed at e. It returns nil when the
// slice holds nothing worth reporting.
func (h *Holder) slice(c *pending, s, e int, complete, last bool) *Sentence {
	raw := c.text[s-c.base : e-c.base]
	segKeys := make([]int, 0)
	for _, k := range sortedKeys(c.segments) {
		if k >= s && (k < e || (last && k == e)) {
			segKeys = append(segKeys, k)
		}
	}
	if len(segKeys) == 0 {
		if raw == "" || (complete && strings.TrimFunc(raw, isWhitespace) == "") {
			return nil
		}
	}

	keep := keepMask(raw, complete)
	pos := make([]int, len(raw)+1)
	var text strings.Builder
	var index []int
	for i := range len(raw) {
		pos[i] = text.Len()
		if keep[i] {
			text.WriteByte(raw[i])
			index = append(index, c.index[s-c.base+i])
		}
	}
	pos[len(raw)] = text.Len()

	sent := &Sentence{
		text:     text.String(),
		index:    index,
		start:    s,
		boundary: -1,
		complete: complete,
		fileName: h.fileName,
		divider:  h.divider,
	}
	if complete {
		sent.boundary = e - 1
	}

	for _, k := range segKeys {
		if sent.segments == nil {
			sent.segments = make(map[int]string, len(segKeys))
		}
		local := pos[k-s]
		if old, ok := sent.segments[local]; ok {
			sent.segments[local] = old + h.divider + c.segments[k]
		} else {
			sent.segments[local] = c.segments[k]
		}
	}

	clip := func(spans []TagSpan) {
		for _, t := range spans {
			if !overlaps(t, s, e, last) {
				continue
			}
			sent.tags = append(sent.tags, TagSpan{
				Name:  t.Name,
				Value: t.Value,
				Start: pos[max(t.Start, s)-s],
				End:   pos[min(t.End, e)-s],
			})
		}
	}
	clip(c.tags)
	if complete {
		clip(h.open)
	}

	if len(index) > 0 {
		sent.newlines = h.newlines.Slice(index[0], index[len(index)-1])
	} else {
		sent.newlines = &lines.Index{}
	}

	if !complete {
		p := &pending{
			base:  s,
			text:  raw,
			index: slices.Clone(c.index[s-c.base : e-c.base]),
		}
		for _, k := range segKeys {
			if p.segments == nil {
				p.segments = make(map[int]string, len(segKeys))
			}
			p.segments[k] = c.segments[k]
		}
		for _, t := range c.tags {
			if t.End >= s {
				p.tags = append(p.tags, t)
			}
		}
		sent.pending = p
	}
	return sent
}

func overlaps(t TagSpan, s, e int, last bool) bool {
	if t.Start == t.End {
		return t.Start >= s && (t.Start < e || (last && t.Start == e))
	}
	return t.Start < e && t.End > s
}

// keepMask marks the bytes of raw that survive normalisation: leading
// whitespace goes, runs of whitespace shrink to their first rune and, for
// complete sentences, trailing whitespace goes.
func keepMask(raw string, trimTrailing bool) []bool {
	keep := make([]bool, len(raw))
	leading, prevSpace := true, false
	lastKept := -1
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRuneInString(raw[i:])
		space := isWhitespace(r)
		k := !space || (!leading && !prevSpace)
		if !space {
			leading = false
			lastKept = i + size
		}
		for j := i; j < i+size; j++ {
			keep[j] = k
		}
		prevSpace = space
		i += size
	}
	if trimTrailing {
		for j := max(lastKept, 0); j < len(raw); j++ {
			keep[j] = false
		}
	}
	return keep
}

func isWhitespace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

func sortedKeys(m map[int]string) []int {
	return slices.Sorted(maps.Keys(m))
}
