package rawtext

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/jamesainslie/go-rawtext/lines"
	"github.com/jamesainslie/go-rawtext/marker"
)

// Processor applies marker streams to consecutive raw segments of one
// document. Region depths, toggles, open tags, the newline table and the
// pending elided text all carry from one segment to the next.
//
// A Processor is not safe for concurrent use.
type Processor struct {
	cfg    config
	logger *slog.Logger

	skipDepth    int
	outputDepth  int
	includeDepth int
	skipToggle   bool
	outputToggle bool
	tags         []openTag

	// origin is the original offset of the next segment within the current
	// file. emitted is the number of processed bytes produced so far.
	origin   int
	emitted  int
	lastByte byte

	newlines  *lines.Index
	line      int
	pendingCR bool

	// Text consumed while a skip region is active. It is recorded as an
	// original text segment if an override let any of it through. Until
	// then only the last cfg.elidedPrefix bytes are kept.
	captureKey int
	capture    []byte
	captureHit bool

	// lastBoundary is the last sentence boundary a marker produced. Elided
	// text is never keyed at or before it.
	lastBoundary int

	fileName string
	err      error
	finished bool
}

type openTag struct {
	name  string
	value string
	start int
}

// New creates a Processor.
func New(opts ...Option) *Processor {
	cfg := newConfig(opts)
	p := &Processor{
		cfg:          cfg,
		logger:       cfg.logger.With("stream", cfg.streamID),
		fileName:     cfg.fileName,
		lastBoundary: -1,
	}
	p.resetLines()
	return p
}

// ID returns the stream identifier attached to log records.
func (p *Processor) ID() string { return p.cfg.streamID }

// State returns a snapshot of the region state.
func (p *Processor) State() StackState {
	s := StackState{
		SkipDepth:    p.skipDepth,
		OutputDepth:  p.outputDepth,
		IncludeDepth: p.includeDepth,
		SkipToggle:   p.skipToggle,
		OutputToggle: p.outputToggle,
	}
	for _, t := range p.tags {
		s.OpenTags = append(s.OpenTags, t.name)
	}
	return s
}

// Emitted returns the number of processed bytes produced so far.
func (p *Processor) Emitted() int { return p.emitted }

// Process applies markers to segment and returns the processed text of the
// segment. Marker positions are byte offsets into segment and may equal
// len(segment). The order of markers does not matter.
//
// An error leaves the processor failed: every later call returns the same
// error.
func (p *Processor) Process(segment string, markers []marker.Marker) (*Holder, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.finished {
		return nil, ErrClosed
	}

	ms := marker.Sort(markers)
	for _, m := range ms {
		if err := p.validate(segment, m); err != nil {
			return nil, p.fail(err)
		}
	}

	h := p.newHolder(false)
	p.scanNewlines(segment)

	pos := 0
	for _, m := range ms {
		p.consume(h, segment[pos:m.Position], pos)
		pos = m.Position
		if err := p.apply(h, m); err != nil {
			return nil, p.fail(err)
		}
	}
	p.consume(h, segment[pos:], pos)

	p.origin += len(segment)
	p.seal(h)

	p.logger.Debug("segment processed",
		"file", p.fileName,
		"bytes", len(segment),
		"markers", len(ms),
		"emitted", len(h.text),
		"boundaries", len(h.boundaries))
	return h, nil
}

// Finish ends the stream. It returns a final, empty holder that completes
// the last leftover, and warnings for regions and tags still open.
func (p *Processor) Finish() (*Holder, []Anomaly) {
	h := p.newHolder(true)
	if p.pendingCR {
		p.pendingCR = false
		p.addNewline(p.origin)
	}
	if p.skipping() {
		p.closeCapture(h)
	}
	p.seal(h)

	if p.err != nil || p.finished {
		return h, nil
	}
	p.finished = true

	anomalies := p.anomalies()
	for _, a := range anomalies {
		p.logger.Warn("input ended with open markup", "anomaly", a.String())
	}
	return h, anomalies
}

// NextFile starts a new file in the same stream. Original offsets and line
// numbers restart while region state carries over. The returned holder is
// final and empty; passing the current leftover through it completes the
// last sentence of the previous file.
func (p *Processor) NextFile(name string) *Holder {
	h := p.newHolder(true)
	if p.pendingCR {
		p.pendingCR = false
		p.addNewline(p.origin)
	}
	p.seal(h)
	p.lastBoundary = p.emitted - 1

	p.logger.Debug("next file", "previous", p.fileName, "name", name, "bytes", p.origin)
	p.fileName = name
	p.origin = 0
	p.resetLines()
	return h
}

func (p *Processor) newHolder(final bool) *Holder {
	return &Holder{
		base:      p.emitted,
		firstLine: p.newlines.Len(),
		final:     final,
		divider:   p.cfg.divider,
		fileName:  p.fileName,
		logger:    p.logger,
	}
}

func (p *Processor) seal(h *Holder) {
	h.newlines = p.newlines.View()
	for _, t := range p.tags {
		h.open = append(h.open, TagSpan{Name: t.name, Value: t.value, Start: t.start, End: p.emitted})
	}
}

func (p *Processor) fail(err error) error {
	p.err = err
	p.logger.Error("marker stream rejected", "error", err)
	return err
}

func (p *Processor) resetLines() {
	p.line = 1
	p.pendingCR = false
	p.newlines = lines.New(lines.Entry{Offset: 0, Line: 1})
}

func (p *Processor) skipping() bool {
	return p.skipDepth > 0 || p.skipToggle
}

func (p *Processor) emitting() bool {
	return !p.skipping() || p.outputDepth > 0 || p.outputToggle || p.includeDepth > 0
}

func (p *Processor) markerError(m marker.Marker, format string, args ...any) error {
	return &MarkerError{
		Marker: m,
		Offset: p.origin + m.Position,
		State:  p.State(),
		Reason: fmt.Sprintf(format, args...),
	}
}

// validate rejects markers that cannot be applied whatever the state.
func (p *Processor) validate(segment string, m marker.Marker) error {
	if !m.Kind.Valid() {
		return p.markerError(m, "unknown marker kind")
	}
	if m.Position < 0 || m.Position > len(segment) {
		return p.markerError(m, "position outside segment of %d bytes", len(segment))
	}
	if m.Position < len(segment) && !utf8.RuneStart(segment[m.Position]) {
		return p.markerError(m, "position inside a UTF-8 sequence")
	}
	if (m.Kind == marker.KindTagStart || m.Kind == marker.KindTagStop) && m.Name == "" {
		return p.markerError(m, "tag without name")
	}
	return nil
}

// consume handles raw bytes seg[rel:rel+len(chunk)] under the current
// state. No marker falls inside chunk.
func (p *Processor) consume(h *Holder, chunk string, rel int) {
	if chunk == "" {
		return
	}
	emitting := p.emitting()
	if p.skipping() {
		if emitting {
			p.captureHit = true
		}
		p.capture = append(p.capture, chunk...)
		if !p.captureHit {
			p.trimCapture()
		}
	}
	if !emitting {
		return
	}
	start := p.origin + rel
	h.text = append(h.text, chunk...)
	for i := range len(chunk) {
		h.index = append(h.index, start+i)
	}
	p.emitted += len(chunk)
	p.lastByte = chunk[len(chunk)-1]
}

// emit produces text that has no raw counterpart. Every byte maps to offset.
func (p *Processor) emit(h *Holder, text string, offset int) {
	h.text = append(h.text, text...)
	for range len(text) {
		h.index = append(h.index, offset)
	}
	p.emitted += len(text)
	p.lastByte = text[len(text)-1]
}

func (p *Processor) apply(h *Holder, m marker.Marker) error {
	offset := p.origin + m.Position
	wasSkipping := p.skipping()
	p.logger.Debug("marker", "marker", m.String(), "offset", offset, "emitted", p.emitted)

	switch m.Kind {
	case marker.KindPushSkip:
		p.skipDepth++
	case marker.KindPopSkip:
		if p.skipDepth == 0 {
			return p.markerError(m, "pop without matching push-skip")
		}
		p.skipDepth--
	case marker.KindPushOutput:
		p.outputDepth++
	case marker.KindPopOutput:
		if p.outputDepth == 0 {
			return p.markerError(m, "pop without matching push-output")
		}
		p.outputDepth--
	case marker.KindPushInclude:
		p.includeDepth++
	case marker.KindPopInclude:
		if p.includeDepth == 0 {
			return p.markerError(m, "pop without matching push-include")
		}
		p.includeDepth--
	case marker.KindStop:
		p.toggle(&p.skipToggle, true, m)
	case marker.KindStart:
		p.toggle(&p.skipToggle, false, m)
	case marker.KindStartOutput:
		p.toggle(&p.outputToggle, true, m)
	case marker.KindStopOutput:
		p.toggle(&p.outputToggle, false, m)
	case marker.KindInsert:
		if m.Text != "" && p.emitting() {
			if wasSkipping {
				p.captureHit = true
			}
			p.emit(h, m.Text, offset)
		}
	case marker.KindSpace:
		if p.emitting() && p.emitted > 0 && !isSpaceByte(p.lastByte) {
			p.emit(h, " ", offset)
		}
	case marker.KindSentenceBreak:
		if p.emitted > 0 {
			h.boundaries = append(h.boundaries, p.emitted-1)
			p.lastBoundary = p.emitted - 1
		}
	case marker.KindTagStart:
		p.tags = append(p.tags, openTag{name: m.Name, value: m.Value, start: p.emitted})
	case marker.KindTagStop:
		i := p.findTag(m.Name)
		if i < 0 {
			return p.markerError(m, "tag-stop without open tag %q", m.Name)
		}
		t := p.tags[i]
		p.tags = append(p.tags[:i], p.tags[i+1:]...)
		h.tags = append(h.tags, TagSpan{Name: t.name, Value: t.value, Start: t.start, End: p.emitted})
	}

	switch now := p.skipping(); {
	case !wasSkipping && now:
		p.capture = p.capture[:0]
		p.captureKey = p.emitted
		p.captureHit = false
	case wasSkipping && !now:
		p.closeCapture(h)
	}
	return nil
}

// closeCapture records the pending elided text on h. A sentence that ended
// while the region was open has already been handed out, so the text moves
// to the offset after its boundary. Where the stream is cut does not change
// the result.
func (p *Processor) closeCapture(h *Holder) {
	if p.captureHit && len(p.capture) > 0 {
		h.addSegment(max(p.captureKey, p.lastBoundary+1), string(p.capture))
	}
	p.capture = p.capture[:0]
	p.captureHit = false
}

// trimCapture drops the start of a capture nothing was emitted from, keeping
// at most cfg.elidedPrefix bytes cut on a rune start.
func (p *Processor) trimCapture() {
	limit := p.cfg.elidedPrefix
	if limit <= 0 || len(p.capture) <= limit {
		return
	}
	cut := len(p.capture) - limit
	for cut < len(p.capture) && !utf8.RuneStart(p.capture[cut]) {
		cut++
	}
	p.capture = append(p.capture[:0], p.capture[cut:]...)
}

func (p *Processor) toggle(flag *bool, on bool, m marker.Marker) {
	if *flag == on {
		p.logger.Debug("redundant toggle", "marker", m.String())
		return
	}
	*flag = on
}

func (p *Processor) findTag(name string) int {
	for i := len(p.tags) - 1; i >= 0; i-- {
		if p.tags[i].name == name {
			return i
		}
	}
	return -1
}

// scanNewlines records the start of every line that begins in segment.
// "\r\n", "\n" and a lone "\r" each end one line. A "\r" at the end of the
// segment is held until the next byte is known.
func (p *Processor) scanNewlines(segment string) {
	if segment == "" {
		return
	}
	i := 0
	if p.pendingCR {
		p.pendingCR = false
		if segment[0] == '\n' {
			i = 1
		}
		p.addNewline(p.origin + i)
	}
	for ; i < len(segment); i++ {
		switch segment[i] {
		case '\n':
			p.addNewline(p.origin + i + 1)
		case '\r':
			if i+1 == len(segment) {
				p.pendingCR = true
				continue
			}
			if segment[i+1] == '\n' {
				i++
			}
			p.addNewline(p.origin + i + 1)
		}
	}
}

func (p *Processor) addNewline(offset int) {
	p.line++
	p.newlines.Add(offset, p.line)
}

func (p *Processor) anomalies() []Anomaly {
	var out []Anomaly
	if p.skipDepth > 0 {
		out = append(out, Anomaly{Kind: AnomalyOpenSkip, Depth: p.skipDepth})
	}
	if p.skipToggle {
		out = append(out, Anomaly{Kind: AnomalyOpenSkipToggle, Depth: 1})
	}
	if p.outputDepth > 0 {
		out = append(out, Anomaly{Kind: AnomalyOpenOutput, Depth: p.outputDepth})
	}
	if p.outputToggle {
		out = append(out, Anomaly{Kind: AnomalyOpenOutputToggle, Depth: 1})
	}
	if p.includeDepth > 0 {
		out = append(out, Anomaly{Kind: AnomalyOpenInclude, Depth: p.includeDepth})
	}
	for _, t := range p.tags {
		out = append(out, Anomaly{Kind: AnomalyOpenTag, Depth: 1, Detail: t.name})
	}
	return out
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
