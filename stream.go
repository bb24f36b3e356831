package rawtext

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/jamesainslie/go-rawtext/marker"
)

// Stream runs segments through a Processor, slices the result into
// sentences and carries the leftover from one segment to the next.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	proc     *Processor
	filters  []marker.Filter
	leftover *Sentence
	logger   *slog.Logger
	closed   bool
}

// NewStream creates a Stream.
func NewStream(opts ...Option) *Stream {
	p := New(opts...)
	return &Stream{
		proc:    p,
		filters: p.cfg.filters,
		logger:  p.logger,
	}
}

// ID returns the stream identifier.
func (s *Stream) ID() string { return s.proc.ID() }

// Processor returns the underlying processor.
func (s *Stream) Processor() *Processor { return s.proc }

// Leftover returns the incomplete sentence carried to the next segment, or
// nil.
func (s *Stream) Leftover() *Sentence { return s.leftover }

// Write processes one segment. Markers from the stream's filters are added
// to markers. It returns the sentences completed by the segment.
func (s *Stream) Write(segment string, markers []marker.Marker) ([]*Sentence, error) {
	if s.closed {
		return nil, ErrClosed
	}
	h, err := s.proc.Process(segment, s.withFilters(segment, markers))
	if err != nil {
		return nil, err
	}
	return s.detect(h)
}

// WriteBoundaries is Write for callers that find sentence ends themselves.
// Each boundary is a global processed offset and may fall in the leftover.
func (s *Stream) WriteBoundaries(segment string, markers []marker.Marker, boundaries func(text string, base int) []int) ([]*Sentence, error) {
	if s.closed {
		return nil, ErrClosed
	}
	h, err := s.proc.Process(segment, s.withFilters(segment, markers))
	if err != nil {
		return nil, err
	}
	base := h.Base()
	text := h.Text()
	if s.leftover != nil {
		base = s.leftover.pending.base
		text = s.leftover.pending.text + text
	}
	for _, b := range boundaries(text, base) {
		if err := h.AddBoundary(b); err != nil {
			return nil, err
		}
	}
	return s.detect(h)
}

// NextFile completes the current leftover and starts a new file.
func (s *Stream) NextFile(name string) ([]*Sentence, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return s.detect(s.proc.NextFile(name))
}

// Close completes the leftover and ends the stream. The anomalies describe
// markup still open at the end; they are warnings, not errors.
func (s *Stream) Close() ([]*Sentence, []Anomaly, error) {
	if s.closed {
		return nil, nil, ErrClosed
	}
	s.closed = true

	h, anomalies := s.proc.Finish()
	var errs []error
	if s.proc.err != nil {
		errs = append(errs, s.proc.err)
	}
	out, err := s.detect(h)
	if err != nil {
		errs = append(errs, err)
	}
	s.logger.Debug("stream closed", "sentences", len(out), "anomalies", len(anomalies))
	return out, anomalies, errors.Join(errs...)
}

func (s *Stream) withFilters(segment string, markers []marker.Marker) []marker.Marker {
	if len(s.filters) == 0 {
		return markers
	}
	return append(slices.Clone(markers), marker.Scan(segment, s.filters...)...)
}

func (s *Stream) detect(h *Holder) ([]*Sentence, error) {
	out, leftover, err := h.DetectSentences(s.leftover)
	if err != nil {
		return nil, err
	}
	s.leftover = leftover
	return out, nil
}
