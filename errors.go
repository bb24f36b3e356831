package rawtext

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jamesainslie/go-rawtext/marker"
)

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrMalformedMarkerStream indicates the filters produced markers the
	// processor cannot apply: a pop with nothing to pop, a tag stop with no
	// open tag of that name, or a position outside the segment.
	ErrMalformedMarkerStream = errors.New("rawtext: malformed marker stream")

	// ErrInvalidSentenceBoundary indicates a sentence boundary outside the
	// processed text.
	ErrInvalidSentenceBoundary = errors.New("rawtext: invalid sentence boundary")

	// ErrLeftoverMismatch indicates a leftover sentence that does not end where
	// the holder it is merged with begins.
	ErrLeftoverMismatch = errors.New("rawtext: leftover does not precede holder")

	// ErrClosed indicates the processor or stream has already been finished.
	ErrClosed = errors.New("rawtext: stream closed")
)

// StackState is a snapshot of the processor's region state.
type StackState struct {
	SkipDepth    int
	OutputDepth  int
	IncludeDepth int
	SkipToggle   bool
	OutputToggle bool
	OpenTags     []string
}

func (s StackState) String() string {
	return fmt.Sprintf("skip=%d output=%d include=%d stop=%t output-toggle=%t tags=[%s]",
		s.SkipDepth, s.OutputDepth, s.IncludeDepth, s.SkipToggle, s.OutputToggle,
		strings.Join(s.OpenTags, ","))
}

// MarkerError reports the marker that broke the stream and the state it
// was applied to.
type MarkerError struct {
	Marker marker.Marker
	// Offset is the marker's position in the original text.
	Offset int
	State  StackState
	Reason string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("%v: %s at original offset %d: %s (%s)",
		ErrMalformedMarkerStream, e.Marker, e.Offset, e.Reason, e.State)
}

func (e *MarkerError) Unwrap() error { return ErrMalformedMarkerStream }

// BoundaryError reports a sentence boundary outside [Min, Max).
type BoundaryError struct {
	Offset int
	Min    int
	Max    int
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("%v: offset %d outside [%d, %d)", ErrInvalidSentenceBoundary, e.Offset, e.Min, e.Max)
}

func (e *BoundaryError) Unwrap() error { return ErrInvalidSentenceBoundary }

// AnomalyKind classifies state left open when a stream ends.
type AnomalyKind int

// Anomaly kinds.
const (
	AnomalyOpenSkip AnomalyKind = iota + 1
	AnomalyOpenSkipToggle
	AnomalyOpenOutput
	AnomalyOpenOutputToggle
	AnomalyOpenInclude
	AnomalyOpenTag
)

func (k AnomalyKind) String() string {
	switch k {
	case AnomalyOpenSkip:
		return "open-skip"
	case AnomalyOpenSkipToggle:
		return "open-stop"
	case AnomalyOpenOutput:
		return "open-output"
	case AnomalyOpenOutputToggle:
		return "open-output-toggle"
	case AnomalyOpenInclude:
		return "open-include"
	case AnomalyOpenTag:
		return "open-tag"
	default:
		return fmt.Sprintf("anomaly(%d)", int(k))
	}
}

// Anomaly is a warning about input that ended mid-markup. Many legitimate
// inputs do; end of stream closes the region implicitly.
type Anomaly struct {
	Kind   AnomalyKind
	Depth  int
	Detail string
}

func (a Anomaly) String() string {
	if a.Detail != "" {
		return fmt.Sprintf("%s(%d): %s", a.Kind, a.Depth, a.Detail)
	}
	return fmt.Sprintf("%s(%d)", a.Kind, a.Depth)
}
