// Package wire encodes sentences as length-delimited protobuf records.
//
// A record has this layout:
//
//	message Sentence {
//	  string stream_id = 1;
//	  uint64 seq = 2;
//	  string text = 3;
//	  repeated int64 original_index = 4 [packed = true];
//	  bool complete = 5;
//	  string file_name = 6;
//	  repeated Segment segments = 7;  // {int64 offset = 1; string text = 2;}
//	  repeated Tag tags = 8;          // {string name = 1; string value = 2; int64 start = 3; int64 end = 4;}
//	  int64 start = 9;
//	  sint64 boundary = 10;
//	  int64 line = 11;
//	  int64 column = 12;
//	}
package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/jamesainslie/go-rawtext"
)

// ErrTruncated indicates a record that ends inside a field.
var ErrTruncated = errors.New("wire: truncated record")

// maxRecord bounds the size prefix accepted by Reader.
const maxRecord = 64 << 20

// Segment is elided original text at a sentence offset.
type Segment struct {
	Offset int
	Text   string
}

// Tag is a tagged range of the sentence text.
type Tag struct {
	Name  string
	Value string
	Start int
	End   int
}

// Record is the wire form of a sentence.
type Record struct {
	StreamID string
	Seq      uint64
	Text     string
	Index    []int
	Complete bool
	FileName string
	Segments []Segment
	Tags     []Tag
	Start    int
	Boundary int
	Line     int
	Column   int
}

// FromSentence builds the record for the seq'th sentence of a stream.
func FromSentence(streamID string, seq uint64, s *rawtext.Sentence) Record {
	r := Record{
		StreamID: streamID,
		Seq:      seq,
		Text:     s.Text(),
		Index:    s.OriginalIndexes(),
		Complete: s.IsComplete(),
		FileName: s.FileName(),
		Start:    s.Start(),
		Boundary: s.Boundary(),
		Line:     s.LineNumber(0),
		Column:   s.ColumnNumber(0),
	}
	segs := s.OriginalTextSegments()
	keys := make([]int, 0, len(segs))
	for k := range segs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		r.Segments = append(r.Segments, Segment{Offset: k, Text: segs[k]})
	}
	for _, t := range s.Tags() {
		r.Tags = append(r.Tags, Tag(t))
	}
	return r
}

const (
	fieldStreamID = 1
	fieldSeq      = 2
	fieldText     = 3
	fieldIndex    = 4
	fieldComplete = 5
	fieldFileName = 6
	fieldSegments = 7
	fieldTags     = 8
	fieldStart    = 9
	fieldBoundary = 10
	fieldLine     = 11
	fieldColumn   = 12
)

// Marshal appends the encoding of r to b.
func Marshal(b []byte, r Record) []byte {
	if r.StreamID != "" {
		b = protowire.AppendTag(b, fieldStreamID, protowire.BytesType)
		b = protowire.AppendString(b, r.StreamID)
	}
	if r.Seq != 0 {
		b = protowire.AppendTag(b, fieldSeq, protowire.VarintType)
		b = protowire.AppendVarint(b, r.Seq)
	}
	if r.Text != "" {
		b = protowire.AppendTag(b, fieldText, protowire.BytesType)
		b = protowire.AppendString(b, r.Text)
	}
	if len(r.Index) > 0 {
		var packed []byte
		for _, o := range r.Index {
			packed = protowire.AppendVarint(packed, uint64(int64(o)))
		}
		b = protowire.AppendTag(b, fieldIndex, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	if r.Complete {
		b = protowire.AppendTag(b, fieldComplete, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	if r.FileName != "" {
		b = protowire.AppendTag(b, fieldFileName, protowire.BytesType)
		b = protowire.AppendString(b, r.FileName)
	}
	for _, s := range r.Segments {
		var m []byte
		m = protowire.AppendTag(m, 1, protowire.VarintType)
		m = protowire.AppendVarint(m, uint64(int64(s.Offset)))
		m = protowire.AppendTag(m, 2, protowire.BytesType)
		m = protowire.AppendString(m, s.Text)
		b = protowire.AppendTag(b, fieldSegments, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	for _, t := range r.Tags {
		var m []byte
		m = protowire.AppendTag(m, 1, protowire.BytesType)
		m = protowire.AppendString(m, t.Name)
		m = protowire.AppendTag(m, 2, protowire.BytesType)
		m = protowire.AppendString(m, t.Value)
		m = protowire.AppendTag(m, 3, protowire.VarintType)
		m = protowire.AppendVarint(m, uint64(int64(t.Start)))
		m = protowire.AppendTag(m, 4, protowire.VarintType)
		m = protowire.AppendVarint(m, uint64(int64(t.End)))
		b = protowire.AppendTag(b, fieldTags, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	b = appendInt(b, fieldStart, r.Start)
	b = protowire.AppendTag(b, fieldBoundary, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(r.Boundary)))
	b = appendInt(b, fieldLine, r.Line)
	b = appendInt(b, fieldColumn, r.Column)
	return b
}

func appendInt(b []byte, num protowire.Number, v int) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

// Unmarshal decodes one record. Unknown fields are skipped.
func Unmarshal(b []byte) (Record, error) {
	var r Record
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Record{}, fieldError(0, n)
		}
		b = b[n:]

		switch {
		case num == fieldStreamID && typ == protowire.BytesType:
			r.StreamID, n = protowire.ConsumeString(b)
		case num == fieldSeq && typ == protowire.VarintType:
			r.Seq, n = protowire.ConsumeVarint(b)
		case num == fieldText && typ == protowire.BytesType:
			r.Text, n = protowire.ConsumeString(b)
		case num == fieldIndex && typ == protowire.BytesType:
			var packed []byte
			packed, n = protowire.ConsumeBytes(b)
			for len(packed) > 0 && n >= 0 {
				v, m := protowire.ConsumeVarint(packed)
				if m < 0 {
					n = m
					break
				}
				r.Index = append(r.Index, int(int64(v)))
				packed = packed[m:]
			}
		case num == fieldIndex && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			r.Index = append(r.Index, int(int64(v)))
		case num == fieldComplete && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			r.Complete = protowire.DecodeBool(v)
		case num == fieldFileName && typ == protowire.BytesType:
			r.FileName, n = protowire.ConsumeString(b)
		case num == fieldSegments && typ == protowire.BytesType:
			var m []byte
			m, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				seg, err := unmarshalSegment(m)
				if err != nil {
					return Record{}, err
				}
				r.Segments = append(r.Segments, seg)
			}
		case num == fieldTags && typ == protowire.BytesType:
			var m []byte
			m, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				tag, err := unmarshalTag(m)
				if err != nil {
					return Record{}, err
				}
				r.Tags = append(r.Tags, tag)
			}
		case num == fieldStart && typ == protowire.VarintType:
			r.Start, n = consumeInt(b)
		case num == fieldBoundary && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			r.Boundary = int(protowire.DecodeZigZag(v))
		case num == fieldLine && typ == protowire.VarintType:
			r.Line, n = consumeInt(b)
		case num == fieldColumn && typ == protowire.VarintType:
			r.Column, n = consumeInt(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return Record{}, fieldError(num, n)
		}
		b = b[n:]
	}
	return r, nil
}

func consumeInt(b []byte) (int, int) {
	v, n := protowire.ConsumeVarint(b)
	return int(int64(v)), n
}

func unmarshalSegment(b []byte) (Segment, error) {
	var s Segment
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Segment{}, fieldError(fieldSegments, n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			s.Offset, n = consumeInt(b)
		case num == 2 && typ == protowire.BytesType:
			s.Text, n = protowire.ConsumeString(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return Segment{}, fieldError(fieldSegments, n)
		}
		b = b[n:]
	}
	return s, nil
}

func unmarshalTag(b []byte) (Tag, error) {
	var t Tag
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Tag{}, fieldError(fieldTags, n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			t.Name, n = protowire.ConsumeString(b)
		case num == 2 && typ == protowire.BytesType:
			t.Value, n = protowire.ConsumeString(b)
		case num == 3 && typ == protowire.VarintType:
			t.Start, n = consumeInt(b)
		case num == 4 && typ == protowire.VarintType:
			t.End, n = consumeInt(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return Tag{}, fieldError(fieldTags, n)
		}
		b = b[n:]
	}
	return t, nil
}

func fieldError(num protowire.Number, n int) error {
	err := protowire.ParseError(n)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: field %d", ErrTruncated, num)
	}
	return fmt.Errorf("wire: field %d: %w", num, err)
}

// Writer writes size-prefixed records.
type Writer struct {
	w   io.Writer
	buf []byte
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes one record preceded by its varint length.
func (w *Writer) Write(r Record) error {
	body := Marshal(nil, r)
	w.buf = protowire.AppendVarint(w.buf[:0], uint64(len(body)))
	w.buf = append(w.buf, body...)
	_, err := w.w.Write(w.buf)
	return err
}

// Reader reads records written by Writer.
type Reader struct {
	r *bufio.Reader
}

// NewReader returns a Reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read returns the next record, or io.EOF after the last one.
func (r *Reader) Read() (Record, error) {
	size, err := binary.ReadUvarint(r.r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	if size > maxRecord {
		return Record{}, fmt.Errorf("wire: record of %d bytes exceeds limit", size)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r.r, body); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return Unmarshal(body)
}
