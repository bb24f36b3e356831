// Package rawtext turns raw text plus filter markers into clean, sentence
// sliced text that still knows where every byte came from.
//
// # Quick Start
//
//	p := rawtext.New()
//	h, err := p.Process("Hello <b>World</b>. How are", []marker.Marker{
//	    marker.PushSkip(6), marker.PopSkip(9),
//	    marker.PushSkip(14), marker.PopSkip(18),
//	    marker.SentenceBreak(19),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sentences, leftover, err := h.DetectSentences(nil)
//	// sentences[0].Text() == "Hello World."
//	// sentences[0].OriginalIndex(6) == 9
//	// leftover.Text() == "How are" and leftover.IsComplete() == false
//
// The leftover is passed to the DetectSentences call of the next holder, so
// a document can be fed in segments of any size. Stream wraps that loop.
//
// # Markers
//
// Filters (see package marker) scan raw segments and describe skip regions,
// overrides that re-include skipped text, insertions, tags and sentence
// breaks. For every raw byte the processor applies the markers at its
// position and then emits the byte unless a skip region is active and no
// override is.
//
// # Thread Safety
//
// A Processor, its Holders and a Stream belong to one stream and must be
// used from one goroutine at a time. Sentences are immutable and may be
// shared. Independent streams share no state.
package rawtext
