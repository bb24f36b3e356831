package marker

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Kind
		wantErr bool
	}{
		{"kebab", "push-skip", KindPushSkip, false},
		{"snake", "sentence_break", KindSentenceBreak, false},
		{"upper", "TAG-START", KindTagStart, false},
		{"padded", "  insert ", KindInsert, false},
		{"unknown", "skip-everything", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_StringRoundTrip(t *testing.T) {
	for k := range kindNames {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
		assert.True(t, k.Valid())
	}
	assert.False(t, Kind(0).Valid())
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestMarker_String(t *testing.T) {
	assert.Equal(t, `insert@6("Jim")`, Insert(6, "Jim").String())
	assert.Equal(t, `tag-start@0(lang="fr")`, TagStart(0, "lang", "fr").String())
	assert.Equal(t, `tag-stop@4(lang)`, TagStop(4, "lang").String())
	assert.Equal(t, `pop-skip@9`, PopSkip(9).String())
}

func TestSort_SamePositionOrder(t *testing.T) {
	ms := []Marker{
		PushSkip(6),
		TagStart(6, "b", ""),
		Insert(6, "Jim"),
		PopSkip(6),
		SentenceBreak(6),
		TagStop(6, "a"),
		Space(6),
		PopOutput(2),
	}

	got := Sort(ms)

	wantKinds := []Kind{
		KindPopOutput,
		KindTagStop,
		KindPopSkip,
		KindSentenceBreak,
		KindTagStart,
		KindInsert,
		KindSpace,
		KindPushSkip,
	}
	require.Len(t, got, len(wantKinds))
	for i, k := range wantKinds {
		assert.Equal(t, k, got[i].Kind, "position %d", i)
	}

	// input untouched
	assert.Equal(t, KindPushSkip, ms[0].Kind)
}

func TestSort_PermutationInvariant(t *testing.T) {
	ms := []Marker{
		PushSkip(3), PopSkip(7), Insert(3, "x"), Insert(3, "y"),
		TagStart(0, "t", "1"), TagStart(0, "s", "2"), TagStop(9, "t"),
		PushInclude(5), PopInclude(6), SentenceBreak(9), Stop(9), Start(12),
	}
	want := Sort(ms)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]Marker(nil), ms...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, Sort(shuffled))
	}
}

func TestWindow(t *testing.T) {
	doc := []Marker{PushSkip(2), PopSkip(5), SentenceBreak(10), Insert(12, "!")}

	first := Window(doc, 0, 5, false)
	assert.Equal(t, []Marker{PushSkip(2)}, first)

	second := Window(doc, 5, 10, false)
	assert.Equal(t, []Marker{PopSkip(0)}, second)

	last := Window(doc, 10, 12, true)
	assert.Equal(t, []Marker{SentenceBreak(0), Insert(2, "!")}, last)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, []Marker{PushSkip(1), PopSkip(4)}, Skip(1, 4))
	assert.Equal(t, []Marker{Insert(1, "a"), PushSkip(1), PopSkip(4)}, Replace(1, 4, "a"))
	assert.Equal(t, []Marker{TagStart(1, "n", "v"), TagStop(4, "n")}, Tag(1, 4, "n", "v"))
}

func TestScan(t *testing.T) {
	angle := FilterFunc(func(text string) []Marker {
		var out []Marker
		for i := 0; i < len(text); i++ {
			switch text[i] {
			case '<':
				out = append(out, PushSkip(i))
			case '>':
				out = append(out, PopSkip(i+1))
			}
		}
		return out
	})
	breaks := FilterFunc(func(text string) []Marker {
		var out []Marker
		for i := 0; i < len(text); i++ {
			if text[i] == '.' {
				out = append(out, SentenceBreak(i+1))
			}
		}
		return out
	})

	got := Scan("a<b>.", breaks, nil, angle)
	assert.Equal(t, []Marker{PushSkip(1), PopSkip(4), SentenceBreak(5)}, got)
	assert.Nil(t, Scan("plain"))
}
