package fuzzy

import (
	"fmt"
	"sort"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

// sliceVocab buckets a plain word list the way the keyword index does
type sliceVocab map[int][]string

func newVocab(words ...string) sliceVocab {
	v := make(sliceVocab)
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		v[n] = append(v[n], w)
	}
	for n := range v {
		sort.Strings(v[n])
	}
	return v
}

func (v sliceVocab) WordsOfLength(n int) []string { return v[n] }

func (v sliceVocab) MaxWordLength() int {
	m := 0
	for n := range v {
		m = max(m, n)
	}
	return m
}

func TestMatch(t *testing.T) {
	vocab := newVocab("autismo", "autista", "deficiente", "cadeirante", "escola", "isencao", "bpc", "surdo", "surdez")

	testCases := []struct {
		term        string
		expected    []Candidate
		description string
	}{
		{"autsmo", []Candidate{{"autismo", 1}}, "Missing letter"},
		{"autisma", []Candidate{{"autismo", 1}, {"autista", 1}}, "Ties ordered alphabetically"},
		{"deficiente", nil, "Exact word is not a fuzzy candidate"},
		{"deficinte", []Candidate{{"deficiente", 1}}, "Deletion inside a long word"},
		{"cadierante", []Candidate{{"cadeirante", 2}}, "Transposition costs two edits"},
		{"escolla", []Candidate{{"escola", 1}}, "Extra letter"},
		{"isencão", []Candidate{{"isencao", 1}}, "Runes count as one edit"},
		{"surdo", []Candidate{{"surdez", 2}}, "Neighbour of an exact word"},
		{"xyzqwv", nil, "Gibberish"},
		{"zzxxwwvvuu", nil, "Long gibberish"},
		{"", nil, "Empty term"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, Match(tc.term, vocab, DefaultMaxDistance))
		})
	}
}

func TestMatchRespectsDistance(t *testing.T) {
	vocab := newVocab("autismo")

	assert.Empty(t, Match("autsmo", vocab, 0))
	assert.Len(t, Match("autsmo", vocab, 1), 1)
	assert.Empty(t, Match("axtsmx", vocab, 2), "three edits stay out of reach")
	assert.Nil(t, Match("autsmo", nil, 2))
}

func TestMatchIsDeterministic(t *testing.T) {
	vocab := newVocab("casa", "cada", "caso", "cama", "capa", "cana")
	first := Match("caxa", vocab, 1)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Match("caxa", vocab, 1))
	}
	assert.Equal(t, "cada", first[0].Word)
}

func TestClosest(t *testing.T) {
	c, ok := Closest([]Candidate{{"surdez", 2}, {"surdas", 1}, {"surdos", 1}})
	assert.True(t, ok)
	assert.Equal(t, Candidate{"surdas", 1}, c)

	_, ok = Closest(nil)
	assert.False(t, ok)
}

func TestDistance(t *testing.T) {
	testCases := []struct {
		a        string
		b        string
		expected int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "a", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"book", "back", 2},
		{"book", "books", 1},
		{"educação", "educacao", 2},
		{"ônibus", "onibus", 1},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s→%s", tc.a, tc.b), func(t *testing.T) {
			assert.Equal(t, tc.expected, Distance(tc.a, tc.b))
		})
	}
}

func TestBoundedDistanceStopsEarly(t *testing.T) {
	assert.Equal(t, 3, boundedDistance([]rune("abcdef"), []rune("uvwxyz"), 2))
	assert.Equal(t, 3, boundedDistance([]rune("ab"), []rune("abcdefg"), 2))
	assert.Equal(t, 2, boundedDistance([]rune("book"), []rune("back"), 2))
}

func BenchmarkMatch(b *testing.B) {
	words := make([]string, 0, 1000)
	for i := 0; i < 1000; i++ {
		words = append(words, fmt.Sprintf("palavra%d", i))
	}
	vocab := newVocab(words...)

	b.ResetTimer()
	inputs := []string{"palavr12", "plavra1", "palavraa2", "paalavra3", "pelavra4"}
	for i := 0; i < b.N; i++ {
		Match(inputs[i%len(inputs)], vocab, DefaultMaxDistance)
	}
}
