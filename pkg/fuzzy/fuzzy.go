// Package fuzzy finds vocabulary words within a small edit distance of a
// query term.
package fuzzy

import (
	"sort"
	"unicode/utf8"
)

// DefaultMaxDistance tolerates one or two typos.
const DefaultMaxDistance = 2

// Vocabulary is the word list the matcher probes, bucketed by rune length.
type Vocabulary interface {
	WordsOfLength(n int) []string
	MaxWordLength() int
}

// Candidate is a vocabulary word close to the term.
type Candidate struct {
	Word     string
	Distance int
}

// Match returns every vocabulary word at distance 1..maxDistance from term,
// ordered by distance and then alphabetically. Identical words are left to
// the keyword lookup. Only lengths within maxDistance of the term are tried.
func Match(term string, vocab Vocabulary, maxDistance int) []Candidate {
	n := utf8.RuneCountInString(term)
	if n == 0 || maxDistance <= 0 || vocab == nil {
		return nil
	}

	src := []rune(term)
	var out []Candidate
	lo := max(1, n-maxDistance)
	hi := min(vocab.MaxWordLength(), n+maxDistance)
	for l := lo; l <= hi; l++ {
		for _, w := range vocab.WordsOfLength(l) {
			d := boundedDistance(src, []rune(w), maxDistance)
			if d == 0 || d > maxDistance {
				continue
			}
			out = append(out, Candidate{Word: w, Distance: d})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Word < out[j].Word
	})
	return out
}

// Closest returns the best candidate, if any.
func Closest(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Distance < best.Distance || (c.Distance == best.Distance && c.Word < best.Word) {
			best = c
		}
	}
	return best, true
}

// Distance is the Levenshtein distance between a and b, counted in runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	return boundedDistance(ra, rb, max(len(ra), len(rb)))
}

// boundedDistance stops as soon as every cell of a row exceeds bound and
// then reports bound+1.
func boundedDistance(a, b []rune, bound int) int {
	if abs(len(a)-len(b)) > bound {
		return bound + 1
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if curr[j] < rowMin {
				rowMin = curr[j]
			}
		}
		if rowMin > bound {
			return bound + 1
		}
		prev, curr = curr, prev
	}

	if prev[len(b)] > bound {
		return bound + 1
	}
	return prev[len(b)]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
