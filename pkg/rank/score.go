package rank

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/direitospcd/pcdserve/pkg/catalog"
	"github.com/direitospcd/pcdserve/pkg/cid"
	"github.com/direitospcd/pcdserve/pkg/fuzzy"
	"github.com/direitospcd/pcdserve/pkg/index"
	"github.com/direitospcd/pcdserve/pkg/location"
)

// ReasonKind names the signal behind a contribution.
type ReasonKind string

const (
	ReasonKeyword ReasonKind = "keyword"
	ReasonCID     ReasonKind = "cid"
	ReasonFuzzy   ReasonKind = "fuzzy"
	ReasonContent ReasonKind = "content"
	ReasonPhrase  ReasonKind = "phrase"
)

// Reason is one contribution to a category score.
type Reason struct {
	Kind ReasonKind
	// Term is the query term, code or phrase that produced the contribution.
	Term string
	// Keyword is the keyword entry or vocabulary word reached, if any.
	Keyword string
	Points  float64
}

// Result is a ranked category.
type Result struct {
	Category string
	Score    float64
	Reasons  []Reason
}

// Correction is a "did you mean" hint for a term that only scored through
// typo tolerance.
type Correction struct {
	Term     string
	Word     string
	Distance int
}

// Response is the outcome of Search.
type Response struct {
	Query       string
	Results     []Result
	Location    *location.Match
	// Listing is set when Results holds every category for a place-only
	// query. A listing is not cut to MaxResults; callers apply their own limit.
	Listing     bool
	Corrections []Correction
}

// scoreboard is the per-query score map. It is never shared between queries.
type scoreboard struct {
	scores  map[string]float64
	reasons map[string][]Reason
}

func newScoreboard() *scoreboard {
	return &scoreboard{
		scores:  make(map[string]float64),
		reasons: make(map[string][]Reason),
	}
}

func (b *scoreboard) add(category string, r Reason) {
	b.scores[category] += r.Points
	b.reasons[category] = append(b.reasons[category], r)
}

// results drops non-positive scores and sorts the rest. categories gives the
// tie order.
func (b *scoreboard) results(categories []catalog.Category) []Result {
	out := make([]Result, 0, len(b.scores))
	for _, c := range categories {
		s := b.scores[c.ID]
		if s <= 0 {
			continue
		}
		out = append(out, Result{Category: c.ID, Score: s, Reasons: b.reasons[c.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func (e *Engine) score(terms, words []string, folded string) (*scoreboard, []Correction) {
	board := newScoreboard()
	query := strings.Join(words, " ")

	// keyword entries reached by each term, and entries reached by the whole query
	byTerm := make(map[string]map[int]struct{}, len(terms))
	viaQuery := make(map[int]struct{})
	termHits := make(map[int][]string)
	for _, t := range terms {
		byTerm[t] = make(map[int]struct{})
		for _, h := range e.keywords.Lookup(t, query) {
			if h.Via == index.ViaQuery {
				viaQuery[h.Entry] = struct{}{}
				continue
			}
			byTerm[t][h.Entry] = struct{}{}
			termHits[h.Entry] = append(termHits[h.Entry], t)
		}
	}
	for i := 0; i < e.keywords.Len(); i++ {
		entry := e.keywords.Entry(i)
		if ts, ok := termHits[i]; ok {
			for _, t := range ts {
				e.addEntry(board, entry, Reason{Kind: ReasonKeyword, Term: t, Keyword: entry.Keyword, Points: float64(entry.Weight)})
			}
			continue
		}
		if _, ok := viaQuery[i]; ok {
			e.addEntry(board, entry, Reason{Kind: ReasonKeyword, Term: entry.Keyword, Keyword: entry.Keyword, Points: float64(entry.Weight)})
		}
	}

	for _, code := range cid.Extract(folded) {
		for _, id := range e.codes.Match(code) {
			board.add(id, Reason{Kind: ReasonCID, Term: code, Points: e.opts.CidWeight})
		}
	}

	contentHit := make(map[string]bool)
	for _, m := range e.content.Matches(terms) {
		for _, t := range m.Terms {
			contentHit[t] = true
			board.add(m.Category, Reason{Kind: ReasonContent, Term: t, Points: e.opts.ContentMultiplier})
		}
	}

	if len(words) >= 2 {
		for _, m := range e.content.Phrase(query) {
			board.add(m.Category, Reason{Kind: ReasonPhrase, Term: query, Points: e.opts.PhraseBonus * float64(m.Count)})
		}
	}

	var corrections []Correction
	for _, t := range terms {
		candidates, scored := e.fuzzyTerm(board, t, byTerm[t], viaQuery)
		if !scored || len(byTerm[t]) > 0 || contentHit[t] {
			continue
		}
		if best, ok := fuzzy.Closest(candidates); ok {
			corrections = append(corrections, Correction{Term: t, Word: best.Word, Distance: best.Distance})
		}
	}
	return board, corrections
}

func (e *Engine) addEntry(board *scoreboard, entry index.Entry, r Reason) {
	for _, id := range entry.Categories {
		board.add(id, r)
	}
}

// fuzzyTerm scores the keyword entries holding a vocabulary word close to t.
// Entries t already reached exactly are skipped, and each entry counts once
// per term.
func (e *Engine) fuzzyTerm(board *scoreboard, t string, exact, viaQuery map[int]struct{}) ([]fuzzy.Candidate, bool) {
	if e.opts.FuzzyMaxDistance == 0 || utf8.RuneCountInString(t) < e.opts.FuzzyMinTermLength || cid.IsCodeShaped(t) {
		return nil, false
	}

	candidates := fuzzy.Match(t, e.keywords, e.opts.FuzzyMaxDistance)
	seen := make(map[int]struct{})
	scored := false
	for _, c := range candidates {
		positions := e.keywords.EntriesOf(c.Word)
		for _, p := range positions {
			if _, ok := exact[p]; ok {
				continue
			}
			if _, ok := viaQuery[p]; ok {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			entry := e.keywords.Entry(p)
			e.addEntry(board, entry, Reason{
				Kind:    ReasonFuzzy,
				Term:    t,
				Keyword: c.Word,
				Points:  float64(entry.Weight) * e.opts.FuzzyFactor,
			})
			scored = true
		}
	}
	return candidates, scored
}
