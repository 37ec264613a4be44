// Package location spots a Brazilian state, UF or city inside a query.
package location

import (
	"sort"
	"strings"

	"github.com/direitospcd/pcdserve/pkg/normalize"
)

// Kind tells which gazetteer list produced a match.
type Kind string

const (
	KindUF    Kind = "uf"
	KindState Kind = "estado"
	KindCity  Kind = "cidade"
)

// Match is a detected place. Name is the normalized place name, or the UF
// itself for KindUF.
type Match struct {
	Kind Kind
	UF   string
	Name string
}

// Words returns the query words the place occupies.
func (m Match) Words() []string {
	if m.Kind == KindUF {
		return []string{strings.ToLower(m.UF)}
	}
	return strings.Fields(m.Name)
}

type place struct {
	name string
	uf   string
	kind Kind
}

// Gazetteer is read-only after New.
type Gazetteer struct {
	ufs    map[string]struct{}
	states map[string]string
	cities map[string]string
	// cities then states, longest name first within each list
	scan []place
}

// New builds a gazetteer from normalized name -> UF maps.
func New(states, cities map[string]string) *Gazetteer {
	g := &Gazetteer{
		ufs:    make(map[string]struct{}),
		states: states,
		cities: cities,
	}
	for _, uf := range states {
		g.ufs[uf] = struct{}{}
	}
	for _, uf := range cities {
		g.ufs[uf] = struct{}{}
	}

	g.scan = append(g.scan, sorted(cities, KindCity)...)
	g.scan = append(g.scan, sorted(states, KindState)...)
	return g
}

func sorted(names map[string]string, kind Kind) []place {
	out := make([]place, 0, len(names))
	for name, uf := range names {
		out = append(out, place{name: name, uf: uf, kind: kind})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].name) != len(out[j].name) {
			return len(out[i].name) > len(out[j].name)
		}
		return out[i].name < out[j].name
	})
	return out
}

// Detect looks for a place in a normalized query. A whole query equal to a
// UF, state or city wins; otherwise the first city, then state, found as
// whole words. Names that are stopwords only match as the whole query.
func (g *Gazetteer) Detect(normalized string) (Match, bool) {
	q := normalize.Key(normalized)
	if q == "" {
		return Match{}, false
	}

	if len(q) == 2 {
		if _, ok := g.ufs[strings.ToUpper(q)]; ok {
			return Match{Kind: KindUF, UF: strings.ToUpper(q), Name: strings.ToUpper(q)}, true
		}
	}
	if uf, ok := g.states[q]; ok {
		return Match{Kind: KindState, UF: uf, Name: q}, true
	}
	if uf, ok := g.cities[q]; ok {
		return Match{Kind: KindCity, UF: uf, Name: q}, true
	}

	padded := " " + q + " "
	for _, p := range g.scan {
		if normalize.IsStopword(p.name) {
			continue
		}
		if strings.Contains(padded, " "+p.name+" ") {
			return Match{Kind: p.kind, UF: p.uf, Name: p.name}, true
		}
	}
	return Match{}, false
}

// Strip removes every occurrence of the match's words from the query words.
func Strip(words []string, m Match) []string {
	drop := make(map[string]struct{})
	for _, w := range m.Words() {
		drop[w] = struct{}{}
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := drop[w]; ok {
			continue
		}
		out = append(out, w)
	}
	return out
}
