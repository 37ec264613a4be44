// Package rank turns a free-text query into an ordered list of benefit
// categories. An Engine is built once from a catalog and is read-only
// afterwards, so a single Engine serves concurrent queries.
package rank

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/direitospcd/pcdserve/pkg/catalog"
	"github.com/direitospcd/pcdserve/pkg/cid"
	"github.com/direitospcd/pcdserve/pkg/content"
	"github.com/direitospcd/pcdserve/pkg/index"
	"github.com/direitospcd/pcdserve/pkg/location"
	"github.com/direitospcd/pcdserve/pkg/normalize"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Engine holds the frozen indexes.
type Engine struct {
	cat      *catalog.Catalog
	keywords *index.Index
	codes    *cid.Table
	content  *content.Index
	places   *location.Gazetteer
	opts     Options
	// category ids ordered by Portuguese collation of their titles
	listing []string
}

// Stats describes the size of the loaded indexes.
type Stats struct {
	Version    string
	Categories int
	Keywords   int
	Vocabulary int
	CidRanges  int
	States     int
	Cities     int
}

// NewEngine builds every index from cat. The catalog has already checked
// its category references, so only a malformed code table can fail here.
func NewEngine(cat *catalog.Catalog, opts Options) (*Engine, error) {
	if cat == nil {
		return nil, fmt.Errorf("rank: nil catalog")
	}

	codes, err := cid.NewTable(cat.CidRanges(), cat.CidFallback())
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cat:      cat,
		keywords: index.New(cat.Keywords()),
		codes:    codes,
		content:  content.New(cat.Categories()),
		places:   location.New(cat.States(), cat.Cities()),
		opts:     opts.Sanitize(),
		listing:  collatedIDs(cat.Categories()),
	}

	log.Debugf("Engine ready: categories=%d keywords=%d vocabulary=%d cid=%d",
		len(cat.Categories()), e.keywords.Len(), e.keywords.VocabularySize(), codes.Len())
	return e, nil
}

func collatedIDs(categories []catalog.Category) []string {
	sorted := make([]catalog.Category, len(categories))
	copy(sorted, categories)

	col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	sort.SliceStable(sorted, func(i, j int) bool {
		return col.CompareString(sorted[i].Title, sorted[j].Title) < 0
	})

	ids := make([]string, len(sorted))
	for i, c := range sorted {
		ids[i] = c.ID
	}
	return ids
}

// Options returns the sanitized options in effect.
func (e *Engine) Options() Options { return e.opts }

// Catalog returns the catalog the engine was built from.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// Stats reports index sizes.
func (e *Engine) Stats() Stats {
	return Stats{
		Version:    e.cat.Version(),
		Categories: len(e.cat.Categories()),
		Keywords:   e.keywords.Len(),
		Vocabulary: e.keywords.VocabularySize(),
		CidRanges:  e.codes.Len(),
		States:     len(e.cat.States()),
		Cities:     len(e.cat.Cities()),
	}
}

// Suggest completes the last word of prefix from the keyword vocabulary.
func (e *Engine) Suggest(prefix string, limit int) []index.Suggestion {
	words := normalize.Words(normalize.Key(prefix))
	if len(words) == 0 {
		return []index.Suggestion{}
	}
	return e.keywords.Suggest(words[len(words)-1], limit)
}

// Rank scores query against every signal and returns at most MaxResults
// categories, best first. Ties keep category declaration order.
func (e *Engine) Rank(query string) []Result {
	results, _ := e.rank(normalize.Words(normalize.Key(query)), normalize.Fold(query))
	return results
}

// Search is Rank plus location handling and typo corrections.
//
// When the query names a place, the place words are removed and the rest is
// ranked. If nothing is left to rank, or nothing scores, every category is
// listed by title with a zero score: the rights are federal and hold in any
// city or state.
func (e *Engine) Search(query string) Response {
	words := normalize.Words(normalize.Key(query))
	folded := normalize.Fold(query)
	resp := Response{Query: query}

	m, found := e.places.Detect(strings.Join(words, " "))
	if !found {
		resp.Results, resp.Corrections = e.rank(words, folded)
		return resp
	}

	resp.Location = &m
	rest := location.Strip(words, m)
	if len(normalize.Tokenize(strings.Join(rest, " "))) > 0 {
		resp.Results, resp.Corrections = e.rank(rest, folded)
		if len(resp.Results) > 0 {
			return resp
		}
	}

	resp.Corrections = nil
	resp.Listing = true
	resp.Results = make([]Result, 0, len(e.listing))
	for _, id := range e.listing {
		resp.Results = append(resp.Results, Result{Category: id})
	}
	return resp
}

func (e *Engine) rank(words []string, folded string) ([]Result, []Correction) {
	terms := normalize.Unique(normalize.Tokenize(strings.Join(words, " ")))
	if len(terms) == 0 {
		return []Result{}, nil
	}

	board, corrections := e.score(terms, words, folded)
	results := board.results(e.cat.Categories())
	if len(results) > e.opts.MaxResults {
		results = results[:e.opts.MaxResults]
	}
	return results, corrections
}
