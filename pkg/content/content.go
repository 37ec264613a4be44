// Package content scores query terms directly against category text.
package content

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/direitospcd/pcdserve/pkg/catalog"
	"github.com/direitospcd/pcdserve/pkg/normalize"
)

// Match lists the distinct terms found in one category's text.
type Match struct {
	Category string
	Terms    []string
}

// PhraseMatch counts occurrences of a whole phrase in one category's text.
type PhraseMatch struct {
	Category string
	Count    int
}

// Index holds one normalized string per category, in declaration order.
type Index struct {
	ids   []string
	texts []string
}

// New builds the content index: normalized title, summary and tags joined by
// single spaces.
func New(categories []catalog.Category) *Index {
	idx := &Index{
		ids:   make([]string, 0, len(categories)),
		texts: make([]string, 0, len(categories)),
	}
	for _, c := range categories {
		idx.ids = append(idx.ids, c.ID)
		idx.texts = append(idx.texts, normalize.Join(
			normalize.Key(c.Title),
			normalize.Key(c.Summary),
			normalize.Key(strings.Join(c.Tags, " ")),
		))
	}
	log.Debugf("Content index: categories=%d", len(idx.ids))
	return idx
}

// Len returns the number of indexed categories.
func (idx *Index) Len() int { return len(idx.ids) }

// Text returns the indexed string of a category.
func (idx *Index) Text(id string) (string, bool) {
	for i, cid := range idx.ids {
		if cid == id {
			return idx.texts[i], true
		}
	}
	return "", false
}

// Matches returns, per category, the distinct terms that are substrings of
// its text. Categories without any hit are omitted.
func (idx *Index) Matches(terms []string) []Match {
	terms = normalize.Unique(terms)
	var out []Match
	for i, text := range idx.texts {
		var hit []string
		for _, t := range terms {
			if t != "" && strings.Contains(text, t) {
				hit = append(hit, t)
			}
		}
		if len(hit) > 0 {
			out = append(out, Match{Category: idx.ids[i], Terms: hit})
		}
	}
	return out
}

// Score returns the distinct-term hit count per category.
func (idx *Index) Score(terms []string) map[string]int {
	scores := make(map[string]int)
	for _, m := range idx.Matches(terms) {
		scores[m.Category] = len(m.Terms)
	}
	return scores
}

// Phrase counts non-overlapping occurrences of phrase in every category text.
func (idx *Index) Phrase(phrase string) []PhraseMatch {
	if phrase == "" {
		return nil
	}
	var out []PhraseMatch
	for i, text := range idx.texts {
		if n := strings.Count(text, phrase); n > 0 {
			out = append(out, PhraseMatch{Category: idx.ids[i], Count: n})
		}
	}
	return out
}
