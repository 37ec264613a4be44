package index

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Suggestion is a vocabulary completion. Weight is the highest keyword
// weight the word belongs to.
type Suggestion struct {
	Word   string
	Weight int
}

// Suggest completes a normalized prefix from the vocabulary, highest weight
// first and alphabetical among equals. limit <= 0 returns every completion.
func (idx *Index) Suggest(prefix string, limit int) []Suggestion {
	if prefix == "" {
		return []Suggestion{}
	}

	var suggestions []Suggestion
	err := idx.vocab.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		weight, ok := item.(int)
		if !ok {
			log.Errorf("Unknown item type: %T for word %s", item, p)
			return nil
		}
		suggestions = append(suggestions, Suggestion{Word: string(p), Weight: weight})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting vocabulary subtree: %v", err)
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Weight != suggestions[j].Weight {
			return suggestions[i].Weight > suggestions[j].Weight
		}
		return suggestions[i].Word < suggestions[j].Word
	})
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	if suggestions == nil {
		return []Suggestion{}
	}
	return suggestions
}
