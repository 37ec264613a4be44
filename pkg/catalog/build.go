package catalog

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/direitospcd/pcdserve/pkg/cid"
	"github.com/direitospcd/pcdserve/pkg/normalize"
)

// Build validates doc and freezes it into a Catalog.
func Build(doc *Document) (*Catalog, error) {
	if doc == nil {
		return nil, fmt.Errorf("catalog: nil document")
	}
	c := &Catalog{
		version:   doc.Version,
		byID:      make(map[string]int, len(doc.Categories)),
		uppercase: make(map[string]struct{}, len(doc.UppercaseOnlyTerms)),
		states:    make(map[string]string, len(doc.Locations.States)),
		cities:    make(map[string]string, len(doc.Locations.Cities)),
	}

	if err := c.buildCategories(doc.Categories); err != nil {
		return nil, err
	}
	if err := c.buildKeywords(doc.KeywordMap, doc.Conditions); err != nil {
		return nil, err
	}
	if err := c.buildCid(doc.CidRangeMap, doc.CidFallback); err != nil {
		return nil, err
	}
	if err := c.checkIDs("crm_categorias", doc.CrmCategories); err != nil {
		return nil, err
	}
	c.crm = append([]string(nil), doc.CrmCategories...)

	for _, term := range doc.UppercaseOnlyTerms {
		if n := normalize.Key(term); n != "" {
			c.uppercase[n] = struct{}{}
		}
	}
	if err := buildPlaces(c.states, doc.Locations.States, "estados"); err != nil {
		return nil, err
	}
	if err := buildPlaces(c.cities, doc.Locations.Cities, "cidades"); err != nil {
		return nil, err
	}

	log.Debugf("Catalog built: categories=%d keywords=%d cid=%d conditions=%d states=%d cities=%d",
		len(c.categories), len(c.keywords), len(c.cidEntries), len(c.conditions), len(c.states), len(c.cities))
	return c, nil
}

func (c *Catalog) buildCategories(docs []CategoryDoc) error {
	c.categories = make([]Category, 0, len(docs))
	for i, d := range docs {
		id := strings.TrimSpace(d.ID)
		if id == "" {
			return fmt.Errorf("categorias[%d]: %w", i, ErrEmptyCategoryID)
		}
		if _, dup := c.byID[id]; dup {
			return fmt.Errorf("categorias[%d]: %w: %q", i, ErrDuplicateCategory, id)
		}
		c.byID[id] = len(c.categories)
		c.categories = append(c.categories, Category{
			ID:           id,
			Title:        d.Title,
			Summary:      d.Summary,
			Tags:         append([]string(nil), d.Tags...),
			Requirements: append([]string(nil), d.Requirements...),
		})
	}
	return nil
}

func (c *Catalog) checkIDs(field string, ids []string) error {
	for _, id := range ids {
		if !c.Has(id) {
			return fmt.Errorf("%s: %w: %q", field, ErrUnknownCategory, id)
		}
	}
	return nil
}

// keywordSet accumulates keyword entries keyed by normalized form.
type keywordSet map[string]*Keyword

func (s keywordSet) merge(key string, cats []string, weight int) {
	kw, ok := s[key]
	if !ok {
		s[key] = &Keyword{Keyword: key, Categories: uniqueIDs(nil, cats), Weight: weight}
		return
	}
	kw.Categories = uniqueIDs(kw.Categories, cats)
	if weight > kw.Weight {
		kw.Weight = weight
	}
}

// uniqueIDs appends the ids of add not already present in base.
func uniqueIDs(base, add []string) []string {
	out := append([]string(nil), base...)
	for _, id := range add {
		dup := false
		for _, have := range out {
			if have == id {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, id)
		}
	}
	return out
}

func (c *Catalog) buildKeywords(table map[string]KeywordDoc, conditions []ConditionDoc) error {
	set := make(keywordSet, len(table))

	raw := make([]string, 0, len(table))
	for k := range table {
		raw = append(raw, k)
	}
	sort.Strings(raw)

	for _, k := range raw {
		entry := table[k]
		if entry.Weight < MinWeight || entry.Weight > MaxWeight {
			return fmt.Errorf("keyword_map[%q]: %w: %d", k, ErrInvalidWeight, entry.Weight)
		}
		if err := c.checkIDs(fmt.Sprintf("keyword_map[%q]", k), entry.Categories); err != nil {
			return err
		}
		key := normalize.Key(k)
		if key == "" {
			log.Warnf("Skipping keyword %q: empty after normalization", k)
			continue
		}
		set.merge(key, entry.Categories, entry.Weight)
	}

	c.conditions = make([]Condition, 0, len(conditions))
	for i, d := range conditions {
		if err := c.checkIDs(fmt.Sprintf("deficiencias[%d]", i), d.Categories); err != nil {
			return err
		}
		cond := Condition{
			Name:       d.Name,
			Synonyms:   append([]string(nil), d.Synonyms...),
			Keywords:   append([]string(nil), d.Keywords...),
			Cid10:      append([]string(nil), d.Cid10...),
			Cid11:      append([]string(nil), d.Cid11...),
			Categories: append([]string(nil), d.Categories...),
		}
		c.conditions = append(c.conditions, cond)

		terms := make([]string, 0, len(d.Keywords)+len(d.Synonyms)+len(d.Cid10)+len(d.Cid11)+1)
		terms = append(terms, d.Keywords...)
		terms = append(terms, d.Synonyms...)
		terms = append(terms, d.Cid10...)
		terms = append(terms, d.Cid11...)
		terms = append(terms, d.Name)
		for _, term := range terms {
			key := normalize.Key(term)
			if utf8.RuneCountInString(key) < 2 {
				continue
			}
			set.merge(key, d.Categories, ConditionWeight)
		}
	}

	c.keywords = make([]Keyword, 0, len(set))
	for _, kw := range set {
		c.keywords = append(c.keywords, *kw)
	}
	sort.Slice(c.keywords, func(i, j int) bool { return c.keywords[i].Keyword < c.keywords[j].Keyword })
	return nil
}

func (c *Catalog) buildCid(table map[string][]string, fallback []string) error {
	c.cidEntries = make([]cid.Entry, 0, len(table))
	for key, cats := range table {
		if _, err := cid.ParseKey(key); err != nil {
			return fmt.Errorf("cid_range_map: %w", err)
		}
		if err := c.checkIDs(fmt.Sprintf("cid_range_map[%q]", key), cats); err != nil {
			return err
		}
		c.cidEntries = append(c.cidEntries, cid.Entry{Key: key, Categories: append([]string(nil), cats...)})
	}
	sort.Slice(c.cidEntries, func(i, j int) bool { return c.cidEntries[i].Key < c.cidEntries[j].Key })

	if err := c.checkIDs("cid_fallback", fallback); err != nil {
		return err
	}
	c.cidFallback = append([]string(nil), fallback...)
	return nil
}

func buildPlaces(dst map[string]string, src map[string]string, field string) error {
	for name, uf := range src {
		key := normalize.Key(name)
		code := strings.ToUpper(strings.TrimSpace(uf))
		if key == "" || len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
			return fmt.Errorf("localidades.%s[%q]: %w: %q", field, name, ErrInvalidLocation, uf)
		}
		dst[key] = code
	}
	return nil
}
