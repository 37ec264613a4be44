package cid

import (
	"fmt"
	"sort"
)

// Table is the frozen code-to-category lookup. Safe for concurrent reads.
type Table struct {
	ranges   []Range
	cats     [][]string
	fallback []string
}

// NewTable parses every entry key. Entries are ordered by key so that
// matching returns categories in a stable order.
func NewTable(entries []Entry, fallback []string) (*Table, error) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	t := &Table{
		ranges:   make([]Range, 0, len(sorted)),
		cats:     make([][]string, 0, len(sorted)),
		fallback: append([]string(nil), fallback...),
	}
	for _, e := range sorted {
		r, err := ParseKey(e.Key)
		if err != nil {
			return nil, fmt.Errorf("cid table: %w", err)
		}
		t.ranges = append(t.ranges, r)
		t.cats = append(t.cats, append([]string(nil), e.Categories...))
	}
	return t, nil
}

// Lookup returns the categories bound to every range containing code.
// The bool is false when no range matched; the result is then nil.
func (t *Table) Lookup(code string) ([]string, bool) {
	c := Canonical(code)
	var out []string
	seen := make(map[string]struct{})
	for i, r := range t.ranges {
		if !r.Contains(c) {
			continue
		}
		for _, id := range t.cats[i] {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, len(out) > 0
}

// Match is Lookup with the fallback applied: a code with no range gets the
// fallback categories.
func (t *Table) Match(code string) []string {
	if cats, ok := t.Lookup(code); ok {
		return cats
	}
	return append([]string(nil), t.fallback...)
}

// Len returns the number of ranges.
func (t *Table) Len() int { return len(t.ranges) }
