// Package index is the frozen keyword index: the weighted keyword table plus
// a patricia-trie vocabulary of every word that appears in a keyword.
package index

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/direitospcd/pcdserve/pkg/catalog"
	"github.com/tchap/go-patricia/v2/patricia"
)

// MinWordLength is the shortest keyword word kept in the vocabulary.
const MinWordLength = 3

// Entry is one keyword with the categories it scores.
type Entry struct {
	Keyword    string
	Categories []string
	Weight     int
}

// Via tells how a lookup reached an entry.
type Via int

const (
	// ViaTerm: the term is a substring of the keyword.
	ViaTerm Via = iota
	// ViaQuery: the keyword is a substring of the full query.
	ViaQuery
)

// Hit is a lookup result.
type Hit struct {
	Entry int
	Via   Via
}

// Index is read-only after New and safe for concurrent use.
type Index struct {
	entries []Entry
	vocab   *patricia.Trie
	// word -> entry positions containing it
	words map[string][]int
	// rune length -> sorted vocabulary words of that length
	byLength map[int][]string
	maxLen   int
}

// New builds the index from the catalog's keyword table.
func New(keywords []catalog.Keyword) *Index {
	idx := &Index{
		entries:  make([]Entry, 0, len(keywords)),
		vocab:    patricia.NewTrie(),
		words:    make(map[string][]int),
		byLength: make(map[int][]string),
	}

	for i, kw := range keywords {
		idx.entries = append(idx.entries, Entry{
			Keyword:    kw.Keyword,
			Categories: kw.Categories,
			Weight:     kw.Weight,
		})
		seen := make(map[string]struct{})
		for _, w := range strings.Fields(kw.Keyword) {
			if utf8.RuneCountInString(w) < MinWordLength {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			idx.words[w] = append(idx.words[w], i)
		}
	}

	for w, positions := range idx.words {
		best := 0
		for _, p := range positions {
			if idx.entries[p].Weight > best {
				best = idx.entries[p].Weight
			}
		}
		idx.vocab.Insert(patricia.Prefix(w), best)

		n := utf8.RuneCountInString(w)
		idx.byLength[n] = append(idx.byLength[n], w)
		if n > idx.maxLen {
			idx.maxLen = n
		}
	}
	for n := range idx.byLength {
		sort.Strings(idx.byLength[n])
	}

	log.Debugf("Keyword index: entries=%d vocabulary=%d", len(idx.entries), len(idx.words))
	return idx
}

// Len returns the number of keyword entries.
func (idx *Index) Len() int { return len(idx.entries) }

// VocabularySize returns the number of distinct vocabulary words.
func (idx *Index) VocabularySize() int { return len(idx.words) }

// Entry returns the entry at position i.
func (idx *Index) Entry(i int) Entry { return idx.entries[i] }

// Lookup returns the entries a term reaches: every keyword that contains the
// term, and every keyword contained in the normalized query. Containment is
// plain substring, so "autismos" and "bpcloas" reach "autismo" and "bpc".
// A keyword reached both ways is reported once, as ViaTerm.
func (idx *Index) Lookup(term, query string) []Hit {
	query = strings.Join(strings.Fields(query), " ")
	var hits []Hit
	for i, e := range idx.entries {
		switch {
		case term != "" && strings.Contains(e.Keyword, term):
			hits = append(hits, Hit{Entry: i, Via: ViaTerm})
		case query != "" && strings.Contains(query, e.Keyword):
			hits = append(hits, Hit{Entry: i, Via: ViaQuery})
		}
	}
	return hits
}

// EntriesOf returns the positions of the entries containing vocabulary word w.
func (idx *Index) EntriesOf(w string) []int { return idx.words[w] }

// WordsOfLength returns the vocabulary words of exactly n runes, sorted.
func (idx *Index) WordsOfLength(n int) []string { return idx.byLength[n] }

// MaxWordLength returns the rune length of the longest vocabulary word.
func (idx *Index) MaxWordLength() int { return idx.maxLen }

// Contains reports whether w is a vocabulary word.
func (idx *Index) Contains(w string) bool {
	_, ok := idx.words[w]
	return ok
}
