// Package analyze scores a whole document, such as the text of a medical
// report, against the catalog.
//
// Unlike query ranking, documents are long: keywords are counted as whole
// words with an Aho-Corasick automaton, diagnostic codes and a CRM (medical
// licence) mention are read from the raw text, and category tags and
// requirements add smaller bonuses.
package analyze

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/direitospcd/pcdserve/pkg/catalog"
	"github.com/direitospcd/pcdserve/pkg/cid"
	"github.com/direitospcd/pcdserve/pkg/normalize"
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Points per signal.
const (
	CidPoints         = 3
	CrmPoints         = 2
	TagPoints         = 2
	RequirementPoints = 1

	// MaxKeywordCount caps how many occurrences of one keyword are counted.
	MaxKeywordCount = 3
	// ShortTagLength is the longest tag matched as a whole word; longer tags
	// match as substrings.
	ShortTagLength = 5
	// MinRequirementWord is the rune length a requirement word must exceed.
	MinRequirementWord = 4
)

var crmPattern = regexp.MustCompile(`(?i)\bCRM[\s/\-]*([A-Z]{2})?[\s/\-]*(\d{4,7})[\s/\-]*([A-Z]{2})?\b`)

// Result is a category with its document score and the labels of what matched.
type Result struct {
	Category string
	Score    int
	Matches  []string
}

// automaton is a keyword set compiled for one text form.
type automaton struct {
	ac       ahocorasick.AhoCorasick
	keywords []catalog.Keyword
	patterns []string
}

func compile(keywords []catalog.Keyword, pattern func(string) string) *automaton {
	if len(keywords) == 0 {
		return nil
	}
	a := &automaton{keywords: keywords, patterns: make([]string, len(keywords))}
	for i, kw := range keywords {
		a.patterns[i] = pattern(kw.Keyword)
	}
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: false,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.StandardMatch, // required for IterOverlapping
	})
	a.ac = builder.Build(a.patterns)
	return a
}

// count returns per-pattern occurrence counts. An occurrence counts when
// delim accepts the bytes around it; occurrences of one pattern never overlap.
func (a *automaton) count(text string, delim func(byte) bool) []int {
	counts := make([]int, len(a.patterns))
	lastEnd := make([]int, len(a.patterns))
	iter := a.ac.IterOverlapping(text)
	for {
		m := iter.Next()
		if m == nil {
			break
		}
		p, start, end := m.Pattern(), m.Start(), m.End()
		if p >= len(counts) || start < lastEnd[p] {
			continue
		}
		if !bounded(text, start, end, delim) {
			continue
		}
		counts[p]++
		lastEnd[p] = end
	}
	return counts
}

func bounded(text string, start, end int, delim func(byte) bool) bool {
	if start > 0 && !delim(text[start-1]) {
		return false
	}
	if end < len(text) && !delim(text[end]) {
		return false
	}
	return true
}

func isSpace(b byte) bool { return b == ' ' }

// isRawDelim matches the separators accepted around an uppercase-only term
// in unnormalized text.
func isRawDelim(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v', ',', '.', ';', ':', '(', ')', '[', ']', '/', '-':
		return true
	}
	return false
}

// Analyzer is read-only after New.
type Analyzer struct {
	cat   *catalog.Catalog
	codes *cid.Table
	// keywords matched on normalized text
	words *automaton
	// uppercase-only keywords matched case-sensitively on raw text
	upper *automaton
	known map[string]struct{}
}

// New compiles the keyword automata for cat.
func New(cat *catalog.Catalog) (*Analyzer, error) {
	if cat == nil {
		return nil, fmt.Errorf("analyze: nil catalog")
	}
	codes, err := cid.NewTable(cat.CidRanges(), cat.CidFallback())
	if err != nil {
		return nil, err
	}

	var plain, upper []catalog.Keyword
	known := make(map[string]struct{}, len(cat.Keywords()))
	for _, kw := range cat.Keywords() {
		known[kw.Keyword] = struct{}{}
		if cat.IsUppercaseOnly(kw.Keyword) {
			upper = append(upper, kw)
		} else {
			plain = append(plain, kw)
		}
	}

	a := &Analyzer{
		cat:   cat,
		codes: codes,
		words: compile(plain, func(k string) string { return k }),
		upper: compile(upper, strings.ToUpper),
		known: known,
	}
	log.Debugf("Document analyzer: keywords=%d uppercase=%d", len(plain), len(upper))
	return a, nil
}

// scoreboard keeps per-category totals and match labels in insertion order.
type scoreboard struct {
	scores  map[string]int
	matches map[string][]string
}

func (b *scoreboard) add(id string, points int, label string) {
	b.scores[id] += points
	if label == "" {
		return
	}
	for _, have := range b.matches[id] {
		if have == label {
			return
		}
	}
	b.matches[id] = append(b.matches[id], label)
}

// Analyze scores text (and the file name, which often carries the code or
// condition) against every category. Results with a positive score are
// returned best first; ties keep declaration order.
func (a *Analyzer) Analyze(text, fileName string) []Result {
	raw := text + " " + fileName
	norm := normalize.Key(raw)
	padded := " " + norm + " "
	board := &scoreboard{scores: make(map[string]int), matches: make(map[string][]string)}

	a.scoreCodes(board, raw)
	a.scoreCrm(board, raw)
	a.scoreKeywords(board, raw, norm)

	for _, c := range a.cat.Categories() {
		for _, tag := range c.Tags {
			if a.tagMatches(tag, raw, norm, padded) {
				board.add(c.ID, TagPoints, tag)
			}
		}
		for _, req := range c.Requirements {
			if requirementMatches(req, padded) {
				board.add(c.ID, RequirementPoints, "")
			}
		}
	}

	results := make([]Result, 0, len(board.scores))
	for _, c := range a.cat.Categories() {
		if s := board.scores[c.ID]; s > 0 {
			results = append(results, Result{Category: c.ID, Score: s, Matches: board.matches[c.ID]})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

// scoreCodes adds every distinct diagnostic code of the raw text, unless the
// keyword table already knows the code or its three-character stem.
func (a *Analyzer) scoreCodes(board *scoreboard, raw string) {
	for _, code := range cid.Scan(raw) {
		key := normalize.Key(code)
		stem := strings.ToLower(code[:3])
		if _, ok := a.known[key]; ok {
			continue
		}
		if _, ok := a.known[stem]; ok {
			continue
		}
		for _, id := range a.codes.Match(code) {
			board.add(id, CidPoints, "CID "+code)
		}
	}
}

// scoreCrm looks at the first CRM mention only.
func (a *Analyzer) scoreCrm(board *scoreboard, raw string) {
	m := crmPattern.FindStringSubmatch(raw)
	if m == nil {
		return
	}
	uf := strings.ToUpper(m[1])
	if uf == "" {
		uf = strings.ToUpper(m[3])
	}
	label := "CRM " + m[2]
	if uf != "" {
		label = "CRM/" + uf + " " + m[2]
	}
	for _, id := range a.cat.CrmCategories() {
		board.add(id, CrmPoints, label)
	}
}

func (a *Analyzer) scoreKeywords(board *scoreboard, raw, norm string) {
	apply := func(am *automaton, counts []int) {
		for i, n := range counts {
			if n == 0 {
				continue
			}
			kw := am.keywords[i]
			points := kw.Weight * min(n, MaxKeywordCount)
			for _, id := range kw.Categories {
				board.add(id, points, am.patterns[i])
			}
		}
	}
	if a.words != nil {
		apply(a.words, a.words.count(norm, isSpace))
	}
	if a.upper != nil {
		apply(a.upper, a.upper.count(raw, isRawDelim))
	}
}

func (a *Analyzer) tagMatches(tag, raw, norm, padded string) bool {
	key := normalize.Key(tag)
	if key == "" {
		return false
	}
	if a.cat.IsUppercaseOnly(key) {
		return containsBounded(raw, strings.ToUpper(tag), isRawDelim)
	}
	if utf8.RuneCountInString(key) <= ShortTagLength {
		return strings.Contains(padded, " "+key+" ")
	}
	return strings.Contains(norm, key)
}

// requirementMatches reports whether at least two of the requirement's long
// words appear as whole words in the document.
func requirementMatches(req, padded string) bool {
	hits := 0
	for _, w := range strings.Fields(normalize.Key(req)) {
		if utf8.RuneCountInString(w) <= MinRequirementWord {
			continue
		}
		if strings.Contains(padded, " "+w+" ") {
			hits++
			if hits >= 2 {
				return true
			}
		}
	}
	return false
}

func containsBounded(text, sub string, delim func(byte) bool) bool {
	if sub == "" {
		return false
	}
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], sub)
		if i < 0 {
			return false
		}
		start := from + i
		if bounded(text, start, start+len(sub), delim) {
			return true
		}
		from = start + 1
	}
	return false
}
