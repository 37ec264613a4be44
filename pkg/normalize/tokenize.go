package normalize

import (
	"strings"
	"unicode/utf8"
)

// stopwords holds Portuguese articles, prepositions, conjunctions and a few
// high-frequency pronouns/adverbs that carry no topical signal in a query.
// Entries are stored in normalized form (no diacritics).
var stopwords = map[string]struct{}{
	// conjunctions
	"e": {}, "ou": {}, "mas": {}, "que": {}, "se": {}, "como": {},
	// articles
	"o": {}, "a": {}, "os": {}, "as": {}, "um": {}, "uma": {}, "uns": {}, "umas": {},
	// prepositions and contractions
	"de": {}, "do": {}, "da": {}, "dos": {}, "das": {},
	"em": {}, "no": {}, "na": {}, "nos": {}, "nas": {},
	"ao": {}, "aos": {}, "para": {}, "por": {}, "com": {}, "sem": {},
	"sobre": {}, "entre": {}, "ate": {},
	// possessives and pronouns
	"seu": {}, "sua": {}, "meu": {}, "minha": {}, "ele": {}, "ela": {},
	"esta": {}, "esse": {}, "essa": {}, "isso": {}, "isto": {},
	// adverbs and auxiliaries
	"mais": {}, "muito": {}, "tambem": {}, "ja": {}, "tem": {}, "ter": {},
}

// IsStopword reports whether the normalized word is in the stopword set.
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}

// Words splits an already normalized string on whitespace without filtering.
// Used where stopwords still matter, such as phrase matching ("sindrome de down")
// and location detection ("rio de janeiro").
func Words(normalized string) []string {
	return strings.Fields(normalized)
}

// Tokenize splits an already normalized query into scoring terms:
// tokens of a single rune and stopwords are dropped.
// An empty result means the query carries no searchable signal.
func Tokenize(normalized string) []string {
	fields := strings.Fields(normalized)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) <= 1 {
			continue
		}
		if IsStopword(f) {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// Unique returns terms with later duplicates removed, keeping first-seen order.
func Unique(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
