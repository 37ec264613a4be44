// Package cid maps ICD-10 / ICD-11 diagnostic codes (CID, in Portuguese) to
// benefit categories.
//
// A table is built from keys in one of three forms:
//
//	F        letter prefix, matches every code starting with F
//	F84      code prefix, matches F84, F84.0, F84.1 ...
//	F70-F79  numeric sub-range under a shared prefix
//
// ICD-11 stems such as "6A0" are plain code prefixes.
package cid

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidRange is returned for keys that are neither a prefix nor a
// well formed range.
var ErrInvalidRange = errors.New("invalid cid range key")

// Code shapes, uppercase. Subcodes may be written with or without the
// decimal point: F84.0 and F840 are the same code.
const (
	icd10Shape     = `[A-Z]\d{2,4}(?:\.\d{1,2})?`
	icd11Shape     = `\d[A-Z]\d{2,3}(?:\.\d{1,2})?`
	icd11PairShape = `[A-Z]{2}\d{2}(?:\.\d{1,2})?`
)

var (
	icd10     = regexp.MustCompile(`\b(` + icd10Shape + `)\b`)
	icd11     = regexp.MustCompile(`\b(` + icd11Shape + `)\b`)
	icd11Pair = regexp.MustCompile(`\b(` + icd11PairShape + `)\b`)

	keyPrefix = regexp.MustCompile(`^[A-Z0-9]+$`)
	codeShape = regexp.MustCompile(`^(?:` + icd10Shape + `|` + icd11Shape + `|` + icd11PairShape + `)$`)
)

// Entry binds one table key to its categories, as read from the data asset.
type Entry struct {
	Key        string
	Categories []string
}

// Range is a parsed table key.
type Range struct {
	Key    string
	Prefix string
	// Digits is the width of the numeric part of a sub-range, 0 for prefix keys.
	Digits int
	Lo, Hi int
}

// ParseKey validates and parses a table key.
func ParseKey(key string) (Range, error) {
	k := strings.ToUpper(strings.TrimSpace(key))
	k = strings.ReplaceAll(k, ".", "")
	if k == "" {
		return Range{}, fmt.Errorf("%w: empty key", ErrInvalidRange)
	}

	from, to, isRange := strings.Cut(k, "-")
	if !isRange {
		if !keyPrefix.MatchString(k) {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, key)
		}
		return Range{Key: key, Prefix: k}, nil
	}

	pFrom, nFrom, okFrom := splitNumeric(from)
	pTo, nTo, okTo := splitNumeric(to)
	if !okFrom || !okTo || pFrom != pTo || len(nFrom) != len(nTo) {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, key)
	}
	lo, _ := strconv.Atoi(nFrom)
	hi, _ := strconv.Atoi(nTo)
	if lo > hi {
		return Range{}, fmt.Errorf("%w: %q has lo > hi", ErrInvalidRange, key)
	}
	return Range{Key: key, Prefix: pFrom, Digits: len(nFrom), Lo: lo, Hi: hi}, nil
}

// splitNumeric splits "F70" into ("F", "70"). The numeric tail must be non-empty
// and the head must end in a letter.
func splitNumeric(s string) (string, string, bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == 0 || i == len(s) || !keyPrefix.MatchString(s[:i]) {
		return "", "", false
	}
	return s[:i], s[i:], true
}

// Contains reports whether the dot-less, uppercased code falls under r.
func (r Range) Contains(code string) bool {
	if !strings.HasPrefix(code, r.Prefix) {
		return false
	}
	if r.Digits == 0 {
		return true
	}
	rest := code[len(r.Prefix):]
	if len(rest) < r.Digits {
		return false
	}
	n, err := strconv.Atoi(rest[:r.Digits])
	if err != nil {
		return false
	}
	return n >= r.Lo && n <= r.Hi
}

// Canonical strips the decimal point and uppercases a code: "f84.0" -> "F840".
func Canonical(code string) string {
	return strings.ReplaceAll(strings.ToUpper(code), ".", "")
}

// Extract returns the distinct code-shaped substrings of text in order of
// first appearance, ignoring case. Text is expected accent-folded but with
// punctuation kept, so that "F84.0" survives as one code.
func Extract(text string) []string {
	return Scan(strings.ToUpper(text))
}

// Scan is Extract without case folding: only uppercase codes are found.
// Used on free document text where lowercase prose must not read as codes.
func Scan(upper string) []string {
	type hit struct {
		at   int
		code string
	}
	var hits []hit
	for _, re := range []*regexp.Regexp{icd10, icd11, icd11Pair} {
		for _, loc := range re.FindAllStringSubmatchIndex(upper, -1) {
			hits = append(hits, hit{at: loc[2], code: upper[loc[2]:loc[3]]})
		}
	}
	// the three patterns never match the same span
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].at < hits[j].at })

	seen := make(map[string]struct{}, len(hits))
	codes := make([]string, 0, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.code]; ok {
			continue
		}
		seen[h.code] = struct{}{}
		codes = append(codes, h.code)
	}
	return codes
}

// IsCodeShaped reports whether a search term is a code Extract would find
// ("f84", "f840", "q90.0", "6a02"). Such terms never go through fuzzy matching.
func IsCodeShaped(term string) bool {
	return codeShape.MatchString(strings.ToUpper(term))
}
