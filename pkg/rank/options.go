package rank

import "github.com/direitospcd/pcdserve/pkg/fuzzy"

// Options are the scoring knobs. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// MaxResults truncates ranked results.
	MaxResults int
	// MaxQueryLength is the rune limit callers apply at the input boundary.
	MaxQueryLength int
	// FuzzyMaxDistance is the largest edit distance accepted. 0 disables fuzzy matching.
	FuzzyMaxDistance int
	// FuzzyFactor scales a fuzzy keyword hit. Kept below 1 so exact hits win.
	FuzzyFactor float64
	// FuzzyMinTermLength is the shortest term, in runes, tried for typos.
	FuzzyMinTermLength int
	// ContentMultiplier is the score per distinct term found in category text.
	ContentMultiplier float64
	// CidWeight is added to every category bound to a diagnostic code.
	CidWeight float64
	// PhraseBonus is added per occurrence of a multi-word query in category text.
	PhraseBonus float64
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		MaxResults:         10,
		MaxQueryLength:     120,
		FuzzyMaxDistance:   fuzzy.DefaultMaxDistance,
		FuzzyFactor:        0.5,
		FuzzyMinTermLength: 4,
		ContentMultiplier:  2.0,
		CidWeight:          3.0,
		PhraseBonus:        5.0,
	}
}

// Sanitize replaces out-of-range values with their defaults.
func (o Options) Sanitize() Options {
	d := DefaultOptions()
	if o.MaxResults <= 0 {
		o.MaxResults = d.MaxResults
	}
	if o.MaxQueryLength <= 0 {
		o.MaxQueryLength = d.MaxQueryLength
	}
	if o.FuzzyMaxDistance < 0 || o.FuzzyMaxDistance > 3 {
		o.FuzzyMaxDistance = d.FuzzyMaxDistance
	}
	if o.FuzzyFactor <= 0 || o.FuzzyFactor >= 1 {
		o.FuzzyFactor = d.FuzzyFactor
	}
	if o.FuzzyMinTermLength < 1 {
		o.FuzzyMinTermLength = d.FuzzyMinTermLength
	}
	if o.ContentMultiplier <= 0 {
		o.ContentMultiplier = d.ContentMultiplier
	}
	if o.CidWeight <= 0 {
		o.CidWeight = d.CidWeight
	}
	if o.PhraseBonus < 0 {
		o.PhraseBonus = d.PhraseBonus
	}
	return o
}
