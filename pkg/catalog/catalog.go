/*
Package catalog loads the benefit catalog that every pcdserve index is built from.

A catalog asset holds the benefit categories, the weighted keyword table, the
diagnostic-code (CID) range table, the condition dictionary and the list of
Brazilian states and cities. Assets are authored as JSON with comments or as
YAML; a default asset is embedded in the binary.

Build validates the asset and returns a frozen *Catalog. Any reference to an
unknown category id, a duplicate id, an out-of-range weight or a malformed CID
key aborts the build: a half-built catalog is never returned.

	c, err := catalog.Load("data/catalogo.yaml")
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	for _, kw := range c.Keywords() {
		...
	}
*/
package catalog

import (
	"errors"

	"github.com/direitospcd/pcdserve/pkg/cid"
)

var (
	ErrUnknownCategory   = errors.New("unknown category id")
	ErrDuplicateCategory = errors.New("duplicate category id")
	ErrEmptyCategoryID   = errors.New("empty category id")
	ErrInvalidWeight     = errors.New("keyword weight out of range")
	ErrInvalidLocation   = errors.New("invalid location entry")
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
)

const (
	MinWeight = 1
	MaxWeight = 10

	// ConditionWeight is the weight given to condition dictionary terms.
	ConditionWeight = 5
)

// Category is a benefit record. Declaration order in the asset is kept and
// used as the tie order when ranking.
type Category struct {
	ID           string
	Title        string
	Summary      string
	Tags         []string
	Requirements []string
}

// Keyword is one entry of the keyword table. Keyword is stored normalized.
type Keyword struct {
	Keyword    string
	Categories []string
	Weight     int
}

// Condition is a disability entry of the condition dictionary.
type Condition struct {
	Name       string
	Synonyms   []string
	Keywords   []string
	Cid10      []string
	Cid11      []string
	Categories []string
}

// Catalog is the validated, read-only view of an asset.
// All accessors return shared slices that callers must not modify.
type Catalog struct {
	version     string
	categories  []Category
	byID        map[string]int
	keywords    []Keyword
	cidEntries  []cid.Entry
	cidFallback []string
	uppercase   map[string]struct{}
	crm         []string
	conditions  []Condition
	states      map[string]string
	cities      map[string]string
}

// Version returns the asset version string.
func (c *Catalog) Version() string { return c.version }

// Categories returns every category in declaration order.
func (c *Catalog) Categories() []Category { return c.categories }

// Category returns the category with the given id.
func (c *Catalog) Category(id string) (Category, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Category{}, false
	}
	return c.categories[i], true
}

// Has reports whether id names a category.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Position returns the declaration index of id, or -1.
func (c *Catalog) Position(id string) int {
	if i, ok := c.byID[id]; ok {
		return i
	}
	return -1
}

// Keywords returns the merged keyword table sorted by keyword.
func (c *Catalog) Keywords() []Keyword { return c.keywords }

// CidRanges returns the CID table entries sorted by key.
func (c *Catalog) CidRanges() []cid.Entry { return c.cidEntries }

// CidFallback returns the categories used for a code with no table hit.
func (c *Catalog) CidFallback() []string { return c.cidFallback }

// IsUppercaseOnly reports whether the normalized term must only match when
// written in capitals in a document ("TEA" the acronym, not "tea").
func (c *Catalog) IsUppercaseOnly(normalized string) bool {
	_, ok := c.uppercase[normalized]
	return ok
}

// CrmCategories returns the categories boosted by a medical licence mention.
func (c *Catalog) CrmCategories() []string { return c.crm }

// Conditions returns the condition dictionary.
func (c *Catalog) Conditions() []Condition { return c.conditions }

// States returns normalized state name -> UF.
func (c *Catalog) States() map[string]string { return c.states }

// Cities returns normalized city name -> UF.
func (c *Catalog) Cities() map[string]string { return c.cities }
