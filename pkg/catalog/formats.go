package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

//go:embed data/catalogo.jsonc
var embedded embed.FS

const defaultAsset = "data/catalogo.jsonc"

// Format identifies the encoding of a catalog asset.
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON           // JSON, comments and trailing commas allowed
	FormatYAML
)

var formatExtensions = map[string]Format{
	".json":  FormatJSON,
	".jsonc": FormatJSON,
	".yaml":  FormatYAML,
	".yml":   FormatYAML,
}

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) Format {
	return formatExtensions[strings.ToLower(filepath.Ext(path))]
}

// Parse decodes an asset. JSON input is run through jsonc first so the
// authored files may carry // comments and trailing commas.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return nil, fmt.Errorf("parsing catalog json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing catalog yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return &doc, nil
}

// ReadFile reads and decodes an asset without building it.
func ReadFile(path string) (*Document, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Load reads, decodes and builds the asset at path.
func Load(path string) (*Catalog, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Build(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("Loaded catalog %s: version=%s categories=%d keywords=%d",
		path, c.Version(), len(c.categories), len(c.keywords))
	return c, nil
}

// Default builds the catalog shipped inside the binary.
func Default() (*Catalog, error) {
	data, err := embedded.ReadFile(defaultAsset)
	if err != nil {
		return nil, fmt.Errorf("reading embedded catalog: %w", err)
	}
	doc, err := Parse(data, FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return Build(doc)
}
