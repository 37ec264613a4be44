package catalog

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk shape of a catalog asset. Field names follow the
// Portuguese keys used by the portal's data files.
type Document struct {
	Version            string                `json:"versao" yaml:"versao"`
	Categories         []CategoryDoc         `json:"categorias" yaml:"categorias"`
	KeywordMap         map[string]KeywordDoc `json:"keyword_map" yaml:"keyword_map"`
	CidRangeMap        map[string][]string   `json:"cid_range_map" yaml:"cid_range_map"`
	CidFallback        []string              `json:"cid_fallback" yaml:"cid_fallback"`
	UppercaseOnlyTerms []string              `json:"uppercase_only_terms" yaml:"uppercase_only_terms"`
	CrmCategories      []string              `json:"crm_categorias" yaml:"crm_categorias"`
	Conditions         []ConditionDoc        `json:"deficiencias" yaml:"deficiencias"`
	Locations          LocationsDoc          `json:"localidades" yaml:"localidades"`
}

// CategoryDoc is one benefit category as authored.
type CategoryDoc struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"titulo" yaml:"titulo"`
	Summary      string   `json:"resumo" yaml:"resumo"`
	Tags         []string `json:"tags" yaml:"tags"`
	Requirements []string `json:"requisitos" yaml:"requisitos"`
}

// KeywordDoc is the value side of a keyword_map entry.
type KeywordDoc struct {
	Categories []string `json:"cats" yaml:"cats"`
	Weight     int      `json:"weight" yaml:"weight"`
}

// ConditionDoc is a disability entry from the condition dictionary. Its
// terms are folded into the keyword table at build time.
type ConditionDoc struct {
	Name       string     `json:"nome" yaml:"nome"`
	Synonyms   []string   `json:"sinonimos" yaml:"sinonimos"`
	Keywords   []string   `json:"keywords_busca" yaml:"keywords_busca"`
	Cid10      StringList `json:"cid10" yaml:"cid10"`
	Cid11      StringList `json:"cid11" yaml:"cid11"`
	Categories []string   `json:"beneficios_elegiveis" yaml:"beneficios_elegiveis"`
}

// LocationsDoc lists Brazilian states and cities, both keyed by name with
// the two-letter UF as value.
type LocationsDoc struct {
	States map[string]string `json:"estados" yaml:"estados"`
	Cities map[string]string `json:"cidades" yaml:"cidades"`
}

// StringList accepts either a single string or a list of strings.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*s = nil
		} else {
			*s = StringList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		if value.Value == "" {
			*s = nil
		} else {
			*s = StringList{value.Value}
		}
		return nil
	}
	var many []string
	if err := value.Decode(&many); err != nil {
		return err
	}
	*s = many
	return nil
}
