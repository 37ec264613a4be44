package rank

import (
	"sync"
	"testing"

	"github.com/direitospcd/pcdserve/pkg/catalog"
	"github.com/direitospcd/pcdserve/pkg/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureEngine(t testing.TB) *Engine {
	t.Helper()
	doc := &catalog.Document{
		Version: "fixture",
		Categories: []catalog.CategoryDoc{
			{ID: "bpc", Title: "BPC/LOAS", Summary: "Benefício de prestação continuada", Tags: []string{"renda"}},
			{ID: "ciptea", Title: "CIPTEA", Summary: "Carteira de identificação da pessoa com autismo", Tags: []string{"TEA"}},
			{ID: "transporte", Title: "Passe Livre", Summary: "Transporte interestadual gratuito", Tags: []string{"ônibus"}},
			{ID: "educacao", Title: "Educação Inclusiva", Summary: "Matrícula garantida", Tags: []string{"escola"}},
		},
		KeywordMap: map[string]catalog.KeywordDoc{
			"autismo":     {Categories: []string{"ciptea", "educacao"}, Weight: 10},
			"BPC":         {Categories: []string{"bpc"}, Weight: 10},
			"LOAS":        {Categories: []string{"bpc"}, Weight: 8},
			"passe livre": {Categories: []string{"transporte"}, Weight: 10},
			"cadeirante":  {Categories: []string{"bpc", "transporte"}, Weight: 7},
			"escola":      {Categories: []string{"educacao"}, Weight: 6},
		},
		CidRangeMap: map[string][]string{
			"F84": {"ciptea"},
			"F":   {"bpc"},
		},
		CidFallback: []string{"bpc"},
		Locations: catalog.LocationsDoc{
			States: map[string]string{"São Paulo": "SP", "Paraná": "PR", "Pará": "PA"},
			Cities: map[string]string{"Barueri": "SP", "Curitiba": "PR"},
		},
	}
	cat, err := catalog.Build(doc)
	require.NoError(t, err)
	e, err := NewEngine(cat, DefaultOptions())
	require.NoError(t, err)
	return e
}

func defaultEngine(t testing.TB) *Engine {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	e, err := NewEngine(cat, DefaultOptions())
	require.NoError(t, err)
	return e
}

type scored struct {
	id    string
	score float64
}

func summary(results []Result) []scored {
	out := make([]scored, 0, len(results))
	for _, r := range results {
		out = append(out, scored{r.Category, r.Score})
	}
	return out
}

func ids(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Category)
	}
	return out
}

func TestRank(t *testing.T) {
	e := fixtureEngine(t)

	testCases := []struct {
		query       string
		expected    []scored
		description string
	}{
		{"bpc", []scored{{"bpc", 12}}, "Keyword plus content"},
		{"autismo", []scored{{"ciptea", 12}, {"educacao", 10}}, "Keyword shared by two categories"},
		{"autsmo", []scored{{"ciptea", 5}, {"educacao", 5}}, "One typo scores half the weight"},
		{"passe livre", []scored{{"transporte", 29}}, "Two terms, content and phrase bonus"},
		{"F84", []scored{{"bpc", 3}, {"ciptea", 3}}, "Code range and letter prefix, ties in declaration order"},
		{"F840", []scored{{"bpc", 3}, {"ciptea", 3}}, "Undotted subcode matches by prefix"},
		{"G801", []scored{{"bpc", 3}}, "Undotted subcode outside the table goes to the fallback"},
		{"Z99", []scored{{"bpc", 3}}, "Unknown code goes to the fallback"},
		{"autismos", []scored{{"ciptea", 10}, {"educacao", 10}}, "Query containing a keyword scores the full weight"},
		{"bpcloas", []scored{{"bpc", 18}}, "Joined keywords both score"},
		{"cadeirante", []scored{{"bpc", 7}, {"transporte", 7}}, "Tie keeps declaration order"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, summary(e.Rank(tc.query)))
		})
	}
}

func TestRankEmpty(t *testing.T) {
	e := defaultEngine(t)

	for _, q := range []string{"", "   ", "de", "do da", "de do da", "?!", "xyzqwerty", "zzxxwwvvuu", "xyzqwv12345"} {
		t.Run(q, func(t *testing.T) {
			results := e.Rank(q)
			assert.NotNil(t, results)
			assert.Empty(t, results)
		})
	}
}

func TestRankInsensitive(t *testing.T) {
	e := defaultEngine(t)

	pairs := [][2]string{
		{"BPC", "bpc"},
		{"educação", "educacao"},
		{"Educação Inclusiva", "EDUCACAO inclusiva"},
		{"paraplégico", "paraplegico"},
	}
	for _, p := range pairs {
		t.Run(p[0], func(t *testing.T) {
			assert.Equal(t, e.Rank(p[0]), e.Rank(p[1]))
		})
	}
}

func TestRankDeterministic(t *testing.T) {
	e := defaultEngine(t)

	for _, q := range []string{"autismo", "imposto renda doença grave", "defciente", "F84.0 escola"} {
		first := e.Rank(q)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, e.Rank(q), q)
		}
	}
}

func TestRankReferenceQueries(t *testing.T) {
	e := defaultEngine(t)

	testCases := []struct {
		query       string
		expected    string
		description string
	}{
		{"TEA", "ciptea", "Acronym"},
		{"ABA", "plano_saude", "Acronym"},
		{"CID", "sus_terapias", "Acronym"},
		{"INSS", "bpc", "Acronym"},
		{"AEE", "educacao", "Acronym"},
		{"CAPS", "sus_terapias", "Acronym"},
		{"CER", "sus_terapias", "Acronym"},
		{"SISEN", "isencoes_tributarias", "Acronym"},
		{"LOAS", "bpc", "Acronym"},
		{"F84", "ciptea", "CID code"},
		{"Q90", "bpc", "CID code"},
		{"F70", "bpc", "CID code"},
		{"H54", "bpc", "CID code"},
		{"H90", "bpc", "CID code"},
		{"G80", "bpc", "CID code"},
		{"E34.3", "bpc", "CID code with decimal"},
		{"F90", "educacao", "CID code"},
		{"F84.0", "ciptea", "CID code with decimal"},
		{"F840", "ciptea", "CID code without the decimal point"},
		{"G801", "bpc", "CID code without the decimal point"},
		{"autismos", "ciptea", "Plural"},
		{"deficiente", "bpc", "Informal term"},
		{"surdo", "bpc", "Informal term"},
		{"cego", "bpc", "Informal term"},
		{"cadeirante", "bpc", "Informal term"},
		{"paraplégico", "bpc", "Informal term"},
		{"down", "ciptea", "Informal term"},
		{"ritalina", "sus_terapias", "Informal term"},
		{"lei brasileira inclusão", "educacao", "Phrase"},
		{"salário mínimo deficiente", "bpc", "Phrase"},
		{"imposto renda doença grave", "isencao_ir", "Phrase"},
		{"carteira identificação autismo", "ciptea", "Phrase"},
		{"saque fundo garantia", "fgts", "Phrase"},
		{"vaga emprego deficiente", "trabalho", "Phrase"},
		{"desconto conta energia", "tarifa_social_energia", "Phrase"},
		{"prioridade atendimento fila", "atendimento_prioritario", "Phrase"},
		{"escola recusa matrícula", "educacao", "Phrase"},
		{"aposentadoria tempo contribuição", "aposentadoria_especial_pcd", "Phrase"},
	}

	for _, tc := range testCases {
		t.Run(tc.description+"/"+tc.query, func(t *testing.T) {
			assert.Contains(t, ids(e.Rank(tc.query)), tc.expected)
		})
	}
}

func TestRankTruncates(t *testing.T) {
	e := defaultEngine(t)
	results := e.Rank("lei brasileira inclusão")
	assert.Len(t, results, e.Options().MaxResults)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestExactBeatsFuzzy(t *testing.T) {
	e := fixtureEngine(t)

	exact := e.Rank("autismo")
	typo := e.Rank("autsmo")
	require.NotEmpty(t, exact)
	require.NotEmpty(t, typo)
	assert.Equal(t, "ciptea", exact[0].Category)
	assert.Greater(t, exact[0].Score, typo[0].Score)
}

func TestFuzzyBounds(t *testing.T) {
	e := fixtureEngine(t)

	assert.NotEmpty(t, e.Rank("escolla"), "one edit")
	assert.NotEmpty(t, e.Rank("cadeiranta"), "one substitution")
	assert.Empty(t, e.Rank("cdrnt"), "too far")
	assert.Empty(t, e.Rank("bpx"), "below the fuzzy term length")
}

func TestReasonsAddUp(t *testing.T) {
	e := defaultEngine(t)

	for _, q := range []string{"passe livre", "F84 autismo", "imposto renda doença grave", "defciente"} {
		for _, r := range e.Rank(q) {
			total := 0.0
			for _, reason := range r.Reasons {
				total += reason.Points
			}
			assert.InDelta(t, r.Score, total, 1e-9, "%s/%s", q, r.Category)
		}
	}
}

func TestReasonKinds(t *testing.T) {
	e := fixtureEngine(t)

	kinds := func(query, category string) map[ReasonKind]int {
		out := make(map[ReasonKind]int)
		for _, r := range e.Rank(query) {
			if r.Category != category {
				continue
			}
			for _, reason := range r.Reasons {
				out[reason.Kind]++
			}
		}
		return out
	}

	assert.Equal(t, map[ReasonKind]int{ReasonKeyword: 2, ReasonContent: 2, ReasonPhrase: 1}, kinds("passe livre", "transporte"))
	assert.Equal(t, map[ReasonKind]int{ReasonCID: 1}, kinds("F84", "ciptea"))
	assert.Equal(t, map[ReasonKind]int{ReasonFuzzy: 1}, kinds("autsmo", "ciptea"))
}

func TestSearchCorrections(t *testing.T) {
	e := fixtureEngine(t)

	resp := e.Search("autsmo")
	assert.Equal(t, []Correction{{Term: "autsmo", Word: "autismo", Distance: 1}}, resp.Corrections)

	assert.Empty(t, e.Search("autismo").Corrections)
	assert.Empty(t, e.Search("autismos").Corrections, "contains the keyword, no typo")
	assert.Empty(t, e.Search("F840").Corrections)
	assert.Empty(t, e.Search("xyzqwv").Corrections)
}

func TestSearchLocation(t *testing.T) {
	e := fixtureEngine(t)
	listing := []string{"bpc", "ciptea", "educacao", "transporte"}

	testCases := []struct {
		query       string
		location    *location.Match
		listing     bool
		expected    []string
		description string
	}{
		{"TEA Barueri", &location.Match{Kind: location.KindCity, UF: "SP", Name: "barueri"}, false, []string{"ciptea"}, "Topic plus city"},
		{"BPC Curitiba", &location.Match{Kind: location.KindCity, UF: "PR", Name: "curitiba"}, false, []string{"bpc"}, "Acronym plus city"},
		{"Barueri", &location.Match{Kind: location.KindCity, UF: "SP", Name: "barueri"}, true, listing, "City alone lists everything"},
		{"sp", &location.Match{Kind: location.KindUF, UF: "SP", Name: "SP"}, true, listing, "UF alone"},
		{"Pará", &location.Match{Kind: location.KindState, UF: "PA", Name: "para"}, true, listing, "Stopword state as whole query"},
		{"curitiba xyzqwv", &location.Match{Kind: location.KindCity, UF: "PR", Name: "curitiba"}, true, listing, "Nothing scores besides the place"},
		{"passe livre para cadeirante", nil, false, []string{"transporte", "bpc"}, "Stopword inside a query is not a place"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			resp := e.Search(tc.query)
			assert.Equal(t, tc.location, resp.Location)
			assert.Equal(t, tc.listing, resp.Listing)
			assert.Equal(t, tc.expected, ids(resp.Results))
			if tc.listing {
				for _, r := range resp.Results {
					assert.Zero(t, r.Score)
				}
			}
		})
	}
}

func TestSearchListingIgnoresMaxResults(t *testing.T) {
	e := defaultEngine(t)

	resp := e.Search("Barueri")
	require.True(t, resp.Listing)
	assert.Len(t, resp.Results, len(e.Catalog().Categories()))
	assert.Greater(t, len(resp.Results), e.Options().MaxResults)
}

func TestSearchCombinedDefaultCatalog(t *testing.T) {
	e := defaultEngine(t)

	for _, q := range []string{"TEA Barueri", "BPC Curitiba"} {
		resp := e.Search(q)
		require.NotNil(t, resp.Location, q)
		assert.False(t, resp.Listing, q)
		assert.NotEmpty(t, resp.Results, q)
	}
}

func TestSearchWithoutLocationMatchesRank(t *testing.T) {
	e := defaultEngine(t)

	for _, q := range []string{"bpc", "escola recusa matrícula", ""} {
		resp := e.Search(q)
		assert.Nil(t, resp.Location)
		assert.False(t, resp.Listing)
		assert.Equal(t, e.Rank(q), resp.Results)
	}
}

func TestSuggest(t *testing.T) {
	e := fixtureEngine(t)

	sugg := e.Suggest("passe li", 5)
	require.Len(t, sugg, 1)
	assert.Equal(t, "livre", sugg[0].Word)

	assert.Empty(t, e.Suggest("", 5))
	assert.Empty(t, e.Suggest("   ", 5))
	assert.Equal(t, "autismo", e.Suggest("AUT", 5)[0].Word)
}

func TestStats(t *testing.T) {
	e := fixtureEngine(t)

	assert.Equal(t, Stats{
		Version:    "fixture",
		Categories: 4,
		Keywords:   6,
		Vocabulary: 7,
		CidRanges:  2,
		States:     3,
		Cities:     2,
	}, e.Stats())
}

func TestNewEngineNilCatalog(t *testing.T) {
	e, err := NewEngine(nil, DefaultOptions())
	assert.Error(t, err)
	assert.Nil(t, e)
}

func TestUnknownCategoryFailsAtBuild(t *testing.T) {
	doc := &catalog.Document{
		Categories: []catalog.CategoryDoc{{ID: "bpc", Title: "BPC"}},
		KeywordMap: map[string]catalog.KeywordDoc{"loas": {Categories: []string{"bpc", "ghost"}, Weight: 8}},
	}
	cat, err := catalog.Build(doc)
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
	assert.Nil(t, cat)

	doc.KeywordMap = nil
	doc.CidRangeMap = map[string][]string{"F84": {"ghost"}}
	_, err = catalog.Build(doc)
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
}

func TestOptionsSanitize(t *testing.T) {
	d := DefaultOptions()

	assert.Equal(t, d, Options{}.Sanitize())
	assert.Equal(t, d, d.Sanitize())

	o := Options{FuzzyFactor: 1.5, FuzzyMaxDistance: 9, MaxResults: -1, PhraseBonus: -2}.Sanitize()
	assert.Equal(t, d.FuzzyFactor, o.FuzzyFactor)
	assert.Equal(t, d.FuzzyMaxDistance, o.FuzzyMaxDistance)
	assert.Equal(t, d.MaxResults, o.MaxResults)
	assert.Equal(t, d.PhraseBonus, o.PhraseBonus)

	o = Options{MaxResults: 3, FuzzyFactor: 0.25}.Sanitize()
	assert.Equal(t, 3, o.MaxResults)
	assert.Equal(t, 0.25, o.FuzzyFactor)
}

func TestFuzzyDisabled(t *testing.T) {
	e := fixtureEngine(t)
	opts := DefaultOptions()
	opts.FuzzyMaxDistance = 0

	strict, err := NewEngine(e.Catalog(), opts)
	require.NoError(t, err)
	assert.Empty(t, strict.Rank("autsmo"))
	assert.NotEmpty(t, strict.Rank("autismo"))
}

func TestConcurrentSearch(t *testing.T) {
	e := defaultEngine(t)
	queries := []string{"autismo", "TEA Barueri", "F84.0", "defciente", "passe livre", "sp", ""}

	want := make(map[string]Response, len(queries))
	for _, q := range queries {
		want[q] = e.Search(q)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				q := queries[i%len(queries)]
				assert.Equal(t, want[q], e.Search(q))
			}
		}()
	}
	wg.Wait()
}

func BenchmarkRank(b *testing.B) {
	e := defaultEngine(b)
	inputs := []string{"autismo", "imposto renda doença grave", "defciente", "F84.0", "TEA Barueri"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Search(inputs[i%len(inputs)])
	}
}
