/*
Package server implements msgpack IPC for the category search engine.

Clients write msgpack maps to stdin and read msgpack maps from stdout. The
first frame the server writes is a ready message:

	{"status": "ready"}

# Search

A frame carrying a query is a search unless it names another action:

	{"id": "q1", "q": "passe livre curitiba", "l": 5}

The response lists categories best first with their score and the reasons
behind it, the detected place, and typo corrections:

	{"id": "q1", "r": [{"c": "transporte", "s": 29, "w": [...]}], "loc": {"k": "cidade", "uf": "PR", "n": "curitiba"}, "n": 1, "t": 210}

When the query only names a place, "ls" is true and every category is
listed with a zero score.

Frames with "live": true come from a search box. They are debounced: within
a burst only the last one is answered. Any other request first settles a
pending live search, so responses always leave in the order requests came in.

# Other actions

	{"id": "s1", "action": "suggest", "p": "aut", "l": 8}
	{"id": "a1", "action": "analyze", "text": "...", "file": "laudo.pdf"}
	{"id": "x1", "action": "stats"}
	{"id": "h1", "action": "health"}

Errors carry the request id, a message and a code:

	{"id": "q2", "e": "missing 'q' parameter", "c": 400}

Times ("t") are in microseconds.
*/
package server

// Actions understood by the server.
const (
	ActionSearch  = "search"
	ActionSuggest = "suggest"
	ActionAnalyze = "analyze"
	ActionStats   = "stats"
	ActionHealth  = "health"
)

// Request is the union of every request frame.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action,omitempty"`
	Query  string `msgpack:"q,omitempty"`
	Prefix string `msgpack:"p,omitempty"`
	Limit  int    `msgpack:"l,omitempty"`
	Live   bool   `msgpack:"live,omitempty"`
	Text   string `msgpack:"text,omitempty"`
	File   string `msgpack:"file,omitempty"`
}

// Reason explains one contribution to a score.
type Reason struct {
	Kind    string  `msgpack:"k"`
	Term    string  `msgpack:"t,omitempty"`
	Keyword string  `msgpack:"kw,omitempty"`
	Points  float64 `msgpack:"p"`
}

// SearchResult is a ranked category.
type SearchResult struct {
	Category string   `msgpack:"c"`
	Score    float64  `msgpack:"s"`
	Reasons  []Reason `msgpack:"w,omitempty"`
}

// Location is the place detected in a query.
type Location struct {
	Kind string `msgpack:"k"`
	UF   string `msgpack:"uf"`
	Name string `msgpack:"n"`
}

// Correction suggests a known word for a mistyped term.
type Correction struct {
	Term     string `msgpack:"t"`
	Word     string `msgpack:"w"`
	Distance int    `msgpack:"d"`
}

// SearchResponse answers a search.
type SearchResponse struct {
	ID          string         `msgpack:"id"`
	Results     []SearchResult `msgpack:"r"`
	Location    *Location      `msgpack:"loc,omitempty"`
	Listing     bool           `msgpack:"ls,omitempty"`
	Corrections []Correction   `msgpack:"fix,omitempty"`
	Count       int            `msgpack:"n"`
	TimeTaken   int64          `msgpack:"t"`
}

// Suggestion is a completed vocabulary word.
type Suggestion struct {
	Word string `msgpack:"w"`
	Rank uint16 `msgpack:"r"`
}

// SuggestResponse answers a suggest request.
type SuggestResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"n"`
	TimeTaken   int64        `msgpack:"t"`
}

// Analysis is a category scored against a document.
type Analysis struct {
	Category string   `msgpack:"c"`
	Score    int      `msgpack:"s"`
	Matches  []string `msgpack:"m"`
}

// AnalyzeResponse answers an analyze request.
type AnalyzeResponse struct {
	ID        string     `msgpack:"id"`
	Results   []Analysis `msgpack:"r"`
	Count     int        `msgpack:"n"`
	TimeTaken int64      `msgpack:"t"`
}

// StatsResponse reports index sizes.
type StatsResponse struct {
	ID         string `msgpack:"id"`
	Version    string `msgpack:"version"`
	Categories int    `msgpack:"categories"`
	Keywords   int    `msgpack:"keywords"`
	Vocabulary int    `msgpack:"vocabulary"`
	CidRanges  int    `msgpack:"cid_ranges"`
	States     int    `msgpack:"states"`
	Cities     int    `msgpack:"cities"`
	DebounceMs int    `msgpack:"debounce_ms"`
}

// StatusResponse answers health checks.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for a failed request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
