package retrieval

import "strings"

// synonyms is a small static expansion table. Grounded on the teacher's
// tag-normalization idiom in internal/search/engine.go's tagSearch,
// widened from tag-casing to query-term expansion.
var synonyms = map[string][]string{
	"bug":      {"defect", "issue"},
	"fix":      {"patch", "resolve"},
	"config":   {"configuration", "settings"},
	"fast":     {"quick", "performant"},
	"slow":     {"sluggish", "latency"},
	"error":    {"failure", "exception"},
	"pattern":  {"approach", "convention"},
	"decision": {"choice", "rationale"},
}

// HypotheticalDocumentFunc generates a short hypothetical document that
// would answer query, per spec.md §4.3's query-expansion step (HyDE).
// Left as an external-collaborator hook: the pipeline calls it only
// when non-nil, and falls back to synonym expansion otherwise.
type HypotheticalDocumentFunc func(query string) (string, error)

// Expand returns query plus any synonym-expanded terms, and — if gen is
// non-nil — a generated hypothetical document appended as an additional
// search surface. Expansion never removes the original query terms.
func Expand(query string, gen HypotheticalDocumentFunc) []string {
	terms := []string{query}

	var extra []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		tok = strings.Trim(tok, ".,?!:;\"'")
		if syns, ok := synonyms[tok]; ok {
			extra = append(extra, syns...)
		}
	}
	if len(extra) > 0 {
		terms = append(terms, query+" "+strings.Join(extra, " "))
	}

	if gen != nil {
		if doc, err := gen(query); err == nil && doc != "" {
			terms = append(terms, doc)
		}
	}
	return terms
}
