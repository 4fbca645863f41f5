// Package retrieval composes lexical and vector search into a single
// ranked, budget-constrained generation context. Grounded on the
// teacher's internal/search/engine.go (SearchOptions/SearchResult
// shape, fallback-on-degradation idiom) generalized to spec.md §4.3's
// pipeline: intent classification, query expansion, parallel
// lexical+vector+entity retrieval, Reciprocal Rank Fusion, an
// eight-signal scorer, an optional re-rank hook, session dedup, and
// four-level compression to a token budget.
package retrieval
