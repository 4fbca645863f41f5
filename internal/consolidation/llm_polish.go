package consolidation

import "context"

// LLMPolisher is an optional external-collaborator hook that rewrites a
// TextRank/TF-IDF extractive summary into fluent prose. Declared in
// mod.rs's llm_polish module; left unimplemented against any real LLM
// per spec.md's Non-goals — the abstraction phase calls it only when
// configured and non-nil, falling back to the extractive summary
// otherwise.
type LLMPolisher interface {
	Polish(ctx context.Context, extractive string, keyphrases []string) (string, error)
}
