// Package sanitizer redacts PII and secrets from text before it is
// persisted or sent to an external collaborator. Grounded on
// original_source/crates/cortex-core/src/traits/sanitizer.rs's ISanitizer
// trait (sanitize(text) -> {text, redactions}); the regex taxonomy
// (emails, API keys/tokens, credit cards, SSNs, private key blocks,
// generic high-entropy secrets) is this package's own reference
// implementation of the trait, since no concrete sanitizer is shipped in
// the retrieval pack.
package sanitizer
