// Package embedding provides a Provider interface for turning text into
// fixed-dimension vectors, an HTTP-backed adapter for Ollama, a
// deterministic hashing provider for tests and offline environments, and
// an L1 cache in front of either.
//
// Grounded on teacher's internal/ai/ollama.go (OllamaClient's base URL /
// model / HTTP client shape, generalized from its bespoke chat+embedding
// surface down to the single GenerateEmbedding operation this subsystem
// needs) and internal/vector/qdrant.go (client construction / health-check
// idiom, reused for the cache's eviction bookkeeping style). The L1 cache
// uses hashicorp/golang-lru/v2's expirable LRU, matching spec.md §5's
// "TinyLFU or equivalent, per-entry TTL (idle 1h, max 24h)" requirement
// with the nearest ecosystem equivalent actually available (expirable LRU
// gives idle-TTL eviction; true TinyLFU admission is not in the pack and
// is noted as a gap rather than hand-rolled).
package embedding
