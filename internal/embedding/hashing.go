package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// HashingProvider is a deterministic, offline stand-in for a real
// embedding model: it hashes n-grams of the input text into a
// fixed-dimension vector. It produces no semantic similarity beyond
// exact/near-duplicate text overlap, but is useful for tests and for
// environments with no Ollama (or other model server) reachable.
//
// Not grounded on a specific teacher file — the teacher pack only ships
// a real HTTP-backed provider (internal/ai/ollama.go); this is the
// standard "hashing trick" feature embedding, included because spec.md's
// Non-goals explicitly exclude training a custom embedding model, and a
// deterministic fallback is needed wherever Ollama is unavailable.
type HashingProvider struct {
	dimensions int
}

// NewHashingProvider returns a provider producing vectors of the given
// dimensionality.
func NewHashingProvider(dimensions int) *HashingProvider {
	if dimensions <= 0 {
		dimensions = 768
	}
	return &HashingProvider{dimensions: dimensions}
}

// Name implements Provider.
func (p *HashingProvider) Name() string { return "hashing" }

// Dimensions implements Provider.
func (p *HashingProvider) Dimensions() int { return p.dimensions }

// Embed implements Provider. Deterministic: the same text always yields
// the same vector, and the vector is L2-normalized so cosine similarity
// behaves as a real embedding's would.
func (p *HashingProvider) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, p.dimensions)
	for _, token := range hashTokens(text) {
		idx := tokenBucket(token, p.dimensions)
		vec[idx] += 1.0
	}
	normalize(vec)
	return vec, nil
}

// EmbedBatch implements Provider.
func (p *HashingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, _ := p.Embed(ctx, t)
		out[i] = vec
	}
	return out, nil
}

// hashTokens splits text into overlapping 3-character shingles, which
// gives near-duplicate text a meaningfully overlapping token set even
// with small edits, unlike whole-word tokenization.
func hashTokens(text string) []string {
	const shingle = 3
	if len(text) < shingle {
		if text == "" {
			return nil
		}
		return []string{text}
	}
	tokens := make([]string, 0, len(text)-shingle+1)
	for i := 0; i+shingle <= len(text); i++ {
		tokens = append(tokens, text[i:i+shingle])
	}
	return tokens
}

// tokenBucket hashes a token into [0, dimensions).
func tokenBucket(token string, dimensions int) int {
	sum := sha256.Sum256([]byte(token))
	h := binary.BigEndian.Uint64(sum[:8])
	return int(h % uint64(dimensions))
}

// normalize scales vec to unit length in place, leaving it untouched if
// it is the zero vector.
func normalize(vec []float32) {
	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSquares))
	for i := range vec {
		vec[i] /= norm
	}
}
