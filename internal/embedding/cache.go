package embedding

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Default L1 cache bounds per spec.md §5: idle entries expire after 1h
// (the expirable LRU's single TTL is used for the idle bound; the 24h
// max-age bound is not separately enforced here since the pack's LRU
// only exposes one TTL knob — noted in DESIGN.md).
const (
	DefaultCacheSize = 10000
	DefaultCacheTTL  = time.Hour
)

// CachedProvider wraps a Provider with an in-memory L1 cache keyed by
// the input text, so repeated embedding requests for the same text (a
// common pattern during retrieval re-ranking and consolidation) skip the
// network round trip. Grounded on teacher's internal/vector/qdrant.go's
// client-wrapping pattern, generalized from a connection wrapper to a
// cache wrapper around the same kind of external-call-heavy interface.
type CachedProvider struct {
	inner Provider
	cache *lru.LRU[string, []float32]
}

// NewCachedProvider wraps inner with an expirable LRU cache of the given
// size and TTL.
func NewCachedProvider(inner Provider, size int, ttl time.Duration) *CachedProvider {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedProvider{
		inner: inner,
		cache: lru.NewLRU[string, []float32](size, nil, ttl),
	}
}

// Name implements Provider.
func (c *CachedProvider) Name() string { return c.inner.Name() + "+cache" }

// Dimensions implements Provider.
func (c *CachedProvider) Dimensions() int { return c.inner.Dimensions() }

// Embed implements Provider, serving from cache when possible.
func (c *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text); ok {
		return vec, nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, vec)
	return vec, nil
}

// EmbedBatch implements Provider, serving cached entries individually
// and delegating the remainder to inner in one batch call.
func (c *CachedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, t := range texts {
		if vec, ok := c.cache.Get(t); ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for i, vec := range vecs {
		out[missIdx[i]] = vec
		c.cache.Add(missTexts[i], vec)
	}
	return out, nil
}

// Len reports the number of entries currently cached.
func (c *CachedProvider) Len() int { return c.cache.Len() }

// Purge empties the cache, e.g. on a provider/model change.
func (c *CachedProvider) Purge() { c.cache.Purge() }
