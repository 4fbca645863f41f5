package embedding

import (
	"context"
	"testing"
	"time"

	"github.com/mattepiu/cortex/pkg/config"
)

func TestHashingProvider_Deterministic(t *testing.T) {
	p := NewHashingProvider(64)
	a, err := p.Embed(context.Background(), "the quick brown fox")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := p.Embed(context.Background(), "the quick brown fox")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 dimensions, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical text to produce identical vectors, diverged at index %d", i)
		}
	}
}

func TestHashingProvider_DifferentTextDiffers(t *testing.T) {
	p := NewHashingProvider(64)
	a, _ := p.Embed(context.Background(), "alpha beta gamma")
	b, _ := p.Embed(context.Background(), "completely unrelated text here")
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected distinct texts to produce distinct vectors")
	}
}

func TestHashingProvider_EmptyText(t *testing.T) {
	p := NewHashingProvider(32)
	vec, err := p.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 32 {
		t.Fatalf("expected 32-dim zero vector, got %d", len(vec))
	}
}

func TestHashingProvider_NormalizedUnitLength(t *testing.T) {
	p := NewHashingProvider(128)
	vec, _ := p.Embed(context.Background(), "a reasonably long piece of text to hash into shingles")
	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares < 0.99 || sumSquares > 1.01 {
		t.Fatalf("expected unit-normalized vector, got squared norm %v", sumSquares)
	}
}

func TestHashingProvider_EmbedBatch(t *testing.T) {
	p := NewHashingProvider(16)
	vecs, err := p.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
}

type countingProvider struct {
	calls int
}

func (c *countingProvider) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	return []float32{float32(len(text))}, nil
}

func (c *countingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, _ := c.Embed(ctx, t)
		out[i] = vec
	}
	return out, nil
}

func (c *countingProvider) Dimensions() int { return 1 }
func (c *countingProvider) Name() string    { return "counting" }

func TestCachedProvider_CachesRepeatedEmbed(t *testing.T) {
	inner := &countingProvider{}
	cached := NewCachedProvider(inner, 10, time.Minute)

	if _, err := cached.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cached.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected underlying provider to be called once, got %d", inner.calls)
	}
}

func TestCachedProvider_EmbedBatchMixesHitsAndMisses(t *testing.T) {
	inner := &countingProvider{}
	cached := NewCachedProvider(inner, 10, time.Minute)

	_, err := cached.EmbedBatch(context.Background(), []string{"a", "bb"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 underlying calls for first batch, got %d", inner.calls)
	}

	vecs, err := cached.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("expected only the new item to trigger an underlying call, got %d total calls", inner.calls)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
}

func TestCachedProvider_Purge(t *testing.T) {
	inner := &countingProvider{}
	cached := NewCachedProvider(inner, 10, time.Minute)
	_, _ = cached.Embed(context.Background(), "hello")
	if cached.Len() != 1 {
		t.Fatalf("expected 1 cached entry, got %d", cached.Len())
	}
	cached.Purge()
	if cached.Len() != 0 {
		t.Fatalf("expected cache to be empty after purge, got %d", cached.Len())
	}
}

func TestNew_SelectsProviderByConfig(t *testing.T) {
	p, err := New(config.EmbeddingConfig{Provider: "hashing", Dimensions: 32})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Dimensions() != 32 {
		t.Fatalf("expected configured dimensions to propagate, got %d", p.Dimensions())
	}
}

func TestNew_UnknownProviderErrors(t *testing.T) {
	_, err := New(config.EmbeddingConfig{Provider: "not-a-real-provider"})
	if err == nil {
		t.Fatal("expected unknown provider to error")
	}
}
