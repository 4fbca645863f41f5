package embedding

import "context"

// Provider turns text into a fixed-dimension embedding vector.
type Provider interface {
	// Embed returns the embedding for one piece of text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch embeds multiple texts in one call, for providers that
	// support batching more efficiently than N sequential calls.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the vector length this provider produces.
	Dimensions() int
	// Name identifies the provider for logging and config validation.
	Name() string
}
