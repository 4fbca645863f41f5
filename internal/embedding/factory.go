package embedding

import (
	"fmt"

	"github.com/mattepiu/cortex/pkg/config"
)

// New builds a Provider from configuration, wrapped in the L1 cache.
// "ollama" selects the HTTP-backed provider; "hashing" selects the
// deterministic offline provider used in tests and Ollama-less setups.
func New(cfg config.EmbeddingConfig) (Provider, error) {
	var inner Provider
	switch cfg.Provider {
	case "", "ollama":
		inner = NewOllamaProvider(cfg)
	case "hashing":
		inner = NewHashingProvider(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	return NewCachedProvider(inner, DefaultCacheSize, DefaultCacheTTL), nil
}
