package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mattepiu/cortex/internal/logging"
	"github.com/mattepiu/cortex/pkg/config"
)

var log = logging.GetLogger("embedding")

// OllamaProvider generates embeddings via a local Ollama server. Grounded
// on teacher's internal/ai/ollama.go's OllamaClient, narrowed to the
// embedding-only surface this subsystem needs.
type OllamaProvider struct {
	baseURL    string
	model      string
	dimensions int
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewOllamaProvider builds a provider from EmbeddingConfig, defaulting
// base URL and model the same way the teacher's NewOllamaClient does. A
// requests-per-second of 0 leaves Embed/EmbedBatch unthrottled.
func NewOllamaProvider(cfg config.EmbeddingConfig) *OllamaProvider {
	p := &OllamaProvider{
		baseURL:    cfg.Ollama.BaseURL,
		model:      cfg.Ollama.EmbeddingModel,
		dimensions: cfg.Dimensions,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	if p.baseURL == "" {
		p.baseURL = "http://localhost:11434"
	}
	if p.model == "" {
		p.model = "nomic-embed-text"
	}
	if p.dimensions == 0 {
		p.dimensions = 768
	}
	if cfg.Ollama.RequestsPerSec > 0 {
		burst := cfg.Ollama.BurstSize
		if burst <= 0 {
			burst = cfg.Ollama.RequestsPerSec
		}
		p.limiter = newTokenBucket(burst, cfg.Ollama.RequestsPerSec)
	}
	return p
}

// Name implements Provider.
func (p *OllamaProvider) Name() string { return "ollama:" + p.model }

// Dimensions implements Provider.
func (p *OllamaProvider) Dimensions() int { return p.dimensions }

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed implements Provider. Grounded on OllamaClient.GenerateEmbedding.
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.limiter != nil {
		p.limiter.wait()
	}

	body, err := json.Marshal(ollamaEmbeddingRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama embedding request failed with status %d: %s", resp.StatusCode, respBody)
	}

	var parsed ollamaEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode ollama embedding response: %w", err)
	}

	out := make([]float32, len(parsed.Embedding))
	for i, v := range parsed.Embedding {
		out[i] = float32(v)
	}
	return out, nil
}

// EmbedBatch implements Provider. Ollama's /api/embeddings endpoint takes
// one prompt per call, so batching is sequential; log.Debug records the
// count for later migration to a real batch endpoint if one is adopted.
func (p *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	log.Debug("embedding batch sequentially", "count", len(texts), "provider", p.Name())
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := p.Embed(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("embed item %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

// IsAvailable checks whether the Ollama server is responsive, mirroring
// OllamaClient.IsAvailable.
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
