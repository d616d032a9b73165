// Package ollama implements memory.Embedder against an Ollama-compatible
// embeddings endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/bigsk1/ollama-tools/memory"
)

// Config configures the embedding client.
type Config struct {
	// URL is the Ollama base URL, e.g. http://127.0.0.1:11434.
	URL string

	// Model is the embedding model name, e.g. nomic-embed-text.
	Model string

	// Timeout bounds a single embedding request. Default 30s.
	Timeout time.Duration

	// CacheSize is the maximum number of cached embeddings. Default 4096.
	// Embedding the same text twice is common (re-asked prompts, retries),
	// and the service round-trip dominates retrieval latency.
	CacheSize int64
}

// Client calls the /api/embeddings endpoint and caches results by text.
type Client struct {
	url    string
	model  string
	client *http.Client
	cache  *ristretto.Cache

	dimOnce sync.Once
	dim     int
}

// New creates an embedding client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("embedder: URL is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedder: Model is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	cacheSize := cfg.CacheSize
	if cacheSize == 0 {
		cacheSize = 4096
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cacheSize * 10,
		MaxCost:     cacheSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("embedder: create cache: %w", err)
	}

	return &Client{
		url:    cfg.URL,
		model:  cfg.Model,
		client: &http.Client{Timeout: timeout},
		cache:  cache,
	}, nil
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed requests an embedding for the given text. Any transport failure,
// non-2xx status, or response missing the embedding field is reported as
// memory.ErrEmbeddingUnavailable so callers can degrade instead of erroring.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := c.cache.Get(text); ok {
		return cached.([]float32), nil
	}

	body, err := json.Marshal(embedRequest{Model: c.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("embedder: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedder: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", memory.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", memory.ErrEmbeddingUnavailable, resp.StatusCode, string(respBody))
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", memory.ErrEmbeddingUnavailable, err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("%w: response has no embedding", memory.ErrEmbeddingUnavailable)
	}

	c.dimOnce.Do(func() { c.dim = len(result.Embedding) })
	c.cache.Set(text, result.Embedding, 1)

	return result.Embedding, nil
}

// Dimensions returns the vector size observed on the first successful embed,
// or 0 before any embedding has been produced.
func (c *Client) Dimensions() int {
	return c.dim
}
