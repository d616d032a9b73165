package memory

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Manager orchestrates memory operations: embedding queries, querying the
// store, reranking candidates, and recording completed exchanges.
//
// Both Retrieve and Record are fail-open. A conversation must survive a dead
// embedding service or a broken store; the worst case is an empty context or
// a lost memory write, both of which are logged.
type Manager struct {
	store    Store
	embedder Embedder
	config   Config
}

// Config holds Manager configuration.
type Config struct {
	// NContexts is the maximum number of contexts retrieved per query.
	NContexts int

	// SimilarityThreshold is the minimum cosine similarity a candidate needs
	// to be injected into the prompt. Candidates below it are discarded:
	// irrelevant context degrades responses more than no context.
	SimilarityThreshold float64
}

// DefaultConfig returns sensible defaults for a local assistant.
var DefaultConfig = &Config{
	NContexts:           3,
	SimilarityThreshold: 0.7,
}

// NewManager creates a Manager over the given store and embedder. The config
// is copied, so later mutation of the caller's struct has no effect; nil
// selects the defaults.
func NewManager(store Store, embedder Embedder, config *Config) *Manager {
	cfg := *DefaultConfig
	if config != nil {
		cfg = *config
	}
	if cfg.NContexts <= 0 {
		cfg.NContexts = DefaultConfig.NContexts
	}
	return &Manager{
		store:    store,
		embedder: embedder,
		config:   cfg,
	}
}

// Retrieve finds past exchanges relevant to the prompt, most similar first.
// It returns an empty slice (and never an error) when the embedding service
// or the store is unavailable.
func (m *Manager) Retrieve(ctx context.Context, prompt string) []RetrievedContext {
	queryEmb, err := m.embedder.Embed(ctx, prompt)
	if err != nil {
		log.Printf("[MEMORY] Embedding failed, returning empty context: %v", err)
		return nil
	}

	candidates, err := m.store.Query(ctx, queryEmb, m.config.NContexts)
	if err != nil {
		log.Printf("[MEMORY] Store query failed, returning empty context: %v", err)
		return nil
	}

	var contexts []RetrievedContext
	for _, cand := range candidates {
		candPrompt, response, docID, err := DecodeDocument(cand.Document)
		if err != nil {
			log.Printf("[MEMORY] Skipping undecodable candidate %s: %v", cand.ID, err)
			continue
		}

		// The store's own ranking uses its internal distance metric; recompute
		// cosine similarity here so the final order is well-defined.
		similarity := Cosine(queryEmb, cand.Embedding)
		if similarity < m.config.SimilarityThreshold {
			continue
		}

		id := cand.Metadata["id"]
		if id == "" {
			id = docID
		}

		contexts = append(contexts, RetrievedContext{
			ID:         id,
			Prompt:     candPrompt,
			Response:   response,
			Similarity: similarity,
		})
	}

	sort.SliceStable(contexts, func(i, j int) bool {
		return contexts[i].Similarity > contexts[j].Similarity
	})
	if len(contexts) > m.config.NContexts {
		contexts = contexts[:m.config.NContexts]
	}

	log.Printf("[MEMORY] Retrieved %d contexts for query: %q", len(contexts), truncateLog(prompt, 50))
	return contexts
}

// Record persists a completed exchange as a new memory. The embedding covers
// prompt and response together so either side of the exchange can match a
// future query. Failures are logged and swallowed.
func (m *Manager) Record(ctx context.Context, prompt, response string) {
	embedding, err := m.embedder.Embed(ctx, prompt+" "+response)
	if err != nil {
		log.Printf("[MEMORY] Embedding failed, skipping memory write: %v", err)
		return
	}

	rec := &Record{
		ID:        uuid.New().String(),
		Prompt:    prompt,
		Response:  response,
		Embedding: embedding,
		CreatedAt: time.Now(),
	}

	if err := m.store.Add(ctx, rec); err != nil {
		log.Printf("[MEMORY] Store write failed, memory dropped: %v", err)
		return
	}

	log.Printf("[MEMORY] Stored exchange %s", rec.ID)
}

// truncateLog truncates text for logging.
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
