package memory

import (
	"context"
	"errors"
	"time"
)

// ErrEmbeddingUnavailable classifies any failure to obtain an embedding:
// network errors, timeouts, non-2xx responses, or a response missing the
// embedding field. Embedder implementations wrap this sentinel so callers can
// degrade gracefully instead of propagating the failure.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// Record is one stored exchange. Records are created when an exchange
// completes successfully and are never mutated or deleted afterwards.
type Record struct {
	ID        string
	Prompt    string
	Response  string
	Embedding []float32
	CreatedAt time.Time
}

// Candidate is a raw nearest-neighbor result as returned by a Store: the
// serialized document, its stored embedding, and the store-side metadata.
// The Manager deserializes and reranks candidates itself.
type Candidate struct {
	ID        string
	Document  string
	Embedding []float32
	Metadata  map[string]string
}

// RetrievedContext is a deserialized candidate paired with the cosine
// similarity recomputed against the query embedding. Transient, never stored.
type RetrievedContext struct {
	ID         string
	Prompt     string
	Response   string
	Similarity float64
}

// Store is the vector storage backend.
// Implementations: chromem.Store (embedded, persisted).
type Store interface {
	// Add inserts a record keyed by its id. Ids are randomly generated at
	// creation and assumed never to collide.
	Add(ctx context.Context, rec *Record) error

	// Query returns up to k nearest candidates for the given embedding,
	// including each candidate's stored embedding and metadata. The internal
	// distance metric is implementation-defined; callers needing exact cosine
	// ordering must rerank.
	Query(ctx context.Context, embedding []float32, k int) ([]Candidate, error)
}

// Embedder converts text to vector embeddings. All records in one store must
// come from the same embedding model so dimensions match.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
