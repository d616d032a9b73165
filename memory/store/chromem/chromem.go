// Package chromem implements memory.Store on top of chromem-go, a pure Go
// embedded vector database.
package chromem

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/bigsk1/ollama-tools/memory"
)

const collectionName = "conversations"

// Store persists exchange records with their embeddings. Records are written
// through to disk when the store was opened with a path.
type Store struct {
	db  *chromem.DB
	mu  sync.Mutex
	col *chromem.Collection
}

// New opens (or creates) a persistent store rooted at path.
func New(path string) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open persistent db: %w", err)
	}
	return &Store{db: db}, nil
}

// NewInMemory creates a volatile store, useful for tests and offline runs.
func NewInMemory() *Store {
	return &Store{db: chromem.NewDB()}
}

// ensureCollection lazily opens or creates the conversations collection.
// Safe to call repeatedly; the handle is cached after the first call.
func (s *Store) ensureCollection() (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.col != nil {
		return s.col, nil
	}

	// Embeddings are always supplied by the caller, so no embedding func and
	// the default cosine distance.
	col, err := s.db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get or create collection: %w", err)
	}
	s.col = col
	return col, nil
}

// Add inserts a record keyed by its id.
func (s *Store) Add(ctx context.Context, rec *memory.Record) error {
	col, err := s.ensureCollection()
	if err != nil {
		return err
	}

	doc, err := rec.Document()
	if err != nil {
		return err
	}

	log.Printf("[CHROMEM] Storing record id=%s", rec.ID)

	err = col.AddDocument(ctx, chromem.Document{
		ID:        rec.ID,
		Content:   doc,
		Embedding: rec.Embedding,
		Metadata: map[string]string{
			"id":        rec.ID,
			"timestamp": strconv.FormatInt(rec.CreatedAt.Unix(), 10),
		},
	})
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Query returns up to k nearest candidates by the collection's distance
// metric. chromem-go rejects nResults larger than the collection, so k is
// clamped to the current document count; an empty collection yields nil.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]memory.Candidate, error) {
	col, err := s.ensureCollection()
	if err != nil {
		return nil, err
	}

	if count := col.Count(); count < k {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	candidates := make([]memory.Candidate, 0, len(results))
	for _, res := range results {
		candidates = append(candidates, memory.Candidate{
			ID:        res.ID,
			Document:  res.Content,
			Embedding: res.Embedding,
			Metadata:  res.Metadata,
		})
	}
	return candidates, nil
}
