package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bigsk1/ollama-tools/memory"
)

// fakeEmbedder returns canned vectors per text, or a fixed error.
type fakeEmbedder struct {
	vectors     map[string][]float32
	fallbackVec []float32
	err         error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return f.fallbackVec, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }

// fakeStore serves canned candidates and records Add calls.
type fakeStore struct {
	candidates []memory.Candidate
	added      []*memory.Record
	queryErr   error
	addErr     error
}

func (f *fakeStore) Add(ctx context.Context, rec *memory.Record) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, rec)
	return nil
}

func (f *fakeStore) Query(ctx context.Context, embedding []float32, k int) ([]memory.Candidate, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if len(f.candidates) > k {
		return f.candidates[:k], nil
	}
	return f.candidates, nil
}

func mustDocument(t *testing.T, id, prompt, response string) string {
	t.Helper()
	rec := &memory.Record{ID: id, Prompt: prompt, Response: response}
	doc, err := rec.Document()
	if err != nil {
		t.Fatalf("Document() error: %v", err)
	}
	return doc
}

func TestRetrieve_EmbeddingFailureReturnsEmpty(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{err: memory.ErrEmbeddingUnavailable}
	m := memory.NewManager(store, embedder, nil)

	got := m.Retrieve(context.Background(), "anything")
	if len(got) != 0 {
		t.Errorf("Retrieve() with dead embedder = %v, want empty", got)
	}
}

func TestRetrieve_StoreFailureReturnsEmpty(t *testing.T) {
	store := &fakeStore{queryErr: errors.New("store down")}
	embedder := &fakeEmbedder{fallbackVec: []float32{1, 0, 0}}
	m := memory.NewManager(store, embedder, nil)

	got := m.Retrieve(context.Background(), "anything")
	if len(got) != 0 {
		t.Errorf("Retrieve() with broken store = %v, want empty", got)
	}
}

func TestNewManager_CopiesConfig(t *testing.T) {
	store := &fakeStore{candidates: []memory.Candidate{
		{ID: "a", Document: mustDocument(t, "a", "p1", "r1"), Embedding: []float32{1, 0, 0}, Metadata: map[string]string{"id": "a"}},
		{ID: "b", Document: mustDocument(t, "b", "p2", "r2"), Embedding: []float32{1, 0, 0}, Metadata: map[string]string{"id": "b"}},
	}}
	embedder := &fakeEmbedder{fallbackVec: []float32{1, 0, 0}}

	cfg := memory.Config{NContexts: 2, SimilarityThreshold: 0}
	m := memory.NewManager(store, embedder, &cfg)

	// Mutating the caller's struct after construction must not change the
	// manager's behavior.
	cfg.NContexts = 1
	cfg.SimilarityThreshold = 2

	got := m.Retrieve(context.Background(), "query")
	if len(got) != 2 {
		t.Errorf("Retrieve() returned %d contexts after caller mutation, want 2", len(got))
	}

	// A nil config must not hand out (or normalize through) the shared default.
	before := *memory.DefaultConfig
	memory.NewManager(store, embedder, nil)
	if *memory.DefaultConfig != before {
		t.Errorf("DefaultConfig mutated by NewManager: %+v, want %+v", *memory.DefaultConfig, before)
	}
}

func TestRetrieve_RanksBySimilarityDescending(t *testing.T) {
	store := &fakeStore{candidates: []memory.Candidate{
		{ID: "far", Document: mustDocument(t, "far", "p1", "r1"), Embedding: []float32{0.2, 1, 0}, Metadata: map[string]string{"id": "far"}},
		{ID: "near", Document: mustDocument(t, "near", "p2", "r2"), Embedding: []float32{1, 0.1, 0}, Metadata: map[string]string{"id": "near"}},
		{ID: "mid", Document: mustDocument(t, "mid", "p3", "r3"), Embedding: []float32{1, 0.8, 0}, Metadata: map[string]string{"id": "mid"}},
	}}
	embedder := &fakeEmbedder{fallbackVec: []float32{1, 0, 0}}
	m := memory.NewManager(store, embedder, &memory.Config{NContexts: 3, SimilarityThreshold: 0})

	got := m.Retrieve(context.Background(), "query")
	if len(got) != 3 {
		t.Fatalf("Retrieve() returned %d contexts, want 3", len(got))
	}
	wantOrder := []string{"near", "mid", "far"}
	wantPrompts := []string{"p2", "p3", "p1"}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("contexts[%d].ID = %q, want %q", i, got[i].ID, want)
		}
		if got[i].Prompt != wantPrompts[i] {
			t.Errorf("contexts[%d].Prompt = %q, want %q", i, got[i].Prompt, wantPrompts[i])
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Similarity > got[i-1].Similarity {
			t.Errorf("similarities not descending at %d: %v > %v", i, got[i].Similarity, got[i-1].Similarity)
		}
	}
}

func TestRetrieve_ThresholdFiltersWeakMatches(t *testing.T) {
	store := &fakeStore{candidates: []memory.Candidate{
		{ID: "strong", Document: mustDocument(t, "strong", "p", "r"), Embedding: []float32{1, 0, 0}, Metadata: map[string]string{"id": "strong"}},
		{ID: "weak", Document: mustDocument(t, "weak", "p", "r"), Embedding: []float32{0, 1, 0}, Metadata: map[string]string{"id": "weak"}},
	}}
	embedder := &fakeEmbedder{fallbackVec: []float32{1, 0, 0}}
	m := memory.NewManager(store, embedder, &memory.Config{NContexts: 3, SimilarityThreshold: 0.7})

	got := m.Retrieve(context.Background(), "query")
	if len(got) != 1 {
		t.Fatalf("Retrieve() returned %d contexts, want 1", len(got))
	}
	if got[0].ID != "strong" {
		t.Errorf("kept context = %q, want strong", got[0].ID)
	}
}

func TestRetrieve_TruncatesToNContexts(t *testing.T) {
	var candidates []memory.Candidate
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		candidates = append(candidates, memory.Candidate{
			ID:        id,
			Document:  mustDocument(t, id, "p", "r"),
			Embedding: []float32{1, 0, 0},
			Metadata:  map[string]string{"id": id},
		})
	}
	store := &fakeStore{candidates: candidates}
	embedder := &fakeEmbedder{fallbackVec: []float32{1, 0, 0}}
	m := memory.NewManager(store, embedder, &memory.Config{NContexts: 2, SimilarityThreshold: 0})

	got := m.Retrieve(context.Background(), "query")
	if len(got) != 2 {
		t.Errorf("Retrieve() returned %d contexts, want 2", len(got))
	}
}

func TestRetrieve_SkipsUndecodableCandidates(t *testing.T) {
	store := &fakeStore{candidates: []memory.Candidate{
		{ID: "bad", Document: "not json", Embedding: []float32{1, 0, 0}},
		{ID: "good", Document: mustDocument(t, "good", "p", "r"), Embedding: []float32{1, 0, 0}, Metadata: map[string]string{"id": "good"}},
	}}
	embedder := &fakeEmbedder{fallbackVec: []float32{1, 0, 0}}
	m := memory.NewManager(store, embedder, &memory.Config{NContexts: 3, SimilarityThreshold: 0})

	got := m.Retrieve(context.Background(), "query")
	if len(got) != 1 || got[0].ID != "good" {
		t.Errorf("Retrieve() = %v, want only the decodable candidate", got)
	}
}

func TestRetrieve_FallsBackToDocumentID(t *testing.T) {
	store := &fakeStore{candidates: []memory.Candidate{
		{ID: "store-id", Document: mustDocument(t, "doc-id", "p", "r"), Embedding: []float32{1, 0, 0}},
	}}
	embedder := &fakeEmbedder{fallbackVec: []float32{1, 0, 0}}
	m := memory.NewManager(store, embedder, &memory.Config{NContexts: 1, SimilarityThreshold: 0})

	got := m.Retrieve(context.Background(), "query")
	if len(got) != 1 {
		t.Fatalf("Retrieve() returned %d contexts, want 1", len(got))
	}
	if got[0].ID != "doc-id" {
		t.Errorf("ID = %q, want document id fallback", got[0].ID)
	}
}

func TestRecord_PersistsExchange(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{fallbackVec: []float32{0.5, 0.5, 0}}
	m := memory.NewManager(store, embedder, nil)

	m.Record(context.Background(), "what is go", "a programming language")

	if len(store.added) != 1 {
		t.Fatalf("store received %d records, want 1", len(store.added))
	}
	rec := store.added[0]
	if rec.ID == "" {
		t.Error("record has no id")
	}
	if rec.Prompt != "what is go" || rec.Response != "a programming language" {
		t.Errorf("record = %q / %q", rec.Prompt, rec.Response)
	}
	if len(rec.Embedding) == 0 {
		t.Error("record has no embedding")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("record has no timestamp")
	}
}

func TestRecord_EmbeddingFailureSkipsWrite(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{err: memory.ErrEmbeddingUnavailable}
	m := memory.NewManager(store, embedder, nil)

	m.Record(context.Background(), "p", "r")
	if len(store.added) != 0 {
		t.Errorf("store received %d records, want 0", len(store.added))
	}
}

func TestRecord_StoreFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{addErr: errors.New("disk full")}
	embedder := &fakeEmbedder{fallbackVec: []float32{1, 0, 0}}
	m := memory.NewManager(store, embedder, nil)

	// Must not panic or error; the write is simply dropped.
	m.Record(context.Background(), "p", "r")
}

func TestDocumentRoundtrip(t *testing.T) {
	rec := &memory.Record{ID: "id-1", Prompt: "hello", Response: "world"}
	doc, err := rec.Document()
	if err != nil {
		t.Fatalf("Document() error: %v", err)
	}

	prompt, response, id, err := memory.DecodeDocument(doc)
	if err != nil {
		t.Fatalf("DecodeDocument() error: %v", err)
	}
	if prompt != "hello" || response != "world" || id != "id-1" {
		t.Errorf("roundtrip = %q/%q/%q", prompt, response, id)
	}
}
