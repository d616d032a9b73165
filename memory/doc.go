// Package memory provides long-term conversational memory backed by a
// vector store.
//
// Each completed exchange is stored as an immutable Record (prompt, response,
// embedding, timestamp) and retrieved later by embedding the new prompt and
// querying for nearest neighbors. The store's native ranking is treated as a
// candidate pre-filter only: the Manager recomputes cosine similarity against
// each candidate's stored embedding and orders results itself.
//
// Architecture:
//   - Store: vector storage backend (chromem-go for the local assistant)
//   - Embedder: text-to-vector conversion (Ollama API, ONNX, or mock)
//   - Manager: orchestrates retrieval and recording
//
// The memory path is fail-open: an unreachable embedding service or a store
// error degrades to an empty context (or a dropped write), never to a failed
// conversation.
package memory
