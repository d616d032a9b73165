// Package llm defines the chat model abstraction the assistant talks to.
// Backends: Ollama's native API, Anthropic, and OpenAI-compatible endpoints.
package llm

import (
	"context"

	"github.com/bigsk1/ollama-tools/core"
)

// FallbackMessage is shown to the user when the model service fails. The
// failed exchange is never persisted to memory or history.
const FallbackMessage = "I'm sorry, I encountered an error and couldn't process your request."

// ChatModel produces an assistant message for an ordered message list.
type ChatModel interface {
	// Chat returns the complete response text.
	Chat(ctx context.Context, messages []core.ChatMessage) (string, error)

	// ChatStream invokes onFragment for each arriving text fragment and
	// returns the full concatenated response. Fragment boundaries carry no
	// meaning; tool-call tags may span them, so callers must only interpret
	// markup in the returned complete text.
	ChatStream(ctx context.Context, messages []core.ChatMessage, onFragment func(string)) (string, error)
}
