// Package agent orchestrates a conversation turn: memory retrieval, prompt
// assembly, the model call, tool-call processing, and persistence.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/bigsk1/ollama-tools/core"
	"github.com/bigsk1/ollama-tools/llm"
	"github.com/bigsk1/ollama-tools/memory"
	"github.com/bigsk1/ollama-tools/protocol"
	"github.com/bigsk1/ollama-tools/tools"
)

// Assistant runs the conversation loop against one chat model. All exchanges
// go through a single session; concurrent calls are serialized.
type Assistant struct {
	model    llm.ChatModel
	registry *tools.Registry
	protocol *protocol.Protocol
	memory   *memory.Manager // optional
	session  *Session

	mu sync.Mutex
}

// Option configures the assistant.
type Option func(*Assistant)

// WithMemory enables long-term memory retrieval and recording.
func WithMemory(m *memory.Manager) Option {
	return func(a *Assistant) {
		a.memory = m
	}
}

// WithHistoryWindow sets the short-term history window in messages.
func WithHistoryWindow(window int) Option {
	return func(a *Assistant) {
		a.session = NewSession(window)
	}
}

// New creates an assistant over the given model and tool registry.
func New(model llm.ChatModel, registry *tools.Registry, opts ...Option) *Assistant {
	a := &Assistant{
		model:    model,
		registry: registry,
		protocol: protocol.New(registry),
		session:  NewSession(DefaultHistoryWindow),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SessionID returns the identifier of the assistant's conversation session.
func (a *Assistant) SessionID() string {
	return a.session.ID()
}

// Converse processes one user prompt and returns the final response text with
// all tool-call markup resolved. A model failure returns the fallback message
// and leaves history and memory untouched.
func (a *Assistant) Converse(ctx context.Context, prompt string) (string, error) {
	return a.converse(ctx, prompt, nil)
}

// ConverseStream is Converse with live fragments. Fragments are raw model
// output and may contain unresolved tool-call markup; the returned text is
// the processed final response.
func (a *Assistant) ConverseStream(ctx context.Context, prompt string, onFragment func(string)) (string, error) {
	return a.converse(ctx, prompt, onFragment)
}

func (a *Assistant) converse(ctx context.Context, prompt string, onFragment func(string)) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var contexts []memory.RetrievedContext
	if a.memory != nil {
		contexts = a.memory.Retrieve(ctx, prompt)
	}

	messages := make([]core.ChatMessage, 0, a.session.Len()+2)
	messages = append(messages, core.SystemMessage(a.systemPrompt(contexts)))
	messages = append(messages, a.session.Turns()...)
	messages = append(messages, core.UserMessage(prompt))

	var raw string
	var err error
	if onFragment != nil {
		raw, err = a.model.ChatStream(ctx, messages, onFragment)
	} else {
		raw, err = a.model.Chat(ctx, messages)
	}
	if err != nil {
		log.Printf("[AGENT] Model call failed: %v", err)
		return llm.FallbackMessage, nil
	}

	response := a.protocol.Process(ctx, raw)

	a.session.AppendExchange(prompt, response)
	if a.memory != nil {
		a.memory.Record(ctx, prompt, response)
	}
	return response, nil
}

// systemPrompt builds the system message: tool-call instructions with the
// registered function signatures, plus any retrieved conversation contexts
// ordered most similar first.
func (a *Assistant) systemPrompt(contexts []memory.RetrievedContext) string {
	var b strings.Builder

	b.WriteString("You are provided with function signatures within <tools></tools> XML tags. ")
	b.WriteString("You may call one or more functions to assist with the user query. ")
	b.WriteString("Don't make assumptions about what values to plug into functions. ")
	b.WriteString("For each function call return a json object with function name and arguments within <tool_call></tool_call> XML tags as follows:\n")
	b.WriteString("<tool_call>\n{\"name\": <function-name>,\"arguments\": <args-dict>}\n</tool_call>\n\n")
	b.WriteString("Here are the available tools:\n<tools>\n")
	for _, def := range a.registry.Definitions() {
		encoded, err := json.Marshal(def)
		if err != nil {
			continue
		}
		b.Write(encoded)
		b.WriteByte('\n')
	}
	b.WriteString("</tools>")

	if len(contexts) > 0 {
		b.WriteString("\n\nRelevant previous conversations:\n")
		for _, c := range contexts {
			fmt.Fprintf(&b, "\n[similarity %.2f]\nUser: %s\nAssistant: %s\n", c.Similarity, c.Prompt, c.Response)
		}
	}
	return b.String()
}
