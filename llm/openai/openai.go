// Package openai implements the chat model over the OpenAI Chat Completions
// API. A custom base URL points it at any OpenAI-compatible server, including
// Ollama's /v1 endpoint.
package openai

import (
	"context"
	"fmt"

	"github.com/bigsk1/ollama-tools/core"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config holds OpenAI-compatible API settings. BaseURL is optional; when set
// it overrides the default api.openai.com endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client wraps the OpenAI SDK client with a fixed model.
type Client struct {
	client openai.Client
	model  string
}

// New creates an OpenAI chat client.
func New(cfg Config) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (c *Client) params(messages []core.ChatMessage) openai.ChatCompletionNewParams {
	apiMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			apiMessages = append(apiMessages, openai.SystemMessage(m.Content))
		case core.RoleAssistant:
			apiMessages = append(apiMessages, openai.AssistantMessage(m.Content))
		default:
			apiMessages = append(apiMessages, openai.UserMessage(m.Content))
		}
	}
	return openai.ChatCompletionNewParams{
		Messages: apiMessages,
		Model:    c.model,
	}
}

// Chat returns the complete assistant reply.
func (c *Client) Chat(ctx context.Context, messages []core.ChatMessage) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, c.params(messages))
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatStream streams the reply, invoking onFragment per content delta.
func (c *Client) ChatStream(ctx context.Context, messages []core.ChatMessage, onFragment func(string)) (string, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, c.params(messages))

	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" && onFragment != nil {
				onFragment(choice.Delta.Content)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(acc.Choices) == 0 {
		return "", fmt.Errorf("openai chat: no choices returned")
	}
	return acc.Choices[0].Message.Content, nil
}
