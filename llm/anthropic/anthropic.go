// Package anthropic implements the chat model over the Anthropic Messages
// API. System-role messages are lifted into the request's System field.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/bigsk1/ollama-tools/core"
)

// Config holds Anthropic API settings.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int64
}

// Client wraps the Anthropic SDK client with a fixed model.
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// New creates an Anthropic chat client.
func New(cfg Config) *Client {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Client{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

func (c *Client) params(messages []core.ChatMessage) anthropic.MessageNewParams {
	var system string
	apiMessages := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
		case core.RoleAssistant:
			apiMessages = append(apiMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			apiMessages = append(apiMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  apiMessages,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params
}

// Chat returns the complete assistant reply.
func (c *Client) Chat(ctx context.Context, messages []core.ChatMessage) (string, error) {
	resp, err := c.client.Messages.New(ctx, c.params(messages))
	if err != nil {
		return "", fmt.Errorf("anthropic chat: %w", err)
	}
	return messageText(resp), nil
}

// ChatStream streams the reply, invoking onFragment per text delta.
func (c *Client) ChatStream(ctx context.Context, messages []core.ChatMessage, onFragment func(string)) (string, error) {
	stream := c.client.Messages.NewStreaming(ctx, c.params(messages))
	defer stream.Close()

	message := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			continue
		}
		switch evt := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := evt.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if onFragment != nil {
					onFragment(delta.Text)
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("anthropic chat: %w", err)
	}
	return messageText(&message), nil
}

func messageText(resp *anthropic.Message) string {
	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text
}
