// Package ollama implements the chat model over Ollama's native /api/chat
// endpoint with NDJSON streaming.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bigsk1/ollama-tools/core"
)

// Config holds connection settings for a local or remote Ollama server.
type Config struct {
	URL     string
	Model   string
	Timeout time.Duration
}

// Client talks to one Ollama server with a fixed model.
type Client struct {
	url    string
	model  string
	client *http.Client
}

// New creates an Ollama chat client. Timeout defaults to 120s, which covers
// slow first-token latency when the model has to be loaded from disk.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		url:    strings.TrimSuffix(cfg.URL, "/"),
		model:  cfg.Model,
		client: &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error"`
}

func toWire(messages []core.ChatMessage) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// Chat sends the conversation and returns the complete assistant reply.
func (c *Client) Chat(ctx context.Context, messages []core.ChatMessage) (string, error) {
	resp, err := c.post(ctx, chatRequest{Model: c.model, Messages: toWire(messages), Stream: false})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("ollama chat: decode response: %w", err)
	}
	if cr.Error != "" {
		return "", fmt.Errorf("ollama chat: %s", cr.Error)
	}
	return cr.Message.Content, nil
}

// ChatStream streams the reply as NDJSON lines, invoking onFragment per
// message chunk, and returns the concatenated text.
func (c *Client) ChatStream(ctx context.Context, messages []core.ChatMessage, onFragment func(string)) (string, error) {
	resp, err := c.post(ctx, chatRequest{Model: c.model, Messages: toWire(messages), Stream: true})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var cr chatResponse
		if err := json.Unmarshal(line, &cr); err != nil {
			return "", fmt.Errorf("ollama chat: decode stream line: %w", err)
		}
		if cr.Error != "" {
			return "", fmt.Errorf("ollama chat: %s", cr.Error)
		}
		if cr.Message.Content != "" {
			full.WriteString(cr.Message.Content)
			if onFragment != nil {
				onFragment(cr.Message.Content)
			}
		}
		if cr.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("ollama chat: read stream: %w", err)
	}
	return full.String(), nil
}

func (c *Client) post(ctx context.Context, req chatRequest) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("ollama chat: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama chat: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var cr chatResponse
		if json.NewDecoder(resp.Body).Decode(&cr) == nil && cr.Error != "" {
			return nil, fmt.Errorf("ollama chat: status %d: %s", resp.StatusCode, cr.Error)
		}
		return nil, fmt.Errorf("ollama chat: status %d", resp.StatusCode)
	}
	return resp, nil
}
