package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// SearXNG queries a local SearXNG instance's JSON API.
type SearXNG struct {
	url    string
	limit  int
	client *http.Client
}

// NewSearXNG creates a SearXNG provider against the given search URL.
func NewSearXNG(searchURL string, limit int) *SearXNG {
	return &SearXNG{
		url:    searchURL,
		limit:  limit,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SearXNG) Name() string { return "SEARXNG" }

type searxngResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search runs the query and normalizes up to limit results.
func (s *SearXNG) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("searxng: create request: %w", err)
	}
	req.Header.Set("User-Agent", "OllamaAssistant/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searxng: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("searxng: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("searxng: decode response: %w", err)
	}

	results := make([]Result, 0, s.limit)
	for _, r := range parsed.Results {
		if len(results) >= s.limit {
			break
		}
		snippet := r.Content
		if snippet == "" {
			snippet = "No snippet available"
		}
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: snippet})
	}
	return results, nil
}
