package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// Tavily queries the hosted Tavily search API.
type Tavily struct {
	// Endpoint is the search API URL. Defaults to the hosted endpoint;
	// override it to route through a proxy or a test server.
	Endpoint string

	apiKey string
	limit  int
	client *http.Client
}

// NewTavily creates a Tavily provider.
func NewTavily(apiKey string, limit int) *Tavily {
	return &Tavily{
		Endpoint: tavilyEndpoint,
		apiKey:   apiKey,
		limit:    limit,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *Tavily) Name() string { return "TAVILY" }

type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search runs the query and normalizes up to limit results.
func (t *Tavily) Search(ctx context.Context, query string) ([]Result, error) {
	body, err := json.Marshal(tavilyRequest{
		APIKey:      t.apiKey,
		Query:       query,
		SearchDepth: "advanced",
		MaxResults:  t.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tavily: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tavily: status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}

	results := make([]Result, 0, t.limit)
	for _, r := range parsed.Results {
		if len(results) >= t.limit {
			break
		}
		title := r.Title
		if title == "" {
			if u, err := url.Parse(r.URL); err == nil && u.Host != "" {
				title = u.Host
			} else {
				title = "No title"
			}
		}
		results = append(results, Result{Title: title, URL: r.URL, Snippet: r.Content})
	}
	return results, nil
}
