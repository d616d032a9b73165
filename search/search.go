// Package search provides web search behind a single Provider interface,
// with SearXNG and Tavily backends selected by configuration.
package search

import (
	"context"
	"fmt"
	"strings"
)

// Result is one normalized search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider performs a web search for a query.
type Provider interface {
	// Name identifies the provider for display and logging.
	Name() string

	// Search returns up to the provider's configured limit of results.
	Search(ctx context.Context, query string) ([]Result, error)
}

// NewProvider selects a provider by name ("SEARXNG" or "TAVILY").
func NewProvider(name, searxngURL, tavilyAPIKey string, limit int) (Provider, error) {
	if limit <= 0 {
		limit = 5
	}
	switch strings.ToUpper(name) {
	case "SEARXNG":
		if searxngURL == "" {
			return nil, fmt.Errorf("search: SEARXNG_URL is required for the SearXNG provider")
		}
		return NewSearXNG(searxngURL, limit), nil
	case "TAVILY":
		if tavilyAPIKey == "" {
			return nil, fmt.Errorf("search: TAVILY_API_KEY is required for the Tavily provider")
		}
		return NewTavily(tavilyAPIKey, limit), nil
	default:
		return nil, fmt.Errorf("search: unknown search provider %q", name)
	}
}
