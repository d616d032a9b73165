package tools

import (
	"context"
	"fmt"
	"log"

	"github.com/bigsk1/ollama-tools/core"
	"github.com/bigsk1/ollama-tools/search"
)

// SearchTool wraps a search.Provider as the "search" tool.
func SearchTool(provider search.Provider) core.Tool {
	return NewTool(core.ToolDefinition{
		Name:        "search",
		Description: fmt.Sprintf("Perform a web search using the %s search provider.", provider.Name()),
		InputSchema: ObjectSchema(map[string]interface{}{
			"query": StringProperty("The search query"),
		}, "query"),
	}, func(ctx context.Context, args map[string]interface{}) (*core.ToolResult, error) {
		query, err := stringArg(args, "query")
		if err != nil {
			return core.Fail(err.Error()), nil
		}

		log.Printf("[TOOLS] Searching via %s: %q", provider.Name(), query)
		results, err := provider.Search(ctx, query)
		if err != nil {
			return core.Fail(err.Error()), nil
		}

		// []search.Result marshals to the {title, url, snippet} shape the
		// model is prompted to expect.
		items := make([]interface{}, len(results))
		for i, r := range results {
			items[i] = map[string]interface{}{
				"title":   r.Title,
				"url":     r.URL,
				"snippet": r.Snippet,
			}
		}
		return core.Succeed(map[string]interface{}{
			"results": items,
		}), nil
	})
}
