package tools

import (
	"context"
	"fmt"

	"github.com/bigsk1/ollama-tools/core"
)

// funcTool pairs a static definition with a function reference. All built-in
// tools are declared this way so the registry holds a closed, enumerable set
// with no dynamic dispatch.
type funcTool struct {
	def core.ToolDefinition
	run func(ctx context.Context, args map[string]interface{}) (*core.ToolResult, error)
}

// NewTool builds a tool from a definition and a function.
func NewTool(def core.ToolDefinition, run func(ctx context.Context, args map[string]interface{}) (*core.ToolResult, error)) core.Tool {
	return &funcTool{def: def, run: run}
}

func (t *funcTool) Definition() core.ToolDefinition {
	return t.def
}

func (t *funcTool) Execute(ctx context.Context, args map[string]interface{}) (*core.ToolResult, error) {
	return t.run(ctx, args)
}

// stringArg extracts a required string argument.
func stringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return s, nil
}

// optStringArg extracts an optional string argument with a fallback.
func optStringArg(args map[string]interface{}, key, fallback string) string {
	if s, ok := args[key].(string); ok && s != "" {
		return s
	}
	return fallback
}
