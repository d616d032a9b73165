// Package tools provides the closed tool registry and the built-in tools the
// assistant ships with: filesystem operations and web search.
package tools

import (
	"fmt"

	"github.com/bigsk1/ollama-tools/core"
)

// Registry is a closed, immutable mapping from tool name to tool. The full
// set is declared and validated at construction; nothing can be added or
// replaced afterwards, and dispatch is a plain map lookup.
type Registry struct {
	order []string
	tools map[string]core.Tool
}

// NewRegistry validates and indexes the given tools. Every tool must have a
// non-empty unique name and an object input schema.
func NewRegistry(tools ...core.Tool) (*Registry, error) {
	r := &Registry{
		order: make([]string, 0, len(tools)),
		tools: make(map[string]core.Tool, len(tools)),
	}

	for _, tool := range tools {
		def := tool.Definition()
		if def.Name == "" {
			return nil, fmt.Errorf("registry: tool with empty name")
		}
		if _, exists := r.tools[def.Name]; exists {
			return nil, fmt.Errorf("registry: duplicate tool %q", def.Name)
		}
		if def.InputSchema == nil {
			return nil, fmt.Errorf("registry: tool %q has no input schema", def.Name)
		}
		if t, _ := def.InputSchema["type"].(string); t != "object" {
			return nil, fmt.Errorf("registry: tool %q schema must be an object schema", def.Name)
		}

		r.order = append(r.order, def.Name)
		r.tools[def.Name] = tool
	}

	return r, nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (core.Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Definitions returns all tool definitions in registration order.
func (r *Registry) Definitions() []core.ToolDefinition {
	defs := make([]core.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}
