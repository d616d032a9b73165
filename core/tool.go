package core

import "context"

// ToolDefinition describes a tool to the model: a name, a human-readable
// description, and a JSON Schema for its arguments. Definitions are static,
// declared at startup, and never change afterwards.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"parameters"`
}

// ToolResult is the outcome of a single tool execution. Tools either succeed
// with a data payload or fail with an error message; they never both.
type ToolResult struct {
	Success bool
	Data    map[string]interface{}
	Error   string
}

// Tool is a named callable the model can invoke by embedding a tool-call tag
// in its output. Implementations may perform I/O (filesystem, network) but
// must report failures through the ToolResult contract rather than panicking.
type Tool interface {
	// Definition returns the static definition advertised to the model.
	Definition() ToolDefinition

	// Execute runs the tool with arguments parsed from the model's tool-call
	// payload. A returned error is equivalent to a failed ToolResult.
	Execute(ctx context.Context, args map[string]interface{}) (*ToolResult, error)
}

// Succeed builds a successful ToolResult with the given payload fields.
func Succeed(data map[string]interface{}) *ToolResult {
	return &ToolResult{Success: true, Data: data}
}

// Fail builds a failed ToolResult with the given error message.
func Fail(msg string) *ToolResult {
	return &ToolResult{Success: false, Error: msg}
}
