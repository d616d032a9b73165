// Package protocol extracts tool calls embedded as markup in model output,
// executes them, and splices the results back into the text.
//
// The grammar is a flat sequence of text segments and
// <tool_call>{"name": ..., "arguments": {...}}</tool_call> tags. Calls are
// executed synchronously in left-to-right textual order so results read in
// the order the model produced them. Malformed markup never aborts a
// response and never loops: the tokenizer makes one bounded pass, and every
// token maps to a fixed output.
package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/bigsk1/ollama-tools/core"
)

// Registry resolves tool names to tools. *tools.Registry satisfies this.
type Registry interface {
	Get(name string) (core.Tool, bool)
}

// Protocol rewrites model output by executing embedded tool calls.
type Protocol struct {
	registry Registry
}

// New creates a Protocol over the given registry.
func New(registry Registry) *Protocol {
	return &Protocol{registry: registry}
}

// Process scans the complete response text, executes each well-formed tool
// call in order, and returns the text with every tag span replaced by a
// result block. Processing never fails:
//
//   - malformed payload: markers are stripped, payload text is kept
//   - unterminated tag: scan stops, the tail is left unmodified
//   - unknown tool: a failure result is inlined without invoking anything
//   - tool error or panic: caught and inlined, the scan continues
func (p *Protocol) Process(ctx context.Context, text string) string {
	tokens := Tokenize(text)

	var out strings.Builder
	out.Grow(len(text))

	for _, tok := range tokens {
		switch tok.Kind {
		case TokenText, TokenUnterminated:
			out.WriteString(tok.Text)

		case TokenMalformed:
			log.Printf("[PROTOCOL] Malformed tool call payload, stripping markers")
			out.WriteString(tok.Text)

		case TokenCall:
			result := p.execute(ctx, tok.Invocation)
			out.WriteString(formatResult(result))
		}
	}

	return out.String()
}

// Invocations returns the well-formed tool calls in the text, in textual
// order, without executing anything.
func Invocations(text string) []Invocation {
	var invs []Invocation
	for _, tok := range Tokenize(text) {
		if tok.Kind == TokenCall {
			invs = append(invs, *tok.Invocation)
		}
	}
	return invs
}

// execute resolves and runs one invocation. This is the boundary where tool
// failures of every kind become a ToolResult instead of an escaping error.
func (p *Protocol) execute(ctx context.Context, inv *Invocation) (result *core.ToolResult) {
	tool, ok := p.registry.Get(inv.Name)
	if !ok {
		log.Printf("[PROTOCOL] Unknown tool %q", inv.Name)
		return core.Fail(fmt.Sprintf("Tool %q not found", inv.Name))
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PROTOCOL] Tool %q panicked: %v", inv.Name, r)
			result = core.Fail(fmt.Sprintf("tool %s: %v", inv.Name, r))
		}
	}()

	log.Printf("[PROTOCOL] Executing tool %q", inv.Name)
	res, err := tool.Execute(ctx, inv.Arguments)
	if err != nil {
		return core.Fail(err.Error())
	}
	if res == nil {
		return core.Fail(fmt.Sprintf("tool %s returned no result", inv.Name))
	}
	return res
}

// formatResult renders a result block in the tool return contract:
// {"success": true, ...payload} or {"success": false, "error": ...}.
func formatResult(result *core.ToolResult) string {
	payload := map[string]interface{}{"success": result.Success}
	if result.Success {
		for k, v := range result.Data {
			if k != "success" {
				payload[k] = v
			}
		}
	} else {
		payload["error"] = result.Error
	}

	body, err := json.Marshal(payload)
	if err != nil {
		body = []byte(fmt.Sprintf(`{"success":false,"error":%q}`, err.Error()))
	}

	return ResponseStart + "\n" + string(body) + "\n" + ResponseEnd
}
