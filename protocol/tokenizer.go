package protocol

import (
	"encoding/json"
	"strings"
)

// Markers delimiting tool calls in model output, and the markers this
// protocol uses for the results it splices back in.
const (
	CallStart     = "<tool_call>"
	CallEnd       = "</tool_call>"
	ResponseStart = "<tool_response>"
	ResponseEnd   = "</tool_response>"
)

// TokenKind discriminates tokenizer output.
type TokenKind int

const (
	// TokenText is a plain text segment, emitted verbatim.
	TokenText TokenKind = iota

	// TokenCall is a well-formed tool invocation.
	TokenCall

	// TokenMalformed is a tag whose payload did not parse as an invocation.
	// Text carries the payload with the markers already stripped.
	TokenMalformed

	// TokenUnterminated is a start marker with no matching end marker.
	// Text carries everything from the start marker to the end of input,
	// which is left unmodified.
	TokenUnterminated
)

// Token is one unit of scanned model output: either a text segment or a
// (possibly malformed) tool call.
type Token struct {
	Kind       TokenKind
	Text       string
	Invocation *Invocation
}

// Invocation is a parsed tool call from model output.
type Invocation struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Tokenize splits model output into text segments and tool calls. The scan
// position advances monotonically through the input, so tokenization always
// terminates in a single pass regardless of how malformed the markup is.
func Tokenize(text string) []Token {
	var tokens []Token
	pos := 0

	for pos < len(text) {
		rest := text[pos:]

		start := strings.Index(rest, CallStart)
		if start < 0 {
			tokens = append(tokens, Token{Kind: TokenText, Text: rest})
			break
		}
		if start > 0 {
			tokens = append(tokens, Token{Kind: TokenText, Text: rest[:start]})
		}

		payloadStart := start + len(CallStart)
		end := strings.Index(rest[payloadStart:], CallEnd)
		if end < 0 {
			tokens = append(tokens, Token{Kind: TokenUnterminated, Text: rest[start:]})
			break
		}

		payload := rest[payloadStart : payloadStart+end]
		pos += payloadStart + end + len(CallEnd)

		inv, ok := parseInvocation(payload)
		if !ok {
			tokens = append(tokens, Token{Kind: TokenMalformed, Text: payload})
			continue
		}
		tokens = append(tokens, Token{Kind: TokenCall, Invocation: inv})
	}

	return tokens
}

// parseInvocation parses a tag payload. The payload must be a JSON object
// with a non-empty "name" string; "arguments" defaults to an empty map.
func parseInvocation(payload string) (*Invocation, bool) {
	var inv Invocation
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &inv); err != nil {
		return nil, false
	}
	if inv.Name == "" {
		return nil, false
	}
	if inv.Arguments == nil {
		inv.Arguments = map[string]interface{}{}
	}
	return &inv, true
}
