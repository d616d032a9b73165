package memory

import (
	"encoding/json"
	"fmt"
)

// document is the persisted JSON payload of a Record. The record id is
// embedded in the document itself so a candidate remains identifiable even
// when store metadata is missing.
type document struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
	ID       string `json:"id"`
}

// Document serializes the record payload for storage.
func (r *Record) Document() (string, error) {
	b, err := json.Marshal(document{Prompt: r.Prompt, Response: r.Response, ID: r.ID})
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	return string(b), nil
}

// DecodeDocument parses a stored document back into its prompt, response,
// and embedded id.
func DecodeDocument(doc string) (prompt, response, id string, err error) {
	var d document
	if err := json.Unmarshal([]byte(doc), &d); err != nil {
		return "", "", "", fmt.Errorf("unmarshal document: %w", err)
	}
	return d.Prompt, d.Response, d.ID, nil
}
