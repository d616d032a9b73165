package ollama_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bigsk1/ollama-tools/core"
	"github.com/bigsk1/ollama-tools/llm/ollama"
)

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Stream   bool   `json:"stream"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Model != "llama3.1" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Stream {
			t.Error("Chat should not request streaming")
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]string{"role": "assistant", "content": "hello back"},
			"done":    true,
		})
	}))
	defer srv.Close()

	client := ollama.New(ollama.Config{URL: srv.URL, Model: "llama3.1"})
	got, err := client.Chat(context.Background(), []core.ChatMessage{
		core.SystemMessage("be brief"),
		core.UserMessage("hello"),
	})
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if got != "hello back" {
		t.Errorf("Chat() = %q", got)
	}
}

func TestChatStream(t *testing.T) {
	chunks := []string{"Hel", "lo ", "world"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Stream bool `json:"stream"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			t.Error("ChatStream should request streaming")
		}
		for i, chunk := range chunks {
			line := map[string]interface{}{
				"message": map[string]string{"role": "assistant", "content": chunk},
				"done":    i == len(chunks)-1,
			}
			b, _ := json.Marshal(line)
			fmt.Fprintf(w, "%s\n", b)
		}
	}))
	defer srv.Close()

	client := ollama.New(ollama.Config{URL: srv.URL, Model: "m"})

	var fragments []string
	got, err := client.ChatStream(context.Background(), []core.ChatMessage{core.UserMessage("hi")}, func(fragment string) {
		fragments = append(fragments, fragment)
	})
	if err != nil {
		t.Fatalf("ChatStream() error: %v", err)
	}
	if got != "Hello world" {
		t.Errorf("ChatStream() = %q, want Hello world", got)
	}
	if strings.Join(fragments, "") != "Hello world" {
		t.Errorf("fragments = %v", fragments)
	}
}

func TestChat_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "model not loaded"})
	}))
	defer srv.Close()

	client := ollama.New(ollama.Config{URL: srv.URL, Model: "m"})
	_, err := client.Chat(context.Background(), []core.ChatMessage{core.UserMessage("hi")})
	if err == nil {
		t.Fatal("Chat() should fail on a 500")
	}
	if !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("error %v should carry the service message", err)
	}
}

func TestChatStream_InlineError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"error":"out of memory"}`)
	}))
	defer srv.Close()

	client := ollama.New(ollama.Config{URL: srv.URL, Model: "m"})
	_, err := client.ChatStream(context.Background(), []core.ChatMessage{core.UserMessage("hi")}, nil)
	if err == nil || !strings.Contains(err.Error(), "out of memory") {
		t.Errorf("ChatStream() error = %v, want inline stream error", err)
	}
}
