// Package server exposes the assistant over a websocket gateway. Each
// connection is an independent exchange stream: the client sends prompt
// frames, the server streams raw model fragments followed by the processed
// final response.
package server

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Conversationalist is the surface the gateway needs from the assistant.
type Conversationalist interface {
	ConverseStream(ctx context.Context, prompt string, onFragment func(string)) (string, error)
}

// ClientFrame is a message from the client.
type ClientFrame struct {
	Prompt string `json:"prompt"`
}

// ServerFrame is a message to the client. Type is "fragment" while the model
// is streaming, "final" with the processed response, or "error".
type ServerFrame struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Handler serves websocket conversations.
type Handler struct {
	assistant Conversationalist
	upgrader  websocket.Upgrader
}

// NewHandler creates a websocket handler over the given assistant.
func NewHandler(assistant Conversationalist) *Handler {
	return &Handler{
		assistant: assistant,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// ServeHTTP upgrades the connection and runs the exchange loop until the
// client disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[SERVER] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[SERVER] Client connected: %s", r.RemoteAddr)

	// Writes come from both the fragment callback and the loop itself.
	var writeMu sync.Mutex
	send := func(frame ServerFrame) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(frame)
	}

	for {
		var frame ClientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[SERVER] Read failed: %v", err)
			}
			return
		}
		if frame.Prompt == "" {
			if err := send(ServerFrame{Type: "error", Text: "empty prompt"}); err != nil {
				return
			}
			continue
		}

		response, err := h.assistant.ConverseStream(r.Context(), frame.Prompt, func(fragment string) {
			// Best effort; a failed fragment write surfaces on the next read.
			_ = send(ServerFrame{Type: "fragment", Text: fragment})
		})
		if err != nil {
			if sendErr := send(ServerFrame{Type: "error", Text: err.Error()}); sendErr != nil {
				return
			}
			continue
		}
		if err := send(ServerFrame{Type: "final", Text: response}); err != nil {
			return
		}
	}
}
