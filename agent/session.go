package agent

import (
	"github.com/bigsk1/ollama-tools/core"
	"github.com/google/uuid"
)

// Session holds the rolling short-term history of one conversation. History
// is kept in user/assistant pairs and trimmed oldest-first once it exceeds
// the window, so a partial exchange can never survive a trim.
type Session struct {
	id     string
	window int
	turns  []core.ChatMessage
}

// DefaultHistoryWindow is the message count kept when no window is given.
const DefaultHistoryWindow = 10

// NewSession creates a session with the given history window. The window is
// normalized to an even count of at least two so trims always land on an
// exchange boundary.
func NewSession(window int) *Session {
	if window < 2 {
		window = DefaultHistoryWindow
	}
	if window%2 != 0 {
		window--
	}
	return &Session{
		id:     uuid.New().String(),
		window: window,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// AppendExchange records one completed user/assistant exchange and trims
// the oldest exchanges past the window.
func (s *Session) AppendExchange(prompt, response string) {
	s.turns = append(s.turns, core.UserMessage(prompt), core.AssistantMessage(response))
	if len(s.turns) > s.window {
		s.turns = s.turns[len(s.turns)-s.window:]
	}
}

// Turns returns a copy of the current history, oldest first.
func (s *Session) Turns() []core.ChatMessage {
	out := make([]core.ChatMessage, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of messages currently held.
func (s *Session) Len() int {
	return len(s.turns)
}

// Reset discards all history but keeps the session identity.
func (s *Session) Reset() {
	s.turns = nil
}
