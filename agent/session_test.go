package agent_test

import (
	"fmt"
	"testing"

	"github.com/bigsk1/ollama-tools/agent"
	"github.com/bigsk1/ollama-tools/core"
)

func TestSession_AppendAndTrim(t *testing.T) {
	s := agent.NewSession(4)

	for i := 0; i < 5; i++ {
		s.AppendExchange(fmt.Sprintf("prompt %d", i), fmt.Sprintf("response %d", i))
	}

	turns := s.Turns()
	if len(turns) != 4 {
		t.Fatalf("history length = %d, want 4", len(turns))
	}

	// Oldest exchanges dropped first: only exchanges 3 and 4 remain.
	if turns[0].Content != "prompt 3" || turns[3].Content != "response 4" {
		t.Errorf("unexpected window contents: %v", turns)
	}
}

func TestSession_ExchangePairsSurviveTrims(t *testing.T) {
	s := agent.NewSession(6)

	for i := 0; i < 20; i++ {
		s.AppendExchange("p", "r")

		turns := s.Turns()
		if len(turns)%2 != 0 {
			t.Fatalf("odd history length %d after exchange %d", len(turns), i)
		}
		for j, msg := range turns {
			wantRole := core.RoleUser
			if j%2 == 1 {
				wantRole = core.RoleAssistant
			}
			if msg.Role != wantRole {
				t.Fatalf("turns[%d].Role = %q, want %q", j, msg.Role, wantRole)
			}
		}
	}
}

func TestNewSession_NormalizesWindow(t *testing.T) {
	// An odd window is rounded down so trims land on exchange boundaries.
	s := agent.NewSession(5)
	for i := 0; i < 10; i++ {
		s.AppendExchange("p", "r")
	}
	if got := s.Len(); got != 4 {
		t.Errorf("history length = %d, want 4", got)
	}

	// Degenerate windows fall back to the default.
	s = agent.NewSession(0)
	for i := 0; i < 10; i++ {
		s.AppendExchange("p", "r")
	}
	if got := s.Len(); got != agent.DefaultHistoryWindow {
		t.Errorf("history length = %d, want %d", got, agent.DefaultHistoryWindow)
	}
}

func TestSession_TurnsReturnsCopy(t *testing.T) {
	s := agent.NewSession(4)
	s.AppendExchange("p", "r")

	turns := s.Turns()
	turns[0].Content = "mutated"

	if s.Turns()[0].Content != "p" {
		t.Error("mutating the returned slice changed session state")
	}
}

func TestSession_Reset(t *testing.T) {
	s := agent.NewSession(4)
	id := s.ID()
	s.AppendExchange("p", "r")

	s.Reset()
	if s.Len() != 0 {
		t.Errorf("history length after Reset = %d, want 0", s.Len())
	}
	if s.ID() != id {
		t.Error("Reset changed the session id")
	}
}
