// Command assistant runs the interactive terminal chat loop: a local Ollama
// model (or a hosted backend) with tool calling and long-term conversation
// memory.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/bigsk1/ollama-tools/agent"
	"github.com/bigsk1/ollama-tools/config"
	"github.com/bigsk1/ollama-tools/llm"
	llmanthropic "github.com/bigsk1/ollama-tools/llm/anthropic"
	llmollama "github.com/bigsk1/ollama-tools/llm/ollama"
	llmopenai "github.com/bigsk1/ollama-tools/llm/openai"
	"github.com/bigsk1/ollama-tools/memory"
	embollama "github.com/bigsk1/ollama-tools/memory/embedder/ollama"
	"github.com/bigsk1/ollama-tools/memory/store/chromem"
	"github.com/bigsk1/ollama-tools/search"
	"github.com/bigsk1/ollama-tools/tools"
)

func main() {
	cfg := config.Load()

	// ============================================================================
	// MEMORY SYSTEM SETUP
	// ============================================================================
	embedder, err := embollama.New(embollama.Config{
		URL:   cfg.OllamaURL,
		Model: cfg.EmbedModel,
	})
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}

	store, err := chromem.New(cfg.DBDir)
	if err != nil {
		log.Fatalf("Failed to open vector store at %s: %v", cfg.DBDir, err)
	}

	manager := memory.NewManager(store, embedder, &memory.Config{
		NContexts:           cfg.NContexts,
		SimilarityThreshold: cfg.SimilarityThreshold,
	})

	// ============================================================================
	// TOOLS
	// ============================================================================
	toolset := tools.FileTools()
	provider, err := search.NewProvider(cfg.SearchProvider, cfg.SearXNGURL, cfg.TavilyAPIKey, cfg.SearchResultsLimit)
	if err != nil {
		log.Printf("[MAIN] Search disabled: %v", err)
	} else {
		toolset = append(toolset, tools.SearchTool(provider))
	}

	registry, err := tools.NewRegistry(toolset...)
	if err != nil {
		log.Fatalf("Failed to build tool registry: %v", err)
	}

	// ============================================================================
	// MODEL BACKEND
	// ============================================================================
	model, modelName, err := newModel(cfg)
	if err != nil {
		log.Fatal(err)
	}

	assistant := agent.New(model, registry,
		agent.WithMemory(manager),
		agent.WithHistoryWindow(cfg.HistoryWindow),
	)

	// ============================================================================
	// CHAT LOOP
	// ============================================================================
	if !cfg.Debug {
		// Keep the chat clean; DEBUG_MODE=true restores the internal log stream.
		log.SetOutput(io.Discard)
	}

	var shouldExit atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		shouldExit.Store(true)
		fmt.Println("\nGracefully shutting down...")
	}()

	fmt.Println("Welcome to the Ollama AI Assistant!")
	fmt.Printf("Using model: %s\n", modelName)
	fmt.Println("Type 'exit', 'quit', or 'bye' to end the conversation.")

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for !shouldExit.Load() {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "exit", "quit", "bye":
			fmt.Println("Goodbye!")
			return
		}

		fmt.Print("\nAI Assistant:\n")
		var streamed strings.Builder
		response, err := assistant.ConverseStream(ctx, input, func(fragment string) {
			streamed.WriteString(fragment)
			fmt.Print(fragment)
		})
		if err != nil {
			fmt.Printf("\nError: %v\n", err)
			continue
		}
		fmt.Println()
		// Tool calls are resolved only on the complete text; when they rewrote
		// the streamed output, show the final version.
		if response != streamed.String() {
			fmt.Printf("\n%s\n", response)
		}
	}
	fmt.Println("Goodbye!")
}

// newModel selects the chat backend from config.
func newModel(cfg *config.Config) (llm.ChatModel, string, error) {
	switch strings.ToUpper(cfg.Backend) {
	case "", "OLLAMA":
		return llmollama.New(llmollama.Config{
			URL:   cfg.OllamaURL,
			Model: cfg.OllamaModel,
		}), cfg.OllamaModel, nil
	case "ANTHROPIC":
		if cfg.AnthropicAPIKey == "" {
			return nil, "", fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic backend")
		}
		return llmanthropic.New(llmanthropic.Config{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.AnthropicModel,
		}), cfg.AnthropicModel, nil
	case "OPENAI":
		if cfg.OpenAIAPIKey == "" {
			return nil, "", fmt.Errorf("OPENAI_API_KEY is required for the openai backend")
		}
		return llmopenai.New(llmopenai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}), cfg.OpenAIModel, nil
	default:
		return nil, "", fmt.Errorf("unknown backend %q (want OLLAMA, ANTHROPIC, or OPENAI)", cfg.Backend)
	}
}
