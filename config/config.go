// Package config loads the assistant configuration from the environment,
// optionally seeded from a .env file in the working directory.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the assistant needs at startup. All fields are
// sourced from environment variables with sensible local defaults.
type Config struct {
	// Model backend selection: "ollama", "anthropic", or "openai".
	Backend string

	// Ollama chat + embedding service.
	OllamaURL   string
	OllamaModel string
	EmbedModel  string

	// Anthropic backend.
	AnthropicAPIKey string
	AnthropicModel  string

	// OpenAI-compatible backend. BaseURL may point at any compatible
	// endpoint, including Ollama's /v1 surface.
	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string

	// Vector memory.
	DBDir               string
	NContexts           int
	SimilarityThreshold float64
	HistoryWindow       int

	// Web search tool.
	SearchProvider     string
	SearXNGURL         string
	TavilyAPIKey       string
	SearchResultsLimit int

	Debug bool
}

// Load reads a .env file if present and returns the resolved configuration.
// Missing variables fall back to defaults suitable for a local Ollama setup.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Backend:             getenv("LLM_BACKEND", "ollama"),
		OllamaURL:           getenv("OLLAMA_URL", "http://127.0.0.1:11434"),
		OllamaModel:         getenv("OLLAMA_MODEL", "llama3.1"),
		EmbedModel:          getenv("EMBED_MODEL", "nomic-embed-text"),
		AnthropicAPIKey:     os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:      getenv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		OpenAIBaseURL:       os.Getenv("OPENAI_BASE_URL"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         getenv("OPENAI_MODEL", "gpt-4o-mini"),
		DBDir:               getenv("DB_DIR", "./chromadb"),
		NContexts:           getint("N_CONTEXTS", 3),
		SimilarityThreshold: getfloat("SIMILARITY_THRESHOLD", 0.7),
		HistoryWindow:       getint("HISTORY_WINDOW", 10),
		SearchProvider:      getenv("SEARCH_PROVIDER", "SEARXNG"),
		SearXNGURL:          os.Getenv("SEARXNG_URL"),
		TavilyAPIKey:        os.Getenv("TAVILY_API_KEY"),
		SearchResultsLimit:  getint("SEARCH_RESULTS_LIMIT", 5),
		Debug:               getbool("DEBUG_MODE", false),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getfloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getbool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
