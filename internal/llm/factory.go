package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/fuzzylabs/docstringinator/internal/config"
)

// NewGenerator builds the backend named by the configuration. The ollama
// backend is probed immediately so connection problems surface before any
// file is touched.
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	switch provider {
	case "openai":
		return NewOpenAIGenerator(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.Temperature, cfg.LLM.MaxTokens, cfg.LLM.TimeoutSecs), nil
	case "anthropic":
		return NewAnthropicGenerator(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.Temperature, cfg.LLM.MaxTokens, cfg.LLM.TimeoutSecs), nil
	case "gemini":
		return NewGeminiGenerator(ctx, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.MaxTokens)
	case "ollama":
		gen := NewOllamaGenerator(cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.Temperature, cfg.LLM.MaxTokens, cfg.LLM.TimeoutSecs)
		if err := gen.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ollama is not reachable at %s: %w", gen.baseURL, err)
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLM.Provider)
	}
}
