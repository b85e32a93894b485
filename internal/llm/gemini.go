package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/fuzzylabs/docstringinator/internal/prompt"
)

// GeminiGenerator implements Generator over the Gemini API.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float64
	maxTokens   int
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string, temperature float64, maxTokens int) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiGenerator{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

func (g *GeminiGenerator) GenerateDocstring(ctx context.Context, req *prompt.GenerationRequest) (*Response, error) {
	if strings.TrimSpace(g.model) == "" {
		return nil, fmt.Errorf("gemini model is required")
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(g.temperature)),
	}
	if g.maxTokens > 0 {
		cfg.MaxOutputTokens = int32(g.maxTokens)
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, err
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini returned no text for %s", req.QualifiedName)
	}
	return &Response{
		Content:      text,
		Model:        g.model,
		FinishReason: "stop",
	}, nil
}
