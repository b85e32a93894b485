package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fuzzylabs/docstringinator/internal/prompt"
)

const anthropicVersion = "2023-06-01"

type AnthropicGenerator struct {
	client      *http.Client
	apiKey      string
	model       string
	endpoint    string
	temperature float64
	maxTokens   int
}

type anthropicMessagesRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicMessagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func NewAnthropicGenerator(apiKey, model, baseURL string, temperature float64, maxTokens, timeoutSecs int) *AnthropicGenerator {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = "https://api.anthropic.com/v1/messages"
	} else {
		endpoint = strings.TrimRight(endpoint, "/")
		if !strings.HasSuffix(endpoint, "/messages") {
			if strings.HasSuffix(endpoint, "/v1") {
				endpoint += "/messages"
			} else {
				endpoint += "/v1/messages"
			}
		}
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicGenerator{
		client:      &http.Client{Timeout: requestTimeout(timeoutSecs)},
		apiKey:      apiKey,
		model:       model,
		endpoint:    endpoint,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (g *AnthropicGenerator) GenerateDocstring(ctx context.Context, req *prompt.GenerationRequest) (*Response, error) {
	if strings.TrimSpace(g.apiKey) == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	if strings.TrimSpace(g.model) == "" {
		return nil, fmt.Errorf("anthropic model is required")
	}

	reqBody := anthropicMessagesRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-api-key", g.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("anthropic messages request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed anthropicMessagesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("anthropic returned no text content for %s", req.QualifiedName)
	}
	model := parsed.Model
	if model == "" {
		model = g.model
	}
	return &Response{
		Content:      text.String(),
		Model:        model,
		FinishReason: parsed.StopReason,
	}, nil
}
