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

type OllamaGenerator struct {
	client      *http.Client
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func NewOllamaGenerator(model, baseURL string, temperature float64, maxTokens, timeoutSecs int) *OllamaGenerator {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = "http://127.0.0.1:11434"
	}
	return &OllamaGenerator{
		client:      &http.Client{Timeout: requestTimeout(timeoutSecs)},
		model:       model,
		baseURL:     strings.TrimRight(url, "/"),
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Ping checks that the server answers the tags endpoint, so a missing local
// daemon fails fast instead of on the first generation.
func (g *OllamaGenerator) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ollama tags request failed (%d)", resp.StatusCode)
	}
	return nil
}

func (g *OllamaGenerator) GenerateDocstring(ctx context.Context, req *prompt.GenerationRequest) (*Response, error) {
	if strings.TrimSpace(g.model) == "" {
		return nil, fmt.Errorf("ollama model is required")
	}

	reqBody := ollamaGenerateRequest{
		Model:  g.model,
		Prompt: req.Prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: g.temperature,
			NumPredict:  g.maxTokens,
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
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
		return nil, fmt.Errorf("ollama generate request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed ollamaGenerateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	finish := "length"
	if parsed.Done {
		finish = "stop"
	}
	return &Response{
		Content:      parsed.Response,
		Model:        g.model,
		FinishReason: finish,
	}, nil
}
