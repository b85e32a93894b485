// Package llm hosts the model backends that turn generation requests into
// raw docstring text. Output is passed on unmodified; cleanup is the
// normalizer's job.
package llm

import (
	"context"

	"github.com/fuzzylabs/docstringinator/internal/prompt"
)

// Generator produces docstring text for a single declaration.
type Generator interface {
	GenerateDocstring(ctx context.Context, req *prompt.GenerationRequest) (*Response, error)
}

// Response carries the model output before normalization.
type Response struct {
	Content      string
	Model        string
	FinishReason string
}
