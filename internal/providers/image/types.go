package image

import "context"

// GenerateRequest carries the composed prompt and target dimensions for one
// illustration attempt.
type GenerateRequest struct {
	Prompt string
	Size   string
}

// Generator produces raw raster bytes for a single prompt. Implementations
// may fail per call; the orchestrator logs and skips, never retries.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]byte, error)
}
