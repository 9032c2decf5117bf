package summary

import (
	"context"

	"server/internal/domain"
)

// Summarizer compresses full story text into a bounded scene plan.
type Summarizer interface {
	Summarize(ctx context.Context, pages []string, maxScenes int) (domain.StorySummary, error)
}
