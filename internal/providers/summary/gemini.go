package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/providers/genai"
)

const (
	pageBreakMarker = "\n\n--- PAGE BREAK ---\n\n"
	fullTextLimit   = 4000
)

// GeminiSummarizer plans scenes with the Gemini text model. When the client
// has no API key it returns an empty plan, which the orchestrator turns into
// a page-per-scene fallback.
type GeminiSummarizer struct {
	client *genai.Client
	logger infra.Logger
}

func NewGeminiSummarizer(client *genai.Client, logger infra.Logger) *GeminiSummarizer {
	return &GeminiSummarizer{client: client, logger: logger}
}

// Summarize asks the model for a JSON scene plan covering the whole document.
// The response shape is repaired defensively: markdown fences are stripped,
// missing fields zeroed, and the scene list capped at maxScenes.
func (s *GeminiSummarizer) Summarize(ctx context.Context, pages []string, maxScenes int) (domain.StorySummary, error) {
	if !s.client.Configured() {
		s.logger.Debug().Msg("summary: gemini not configured, returning empty plan")
		return domain.StorySummary{}, nil
	}

	fullText := trimText(strings.Join(pages, pageBreakMarker), fullTextLimit)

	content, err := s.client.GenerateContent(ctx, buildPlanPrompt(fullText, maxScenes))
	if err != nil {
		return domain.StorySummary{}, fmt.Errorf("summary: %w", err)
	}

	plan, err := decodePlan(content)
	if err != nil {
		return domain.StorySummary{}, fmt.Errorf("summary: %w", err)
	}

	if len(plan.Scenes) > maxScenes {
		plan.Scenes = plan.Scenes[:maxScenes]
	}
	return plan, nil
}

func buildPlanPrompt(fullText string, maxScenes int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Story text (may be multiple pages):\n\n%s\n\n", fullText)
	b.WriteString("Please respond ONLY with JSON using this schema:\n")
	b.WriteString("{\n")
	b.WriteString("  \"characters\": [\"character 1 description\", \"character 2 description\"],\n")
	b.WriteString("  \"setting\": \"short 1-2 sentence describing where the story mostly happens\",\n")
	b.WriteString("  \"scenes\": [\n")
	b.WriteString("    {\n")
	b.WriteString("      \"id\": 1,\n")
	b.WriteString("      \"page_hint\": 1,\n")
	b.WriteString("      \"summary\": \"1-3 sentences describing what should be in the illustration (make it child-friendly and non-violent)\"\n")
	b.WriteString("    }\n")
	fmt.Fprintf(&b, "    ... up to %d scenes total\n", maxScenes)
	b.WriteString("  ]\n")
	b.WriteString("}\n")
	b.WriteString("IMPORTANT: Make all scene summaries child-friendly and positive. Avoid describing violence, danger, or scary moments. ")
	b.WriteString("Instead, describe the emotional/narrative moment in a gentle way suitable for children's picture books.\n")
	b.WriteString("Use page_hint as an approximate page number (starting at 1) if obvious; otherwise just start from 1 and increment.")
	return b.String()
}

func decodePlan(content string) (domain.StorySummary, error) {
	cleaned := stripCodeFences(content)

	var plan domain.StorySummary
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return domain.StorySummary{}, fmt.Errorf("decode plan: %w", err)
	}
	if plan.Characters == nil {
		plan.Characters = []string{}
	}
	return plan, nil
}

// stripCodeFences removes a surrounding markdown code block, which the model
// emits despite the JSON-only instruction.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// trimText collapses whitespace runs and truncates to limit runes.
func trimText(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
