package story

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/providers/image"
)

type stubExtractor struct {
	pages []string
	err   error
}

func (s stubExtractor) Pages(context.Context, []byte) ([]string, error) {
	return s.pages, s.err
}

type stubSummarizer struct {
	plan domain.StorySummary
	err  error
}

func (s stubSummarizer) Summarize(context.Context, []string, int) (domain.StorySummary, error) {
	return s.plan, s.err
}

// scriptedGenerator fails the attempts whose 1-based call number is listed
// and records every prompt it saw.
type scriptedGenerator struct {
	failOn  map[int]bool
	calls   int
	prompts []string
}

func (g *scriptedGenerator) Generate(_ context.Context, req image.GenerateRequest) ([]byte, error) {
	g.calls++
	g.prompts = append(g.prompts, req.Prompt)
	if g.failOn[g.calls] {
		return nil, fmt.Errorf("content filter rejected attempt %d", g.calls)
	}
	return []byte("png-bytes"), nil
}

type memorySink struct {
	messages []string
}

func (m *memorySink) AppendProgress(_, message string) {
	m.messages = append(m.messages, message)
}

func (m *memorySink) count(prefix string) int {
	n := 0
	for _, msg := range m.messages {
		if strings.HasPrefix(msg, prefix) {
			n++
		}
	}
	return n
}

func newTestOrchestrator(ex PageExtractor, su stubSummarizer, gen *scriptedGenerator, sink ProgressSink) *Orchestrator {
	logger := infra.Logger(zerolog.New(io.Discard))
	return NewOrchestrator(ex, su, gen, nil, sink, testDefaults, logger)
}

func TestRunFallbackScenesFromPages(t *testing.T) {
	gen := &scriptedGenerator{}
	sink := &memorySink{}
	o := newTestOrchestrator(
		stubExtractor{pages: []string{"  The fox wakes up.  ", "", "The fox sleeps."}},
		stubSummarizer{},
		gen,
		sink,
	)

	result, err := o.Run(context.Background(), []byte("doc"), Options{MaxPages: 5, Size: "1024x1024"}, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// min(maxPages, pageCount) fallback scenes, one per page.
	if result.Count != 3 || len(result.Images) != 3 {
		t.Fatalf("count = %d, images = %d, want 3", result.Count, len(result.Images))
	}
	if !strings.Contains(gen.prompts[0], "The fox wakes up.") {
		t.Fatalf("first prompt missing trimmed page text:\n%s", gen.prompts[0])
	}
	if !strings.Contains(gen.prompts[1], fallbackSceneText) {
		t.Fatalf("blank page must use the placeholder scene:\n%s", gen.prompts[1])
	}
}

func TestRunFallbackHonorsCap(t *testing.T) {
	gen := &scriptedGenerator{}
	o := newTestOrchestrator(
		stubExtractor{pages: []string{"one", "two", "three", "four", "five"}},
		stubSummarizer{},
		gen,
		&memorySink{},
	)

	result, err := o.Run(context.Background(), []byte("doc"), Options{MaxPages: 2, Size: "1024x1024"}, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Count != 2 || gen.calls != 2 {
		t.Fatalf("count = %d, calls = %d, want 2/2", result.Count, gen.calls)
	}
}

func TestRunSequentialOutputPages(t *testing.T) {
	plan := domain.StorySummary{
		Characters: []string{"a red-hooded girl"},
		Setting:    "a forest path",
		Scenes: []domain.Scene{
			{ID: 1, PageHint: 1, Summary: "The girl sets out with a basket."},
			{ID: 2, PageHint: 1, Summary: "She meets a stranger on the path."},
			{ID: 3, PageHint: 2, Summary: "She picks wildflowers."},
			{ID: 4, PageHint: 3, Summary: "She arrives at the cottage."},
		},
	}
	gen := &scriptedGenerator{failOn: map[int]bool{1: true, 3: true}}
	sink := &memorySink{}
	o := newTestOrchestrator(
		stubExtractor{pages: []string{"p1", "p2", "p3"}},
		stubSummarizer{plan: plan},
		gen,
		sink,
	)

	result, err := o.Run(context.Background(), []byte("doc"), Options{MaxPages: 2, Size: "1024x1024"}, "job-1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Count != 2 {
		t.Fatalf("count = %d, want 2", result.Count)
	}
	// Output page numbers reflect success order, not scene position.
	if result.Images[0].Page != 1 || result.Images[1].Page != 2 {
		t.Fatalf("pages = %d,%d want 1,2", result.Images[0].Page, result.Images[1].Page)
	}
	if !strings.Contains(result.Images[0].Prompt, "She meets a stranger") {
		t.Fatalf("first image should come from scene 2:\n%s", result.Images[0].Prompt)
	}
	if !strings.Contains(result.Images[1].Prompt, "She arrives at the cottage") {
		t.Fatalf("second image should come from scene 4:\n%s", result.Images[1].Prompt)
	}

	if got := sink.count("Failed to generate image from scene"); got != 2 {
		t.Fatalf("failure messages = %d, want 2", got)
	}
	if got := sink.count("Scene text: "); got != 2 {
		t.Fatalf("scene text messages = %d, want one per failure", got)
	}
	if got := sink.count("Generated image "); got != 2 {
		t.Fatalf("success messages = %d, want 2", got)
	}

	if result.Summary.Setting != "a forest path" || len(result.Summary.Characters) != 1 {
		t.Fatalf("summary = %+v", result.Summary)
	}
}

func TestRunGenerationExhausted(t *testing.T) {
	gen := &scriptedGenerator{failOn: map[int]bool{1: true, 2: true}}
	o := newTestOrchestrator(
		stubExtractor{pages: []string{"p1", "p2"}},
		stubSummarizer{},
		gen,
		&memorySink{},
	)

	_, err := o.Run(context.Background(), []byte("doc"), Options{MaxPages: 2, Size: "1024x1024"}, "")
	var exhausted *domain.GenerationExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %v, want GenerationExhaustedError", err)
	}
	if !strings.Contains(exhausted.Error(), "attempt 2") {
		t.Fatalf("exhaustion error should carry the last failure: %v", exhausted)
	}
}

func TestRunNoExtractableText(t *testing.T) {
	o := newTestOrchestrator(stubExtractor{pages: nil}, stubSummarizer{}, &scriptedGenerator{}, &memorySink{})

	_, err := o.Run(context.Background(), []byte("doc"), Options{MaxPages: 2, Size: "1024x1024"}, "")
	if !errors.Is(err, domain.ErrNoExtractableText) {
		t.Fatalf("error = %v, want ErrNoExtractableText", err)
	}
}

func TestRunAllBlankPagesFallback(t *testing.T) {
	// A scanned or image-only PDF yields blank pages; the pipeline still
	// illustrates it with placeholder scenes instead of rejecting it.
	gen := &scriptedGenerator{}
	o := newTestOrchestrator(stubExtractor{pages: []string{"", "   ", "\n"}}, stubSummarizer{}, gen, &memorySink{})

	result, err := o.Run(context.Background(), []byte("doc"), Options{MaxPages: 2, Size: "1024x1024"}, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("count = %d, want 2 placeholder-backed images", result.Count)
	}
	for i, prompt := range gen.prompts {
		if !strings.Contains(prompt, fallbackSceneText) {
			t.Errorf("prompt %d missing the placeholder scene:\n%s", i, prompt)
		}
	}
}

func TestRunSummarizerErrorFallsBack(t *testing.T) {
	gen := &scriptedGenerator{}
	o := newTestOrchestrator(
		stubExtractor{pages: []string{"a quiet morning"}},
		stubSummarizer{err: errors.New("model timeout")},
		gen,
		&memorySink{},
	)

	result, err := o.Run(context.Background(), []byte("doc"), Options{MaxPages: 3, Size: "1024x1024"}, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("count = %d, want 1 fallback image", result.Count)
	}
}

func TestRunShortfallLogged(t *testing.T) {
	plan := domain.StorySummary{Scenes: []domain.Scene{
		{ID: 1, Summary: "only scene"},
	}}
	sink := &memorySink{}
	o := newTestOrchestrator(
		stubExtractor{pages: []string{"p1", "p2", "p3"}},
		stubSummarizer{plan: plan},
		&scriptedGenerator{},
		sink,
	)

	result, err := o.Run(context.Background(), []byte("doc"), Options{MaxPages: 3, Size: "1024x1024"}, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("count = %d, want 1", result.Count)
	}
	if sink.count("Generated 1/3 images") != 1 {
		t.Fatalf("missing shortfall message in %v", sink.messages)
	}
}

func TestRunKidStyleFromReaderAge(t *testing.T) {
	age := 8
	gen := &scriptedGenerator{}
	o := NewOrchestrator(
		stubExtractor{pages: []string{"a quiet morning"}},
		stubSummarizer{},
		gen,
		nil,
		nil,
		Defaults{MaxPages: 4, Size: "1024x1024", KidStyle: false},
		infra.Logger(zerolog.New(io.Discard)),
	)

	_, err := o.Run(context.Background(), []byte("doc"), Options{MaxPages: 1, Size: "1024x1024", ReaderAge: &age}, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(gen.prompts[0], "Children's picture-book illustration") {
		t.Fatal("reader age 8 should force the kid-style preamble on")
	}
	if !strings.Contains(gen.prompts[0], "ages 7-12") {
		t.Fatal("reader age 8 should pick the richer-scenes hint")
	}
}

func TestRunImageDataURL(t *testing.T) {
	gen := &scriptedGenerator{}
	o := newTestOrchestrator(stubExtractor{pages: []string{"p1"}}, stubSummarizer{}, gen, &memorySink{})

	result, err := o.Run(context.Background(), []byte("doc"), Options{MaxPages: 1, Size: "1024x1024"}, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(result.Images[0].URL, "data:image/png;base64,") {
		t.Fatalf("url = %q, want a png data url", result.Images[0].URL)
	}
}
