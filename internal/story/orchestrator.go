package story

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/providers/image"
	"server/internal/providers/summary"
	"server/internal/storage"
)

// fallbackSceneText stands in for a blank page when the fallback plan is used.
const fallbackSceneText = "A continuation of the story based on this page."

// fallbackSummaryText stands in for a scene the planner left empty.
const fallbackSummaryText = "A key moment from the story."

// PageExtractor yields ordered per-page plain text for an uploaded document.
type PageExtractor interface {
	Pages(ctx context.Context, document []byte) ([]string, error)
}

// ProgressSink receives human-readable progress messages for a job. An empty
// job id must be tolerated; synchronous runs have no job.
type ProgressSink interface {
	AppendProgress(jobID, message string)
}

// NopSink discards progress messages.
type NopSink struct{}

func (NopSink) AppendProgress(string, string) {}

// Orchestrator drives the extract -> plan -> generate pipeline for one
// illustration request. It runs synchronously in whatever goroutine invokes
// it; the async dispatcher owns scheduling.
type Orchestrator struct {
	extractor  PageExtractor
	summarizer summary.Summarizer
	images     image.Generator
	store      *storage.FileStore
	progress   ProgressSink
	defaults   Defaults
	logger     infra.Logger
}

// NewOrchestrator wires the pipeline. store may be nil to disable file
// persistence; progress may be nil for a no-op sink.
func NewOrchestrator(
	extractor PageExtractor,
	summarizer summary.Summarizer,
	images image.Generator,
	store *storage.FileStore,
	progress ProgressSink,
	defaults Defaults,
	logger infra.Logger,
) *Orchestrator {
	if progress == nil {
		progress = NopSink{}
	}
	return &Orchestrator{
		extractor:  extractor,
		summarizer: summarizer,
		images:     images,
		store:      store,
		progress:   progress,
		defaults:   defaults,
		logger:     logger,
	}
}

// Run executes the full pipeline for one document and returns the result
// payload. Terminal failures are domain.ErrNoExtractableText (nothing to
// illustrate) and *domain.GenerationExhaustedError (every attempt failed).
// Individual scene failures are logged and skipped; each scene gets exactly
// one attempt because every call consumes metered API credit.
func (o *Orchestrator) Run(ctx context.Context, document []byte, opts Options, jobID string) (*domain.StoryResult, error) {
	start := time.Now()
	o.progress.AppendProgress(jobID, "Starting story image illustration")

	pages, err := o.extractor.Pages(ctx, document)
	if err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, domain.ErrNoExtractableText
	}
	o.progress.AppendProgress(jobID, fmt.Sprintf("Extracted %d page(s) from the document", len(pages)))

	want := opts.MaxPages
	if want <= 0 {
		want = 1
	}

	o.progress.AppendProgress(jobID, "Summarizing story to extract key scenes")
	planStart := time.Now()
	plan, err := o.summarizer.Summarize(ctx, pages, want)
	if err != nil {
		o.logger.Warn().Err(err).Str("job_id", jobID).Msg("story: scene planning failed, falling back to pages")
		plan = domain.StorySummary{}
	}
	o.progress.AppendProgress(jobID, fmt.Sprintf("Story summary done in %.1fs", time.Since(planStart).Seconds()))

	scenes := plan.Scenes
	if len(scenes) == 0 {
		scenes = fallbackScenes(pages, want)
		o.progress.AppendProgress(jobID, fmt.Sprintf("No scene plan available; illustrating %d page(s) directly", len(scenes)))
	} else {
		for i := range scenes {
			if scenes[i].PageHint <= 0 {
				scenes[i].PageHint = i + 1
			}
		}
	}

	preamble := ""
	if opts.KidStyleEnabled(o.defaults.KidStyle) {
		preamble = StylePreamble(opts.ReaderAge)
	}
	preamble = ContextPreamble(preamble, plan)

	size := NormalizeSize(opts.Size, o.defaults.Size)

	o.progress.AppendProgress(jobID, fmt.Sprintf("Generating up to %d illustration(s)", want))

	// Synchronous runs have no job id, so images still need a stable stem to
	// land in one directory.
	storageStem := jobID
	if storageStem == "" {
		storageStem = uuid.NewString()
	}

	var (
		images  []domain.ImageRecord
		lastErr error
		counted int
	)
	for idx := 0; counted < want && idx < len(scenes); idx++ {
		sceneText := strings.TrimSpace(scenes[idx].Summary)
		if sceneText == "" {
			sceneText = fallbackSummaryText
		}
		prompt := ScenePrompt(sceneText, idx, preamble)
		pageNum := counted + 1

		o.progress.AppendProgress(jobID, fmt.Sprintf("Generating image %d/%d from scene %d", pageNum, want, idx+1))
		o.progress.AppendProgress(jobID, "Prompt preview: "+TrimText(sceneText, 80))

		data, err := o.images.Generate(ctx, image.GenerateRequest{Prompt: prompt, Size: size})
		if err != nil {
			lastErr = err
			o.progress.AppendProgress(jobID, fmt.Sprintf("Failed to generate image from scene %d", idx+1))
			o.progress.AppendProgress(jobID, "Scene text: "+TrimText(sceneText, 100))
			o.progress.AppendProgress(jobID, "Error: "+err.Error())
			o.progress.AppendProgress(jobID, "Skipping this scene and trying the next one")
			continue
		}

		record := domain.ImageRecord{
			URL:    pngDataURL(data),
			Page:   pageNum,
			Prompt: prompt,
		}
		if o.store != nil {
			record.StorageKey = o.persistImage(ctx, storageStem, pageNum, data)
		}
		images = append(images, record)
		counted++
		o.progress.AppendProgress(jobID, fmt.Sprintf("Generated image %d/%d", pageNum, want))
	}

	if counted == 0 {
		return nil, &domain.GenerationExhaustedError{LastErr: lastErr}
	}
	if counted < want {
		o.progress.AppendProgress(jobID, fmt.Sprintf("Generated %d/%d images (limited by failures or available scenes)", counted, want))
	}
	o.progress.AppendProgress(jobID, fmt.Sprintf("Job completed in %.1fs", time.Since(start).Seconds()))

	return &domain.StoryResult{
		Message: fmt.Sprintf("Generated %d image(s).", counted),
		Count:   len(images),
		Images:  images,
		Summary: domain.ResultSummary{Characters: plan.Characters, Setting: plan.Setting},
	}, nil
}

// fallbackScenes builds a page-per-scene plan when the summarizer produced
// nothing usable: min(maxPages, len(pages)) scenes carrying the page's trimmed
// text, or a generic placeholder for blank pages.
func fallbackScenes(pages []string, want int) []domain.Scene {
	n := want
	if len(pages) < n {
		n = len(pages)
	}
	scenes := make([]domain.Scene, 0, n)
	for idx := 0; idx < n; idx++ {
		text := strings.TrimSpace(pages[idx])
		if text == "" {
			text = fallbackSceneText
		}
		scenes = append(scenes, domain.Scene{ID: idx + 1, PageHint: idx + 1, Summary: text})
	}
	return scenes
}

func (o *Orchestrator) persistImage(ctx context.Context, stem string, pageNum int, data []byte) string {
	key := fmt.Sprintf("stories/%s/page-%02d.png", stem, pageNum)
	saved, err := o.store.Write(ctx, key, data)
	if err != nil {
		o.logger.Warn().Err(err).Str("stem", stem).Msg("story: persist image failed")
		return ""
	}
	return saved
}

func pngDataURL(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}
