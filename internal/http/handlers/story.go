package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/story"
)

// StoryImages runs the whole pipeline inside the request and blocks the
// caller until the result or a terminal error.
func (a *App) StoryImages(w http.ResponseWriter, r *http.Request) {
	document, form, err := a.readStoryUpload(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	opts := story.ParseOptions(form, a.Defaults)

	result, err := a.Pipeline.Run(r.Context(), document, opts, "")
	if err != nil {
		a.storyError(w, err)
		return
	}
	a.json(w, http.StatusOK, result)
}

// StoryImagesAsync enqueues a background job and returns its identifier
// immediately; callers poll StoryImagesJob until the status is terminal.
func (a *App) StoryImagesAsync(w http.ResponseWriter, r *http.Request) {
	document, form, err := a.readStoryUpload(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	opts := story.ParseOptions(form, a.Defaults)

	jobID, err := a.Dispatcher.Submit(func(ctx context.Context, jobID string) (*domain.StoryResult, error) {
		return a.Pipeline.Run(ctx, document, opts, jobID)
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: submit job failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue job")
		return
	}

	a.json(w, http.StatusAccepted, map[string]string{
		"job_id": jobID,
		"status": string(domain.JobStatusQueued),
	})
}

// StoryImagesJob reports the current snapshot of an async job.
func (a *App) StoryImagesJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}

	job, err := a.Registry.Get(jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}

	payload := map[string]any{
		"job_id":     job.ID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
		"progress":   job.Progress,
	}
	if job.Result != nil {
		payload["result"] = job.Result
	}
	if job.Error != "" {
		payload["error"] = job.Error
	}
	a.json(w, http.StatusOK, payload)
}

// Generated serves persisted illustrations from the file store.
func (a *App) Generated(w http.ResponseWriter, r *http.Request) {
	if a.Store == nil {
		a.error(w, http.StatusNotFound, "not_found", "file persistence is disabled")
		return
	}
	key := chi.URLParam(r, "*")
	path, err := a.Store.Resolve(key)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "unknown file")
		return
	}
	http.ServeFile(w, r, path)
}

func (a *App) storyError(w http.ResponseWriter, err error) {
	var exhausted *domain.GenerationExhaustedError
	switch {
	case errors.Is(err, domain.ErrNoExtractableText):
		a.error(w, http.StatusUnprocessableEntity, "no_text", err.Error())
	case errors.As(err, &exhausted):
		a.error(w, http.StatusBadGateway, "generation_failed", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("handlers: story pipeline failed")
		a.error(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func (a *App) readStoryUpload(r *http.Request) ([]byte, url.Values, error) {
	if err := r.ParseMultipartForm(a.maxUpload()); err != nil {
		return nil, nil, errors.New("invalid multipart form")
	}
	file, _, err := r.FormFile("pdf")
	if err != nil {
		return nil, nil, errors.New("missing 'pdf' file in form-data")
	}
	defer file.Close()

	document, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, errors.New("failed to read uploaded file")
	}
	if len(document) == 0 {
		return nil, nil, errors.New("uploaded file is empty")
	}
	return document, r.Form, nil
}
