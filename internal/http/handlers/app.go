package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/jobs"
	"server/internal/storage"
	"server/internal/story"
)

// defaultMaxUploadBytes caps the multipart form held in memory per request.
const defaultMaxUploadBytes = 32 << 20

// StoryRunner executes the illustration pipeline for one document.
type StoryRunner interface {
	Run(ctx context.Context, document []byte, opts story.Options, jobID string) (*domain.StoryResult, error)
}

// App bundles the dependencies shared by the HTTP handlers.
type App struct {
	Logger         infra.Logger
	Pipeline       StoryRunner
	Dispatcher     *jobs.Dispatcher
	Registry       *jobs.Registry
	Store          *storage.FileStore
	Defaults       story.Defaults
	MaxUploadBytes int64
}

func (a *App) maxUpload() int64 {
	if a.MaxUploadBytes > 0 {
		return a.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}
