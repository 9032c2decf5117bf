package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpapi "server/internal/http"
	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/jobs"
	"server/internal/pdf"
	"server/internal/providers/genai"
	imageprovider "server/internal/providers/image"
	"server/internal/providers/summary"
	"server/internal/storage"
	"server/internal/story"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	geminiClient, err := genai.NewClient(genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure gemini client")
	}
	if !geminiClient.Configured() {
		logger.Warn().Str("model", geminiClient.Model()).Msg("gemini api key missing, scene planning falls back to pages")
	}

	imageGen := imageprovider.NewOpenAIGenerator(imageprovider.OpenAIOptions{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.ImageModel,
		BaseURL: cfg.OpenAIBaseURL,
		Logger:  &logger,
	})
	if cfg.OpenAIAPIKey == "" {
		logger.Warn().Str("model", cfg.ImageModel).Msg("openai api key missing, using synthetic image generation")
	}

	var store *storage.FileStore
	if cfg.StoragePath != "" {
		store, err = storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure storage")
		}
	}

	defaults := story.Defaults{
		MaxPages: cfg.MaxPages,
		Size:     story.NormalizeSize(cfg.ImageSize, "1024x1024"),
		KidStyle: cfg.KidStyleDefault,
	}

	registry := jobs.NewRegistry(logger)
	pipeline := story.NewOrchestrator(
		pdf.NewExtractor(),
		summary.NewGeminiSummarizer(geminiClient, logger),
		imageGen,
		store,
		registry,
		defaults,
		logger,
	)
	dispatcher := jobs.NewDispatcher(ctx, registry, cfg.JobWorkers, cfg.JobQueueSize, logger)

	app := &handlers.App{
		Logger:     logger,
		Pipeline:   pipeline,
		Dispatcher: dispatcher,
		Registry:   registry,
		Store:      store,
		Defaults:   defaults,
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	dispatcher.Wait()
	logger.Info().Msg("server stopped")
}
