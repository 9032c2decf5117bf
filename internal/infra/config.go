package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	GeminiAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	ImageModel       string
	ImageSize        string
	MaxPages         int
	KidStyleDefault  bool
	JobWorkers       int
	JobQueueSize     int
	StoragePath      string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		// GOOGLE_API_KEY is accepted as an alias; GEMINI_API_KEY wins when both are set.
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		GeminiModel:   getEnv("SUMMARY_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ImageModel:    getEnv("IMAGE_MODEL", "gpt-image-1"),
		ImageSize:     getEnv("IMAGE_SIZE", "1024x1024"),
		MaxPages:      getEnvInt("MAX_PAGES", 4),
		// The sync illustration path blocks the request for the whole pipeline,
		// so the write timeout must cover several external model calls.
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		KidStyleDefault:  getEnvSwitch("KID_STYLE_DEFAULT", true),
		JobWorkers:       getEnvInt("JOB_WORKERS", 2),
		JobQueueSize:     getEnvInt("JOB_QUEUE_SIZE", 16),
		StoragePath:      getEnv("STORAGE_PATH", "./generated_images"),
	}

	if cfg.MaxPages <= 0 {
		return nil, fmt.Errorf("MAX_PAGES must be positive, got %d", cfg.MaxPages)
	}
	if cfg.JobWorkers <= 0 {
		cfg.JobWorkers = 1
	}
	if cfg.JobQueueSize < cfg.JobWorkers {
		cfg.JobQueueSize = cfg.JobWorkers
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvSwitch(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
