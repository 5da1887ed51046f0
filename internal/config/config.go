package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"resume-screener/internal/logger"
)

type Config struct {
	Port        string
	DatabaseURL string
	UploadsDir  string

	// LLM configuration
	LLMProvider string // "openai", "groq", "ollama", or "none"
	LLMModel    string // "gpt-4o-mini", "gpt-4o", "llama-3.3-70b-versatile"
	LLMAPIKey   string // OpenAI or Groq API key
	OllamaURL   string

	ShortlistSize    int           // default shortlist length per match run
	MatchConcurrency int           // resumes scored in parallel per match run
	ScoreCacheTTL    time.Duration // TTL for cached LLM score responses

	LogLevel  string
	LogFormat string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		err = godotenv.Load("../../.env")
		if err != nil {
			logger.Debug().Msg("no .env file found, using environment variables")
		}
	}

	llmProvider := os.Getenv("LLM_PROVIDER")
	if llmProvider == "" {
		llmProvider = "openai" // default
	}

	llmModel := os.Getenv("LLM_MODEL")
	if llmModel == "" {
		llmModel = "gpt-4o-mini" // default model
	}

	// Get API key based on provider
	llmAPIKey := ""
	if llmProvider == "openai" {
		llmAPIKey = os.Getenv("OPENAI_API_KEY")
	} else if llmProvider == "groq" {
		llmAPIKey = os.Getenv("GROQ_API_KEY")
	}

	ollamaURL := os.Getenv("OLLAMA_URL")
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = "sqlite://./resume_screener.db"
	}

	return &Config{
		Port:             envOrDefault("PORT", "8080"),
		DatabaseURL:      databaseURL,
		UploadsDir:       envOrDefault("UPLOADS_DIR", "./uploads"),
		LLMProvider:      llmProvider,
		LLMModel:         llmModel,
		LLMAPIKey:        llmAPIKey,
		OllamaURL:        ollamaURL,
		ShortlistSize:    envIntOrDefault("SHORTLIST_SIZE", 5),
		MatchConcurrency: envIntOrDefault("MATCH_CONCURRENCY", 4),
		ScoreCacheTTL:    envDurationOrDefault("SCORE_CACHE_TTL", 5*time.Minute),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "console"),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		logger.Warn().Str("var", key).Str("value", v).Msg("invalid integer value, using default")
		return def
	}
	return n
}

func envDurationOrDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		logger.Warn().Str("var", key).Str("value", v).Msg("invalid duration value, using default")
		return def
	}
	return d
}
