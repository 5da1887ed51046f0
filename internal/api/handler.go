package api

import (
	"encoding/json"
	"net/http"

	"resume-screener/internal/config"
	"resume-screener/internal/llm"
	"resume-screener/internal/logger"
	"resume-screener/internal/match"
	"resume-screener/internal/resume"
	"resume-screener/internal/storage"
)

type API struct {
	db       *storage.DB
	ingestor *resume.Ingestor
	matcher  *match.Matcher
	config   *config.Config
}

// NewAPI wires the API from its dependencies. The LLM path is enabled
// only when the configured provider has a usable credential; otherwise
// every score comes from the heuristic.
func NewAPI(db *storage.DB, cfg *config.Config) *API {
	ingestor := resume.NewIngestor(cfg.UploadsDir)

	var generator match.Generator
	client := llm.NewClient(cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel, cfg.OllamaURL)
	if client.Configured() {
		generator = client
	}
	matcher := match.NewMatcher(generator, cfg.LLMModel, cfg.ScoreCacheTTL)

	api := &API{
		db:       db,
		ingestor: ingestor,
		matcher:  matcher,
		config:   cfg,
	}

	// Start background workers
	api.StartBackgroundWorkers()

	return api
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
