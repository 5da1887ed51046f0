package api

import (
	"time"

	"resume-screener/internal/logger"
)

// StartBackgroundWorkers initializes background maintenance workers.
func (a *API) StartBackgroundWorkers() {
	go a.scoreCacheJanitor()

	logger.Info().Msg("background workers started (score cache janitor)")
}

// scoreCacheJanitor periodically evicts expired entries from the
// matcher's score cache so long-lived processes don't accumulate stale
// LLM responses. Runs for the lifetime of the process.
func (a *API) scoreCacheJanitor() {
	interval := a.config.ScoreCacheTTL
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		a.matcher.CleanExpiredScores()
		logger.Debug().Msg("score cache cleaned")
	}
}
