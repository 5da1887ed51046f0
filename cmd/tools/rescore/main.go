package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"resume-screener/internal/config"
	"resume-screener/internal/llm"
	"resume-screener/internal/logger"
	"resume-screener/internal/match"
	"resume-screener/internal/storage"
)

// Rescores every stored resume against one job, outside the API server.
// Useful after changing the scoring model or editing a job description.
func main() {
	var jobID int64
	var dryRun bool
	var shortlistSize int
	flag.Int64Var(&jobID, "job", 0, "Job ID to rescore (required)")
	flag.BoolVar(&dryRun, "dry-run", true, "If true, do not persist scores; just print them")
	flag.IntVar(&shortlistSize, "shortlist", 0, "Shortlist length (0 uses SHORTLIST_SIZE)")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if jobID <= 0 {
		logger.Fatal().Msg("-job is required (a positive job ID)")
	}
	if shortlistSize <= 0 {
		shortlistSize = cfg.ShortlistSize
	}

	db, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database open failed")
	}
	defer db.Close()

	var generator match.Generator
	client := llm.NewClient(cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel, cfg.OllamaURL)
	if client.Configured() {
		generator = client
	}
	matcher := match.NewMatcher(generator, cfg.LLMModel, cfg.ScoreCacheTTL)

	ctx := context.Background()

	job, err := db.GetJob(ctx, jobID)
	if err != nil {
		logger.Fatal().Err(err).Int64("job_id", jobID).Msg("job lookup failed")
	}
	resumes, err := db.ListResumes(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("resume listing failed")
	}

	logger.Info().
		Int64("job_id", job.ID).
		Str("title", job.Title).
		Int("resumes", len(resumes)).
		Bool("dry_run", dryRun).
		Msg("rescoring")

	profile := match.JobProfile{
		Title:          job.Title,
		Description:    job.Description,
		RequiredSkills: job.RequiredSkills,
	}

	entries := make([]match.ShortlistEntry, 0, len(resumes))
	for _, rec := range resumes {
		result := matcher.Score(ctx, rec.Parsed(), profile)
		entries = append(entries, match.ShortlistEntry{
			ID:        rec.ID,
			Score:     result.Score,
			Reasoning: result.Reasoning,
		})

		fmt.Printf("resume %d (%s): %.2f\n", rec.ID, rec.CandidateName, result.Score)

		if !dryRun {
			m := &storage.Match{
				ResumeID:  rec.ID,
				JobID:     job.ID,
				Score:     result.Score,
				Reasoning: result.Reasoning,
				LLMModel:  result.ModelUsed,
			}
			if err := db.UpsertMatch(ctx, m); err != nil {
				logger.Error().Err(err).Int64("resume_id", rec.ID).Msg("match upsert failed")
				continue
			}
		}

		if generator != nil {
			// small sleep to keep clear of provider rate limits
			time.Sleep(300 * time.Millisecond)
		}
	}

	shortlist := match.Shortlist(entries, shortlistSize)
	fmt.Printf("\nShortlist (top %d of %d scored):\n", len(shortlist), len(entries))
	for i, entry := range shortlist {
		fmt.Printf("%2d. resume %d score %.2f\n", i+1, entry.ID, entry.Score)
	}
	if dryRun {
		fmt.Println("\n[dry-run] no scores were persisted; rerun with -dry-run=false to save")
	}
}
