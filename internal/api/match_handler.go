package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"resume-screener/internal/logger"
	"resume-screener/internal/match"
	"resume-screener/internal/storage"
)

type matchView struct {
	storage.Match
	Resume *storage.Resume `json:"resume,omitempty"`
}

type shortlistResponse struct {
	JobID         int64       `json:"job_id"`
	Matched       int         `json:"matched"`
	ShortlistSize int         `json:"shortlist_size"`
	Shortlisted   []matchView `json:"shortlisted"`
}

// MatchJobHandler scores every stored resume against a job
// @Summary Match resumes to job
// @Description Score all stored resumes against the job, record one match per resume (rescoring overwrites) and return the shortlist
// @Tags matching
// @Produce json
// @Param id path int true "Job ID"
// @Param shortlist_size query int false "Shortlist length" default(5)
// @Success 200 {object} shortlistResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /jobs/{id}/match [post]
func (a *API) MatchJobHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	job, err := a.db.GetJob(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		logger.Error().Err(err).Int64("job_id", id).Msg("failed to load job")
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}

	limit := a.config.ShortlistSize
	if raw := r.URL.Query().Get("shortlist_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid shortlist_size")
			return
		}
		if n > 0 {
			limit = n
		}
	}

	resumes, err := a.db.ListResumes(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list resumes")
		writeError(w, http.StatusInternalServerError, "failed to list resumes")
		return
	}

	// batch ties together the log lines of one match run.
	batch := uuid.NewString()

	profile := match.JobProfile{
		Title:          job.Title,
		Description:    job.Description,
		RequiredSkills: job.RequiredSkills,
	}
	results := a.scoreResumes(ctx, resumes, profile)

	// One upsert per resume, issued in listing order so reruns are
	// deterministic. A cancelled request stops here; committed rows stay.
	for i, rec := range resumes {
		if ctx.Err() != nil {
			logger.Warn().Str("batch", batch).Int64("job_id", job.ID).Msg("match run cancelled, stopping upserts")
			return
		}
		m := &storage.Match{
			ResumeID:  rec.ID,
			JobID:     job.ID,
			Score:     results[i].Score,
			Reasoning: results[i].Reasoning,
			LLMModel:  results[i].ModelUsed,
		}
		if err := a.db.UpsertMatch(ctx, m); err != nil {
			logger.Error().Err(err).Int64("job_id", job.ID).Int64("resume_id", rec.ID).Msg("failed to record match")
			writeError(w, http.StatusInternalServerError, "failed to record match")
			return
		}
	}

	matches, err := a.db.ListMatchesForJob(ctx, job.ID)
	if err != nil {
		logger.Error().Err(err).Int64("job_id", job.ID).Msg("failed to list matches")
		writeError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}

	entries := make([]match.ShortlistEntry, 0, len(matches))
	for _, m := range matches {
		entries = append(entries, match.ShortlistEntry{Score: m.Score, Reasoning: m.Reasoning, ID: m.ID})
	}
	top := match.Shortlist(entries, limit)

	byID := make(map[int64]*storage.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}
	shortlisted := make([]*storage.Match, 0, len(top))
	for _, entry := range top {
		shortlisted = append(shortlisted, byID[entry.ID])
	}

	views, err := a.matchViews(ctx, shortlisted)
	if err != nil {
		logger.Error().Err(err).Int64("job_id", job.ID).Msg("failed to build match views")
		writeError(w, http.StatusInternalServerError, "failed to build response")
		return
	}

	logger.Info().
		Str("batch", batch).
		Int64("job_id", job.ID).
		Int("matched", len(resumes)).
		Int("shortlisted", len(views)).
		Msg("match run complete")

	writeJSON(w, http.StatusOK, shortlistResponse{
		JobID:         job.ID,
		Matched:       len(resumes),
		ShortlistSize: limit,
		Shortlisted:   views,
	})
}

// ListMatchesHandler lists all recorded matches for a job
// @Summary List matches for job
// @Tags matching
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {array} matchView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /jobs/{id}/matches [get]
func (a *API) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	if _, err := a.db.GetJob(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		logger.Error().Err(err).Int64("job_id", id).Msg("failed to load job")
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}

	matches, err := a.db.ListMatchesForJob(ctx, id)
	if err != nil {
		logger.Error().Err(err).Int64("job_id", id).Msg("failed to list matches")
		writeError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}

	views, err := a.matchViews(ctx, matches)
	if err != nil {
		logger.Error().Err(err).Int64("job_id", id).Msg("failed to build match views")
		writeError(w, http.StatusInternalServerError, "failed to build response")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// scoreResumes scores every resume against the profile on a bounded
// pool of goroutines. The result slice lines up with the input.
func (a *API) scoreResumes(ctx context.Context, resumes []*storage.Resume, profile match.JobProfile) []match.Result {
	concurrency := a.config.MatchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]match.Result, len(resumes))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, rec := range resumes {
		wg.Add(1)
		go func(i int, rec *storage.Resume) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = a.matcher.Score(ctx, rec.Parsed(), profile)
		}(i, rec)
	}
	wg.Wait()
	return results
}

// matchViews embeds each match's reconstructed resume for responses.
func (a *API) matchViews(ctx context.Context, matches []*storage.Match) ([]matchView, error) {
	views := make([]matchView, 0, len(matches))
	if len(matches) == 0 {
		return views, nil
	}

	resumes, err := a.db.ListResumes(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*storage.Resume, len(resumes))
	for _, rec := range resumes {
		byID[rec.ID] = rec
	}

	for _, m := range matches {
		view := matchView{Match: *m}
		if rec, ok := byID[m.ResumeID]; ok {
			view.Resume = resumeView(rec)
		}
		views = append(views, view)
	}
	return views, nil
}
