package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"resume-screener/internal/logger"
	"resume-screener/internal/storage"
)

type jobPayload struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RequiredSkills []string `json:"required_skills"`
}

type jobUpdatePayload struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	RequiredSkills []string `json:"required_skills"`
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// CreateJobHandler creates a job description
// @Summary Create job
// @Description Create a job description with title, description and required skills
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body jobPayload true "Job fields"
// @Success 201 {object} storage.Job
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /jobs [post]
func (a *API) CreateJobHandler(w http.ResponseWriter, r *http.Request) {
	var payload jobPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if payload.Title == "" || payload.Description == "" {
		writeError(w, http.StatusBadRequest, "title and description are required")
		return
	}

	job := &storage.Job{
		Title:          payload.Title,
		Description:    payload.Description,
		RequiredSkills: payload.RequiredSkills,
	}
	if err := a.db.CreateJob(r.Context(), job); err != nil {
		logger.Error().Err(err).Msg("failed to create job")
		writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// ListJobsHandler lists all job descriptions
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Success 200 {array} storage.Job
// @Failure 500 {object} map[string]string
// @Router /jobs [get]
func (a *API) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	jobs, err := a.db.ListJobs(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("failed to list jobs")
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// UpdateJobHandler partially updates a job description
// @Summary Update job
// @Description Update any subset of title, description and required skills
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path int true "Job ID"
// @Param job body jobUpdatePayload true "Fields to update"
// @Success 200 {object} storage.Job
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /jobs/{id} [patch]
func (a *API) UpdateJobHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	var payload jobUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	job, err := a.db.UpdateJob(r.Context(), id, storage.JobUpdate{
		Title:          payload.Title,
		Description:    payload.Description,
		RequiredSkills: payload.RequiredSkills,
	})
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		logger.Error().Err(err).Int64("job_id", id).Msg("failed to update job")
		writeError(w, http.StatusInternalServerError, "failed to update job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// DeleteJobHandler deletes a job and its matches
// @Summary Delete job
// @Tags jobs
// @Param id path int true "Job ID"
// @Success 204 "deleted"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /jobs/{id} [delete]
func (a *API) DeleteJobHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	err = a.db.DeleteJob(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		logger.Error().Err(err).Int64("job_id", id).Msg("failed to delete job")
		writeError(w, http.StatusInternalServerError, "failed to delete job")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
