package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"resume-screener/internal/logger"
	"resume-screener/internal/resume"
	"resume-screener/internal/storage"
)

type resumePayload struct {
	RawText       string `json:"raw_text"`
	CandidateName string `json:"candidate_name"`
}

// CreateResumeHandler parses and stores a resume supplied as plain text
// @Summary Create resume from text
// @Description Parse raw resume text, extract structured fields and persist them
// @Tags resumes
// @Accept json
// @Produce json
// @Param resume body resumePayload true "Resume text and optional candidate name override"
// @Success 201 {object} storage.Resume
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /resumes [post]
func (a *API) CreateResumeHandler(w http.ResponseWriter, r *http.Request) {
	var payload resumePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(payload.RawText) == "" {
		writeError(w, http.StatusBadRequest, "raw_text is required")
		return
	}

	parsed := resume.Parse(payload.RawText)
	if payload.CandidateName != "" {
		parsed.CandidateName = payload.CandidateName
	}

	rec := recordFromParsed(parsed)
	if err := a.db.CreateResume(r.Context(), rec); err != nil {
		logger.Error().Err(err).Msg("failed to save resume")
		writeError(w, http.StatusInternalServerError, "failed to save resume")
		return
	}
	writeJSON(w, http.StatusCreated, resumeView(rec))
}

// UploadResumeHandler parses and stores an uploaded resume file
// @Summary Upload resume file
// @Description Upload a resume file (PDF, DOCX, DOC, RTF, ODT, TXT or MD), extract its text and run the parsing pipeline
// @Tags resumes
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume file"
// @Param candidate_name formData string false "Candidate name override"
// @Success 201 {object} storage.Resume
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /resumes/upload [post]
func (a *API) UploadResumeHandler(w http.ResponseWriter, r *http.Request) {
	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid (max 10MB)")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	ingested, err := a.ingestor.Ingest(header.Filename, file)
	if errors.Is(err, resume.ErrUnsupportedType) {
		writeError(w, http.StatusBadRequest, "unsupported file type (supported: PDF, DOCX, DOC, RTF, ODT, TXT, MD)")
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("filename", header.Filename).Msg("failed to ingest resume file")
		writeError(w, http.StatusInternalServerError, "failed to process file")
		return
	}
	if strings.TrimSpace(ingested.Text) == "" {
		writeError(w, http.StatusBadRequest, "no text could be extracted from file")
		return
	}

	logger.Info().
		Str("filename", ingested.Filename).
		Str("file_type", ingested.FileType).
		Int("text_length", len(ingested.Text)).
		Msg("resume file ingested")

	parsed := resume.Parse(ingested.Text)
	if name := r.FormValue("candidate_name"); name != "" {
		parsed.CandidateName = name
	}

	rec := recordFromParsed(parsed)
	if err := a.db.CreateResume(r.Context(), rec); err != nil {
		logger.Error().Err(err).Msg("failed to save resume")
		writeError(w, http.StatusInternalServerError, "failed to save resume")
		return
	}
	writeJSON(w, http.StatusCreated, resumeView(rec))
}

// ListResumesHandler lists all stored resumes
// @Summary List resumes
// @Tags resumes
// @Produce json
// @Success 200 {array} storage.Resume
// @Failure 500 {object} map[string]string
// @Router /resumes [get]
func (a *API) ListResumesHandler(w http.ResponseWriter, r *http.Request) {
	resumes, err := a.db.ListResumes(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("failed to list resumes")
		writeError(w, http.StatusInternalServerError, "failed to list resumes")
		return
	}

	views := make([]*storage.Resume, 0, len(resumes))
	for _, rec := range resumes {
		views = append(views, resumeView(rec))
	}
	writeJSON(w, http.StatusOK, views)
}

// GetResumeHandler returns a single resume
// @Summary Get resume
// @Tags resumes
// @Produce json
// @Param id path int true "Resume ID"
// @Success 200 {object} storage.Resume
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /resumes/{id} [get]
func (a *API) GetResumeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid resume id")
		return
	}
	rec, err := a.db.GetResume(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "resume not found")
		return
	}
	if err != nil {
		logger.Error().Err(err).Int64("resume_id", id).Msg("failed to load resume")
		writeError(w, http.StatusInternalServerError, "failed to load resume")
		return
	}
	writeJSON(w, http.StatusOK, resumeView(rec))
}

// DeleteResumeHandler deletes a resume and its matches
// @Summary Delete resume
// @Tags resumes
// @Param id path int true "Resume ID"
// @Success 204 "deleted"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /resumes/{id} [delete]
func (a *API) DeleteResumeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid resume id")
		return
	}
	err = a.db.DeleteResume(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "resume not found")
		return
	}
	if err != nil {
		logger.Error().Err(err).Int64("resume_id", id).Msg("failed to delete resume")
		writeError(w, http.StatusInternalServerError, "failed to delete resume")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func recordFromParsed(parsed *resume.ParsedResume) *storage.Resume {
	return &storage.Resume{
		CandidateName:    parsed.CandidateName,
		ContactEmail:     parsed.ContactEmail,
		ContactPhone:     parsed.ContactPhone,
		Skills:           parsed.Skills,
		ExperienceYears:  parsed.ExperienceYears,
		EducationEntries: parsed.EducationEntries,
		StructuredData:   parsed.AsDocument(),
		RawText:          parsed.RawText,
	}
}

// resumeView is the read shape: reconstructed fields plus a freshly
// emitted structured document.
func resumeView(rec *storage.Resume) *storage.Resume {
	parsed := rec.Parsed()
	return &storage.Resume{
		ID:               rec.ID,
		CandidateName:    parsed.CandidateName,
		ContactEmail:     parsed.ContactEmail,
		ContactPhone:     parsed.ContactPhone,
		Skills:           parsed.Skills,
		ExperienceYears:  parsed.ExperienceYears,
		EducationEntries: parsed.EducationEntries,
		StructuredData:   parsed.AsDocument(),
		RawText:          rec.RawText,
		CreatedAt:        rec.CreatedAt,
	}
}
