package storage

import (
	"time"

	"resume-screener/internal/resume"
)

// Resume is a stored resume: the raw text plus every field the parser
// extracted from it. StructuredData carries the full parsed document so
// the pipeline can be reconstructed without re-parsing.
type Resume struct {
	ID               int64                   `json:"id"`
	CandidateName    string                  `json:"candidate_name,omitempty"`
	ContactEmail     string                  `json:"contact_email,omitempty"`
	ContactPhone     string                  `json:"contact_phone,omitempty"`
	Skills           []string                `json:"skills"`
	ExperienceYears  *float64                `json:"experience_years,omitempty"`
	EducationEntries []resume.EducationEntry `json:"education_entries"`
	StructuredData   map[string]any          `json:"structured_data"`
	RawText          string                  `json:"-"`
	CreatedAt        time.Time               `json:"created_at"`
}

// Parsed rebuilds the parsed form of the resume from its structured
// document, then fills any gaps from the scalar columns. The stored
// document wins whenever it has a usable value.
func (r *Resume) Parsed() *resume.ParsedResume {
	stored := make(map[string]any, len(r.StructuredData))
	for k, v := range r.StructuredData {
		stored[k] = v
	}
	if r.CandidateName != "" {
		if name, _ := stored["candidate_name"].(string); name == "" {
			stored["candidate_name"] = r.CandidateName
		}
	}

	parsed := resume.FromStored(r.RawText, stored)
	if parsed.CandidateName == "" {
		parsed.CandidateName = r.CandidateName
	}
	if parsed.ContactEmail == "" {
		parsed.ContactEmail = r.ContactEmail
	}
	if parsed.ContactPhone == "" {
		parsed.ContactPhone = r.ContactPhone
	}
	if len(parsed.Skills) == 0 {
		parsed.Skills = r.Skills
	}
	if parsed.ExperienceYears == nil || *parsed.ExperienceYears == 0 {
		parsed.ExperienceYears = r.ExperienceYears
	}
	if len(parsed.EducationEntries) == 0 {
		parsed.EducationEntries = r.EducationEntries
	}
	return parsed
}

// Job is a stored job description.
type Job struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	RequiredSkills []string  `json:"required_skills"`
	CreatedAt      time.Time `json:"created_at"`
}

// Match is one stored resume-to-job score. At most one row exists per
// (resume_id, job_id) pair; rescoring overwrites it. LLMModel is empty
// when the heuristic produced the score.
type Match struct {
	ID        int64     `json:"id"`
	ResumeID  int64     `json:"resume_id"`
	JobID     int64     `json:"job_id"`
	Score     float64   `json:"score"`
	Reasoning string    `json:"reasoning"`
	LLMModel  string    `json:"llm_model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
