package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-screener/internal/resume"
)

// CreateResume inserts a resume and fills in its ID and creation time.
func (db *DB) CreateResume(ctx context.Context, rec *Resume) error {
	if rec.Skills == nil {
		rec.Skills = []string{}
	}
	if rec.EducationEntries == nil {
		rec.EducationEntries = []resume.EducationEntry{}
	}
	if rec.StructuredData == nil {
		rec.StructuredData = map[string]any{}
	}

	skills, err := json.Marshal(rec.Skills)
	if err != nil {
		return err
	}
	education, err := json.Marshal(rec.EducationEntries)
	if err != nil {
		return err
	}
	structured, err := json.Marshal(rec.StructuredData)
	if err != nil {
		return err
	}

	var experience sql.NullFloat64
	if rec.ExperienceYears != nil {
		experience = sql.NullFloat64{Float64: *rec.ExperienceYears, Valid: true}
	}
	rec.CreatedAt = time.Now().UTC()

	query := db.rebind(`INSERT INTO resumes
		(candidate_name, contact_email, contact_phone, skills, experience_years,
		 education_entries, structured_data, raw_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	return db.connection.QueryRowContext(ctx, query,
		rec.CandidateName, rec.ContactEmail, rec.ContactPhone,
		string(skills), experience, string(education), string(structured),
		rec.RawText, rec.CreatedAt,
	).Scan(&rec.ID)
}

const resumeColumns = `id, candidate_name, contact_email, contact_phone, skills,
	experience_years, education_entries, structured_data, raw_text, created_at`

func scanResume(scan func(dest ...any) error) (*Resume, error) {
	rec := &Resume{}
	var skills, education, structured string
	var experience sql.NullFloat64
	err := scan(&rec.ID, &rec.CandidateName, &rec.ContactEmail, &rec.ContactPhone,
		&skills, &experience, &education, &structured, &rec.RawText, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	if experience.Valid {
		rec.ExperienceYears = &experience.Float64
	}
	if err := json.Unmarshal([]byte(skills), &rec.Skills); err != nil {
		return nil, fmt.Errorf("decoding skills for resume %d: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(education), &rec.EducationEntries); err != nil {
		return nil, fmt.Errorf("decoding education_entries for resume %d: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(structured), &rec.StructuredData); err != nil {
		return nil, fmt.Errorf("decoding structured_data for resume %d: %w", rec.ID, err)
	}
	if rec.Skills == nil {
		rec.Skills = []string{}
	}
	if rec.EducationEntries == nil {
		rec.EducationEntries = []resume.EducationEntry{}
	}
	if rec.StructuredData == nil {
		rec.StructuredData = map[string]any{}
	}
	return rec, nil
}

// GetResume returns the resume with the given id, or ErrNotFound.
func (db *DB) GetResume(ctx context.Context, id int64) (*Resume, error) {
	query := db.rebind(`SELECT ` + resumeColumns + ` FROM resumes WHERE id = ?`)
	row := db.connection.QueryRowContext(ctx, query, id)
	rec, err := scanResume(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// ListResumes returns all resumes ordered by id.
func (db *DB) ListResumes(ctx context.Context) ([]*Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes ORDER BY id`
	rows, err := db.connection.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resumes := []*Resume{}
	for rows.Next() {
		rec, err := scanResume(rows.Scan)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, rec)
	}
	return resumes, rows.Err()
}

// DeleteResume removes a resume and, via cascade, its matches.
func (db *DB) DeleteResume(ctx context.Context, id int64) error {
	query := db.rebind(`DELETE FROM resumes WHERE id = ?`)
	result, err := db.connection.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
