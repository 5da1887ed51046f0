package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CreateJob inserts a job and fills in its ID and creation time.
func (db *DB) CreateJob(ctx context.Context, job *Job) error {
	if job.RequiredSkills == nil {
		job.RequiredSkills = []string{}
	}
	skills, err := json.Marshal(job.RequiredSkills)
	if err != nil {
		return err
	}
	job.CreatedAt = time.Now().UTC()

	query := db.rebind(`INSERT INTO jobs (title, description, required_skills, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`)
	return db.connection.QueryRowContext(ctx, query,
		job.Title, job.Description, string(skills), job.CreatedAt,
	).Scan(&job.ID)
}

// GetJob returns the job with the given id, or ErrNotFound.
func (db *DB) GetJob(ctx context.Context, id int64) (*Job, error) {
	query := db.rebind(`SELECT id, title, description, required_skills, created_at
		FROM jobs WHERE id = ?`)
	row := db.connection.QueryRowContext(ctx, query, id)

	job := &Job{}
	var skills string
	err := row.Scan(&job.ID, &job.Title, &job.Description, &skills, &job.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(skills), &job.RequiredSkills); err != nil {
		return nil, fmt.Errorf("decoding required_skills for job %d: %w", job.ID, err)
	}
	if job.RequiredSkills == nil {
		job.RequiredSkills = []string{}
	}
	return job, nil
}

// ListJobs returns all jobs ordered by id.
func (db *DB) ListJobs(ctx context.Context) ([]*Job, error) {
	query := `SELECT id, title, description, required_skills, created_at FROM jobs ORDER BY id`
	rows, err := db.connection.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*Job{}
	for rows.Next() {
		job := &Job{}
		var skills string
		if err := rows.Scan(&job.ID, &job.Title, &job.Description, &skills, &job.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(skills), &job.RequiredSkills); err != nil {
			return nil, fmt.Errorf("decoding required_skills for job %d: %w", job.ID, err)
		}
		if job.RequiredSkills == nil {
			job.RequiredSkills = []string{}
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// JobUpdate carries a partial update; nil fields are left unchanged.
type JobUpdate struct {
	Title          *string
	Description    *string
	RequiredSkills []string
}

// UpdateJob applies the non-nil fields of update and returns the fresh
// record. An update with no fields set is a plain read.
func (db *DB) UpdateJob(ctx context.Context, id int64, update JobUpdate) (*Job, error) {
	var set []string
	var args []any

	if update.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *update.Description)
	}
	if update.RequiredSkills != nil {
		skills, err := json.Marshal(update.RequiredSkills)
		if err != nil {
			return nil, err
		}
		set = append(set, "required_skills = ?")
		args = append(args, string(skills))
	}
	if len(set) == 0 {
		return db.GetJob(ctx, id)
	}

	args = append(args, id)
	query := db.rebind(fmt.Sprintf("UPDATE jobs SET %s WHERE id = ?", strings.Join(set, ", ")))
	result, err := db.connection.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return db.GetJob(ctx, id)
}

// DeleteJob removes a job and, via cascade, its matches.
func (db *DB) DeleteJob(ctx context.Context, id int64) error {
	query := db.rebind(`DELETE FROM jobs WHERE id = ?`)
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
