package storage

import (
	"context"
	"time"
)

// UpsertMatch inserts a match or, when one already exists for the same
// (resume_id, job_id) pair, overwrites its score, reasoning and model.
// The row's id and original creation time are preserved; updated_at
// always moves. All three are written back into match.
func (db *DB) UpsertMatch(ctx context.Context, match *Match) error {
	now := time.Now().UTC()
	query := db.rebind(`INSERT INTO matches (resume_id, job_id, score, reasoning, llm_model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (resume_id, job_id) DO UPDATE
			SET score = EXCLUDED.score,
			    reasoning = EXCLUDED.reasoning,
			    llm_model = EXCLUDED.llm_model,
			    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`)
	return db.connection.QueryRowContext(ctx, query,
		match.ResumeID, match.JobID, match.Score, match.Reasoning, match.LLMModel, now, now,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)
}

// ListMatchesForJob returns a job's matches, best score first with id
// as the tie-breaker.
func (db *DB) ListMatchesForJob(ctx context.Context, jobID int64) ([]*Match, error) {
	query := db.rebind(`SELECT id, resume_id, job_id, score, reasoning, llm_model, created_at, updated_at
		FROM matches WHERE job_id = ?
		ORDER BY score DESC, id ASC`)
	return db.queryMatches(ctx, query, jobID)
}

// ListMatchesForResume returns every match recorded for a resume.
func (db *DB) ListMatchesForResume(ctx context.Context, resumeID int64) ([]*Match, error) {
	query := db.rebind(`SELECT id, resume_id, job_id, score, reasoning, llm_model, created_at, updated_at
		FROM matches WHERE resume_id = ?
		ORDER BY id ASC`)
	return db.queryMatches(ctx, query, resumeID)
}

func (db *DB) queryMatches(ctx context.Context, query string, arg any) ([]*Match, error) {
	rows, err := db.connection.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []*Match{}
	for rows.Next() {
		match := &Match{}
		if err := rows.Scan(&match.ID, &match.ResumeID, &match.JobID,
			&match.Score, &match.Reasoning, &match.LLMModel,
			&match.CreatedAt, &match.UpdatedAt); err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}
