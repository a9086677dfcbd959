package applications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ngmi-backend/internal/scoring"
	"ngmi-backend/internal/shared/apperr"
	"ngmi-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *db.Handle
}

func (r *PGRepo) FindByUserJob(ctx context.Context, userID, jobID int64) (int64, bool, error) {
	var id int64
	err := r.DB.QueryOne(ctx,
		`SELECT application_id FROM applications WHERE user_id = $1 AND job_id = $2`,
		[]any{userID, jobID}, &id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

// Create relies on the (user_id, job_id) unique constraint. A suppressed
// insert means another request won, so its row is read back. The insert is
// never replayed after an ambiguous failure: a replay would read our own row
// back as someone else's and skip scoring it.
func (r *PGRepo) Create(ctx context.Context, userID, jobID, resumeID int64) (int64, bool, error) {
	const query = `
INSERT INTO applications (user_id, job_id, resume_id, status)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, job_id) DO NOTHING
RETURNING application_id`
	var id int64
	err := r.DB.WriteOne(ctx, query, []any{userID, jobID, resumeID, StatusSubmitted}, &id)
	switch {
	case err == nil:
		return id, true, nil
	case errors.Is(err, sql.ErrNoRows), db.IsUniqueViolation(err):
	case db.IsForeignKeyViolation(err):
		return 0, false, apperr.Wrap(apperr.ErrNotFound, "resume or job posting not found", err)
	default:
		return 0, false, err
	}

	existing, found, err := r.FindByUserJob(ctx, userID, jobID)
	if err != nil {
		return 0, false, err
	}
	if !found {
		return 0, false, fmt.Errorf("application for user %d job %d vanished after conflict", userID, jobID)
	}
	return existing, false, nil
}

// InsertScore records the application's only score. An application that
// already has one is left alone and ErrScoreExists is returned.
func (r *PGRepo) InsertScore(ctx context.Context, applicationID int64, v scoring.Verdict) (Score, error) {
	const query = `
INSERT INTO ngmi_scores (application_id, ngmi_score, ngmi_comment, feedback)
SELECT $1::bigint, $2::real, $3::text, $4::text
WHERE NOT EXISTS (SELECT 1 FROM ngmi_scores WHERE application_id = $1::bigint)
RETURNING generated_at`
	s := Score{ApplicationID: applicationID, Score: v.Score, Comment: v.Comment, Feedback: v.Feedback}
	err := r.DB.WriteOne(ctx, query, []any{applicationID, v.Score, v.Comment, v.Feedback}, &s.GeneratedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Score{}, ErrScoreExists
		}
		return Score{}, err
	}
	return s, nil
}

func (r *PGRepo) LatestScore(ctx context.Context, applicationID int64) (Score, error) {
	const query = `
SELECT ngmi_score, ngmi_comment, feedback, generated_at
FROM ngmi_scores
WHERE application_id = $1
ORDER BY generated_at DESC, ngmi_id DESC
LIMIT 1`
	s := Score{ApplicationID: applicationID}
	err := r.DB.QueryOne(ctx, query, []any{applicationID}, &s.Score, &s.Comment, &s.Feedback, &s.GeneratedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Score{}, ErrNoScore
		}
		return Score{}, err
	}
	return s, nil
}

func (r *PGRepo) ListForUser(ctx context.Context, userID int64) ([]Summary, error) {
	const query = `
SELECT a.application_id, a.applied_at, a.status, j.title, j.company, s.ngmi_score, s.ngmi_comment
FROM applications a
JOIN job_postings j ON j.job_id = a.job_id
LEFT JOIN LATERAL (
    SELECT ngmi_score, ngmi_comment
    FROM ngmi_scores
    WHERE application_id = a.application_id
    ORDER BY generated_at DESC, ngmi_id DESC
    LIMIT 1
) s ON true
WHERE a.user_id = $1
ORDER BY a.applied_at DESC, a.application_id DESC`
	rows, err := r.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			item    Summary
			score   sql.NullFloat64
			comment sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.AppliedAt, &item.Status, &item.Title, &item.Company, &score, &comment); err != nil {
			return nil, err
		}
		if score.Valid {
			item.NGMIScore = &score.Float64
		}
		if comment.Valid {
			item.NGMIComment = &comment.String
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *PGRepo) NGMIDetail(ctx context.Context, applicationID int64) (Detail, error) {
	const query = `
SELECT a.application_id, j.title, j.company, j.description, r.file_name,
       s.ngmi_score, s.ngmi_comment, s.feedback, s.generated_at
FROM ngmi_scores s
JOIN applications a ON a.application_id = s.application_id
JOIN job_postings j ON j.job_id = a.job_id
JOIN resumes r ON r.resume_id = a.resume_id
WHERE s.application_id = $1
ORDER BY s.generated_at DESC, s.ngmi_id DESC
LIMIT 1`
	var d Detail
	err := r.DB.QueryOne(ctx, query, []any{applicationID},
		&d.ApplicationID,
		&d.Title,
		&d.Company,
		&d.JobDescription,
		&d.ResumeFileName,
		&d.NGMIScore,
		&d.NGMIComment,
		&d.Feedback,
		&d.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Detail{}, ErrNoScore
		}
		return Detail{}, err
	}
	return d, nil
}

func (r *PGRepo) DeleteOwned(ctx context.Context, userID, applicationID int64) error {
	return r.DB.InTx(ctx, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			`SELECT application_id FROM applications WHERE application_id = $1 AND user_id = $2 FOR UPDATE`,
			applicationID, userID,
		).Scan(&id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM ngmi_scores WHERE application_id = $1`, applicationID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM applications WHERE application_id = $1`, applicationID)
		return err
	})
}
