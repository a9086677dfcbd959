package jobs

import (
	"context"
	"database/sql"
	"errors"

	"ngmi-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *db.Handle
}

// Add inserts the posting unless one with the same title and company exists.
// Two concurrent adds of the same pair can both pass the check; nothing in the
// schema prevents it.
func (r *PGRepo) Add(ctx context.Context, job Job) (Job, error) {
	const query = `
INSERT INTO job_postings (title, company, description)
SELECT $1::text, $2::text, $3::text
WHERE NOT EXISTS (
    SELECT 1 FROM job_postings WHERE title = $1::text AND company = $2::text
)
RETURNING job_id`
	err := r.DB.WriteOne(ctx, query, []any{job.Title, job.Company, job.Description}, &job.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrDuplicate
		}
		return Job{}, err
	}
	return job, nil
}

func (r *PGRepo) List(ctx context.Context) ([]Job, error) {
	const query = `
SELECT job_id, title, company, description
FROM job_postings
ORDER BY job_id`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Job{}
	for rows.Next() {
		var job Job
		if err := rows.Scan(&job.ID, &job.Title, &job.Company, &job.Description); err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (r *PGRepo) Get(ctx context.Context, jobID int64) (Job, error) {
	const query = `
SELECT job_id, title, company, description
FROM job_postings
WHERE job_id = $1`
	var job Job
	err := r.DB.QueryOne(ctx, query, []any{jobID}, &job.ID, &job.Title, &job.Company, &job.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return job, nil
}

// Delete removes a posting that no application references. The posting row
// is locked first, so an apply racing the delete waits on its foreign key
// check and then fails instead of slipping in between the check and the
// delete.
func (r *PGRepo) Delete(ctx context.Context, jobID int64) error {
	return r.DB.InTx(ctx, func(tx *sql.Tx) error {
		var locked int64
		err := tx.QueryRowContext(ctx,
			`SELECT job_id FROM job_postings WHERE job_id = $1 FOR UPDATE`, jobID,
		).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var referenced bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM applications WHERE job_id = $1)`, jobID,
		).Scan(&referenced); err != nil {
			return err
		}
		if referenced {
			return ErrHasApplications
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM job_postings WHERE job_id = $1`, jobID)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrHasApplications
			}
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
}
