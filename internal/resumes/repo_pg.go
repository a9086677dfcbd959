package resumes

import (
	"context"
	"database/sql"
	"errors"

	"ngmi-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *db.Handle
}

func (r *PGRepo) Create(ctx context.Context, res Resume) (Resume, error) {
	const query = `
INSERT INTO resumes (user_id, file_name, file_path, raw_text)
VALUES ($1, $2, $3, $4)
RETURNING resume_id, uploaded_at`
	err := r.DB.WriteOne(ctx, query, []any{res.UserID, res.FileName, res.FilePath, res.RawText},
		&res.ID,
		&res.UploadedAt,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Resume{}, ErrUserNotFound
		}
		return Resume{}, err
	}
	return res, nil
}

func (r *PGRepo) Get(ctx context.Context, resumeID int64) (Resume, error) {
	const query = `
SELECT resume_id, user_id, file_name, file_path, COALESCE(raw_text, ''), uploaded_at
FROM resumes
WHERE resume_id = $1`
	var res Resume
	err := r.DB.QueryOne(ctx, query, []any{resumeID},
		&res.ID,
		&res.UserID,
		&res.FileName,
		&res.FilePath,
		&res.RawText,
		&res.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return res, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID int64) ([]Summary, error) {
	const query = `
SELECT resume_id, file_name, uploaded_at
FROM resumes
WHERE user_id = $1
ORDER BY uploaded_at DESC, resume_id DESC`
	rows, err := r.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.FileName, &s.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PGRepo) Skills(ctx context.Context, resumeID int64) ([]string, error) {
	const query = `
SELECT s.name
FROM skills s
JOIN resume_skills rs ON s.skill_id = rs.skill_id
WHERE rs.resume_id = $1
ORDER BY s.name`
	rows, err := r.DB.Query(ctx, query, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// UpsertSkill returns the id of the named skill, inserting it if needed.
// The no-op update makes RETURNING yield the existing row on conflict.
func (r *PGRepo) UpsertSkill(ctx context.Context, name string) (int64, error) {
	const query = `
INSERT INTO skills (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING skill_id`
	var id int64
	if err := r.DB.QueryOne(ctx, query, []any{name}, &id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PGRepo) LinkSkill(ctx context.Context, resumeID, skillID int64) error {
	const query = `
INSERT INTO resume_skills (resume_id, skill_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`
	_, err := r.DB.Exec(ctx, query, resumeID, skillID)
	return err
}

func (r *PGRepo) DeleteOwned(ctx context.Context, userID, resumeID int64) (string, error) {
	var filePath string
	err := r.DB.InTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`SELECT file_path FROM resumes WHERE resume_id = $1 AND user_id = $2 FOR UPDATE`,
			resumeID, userID,
		).Scan(&filePath)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		steps := []string{
			`DELETE FROM ngmi_scores WHERE application_id IN (SELECT application_id FROM applications WHERE resume_id = $1)`,
			`DELETE FROM applications WHERE resume_id = $1`,
			`DELETE FROM resume_skills WHERE resume_id = $1`,
			`DELETE FROM resumes WHERE resume_id = $1`,
		}
		for _, stmt := range steps {
			if _, err := tx.ExecContext(ctx, stmt, resumeID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return filePath, nil
}
