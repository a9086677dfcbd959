package users

import (
	"context"
	"database/sql"
	"errors"

	"ngmi-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *db.Handle
}

func (r *PGRepo) Create(ctx context.Context, email, fullName string) (User, error) {
	const query = `
INSERT INTO users (email, full_name)
VALUES ($1, $2)
RETURNING user_id, email, full_name, created_at`
	var user User
	err := r.DB.WriteOne(ctx, query, []any{email, fullName},
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.CreatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return user, nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID int64) (User, error) {
	const query = `
SELECT user_id, email, full_name, created_at
FROM users
WHERE user_id = $1`
	var user User
	err := r.DB.QueryOne(ctx, query, []any{userID},
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}
