package users

import (
	"context"

	"ngmi-backend/internal/shared/apperr"
)

var (
	ErrNotFound   = apperr.E(apperr.ErrNotFound, "user not found")
	ErrEmailTaken = apperr.E(apperr.ErrConflict, "email already registered")
)

type Repo interface {
	Create(ctx context.Context, email, fullName string) (User, error)
	GetByID(ctx context.Context, userID int64) (User, error)
}
