package resumes

import (
	"context"
	"errors"

	"ngmi-backend/internal/shared/apperr"
)

var (
	ErrNotFound     = apperr.E(apperr.ErrNotFound, "resume not found")
	ErrUserNotFound = apperr.E(apperr.ErrNotFound, "user not found")

	// ErrUploadFailed marks store failures at or before the commit point.
	ErrUploadFailed = errors.New("resume upload failed")
)

type Repo interface {
	Create(ctx context.Context, r Resume) (Resume, error)
	Get(ctx context.Context, resumeID int64) (Resume, error)
	ListByUser(ctx context.Context, userID int64) ([]Summary, error)
	Skills(ctx context.Context, resumeID int64) ([]string, error)
	UpsertSkill(ctx context.Context, name string) (int64, error)
	LinkSkill(ctx context.Context, resumeID, skillID int64) error
	// DeleteOwned removes the resume and everything that references it in
	// child-before-parent order, returning the storage key of the file.
	DeleteOwned(ctx context.Context, userID, resumeID int64) (string, error)
}
