package jobs

import (
	"context"

	"ngmi-backend/internal/shared/apperr"
)

var (
	ErrNotFound        = apperr.E(apperr.ErrNotFound, "job posting not found")
	ErrHasApplications = apperr.E(apperr.ErrValidation, "cannot delete job with existing applications")
)

// Repo persists job postings. Add reports ErrDuplicate when a posting with
// the same title and company exists.
type Repo interface {
	Add(ctx context.Context, job Job) (Job, error)
	List(ctx context.Context) ([]Job, error)
	Get(ctx context.Context, jobID int64) (Job, error)
	Delete(ctx context.Context, jobID int64) error
}

// ErrDuplicate marks an Add rejected because the (title, company) pair exists.
var ErrDuplicate = apperr.E(apperr.ErrConflict, "job already exists")
