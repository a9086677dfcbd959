package applications

import (
	"context"
	"errors"

	"ngmi-backend/internal/scoring"
	"ngmi-backend/internal/shared/apperr"
)

var (
	ErrNotFound       = apperr.E(apperr.ErrNotFound, "application not found")
	ErrNoScore        = apperr.E(apperr.ErrNotFound, "no NGMI score found for this application")
	ErrResumeNotOwned = apperr.E(apperr.ErrNotFound, "resume not found or doesn't belong to you")
	ErrJobNotFound    = apperr.E(apperr.ErrNotFound, "job posting not found")
	ErrScoreExists    = apperr.E(apperr.ErrConflict, "application already has an NGMI score")

	// ErrApplyFailed marks failures before the application row is committed.
	ErrApplyFailed = errors.New("application failed")
)

type Repo interface {
	// FindByUserJob returns the application id for the pair, if any.
	FindByUserJob(ctx context.Context, userID, jobID int64) (int64, bool, error)
	// Create inserts the application unless one exists for (userID, jobID).
	// When it exists, the existing id is returned with created=false.
	Create(ctx context.Context, userID, jobID, resumeID int64) (id int64, created bool, err error)
	InsertScore(ctx context.Context, applicationID int64, v scoring.Verdict) (Score, error)
	// LatestScore returns ErrNoScore when the application was never scored.
	LatestScore(ctx context.Context, applicationID int64) (Score, error)
	ListForUser(ctx context.Context, userID int64) ([]Summary, error)
	NGMIDetail(ctx context.Context, applicationID int64) (Detail, error)
	// DeleteOwned removes the application and its scores. ErrNotFound covers
	// both a missing row and one owned by another user.
	DeleteOwned(ctx context.Context, userID, applicationID int64) error
}
