package applications

import (
	"context"
	"errors"
	"time"

	"ngmi-backend/internal/jobs"
	"ngmi-backend/internal/resumes"
	"ngmi-backend/internal/scoring"
	"ngmi-backend/internal/shared/apperr"
	"ngmi-backend/internal/shared/metrics"
	"ngmi-backend/internal/shared/telemetry"
)

type ResumeLookup interface {
	Get(ctx context.Context, resumeID int64) (resumes.Resume, error)
}

type JobLookup interface {
	Get(ctx context.Context, jobID int64) (jobs.Job, error)
}

type Service struct {
	Repo    Repo
	Resumes ResumeLookup
	Jobs    JobLookup
	Oracle  scoring.Oracle
}

func NewService(repo Repo, resumesLookup ResumeLookup, jobsLookup JobLookup, oracle scoring.Oracle) *Service {
	return &Service{Repo: repo, Resumes: resumesLookup, Jobs: jobsLookup, Oracle: oracle}
}

// Apply records that userID applied to jobID with resumeID and scores the
// pair. Repeating a call for the same user and job returns the first
// application without scoring again. Scoring happens after the application
// row is committed; its failure is logged and never returned.
func (s *Service) Apply(ctx context.Context, userID, jobID, resumeID int64) (ApplyResult, error) {
	existingID, found, err := s.Repo.FindByUserJob(ctx, userID, jobID)
	if err != nil {
		return ApplyResult{}, applyFailed(err)
	}
	if found {
		return s.existing(ctx, existingID, userID, jobID), nil
	}

	resume, err := s.Resumes.Get(ctx, resumeID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return ApplyResult{}, ErrResumeNotOwned
		}
		return ApplyResult{}, applyFailed(err)
	}
	if resume.UserID != userID {
		return ApplyResult{}, ErrResumeNotOwned
	}

	job, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return ApplyResult{}, ErrJobNotFound
		}
		return ApplyResult{}, applyFailed(err)
	}

	id, created, err := s.Repo.Create(ctx, userID, jobID, resumeID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return ApplyResult{}, err
		}
		return ApplyResult{}, applyFailed(err)
	}
	if !created {
		return s.existing(ctx, id, userID, jobID), nil
	}

	metrics.IncApplicationCreated()
	telemetry.Info("application.created", map[string]any{
		"application_id": id,
		"user_id":        userID,
		"job_id":         jobID,
		"resume_id":      resumeID,
	})

	result := ApplyResult{ApplicationID: id, Created: true}
	score, err := s.scoreApplication(context.WithoutCancel(ctx), id, resume.RawText, job.Description)
	if err != nil {
		metrics.IncScoreFailed()
		telemetry.Warn("application.score_failed", map[string]any{
			"application_id": id,
			"error":          err,
		})
		return result, nil
	}
	result.Score = &score
	return result, nil
}

// existing builds the idempotent result. The stored score is attached when
// one can be read.
func (s *Service) existing(ctx context.Context, id, userID, jobID int64) ApplyResult {
	metrics.IncApplicationExisting()
	telemetry.Info("application.existing", map[string]any{
		"application_id": id,
		"user_id":        userID,
		"job_id":         jobID,
	})

	result := ApplyResult{ApplicationID: id}
	score, err := s.Repo.LatestScore(ctx, id)
	switch {
	case err == nil:
		result.Score = &score
	case !errors.Is(err, ErrNoScore):
		telemetry.Warn("application.score_lookup_failed", map[string]any{
			"application_id": id,
			"error":          err,
		})
	}
	return result
}

// scoreApplication asks the oracle for a verdict and stores it.
func (s *Service) scoreApplication(ctx context.Context, applicationID int64, resumeText, jobDescription string) (Score, error) {
	if s.Oracle == nil {
		return Score{}, scoring.ErrNotConfigured
	}
	start := time.Now()
	verdict, err := s.Oracle.Score(ctx, resumeText, jobDescription)
	metrics.ObserveScoringDurationMs(metrics.Since(start))
	if err != nil {
		return Score{}, err
	}
	score, err := s.Repo.InsertScore(ctx, applicationID, verdict)
	if err != nil {
		return Score{}, err
	}
	metrics.IncScoreRecorded()
	telemetry.Info("application.scored", map[string]any{
		"application_id": applicationID,
		"ngmi_score":     score.Score,
	})
	return score, nil
}

func applyFailed(err error) error {
	if errors.Is(err, apperr.ErrConnectionLost) {
		return apperr.Wrap(ErrApplyFailed, "Database connection lost during application", err)
	}
	return apperr.Wrap(ErrApplyFailed, "Failed to create application", err)
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Summary, error) {
	return s.Repo.ListForUser(ctx, userID)
}

func (s *Service) NGMIDetail(ctx context.Context, applicationID int64) (Detail, error) {
	return s.Repo.NGMIDetail(ctx, applicationID)
}

// Delete removes an application owned by userID together with its scores.
func (s *Service) Delete(ctx context.Context, userID, applicationID int64) error {
	if err := s.Repo.DeleteOwned(ctx, userID, applicationID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.Wrap(apperr.ErrNotFound, "application not found or access denied", apperr.ErrAccessDenied)
		}
		return err
	}
	telemetry.Info("application.deleted", map[string]any{
		"application_id": applicationID,
		"user_id":        userID,
	})
	return nil
}
