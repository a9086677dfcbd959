package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ngmi-backend/internal/shared/apperr"
	"ngmi-backend/internal/shared/telemetry"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Add stores a posting from already extracted fields.
func (s *Service) Add(ctx context.Context, title, company, description string) (Job, error) {
	job := Job{
		Title:       strings.TrimSpace(title),
		Company:     strings.TrimSpace(company),
		Description: strings.TrimSpace(description),
	}
	switch {
	case job.Title == "":
		return Job{}, apperr.E(apperr.ErrValidation, "title is required")
	case job.Company == "":
		return Job{}, apperr.E(apperr.ErrValidation, "company is required")
	case job.Description == "":
		return Job{}, apperr.E(apperr.ErrValidation, "description is required")
	}

	created, err := s.Repo.Add(ctx, job)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return Job{}, apperr.Wrap(apperr.ErrConflict, fmt.Sprintf("job '%s' at %s already exists", job.Title, job.Company), err)
		}
		return Job{}, err
	}
	telemetry.Info("job.added", map[string]any{"job_id": created.ID, "company": created.Company})
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]Job, error) {
	return s.Repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, jobID int64) (Job, error) {
	return s.Repo.Get(ctx, jobID)
}

// Delete removes a posting. Postings referenced by applications are kept.
func (s *Service) Delete(ctx context.Context, jobID int64) error {
	if err := s.Repo.Delete(ctx, jobID); err != nil {
		return err
	}
	telemetry.Info("job.deleted", map[string]any{"job_id": jobID})
	return nil
}
