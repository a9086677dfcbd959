package users

import (
	"context"
	"errors"
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

// Create registers a user. Emails are stored trimmed and lower-cased.
func (s *Service) Create(ctx context.Context, email, fullName string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	fullName = strings.TrimSpace(fullName)
	if email == "" || !strings.Contains(email, "@") {
		return User{}, apperr.E(apperr.ErrValidation, "a valid email is required")
	}
	if fullName == "" {
		return User{}, apperr.E(apperr.ErrValidation, "full_name is required")
	}

	user, err := s.Repo.Create(ctx, email, fullName)
	if err != nil {
		return User{}, err
	}
	telemetry.Info("user.created", map[string]any{"user_id": user.ID})
	return user, nil
}

func (s *Service) Get(ctx context.Context, userID int64) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	return s.Repo.GetByID(ctx, userID)
}
