package resumes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ngmi-backend/internal/extract"
	"ngmi-backend/internal/scoring"
	"ngmi-backend/internal/shared/apperr"
	"ngmi-backend/internal/shared/metrics"
	"ngmi-backend/internal/shared/storage/object"
	"ngmi-backend/internal/shared/telemetry"
	"ngmi-backend/internal/shared/util"
	"ngmi-backend/internal/users"
)

// MaxFileBytes is the upload ceiling.
const MaxFileBytes = 10 << 20

// Users is the slice of the users service the upload path needs.
type Users interface {
	Get(ctx context.Context, userID int64) (users.User, error)
}

type Service struct {
	Repo   Repo
	Store  object.ObjectStore
	Oracle scoring.Oracle
	// Users is optional. When set, uploads for unknown users are rejected
	// before anything is written to storage.
	Users Users
	// ExtractText reads the stored file back as text. Defaults to extract.Text.
	ExtractText func(ctx context.Context, store object.ObjectStore, key string) (string, error)
}

func NewService(repo Repo, store object.ObjectStore, oracle scoring.Oracle, usersSvc Users) *Service {
	return &Service{Repo: repo, Store: store, Oracle: oracle, Users: usersSvc}
}

// UploadFile ingests a resume from the local filesystem.
func (s *Service) UploadFile(ctx context.Context, userID int64, path string) (UploadResult, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return UploadResult{}, apperr.E(apperr.ErrValidation, "File not found")
	}
	f, err := os.Open(path)
	if err != nil {
		return UploadResult{}, apperr.E(apperr.ErrValidation, "File is not readable")
	}
	defer f.Close()
	return s.Upload(ctx, userID, filepath.Base(path), info.Size(), f)
}

// Upload validates and stores a resume, extracts its text and records it.
// The resume row insert is the commit point: every failure before it removes
// the stored object, and skill extraction after it never fails the upload.
func (s *Service) Upload(ctx context.Context, userID int64, fileName string, size int64, r io.Reader) (UploadResult, error) {
	if err := validateUpload(fileName, size); err != nil {
		return UploadResult{}, err
	}
	cleanName, err := util.SanitizeFileName(util.BaseName(fileName))
	if err != nil {
		return UploadResult{}, apperr.Wrap(apperr.ErrValidation, "Invalid file name", err)
	}
	if s.Users != nil {
		if _, err := s.Users.Get(ctx, userID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return UploadResult{}, ErrUserNotFound
			}
			return UploadResult{}, uploadFailed(err)
		}
	}

	key, _, _, err := s.Store.Save(ctx, strconv.FormatInt(userID, 10), cleanName, io.LimitReader(r, MaxFileBytes))
	if err != nil {
		return UploadResult{}, apperr.Wrap(ErrUploadFailed, "Failed to store file", err)
	}

	committed := false
	defer func() {
		if !committed {
			s.removeFile(key)
		}
	}()

	extractText := s.ExtractText
	if extractText == nil {
		extractText = extract.Text
	}
	text, err := extractText(ctx, s.Store, key)
	if err != nil {
		return UploadResult{}, apperr.Wrap(apperr.ErrValidation, "Failed to parse resume", err)
	}
	if strings.TrimSpace(text) == "" {
		return UploadResult{}, apperr.E(apperr.ErrValidation, "Resume appears to be empty or unreadable")
	}

	created, err := s.Repo.Create(ctx, Resume{
		UserID:   userID,
		FileName: cleanName,
		FilePath: key,
		RawText:  text,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return UploadResult{}, err
		}
		return UploadResult{}, uploadFailed(err)
	}
	committed = true

	metrics.IncResumeUploaded()
	telemetry.Info("resume.uploaded", map[string]any{
		"user_id":   userID,
		"resume_id": created.ID,
		"file_name": created.FileName,
	})

	result := UploadResult{ResumeID: created.ID, FileName: created.FileName}
	attached, err := s.attachSkills(context.WithoutCancel(ctx), created.ID, text)
	if err != nil {
		metrics.IncSkillExtractionFailed()
		telemetry.Warn("resume.skills_failed", map[string]any{
			"resume_id": created.ID,
			"error":     err,
		})
	}
	result.SkillsAttached = attached
	return result, nil
}

func validateUpload(fileName string, size int64) error {
	switch {
	case size > MaxFileBytes:
		return apperr.E(apperr.ErrValidation, fmt.Sprintf("File too large (%.1fMB). Max size: 10MB", float64(size)/1024/1024))
	case size <= 0:
		return apperr.E(apperr.ErrValidation, "File is empty")
	case !strings.EqualFold(filepath.Ext(util.BaseName(fileName)), ".pdf"):
		return apperr.E(apperr.ErrValidation, "Only PDF files are supported")
	}
	return nil
}

func uploadFailed(err error) error {
	if errors.Is(err, apperr.ErrConnectionLost) {
		return apperr.Wrap(ErrUploadFailed, "Database connection lost during upload", err)
	}
	return apperr.Wrap(ErrUploadFailed, "Failed to save resume to database", err)
}

// attachSkills asks the oracle for skill names and links each one to the
// resume. A failing skill is logged and skipped. The returned error covers the
// phase as a whole and is for the caller to log.
func (s *Service) attachSkills(ctx context.Context, resumeID int64, text string) (int, error) {
	if s.Oracle == nil {
		return 0, scoring.ErrNotConfigured
	}
	names, err := s.Oracle.ExtractSkills(ctx, text)
	if err != nil {
		return 0, err
	}

	attached := 0
	for _, name := range normalizeSkills(names) {
		skillID, err := s.Repo.UpsertSkill(ctx, name)
		if err == nil {
			err = s.Repo.LinkSkill(ctx, resumeID, skillID)
		}
		if err != nil {
			telemetry.Warn("resume.skill_failed", map[string]any{
				"resume_id": resumeID,
				"skill":     name,
				"error":     err,
			})
			continue
		}
		attached++
	}
	return attached, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]Summary, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *Service) Details(ctx context.Context, resumeID int64) (Details, error) {
	res, err := s.Repo.Get(ctx, resumeID)
	if err != nil {
		return Details{}, err
	}
	skills, err := s.Repo.Skills(ctx, resumeID)
	if err != nil {
		return Details{}, err
	}
	return Details{Resume: res, Skills: skills}, nil
}

// Get returns the stored resume.
func (s *Service) Get(ctx context.Context, resumeID int64) (Resume, error) {
	return s.Repo.Get(ctx, resumeID)
}

// Delete removes an owned resume with its applications, their scores and its
// skill links, then removes the stored file. A file that cannot be removed is
// logged and left behind.
func (s *Service) Delete(ctx context.Context, userID, resumeID int64) error {
	filePath, err := s.Repo.DeleteOwned(ctx, userID, resumeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.Wrap(apperr.ErrNotFound, "Resume not found or access denied", apperr.ErrAccessDenied)
		}
		return err
	}
	telemetry.Info("resume.deleted", map[string]any{"user_id": userID, "resume_id": resumeID})
	if filePath != "" {
		s.removeFile(filePath)
	}
	return nil
}

func (s *Service) removeFile(key string) {
	if err := s.Store.Delete(context.Background(), key); err != nil {
		telemetry.Warn("resume.file_cleanup_failed", map[string]any{
			"key":   key,
			"error": err,
		})
	}
}
