package resumes

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ngmi-backend/internal/scoring"
	"ngmi-backend/internal/shared/apperr"
	"ngmi-backend/internal/shared/storage/object"
	"ngmi-backend/internal/shared/storage/object/local"
	"ngmi-backend/internal/users"
)

type fakeOracle struct {
	skills []string
	err    error
	calls  int
}

func (f *fakeOracle) Score(ctx context.Context, resumeText, jobDescription string) (scoring.Verdict, error) {
	return scoring.Verdict{}, errors.New("not used")
}

func (f *fakeOracle) ExtractSkills(ctx context.Context, resumeText string) ([]string, error) {
	f.calls++
	return f.skills, f.err
}

type stubUsers struct{ known map[int64]bool }

func (s stubUsers) Get(ctx context.Context, userID int64) (users.User, error) {
	if !s.known[userID] {
		return users.User{}, users.ErrNotFound
	}
	return users.User{ID: userID}, nil
}

func staticText(text string) func(context.Context, object.ObjectStore, string) (string, error) {
	return func(ctx context.Context, store object.ObjectStore, key string) (string, error) {
		return text, nil
	}
}

func newTestService(t *testing.T, oracle scoring.Oracle) (*Service, *MemoryRepo, string) {
	t.Helper()
	dir := t.TempDir()
	repo := NewMemoryRepo()
	svc := NewService(repo, local.New(dir), oracle, nil)
	svc.ExtractText = staticText("Jane Doe\nGo engineer")
	return svc, repo, dir
}

func storedFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	return files
}

func pdfBody() *bytes.Reader {
	return bytes.NewReader([]byte("%PDF-1.4 test body"))
}

func TestUploadEmptyFileLeavesNothingBehind(t *testing.T) {
	svc, repo, dir := newTestService(t, &fakeOracle{})

	_, err := svc.Upload(context.Background(), 1, "cv.pdf", 0, bytes.NewReader(nil))
	if !errors.Is(err, apperr.ErrValidation) || apperr.Message(err) != "File is empty" {
		t.Fatalf("expected 'File is empty' validation error, got %v", err)
	}
	items, _ := repo.ListByUser(context.Background(), 1)
	if len(items) != 0 {
		t.Fatalf("expected no resume rows, got %d", len(items))
	}
	if files := storedFiles(t, dir); len(files) != 0 {
		t.Fatalf("expected empty storage, found %v", files)
	}
}

func TestUploadValidation(t *testing.T) {
	svc, _, dir := newTestService(t, &fakeOracle{})

	tests := []struct {
		name     string
		fileName string
		size     int64
		want     string
	}{
		{name: "too large", fileName: "cv.pdf", size: 12 << 20, want: "File too large (12.0MB). Max size: 10MB"},
		{name: "too large wins over extension", fileName: "cv.docx", size: 11 << 20, want: "File too large (11.0MB). Max size: 10MB"},
		{name: "empty", fileName: "cv.pdf", size: 0, want: "File is empty"},
		{name: "wrong extension", fileName: "cv.docx", size: 100, want: "Only PDF files are supported"},
		{name: "no extension", fileName: "resume", size: 100, want: "Only PDF files are supported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), 1, tt.fileName, tt.size, pdfBody())
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if got := apperr.Message(err); got != tt.want {
				t.Fatalf("message = %q, want %q", got, tt.want)
			}
		})
	}
	if files := storedFiles(t, dir); len(files) != 0 {
		t.Fatalf("validation failures must not store files, found %v", files)
	}
}

func TestUploadAcceptsUpperCaseExtension(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeOracle{})
	res, err := svc.Upload(context.Background(), 1, "CV.PDF", 18, pdfBody())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.FileName != "CV.PDF" {
		t.Fatalf("unexpected file name %q", res.FileName)
	}
}

func TestUploadFileChecksPath(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeOracle{})

	_, err := svc.UploadFile(context.Background(), 1, filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, apperr.ErrValidation) || apperr.Message(err) != "File not found" {
		t.Fatalf("expected 'File not found', got %v", err)
	}

	empty := filepath.Join(t.TempDir(), "empty.pdf")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err = svc.UploadFile(context.Background(), 1, empty)
	if apperr.Message(err) != "File is empty" {
		t.Fatalf("expected 'File is empty', got %v", err)
	}

	valid := filepath.Join(t.TempDir(), "jane.pdf")
	if err := os.WriteFile(valid, []byte("%PDF-1.4 body"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, err := svc.UploadFile(context.Background(), 1, valid)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if res.ResumeID == 0 || res.FileName != "jane.pdf" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestUploadRemovesFileWhenTextIsBlank(t *testing.T) {
	svc, repo, dir := newTestService(t, &fakeOracle{})
	svc.ExtractText = staticText(" \n\t ")

	_, err := svc.Upload(context.Background(), 1, "cv.pdf", 18, pdfBody())
	if apperr.Message(err) != "Resume appears to be empty or unreadable" {
		t.Fatalf("unexpected error %v", err)
	}
	if files := storedFiles(t, dir); len(files) != 0 {
		t.Fatalf("expected stored file to be removed, found %v", files)
	}
	items, _ := repo.ListByUser(context.Background(), 1)
	if len(items) != 0 {
		t.Fatalf("expected no rows, got %d", len(items))
	}
}

func TestUploadRemovesFileWhenParseFails(t *testing.T) {
	svc, _, dir := newTestService(t, &fakeOracle{})
	svc.ExtractText = func(ctx context.Context, store object.ObjectStore, key string) (string, error) {
		return "", errors.New("malformed pdf")
	}

	_, err := svc.Upload(context.Background(), 1, "cv.pdf", 18, pdfBody())
	if !errors.Is(err, apperr.ErrValidation) || apperr.Message(err) != "Failed to parse resume" {
		t.Fatalf("unexpected error %v", err)
	}
	if files := storedFiles(t, dir); len(files) != 0 {
		t.Fatalf("expected stored file to be removed, found %v", files)
	}
}

type failingCreateRepo struct {
	*MemoryRepo
	err error
}

func (r failingCreateRepo) Create(ctx context.Context, res Resume) (Resume, error) {
	return Resume{}, r.err
}

func TestUploadRemovesFileWhenInsertFails(t *testing.T) {
	svc, _, dir := newTestService(t, &fakeOracle{})
	svc.Repo = failingCreateRepo{
		MemoryRepo: NewMemoryRepo(),
		err:        apperr.Wrap(apperr.ErrConnectionLost, "", errors.New("connection reset by peer")),
	}

	_, err := svc.Upload(context.Background(), 1, "cv.pdf", 18, pdfBody())
	if !errors.Is(err, ErrUploadFailed) || !errors.Is(err, apperr.ErrConnectionLost) {
		t.Fatalf("expected upload failure with connection lost, got %v", err)
	}
	if got := apperr.Message(err); got != "Database connection lost during upload" {
		t.Fatalf("unexpected message %q", got)
	}
	if files := storedFiles(t, dir); len(files) != 0 {
		t.Fatalf("expected stored file to be removed, found %v", files)
	}
}

func TestUploadRejectsUnknownUser(t *testing.T) {
	svc, _, dir := newTestService(t, &fakeOracle{})
	svc.Users = stubUsers{known: map[int64]bool{1: true}}

	_, err := svc.Upload(context.Background(), 2, "cv.pdf", 18, pdfBody())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if files := storedFiles(t, dir); len(files) != 0 {
		t.Fatalf("expected nothing stored, found %v", files)
	}
}

func TestUploadAttachesNormalizedSkills(t *testing.T) {
	oracle := &fakeOracle{skills: []string{"Go", "  go ", "PostgreSQL", "Ｋｕｂｅｒｎｅｔｅｓ", "Distributed   Systems", ""}}
	svc, _, _ := newTestService(t, oracle)

	res, err := svc.Upload(context.Background(), 1, "cv.pdf", 18, pdfBody())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.SkillsAttached != 4 {
		t.Fatalf("expected 4 skills attached, got %d", res.SkillsAttached)
	}

	d, err := svc.Details(context.Background(), res.ResumeID)
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	want := "distributed systems,go,kubernetes,postgresql"
	if got := strings.Join(d.Skills, ","); got != want {
		t.Fatalf("skills = %q, want %q", got, want)
	}
	if d.RawText != "Jane Doe\nGo engineer" || d.UserID != 1 {
		t.Fatalf("unexpected details %+v", d)
	}
}

func TestUploadSucceedsWhenSkillExtractionFails(t *testing.T) {
	oracle := &fakeOracle{err: apperr.Wrap(apperr.ErrUpstream, "oracle timed out", context.DeadlineExceeded)}
	svc, _, dir := newTestService(t, oracle)

	res, err := svc.Upload(context.Background(), 1, "cv.pdf", 18, pdfBody())
	if err != nil {
		t.Fatalf("skill failure must not fail the upload: %v", err)
	}
	if oracle.calls != 1 {
		t.Fatalf("expected one oracle call, got %d", oracle.calls)
	}
	d, err := svc.Details(context.Background(), res.ResumeID)
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if len(d.Skills) != 0 {
		t.Fatalf("expected no skills, got %v", d.Skills)
	}
	if files := storedFiles(t, dir); len(files) != 1 {
		t.Fatalf("expected the committed file to remain, found %v", files)
	}
}

func TestDeleteRemovesResumeDependentsAndFile(t *testing.T) {
	svc, repo, dir := newTestService(t, &fakeOracle{skills: []string{"go"}})
	var dependents []int64
	repo.DeleteDependents = func(resumeID int64) { dependents = append(dependents, resumeID) }

	res, err := svc.Upload(context.Background(), 1, "cv.pdf", 18, pdfBody())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := svc.Delete(context.Background(), 1, res.ResumeID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(dependents) != 1 || dependents[0] != res.ResumeID {
		t.Fatalf("expected dependents of %d to be removed, got %v", res.ResumeID, dependents)
	}
	if _, err := svc.Details(context.Background(), res.ResumeID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if files := storedFiles(t, dir); len(files) != 0 {
		t.Fatalf("expected stored file to be removed, found %v", files)
	}
}

func TestDeleteRejectsOtherUsersResume(t *testing.T) {
	svc, _, dir := newTestService(t, &fakeOracle{})
	res, err := svc.Upload(context.Background(), 1, "cv.pdf", 18, pdfBody())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	err = svc.Delete(context.Background(), 2, res.ResumeID)
	if !errors.Is(err, apperr.ErrNotFound) || !errors.Is(err, apperr.ErrAccessDenied) {
		t.Fatalf("expected not found / access denied, got %v", err)
	}
	if apperr.Message(err) != "Resume not found or access denied" {
		t.Fatalf("unexpected message %q", apperr.Message(err))
	}
	if _, err := svc.Details(context.Background(), res.ResumeID); err != nil {
		t.Fatalf("resume should survive: %v", err)
	}
	if files := storedFiles(t, dir); len(files) != 1 {
		t.Fatalf("expected file to survive, found %v", files)
	}
}

type failingDeleteStore struct {
	object.ObjectStore
}

func (failingDeleteStore) Delete(ctx context.Context, key string) error {
	return errors.New("permission denied")
}

func TestDeleteIgnoresFileCleanupFailure(t *testing.T) {
	svc, _, dir := newTestService(t, &fakeOracle{})
	res, err := svc.Upload(context.Background(), 1, "cv.pdf", 18, pdfBody())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	svc.Store = failingDeleteStore{ObjectStore: local.New(dir)}

	if err := svc.Delete(context.Background(), 1, res.ResumeID); err != nil {
		t.Fatalf("file cleanup failure must not fail delete: %v", err)
	}
	if _, err := svc.Details(context.Background(), res.ResumeID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected row to be gone, got %v", err)
	}
}
