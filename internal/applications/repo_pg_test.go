package applications

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"ngmi-backend/internal/scoring"
	"ngmi-backend/internal/shared/apperr"
	"ngmi-backend/internal/shared/storage/db"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return &PGRepo{DB: &db.Handle{DB: sqlDB, Attempts: 1}}, mock
}

func TestPGRepoCreateInsertsOnce(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO applications .* ON CONFLICT \\(user_id, job_id\\) DO NOTHING").
		WithArgs(int64(1), int64(5), int64(10), StatusSubmitted).
		WillReturnRows(sqlmock.NewRows([]string{"application_id"}).AddRow(int64(100)))

	id, created, err := repo.Create(context.Background(), 1, 5, 10)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 100 || !created {
		t.Fatalf("got id=%d created=%v", id, created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateReadsBackOnConflict(t *testing.T) {
	for _, tt := range []struct {
		name string
		err  error
	}{
		{name: "suppressed insert", err: sql.ErrNoRows},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)

			mock.ExpectQuery("INSERT INTO applications").WillReturnError(tt.err)
			mock.ExpectQuery("SELECT application_id FROM applications WHERE user_id = \\$1 AND job_id = \\$2").
				WithArgs(int64(1), int64(5)).
				WillReturnRows(sqlmock.NewRows([]string{"application_id"}).AddRow(int64(100)))

			id, created, err := repo.Create(context.Background(), 1, 5, 10)
			if err != nil {
				t.Fatalf("conflict must not surface: %v", err)
			}
			if id != 100 || created {
				t.Fatalf("got id=%d created=%v", id, created)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("ExpectationsWereMet: %v", err)
			}
		})
	}
}

func TestPGRepoCreateMapsForeignKeyViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO applications").
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "applications_resume_id_fkey"})

	_, _, err := repo.Create(context.Background(), 1, 5, 10)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPGRepoCreateSurfacesConnectionLoss(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO applications").WillReturnError(errors.New("write: connection reset by peer"))

	_, _, err := repo.Create(context.Background(), 1, 5, 10)
	if !errors.Is(err, apperr.ErrConnectionLost) {
		t.Fatalf("expected connection lost, got %v", err)
	}
}

func TestPGRepoFindByUserJob(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT application_id FROM applications").
		WithArgs(int64(1), int64(5)).
		WillReturnError(sql.ErrNoRows)

	_, found, err := repo.FindByUserJob(context.Background(), 1, 5)
	if err != nil || found {
		t.Fatalf("expected not found without error, got found=%v err=%v", found, err)
	}
}

func TestPGRepoInsertScore(t *testing.T) {
	repo, mock := newMockRepo(t)
	generated := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO ngmi_scores").
		WithArgs(int64(100), 72.0, "ok", "more go").
		WillReturnRows(sqlmock.NewRows([]string{"generated_at"}).AddRow(generated))

	s, err := repo.InsertScore(context.Background(), 100, scoring.Verdict{Score: 72, Comment: "ok", Feedback: "more go"})
	if err != nil {
		t.Fatalf("InsertScore: %v", err)
	}
	if s.ApplicationID != 100 || s.Score != 72 || !s.GeneratedAt.Equal(generated) {
		t.Fatalf("unexpected score %+v", s)
	}
}

func TestPGRepoLatestScoreMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM ngmi_scores").WithArgs(int64(100)).WillReturnError(sql.ErrNoRows)

	if _, err := repo.LatestScore(context.Background(), 100); !errors.Is(err, ErrNoScore) {
		t.Fatalf("expected ErrNoScore, got %v", err)
	}
}

func TestPGRepoListForUserHandlesNullScores(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM applications a").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"application_id", "applied_at", "status", "title", "company", "ngmi_score", "ngmi_comment"}).
			AddRow(int64(101), now, "submitted", "SRE", "Acme", nil, nil).
			AddRow(int64(100), now.Add(-time.Hour), "submitted", "Backend Engineer", "Acme", 72.0, "ok"))

	items, err := repo.ListForUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].NGMIScore != nil || items[0].NGMIComment != nil {
		t.Fatalf("expected nil score fields, got %+v", items[0])
	}
	if items[1].NGMIScore == nil || *items[1].NGMIScore != 72 || *items[1].NGMIComment != "ok" {
		t.Fatalf("unexpected scored item %+v", items[1])
	}
}

func TestPGRepoNGMIDetailMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM ngmi_scores s").WithArgs(int64(100)).WillReturnError(sql.ErrNoRows)

	_, err := repo.NGMIDetail(context.Background(), 100)
	if !errors.Is(err, ErrNoScore) || !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNoScore, got %v", err)
	}
}

func TestPGRepoDeleteOwnedRemovesScoresFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT application_id FROM applications WHERE application_id = \\$1 AND user_id = \\$2 FOR UPDATE").
		WithArgs(int64(100), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"application_id"}).AddRow(int64(100)))
	mock.ExpectExec("DELETE FROM ngmi_scores").WithArgs(int64(100)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM applications").WithArgs(int64(100)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.DeleteOwned(context.Background(), 1, 100); err != nil {
		t.Fatalf("DeleteOwned: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteOwnedRejectsOtherUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT application_id FROM applications").
		WithArgs(int64(100), int64(2)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	if err := repo.DeleteOwned(context.Background(), 2, 100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoInsertScoreIsSentOnceWhenReplyIsLost(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	repo := &PGRepo{DB: &db.Handle{DB: sqlDB, Attempts: 3, BaseDelay: time.Millisecond}}

	mock.ExpectQuery("INSERT INTO ngmi_scores").
		WithArgs(int64(100), 72.0, "ok", "more go").
		WillReturnError(io.ErrUnexpectedEOF)

	_, err = repo.InsertScore(context.Background(), 100, scoring.Verdict{Score: 72, Comment: "ok", Feedback: "more go"})
	if !errors.Is(err, apperr.ErrConnectionLost) {
		t.Fatalf("expected ErrConnectionLost, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("score insert must be sent exactly once: %v", err)
	}
}

func TestPGRepoInsertScoreKeepsExistingScore(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO ngmi_scores .* WHERE NOT EXISTS").
		WithArgs(int64(100), 50.0, "again", "").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.InsertScore(context.Background(), 100, scoring.Verdict{Score: 50, Comment: "again"})
	if !errors.Is(err, ErrScoreExists) {
		t.Fatalf("expected ErrScoreExists, got %v", err)
	}
}
