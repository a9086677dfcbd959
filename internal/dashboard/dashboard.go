// Package dashboard serves read-only views over the store for the admin UI.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ngmi-backend/internal/shared/storage/db"
)

const (
	DefaultActivityLimit = 20
	MaxActivityLimit     = 200
)

// Tables is the fixed set counted by Counts, in display order.
var Tables = []string{
	"users",
	"resumes",
	"skills",
	"resume_skills",
	"job_postings",
	"applications",
	"ngmi_scores",
}

type TableCount struct {
	Table string `json:"table"`
	Count int64  `json:"count"`
}

// Event is one row of the activity feed.
type Event struct {
	Table     string    `json:"table_name"`
	Timestamp time.Time `json:"ts"`
	Summary   string    `json:"summary"`
}

type Service struct {
	DB *db.Handle
}

func NewService(h *db.Handle) *Service {
	return &Service{DB: h}
}

func (s *Service) Counts(ctx context.Context) ([]TableCount, error) {
	out := make([]TableCount, 0, len(Tables))
	for _, table := range Tables {
		query := "SELECT COUNT(*) FROM " + pgx.Identifier{table}.Sanitize()
		var n int64
		if err := s.DB.QueryOne(ctx, query, nil, &n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		out = append(out, TableCount{Table: table, Count: n})
	}
	return out, nil
}

// Activity returns the newest creations across users, resumes, applications
// and scores. limit is clamped to [1, MaxActivityLimit].
func (s *Service) Activity(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}
	const query = `
SELECT table_name, ts, summary FROM (
    SELECT 'users' AS table_name, created_at AS ts, email AS summary FROM users
    UNION ALL
    SELECT 'resumes', uploaded_at, file_name FROM resumes
    UNION ALL
    SELECT 'applications', applied_at, CONCAT('job ', job_id, ' resume ', resume_id) FROM applications
    UNION ALL
    SELECT 'ngmi_scores', generated_at, CONCAT('application ', application_id, ' score ', ngmi_score) FROM ngmi_scores
) AS combined
WHERE ts IS NOT NULL
ORDER BY ts DESC
LIMIT $1`
	rows, err := s.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Table, &e.Timestamp, &e.Summary); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
