package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"ngmi-backend/internal/shared/apperr"
	"ngmi-backend/internal/shared/telemetry"
)

const (
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 100 * time.Millisecond
)

// Handle is the store capability handed to repositories. It wraps the pool and
// retries calls that fail because the connection went away. Once the attempts
// are spent the error wraps apperr.ErrConnectionLost.
type Handle struct {
	DB        *sql.DB
	Attempts  int
	BaseDelay time.Duration
}

// NewHandle wraps db with the given number of attempts per call.
func NewHandle(db *sql.DB, attempts int) *Handle {
	return &Handle{DB: db, Attempts: attempts}
}

// Exec runs a statement that returns no rows. It is only resent when the
// first attempt provably never reached the server.
func (h *Handle) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := h.retry(ctx, "exec", SafeToResend, func() error {
		var err error
		res, err = h.DB.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

// QueryOne scans the first row into dest. sql.ErrNoRows is returned untouched.
// Use it for reads and for writes that are harmless to repeat.
func (h *Handle) QueryOne(ctx context.Context, query string, args []any, dest ...any) error {
	return h.retry(ctx, "query_one", IsTransient, func() error {
		return h.DB.QueryRowContext(ctx, query, args...).Scan(dest...)
	})
}

// WriteOne is QueryOne for statements that must not run twice, such as a
// plain INSERT ... RETURNING. A lost connection after the statement was sent
// is reported as ErrConnectionLost instead of being replayed.
func (h *Handle) WriteOne(ctx context.Context, query string, args []any, dest ...any) error {
	return h.retry(ctx, "write_one", SafeToResend, func() error {
		return h.DB.QueryRowContext(ctx, query, args...).Scan(dest...)
	})
}

// Query runs a query returning rows. Callers must close the rows.
func (h *Handle) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	var rows *sql.Rows
	err := h.retry(ctx, "query", IsTransient, func() error {
		var err error
		rows, err = h.DB.QueryContext(ctx, query, args...)
		return err
	})
	return rows, err
}

// InTx runs fn inside a transaction, committing when fn returns nil. A
// transient failure before COMMIT rolls back and reruns fn from the start.
// A failed COMMIT is only rerun when it never reached the server, since the
// transaction may otherwise have committed.
func (h *Handle) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var commitFailed bool
	canRetry := func(err error) bool {
		if commitFailed {
			return SafeToResend(err)
		}
		return IsTransient(err)
	}
	return h.retry(ctx, "tx", canRetry, func() error {
		commitFailed = false
		tx, err := h.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			commitFailed = true
			return err
		}
		return nil
	})
}

func (h *Handle) retry(ctx context.Context, op string, canRetry func(error) bool, fn func() error) error {
	if h == nil || h.DB == nil {
		return apperr.E(apperr.ErrConnectionLost, "database not configured")
	}
	attempts := h.Attempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !canRetry(err) {
			if IsTransient(err) {
				return apperr.Wrap(apperr.ErrConnectionLost, "", err)
			}
			return err
		}
		if attempt == attempts {
			break
		}

		delay := h.backoffDelay(attempt)
		telemetry.Warn("db.retry", map[string]any{
			"op":       op,
			"attempt":  attempt,
			"attempts": attempts,
			"delay_ms": delay.Milliseconds(),
			"error":    err,
		})
		select {
		case <-ctx.Done():
			return apperr.Wrap(apperr.ErrConnectionLost, "", fmt.Errorf("retry cancelled: %w", ctx.Err()))
		case <-time.After(delay):
		}
	}
	return apperr.Wrap(apperr.ErrConnectionLost, "", err)
}

// backoffDelay doubles the base delay per attempt and applies ±30% jitter.
func (h *Handle) backoffDelay(attempt int) time.Duration {
	delay := h.BaseDelay
	if delay <= 0 {
		delay = defaultRetryBaseDelay
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// IsTransient reports whether err looks like a lost or unusable connection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exception. 57P01-57P03: server shutting down.
		return strings.HasPrefix(pgErr.Code, "08") || pgErr.Code == "57P01" || pgErr.Code == "57P02" || pgErr.Code == "57P03"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if pgconn.SafeToRetry(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "conn closed")
}

// SafeToResend reports whether err proves the statement never reached the
// server, so sending it again cannot apply it twice.
func SafeToResend(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, driver.ErrBadConn) || pgconn.SafeToRetry(err)
}

// IsUniqueViolation reports whether err is a Postgres unique_violation (23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation reports whether err is a Postgres foreign_key_violation (23503).
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
