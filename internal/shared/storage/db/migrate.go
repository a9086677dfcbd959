package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"sync"

	"github.com/pressly/goose/v3"

	"ngmi-backend/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

var (
	gooseOnce sync.Once
	gooseErr  error
)

// goose keeps its base FS and dialect in package state.
func setupGoose() error {
	gooseOnce.Do(func() {
		goose.SetBaseFS(migrationFiles)
		gooseErr = goose.SetDialect("postgres")
	})
	return gooseErr
}

// RunMigrations brings the schema and seed postings up to date. A nil pool
// means the in-memory store is active and there is nothing to migrate.
func RunMigrations(ctx context.Context, pool *sql.DB) error {
	if pool == nil {
		return nil
	}
	if err := setupGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, pool, migrationsDir); err != nil {
		return err
	}
	version, err := goose.GetDBVersionContext(ctx, pool)
	if err != nil {
		return err
	}
	telemetry.Info("db.migrated", map[string]any{"version": version})
	return nil
}

// MigrationStatus prints the applied state of every embedded migration.
func MigrationStatus(ctx context.Context, pool *sql.DB) error {
	if pool == nil {
		return errors.New("migration status needs a database")
	}
	if err := setupGoose(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, pool, migrationsDir)
}
