package main

// Apply or inspect database migrations:
//   go run ./cmd/migrate          # up
//   go run ./cmd/migrate status

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"ngmi-backend/internal/shared/config"
	"ngmi-backend/internal/shared/storage/db"
	"ngmi-backend/internal/shared/telemetry"
)

func main() {
	action := "up"
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	var run func(context.Context, *sql.DB) error
	switch action {
	case "up":
		run = db.RunMigrations
	case "status":
		run = db.MigrationStatus
	default:
		fmt.Fprintf(os.Stderr, "usage: migrate [up|status]\n")
		os.Exit(2)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, config.Load().DatabaseURL, db.CLIPool().WithEnv())
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer pool.Close()

	if err := run(ctx, pool); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"action": action, "error": err})
		os.Exit(1)
	}
}
