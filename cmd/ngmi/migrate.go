package main

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"

	"ngmi-backend/internal/shared/config"
	"ngmi-backend/internal/shared/storage/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrationDB(cmd, db.RunMigrations)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrationDB(cmd, db.MigrationStatus)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func withMigrationDB(cmd *cobra.Command, fn func(ctx context.Context, database *sql.DB) error) error {
	ctx := cmd.Context()
	cfg := config.Load()
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.CLIPool().WithEnv())
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return fn(ctx, sqlDB)
}
