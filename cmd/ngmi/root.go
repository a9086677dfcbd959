package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"ngmi-backend/internal/bootstrap"
	"ngmi-backend/internal/shared/config"
)

var rootCmd = &cobra.Command{
	Use:          "ngmi",
	Short:        "Job application tracker with NGMI scoring",
	Long:         "ngmi runs the tracking API and offers admin commands against the same store.",
	SilenceUsage: true,
	RunE:         runServe,
}

// buildApp loads the environment configuration and wires the services.
func buildApp(ctx context.Context) (*bootstrap.App, error) {
	return bootstrap.Build(ctx, config.Load())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
