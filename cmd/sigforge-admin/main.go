// Package main is the entrypoint for the sigforge admin CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/ironcrest/sigforge/internal/activity"
	"github.com/ironcrest/sigforge/internal/catalog"
	"github.com/ironcrest/sigforge/internal/db"
	"github.com/ironcrest/sigforge/internal/maintenance"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "sigforge-admin",
		Short:        "Operational tooling for the sigforge server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newSeedTemplatesCmd(),
		newPruneCmd(),
	)

	return rootCmd
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()
}

// connect opens a small pool against DATABASE_URL or the -db flag.
func connect(ctx context.Context, dbURL string, logger zerolog.Logger) (*db.DB, error) {
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return nil, fmt.Errorf("database URL required: use --db flag or set DATABASE_URL")
	}

	cfg := db.DefaultConfig(dbURL)
	cfg.MaxConns = 2
	cfg.MinConns = 1
	return db.New(ctx, cfg, logger)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sigforge-admin %s\n", Version)
			fmt.Printf("  Commit:     %s\n", Commit)
			fmt.Printf("  Built:      %s\n", BuildDate)
			fmt.Printf("  Go version: %s\n", runtime.Version())
			fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newSeedTemplatesCmd() *cobra.Command {
	var dbURL string

	cmd := &cobra.Command{
		Use:   "seed-templates",
		Short: "Upsert the canonical template catalog into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			database, err := connect(ctx, dbURL, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			count, err := catalog.NewService(database, logger).SeedTemplates(ctx)
			if err != nil {
				return fmt.Errorf("seed templates: %w", err)
			}
			fmt.Printf("seeded %d templates\n", count)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbURL, "db", "", "Database URL (or set DATABASE_URL env var)")
	return cmd
}

func newPruneCmd() *cobra.Command {
	var (
		dbURL         string
		retentionDays int
	)

	cmd := &cobra.Command{
		Use:   "prune-links",
		Short: "Deactivate expired tracking links and prune old analytics rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			database, err := connect(ctx, dbURL, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			// The feed persists the expiry event so dashboards pick it up
			// on their next poll even with no server running.
			feed := activity.NewFeed(database, activity.DefaultConfig(), logger)
			maintenance.NewScheduler(database, feed, retentionDays, logger).RunNow()
			return nil
		},
	}

	cmd.Flags().StringVar(&dbURL, "db", "", "Database URL (or set DATABASE_URL env var)")
	cmd.Flags().IntVar(&retentionDays, "retention-days", 90, "Analytics retention window in days")
	return cmd
}
