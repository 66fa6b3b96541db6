package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/scaffold-api/migrations"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			cfg, logger, err := loadAppConfig(opts)
			if err != nil {
				return err
			}

			db, _, err := openDatabase(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			return runMigrations(cmd.Context(), db, cfg.Database.Driver, command, cmd.OutOrStdout(), logger)
		},
	}
	return cmd
}

// runMigrations executes a goose command against db and reports to out.
func runMigrations(
	ctx context.Context,
	db *sql.DB,
	driver string,
	command string,
	out io.Writer,
	logger *slog.Logger,
) error {
	provider, err := migrations.NewProvider(db, driver)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		for _, r := range results {
			logger.Info("migration applied", "version", r.Source.Version, "duration", r.Duration)
		}
		fmt.Fprintf(out, "applied %d migration(s)\n", len(results))

	case "down":
		result, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
		if result != nil {
			logger.Info("migration rolled back", "version", result.Source.Version)
			fmt.Fprintf(out, "rolled back version %d\n", result.Source.Version)
		}

	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("migrate status: %w", err)
		}
		for _, s := range statuses {
			fmt.Fprintf(out, "%-8d %-8s %s\n", s.Source.Version, s.State, s.Source.Path)
		}

	case "version":
		version, err := provider.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("migrate version: %w", err)
		}
		fmt.Fprintf(out, "%d\n", version)

	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
	return nil
}
