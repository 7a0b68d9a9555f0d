package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/V4T54L/rentwise/internal/adapter/repository/postgres"
	"github.com/V4T54L/rentwise/internal/pkg/logger"

	_ "github.com/lib/pq"
)

func main() {
	var (
		dbURL    string
		logLevel string
	)

	// withMigrator opens the database named by --database-url or
	// POSTGRES_URL and hands a migrator to fn.
	withMigrator := func(fn func(*postgres.Migrator) error) error {
		if dbURL == "" {
			dbURL = os.Getenv("POSTGRES_URL")
		}
		if dbURL == "" {
			return errors.New("--database-url or POSTGRES_URL is required")
		}
		db, err := sql.Open("postgres", dbURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		mg, err := postgres.NewMigrator(db, logger.New(logLevel, nil))
		if err != nil {
			db.Close()
			return err
		}
		// Close also closes db.
		defer mg.Close()
		return fn(mg)
	}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the rental marketplace database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbURL, "database-url", "", "postgres connection URL (default $POSTGRES_URL)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(mg *postgres.Migrator) error { return mg.Up() })
			},
		},
		&cobra.Command{
			Use:   "down [n]",
			Short: "Roll back the last n migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n := 1
				if len(args) == 1 {
					v, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("invalid step count %q", args[0])
					}
					n = v
				}
				return withMigrator(func(mg *postgres.Migrator) error { return mg.Down(n) })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(mg *postgres.Migrator) error {
					v, dirty, err := mg.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
					return nil
				})
			},
		},
	)

	if err := root.Execute(); err != nil {
		slog.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}
