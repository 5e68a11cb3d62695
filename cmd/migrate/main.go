package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"foodcart/internal/config"
	"foodcart/internal/database"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var databaseURL string

	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "manage the foodcart database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "",
		"postgres URL (defaults to the DB_* environment variables)")

	resolveURL := func() string {
		if databaseURL != "" {
			return databaseURL
		}
		cfg := config.LoadDatabase()
		return cfg.ConnectionString()
	}

	rootCmd.AddCommand(
		upCommand(resolveURL),
		downCommand(resolveURL),
		checkCommand(resolveURL),
	)

	return rootCmd
}

func upCommand(resolveURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return database.MigrateUp(resolveURL(), config.NewLogger(loggerConfig()))
		},
	}
}

func downCommand(resolveURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "down [steps]",
		Short: "roll back migrations, one step by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := parseSteps(args)
			if err != nil {
				return err
			}
			return database.MigrateDown(resolveURL(), steps, config.NewLogger(loggerConfig()))
		},
	}
}

func checkCommand(resolveURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "verify connectivity and print the schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			url := resolveURL()
			pool, err := database.Open(ctx, url, database.DefaultPoolOptions())
			if err != nil {
				return err
			}
			defer pool.Close()

			var dbName string
			if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
				return fmt.Errorf("failed to query database name: %w", err)
			}

			m, err := database.NewMigrator(url)
			if err != nil {
				return err
			}
			defer m.Close()

			version, dirty, err := m.Version()
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "connected to %s, no migrations applied\n", dbName)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "connected to %s, schema version %d (dirty: %t)\n", dbName, version, dirty)
			return nil
		},
	}
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(args[0])
	if err != nil || steps < 1 {
		return 0, fmt.Errorf("invalid steps %q: must be a positive integer", args[0])
	}
	return steps, nil
}

func loggerConfig() config.LoggerConfig {
	return config.LoggerConfig{Level: "info", Format: "console"}
}
