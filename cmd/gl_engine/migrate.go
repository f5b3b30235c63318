package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SscSPs/gl_engine/internal/platform/config"
	"github.com/SscSPs/gl_engine/pkg/database"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back PostgreSQL schema migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.migrate(database.MigrateUp)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.migrate(database.MigrateDown)
			},
		},
	)
	return cmd
}

func (a *app) migrate(direction database.MigrateDirection) error {
	if a.cfg.StoreDriver != config.DriverPostgres {
		return fmt.Errorf("migrate applies to the %s store only; sqlite migrates itself on open", config.DriverPostgres)
	}
	return database.RunMigrations(a.logger, a.cfg.DatabaseURL, a.cfg.MigrationsPath, direction)
}
