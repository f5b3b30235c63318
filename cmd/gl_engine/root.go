package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/SscSPs/gl_engine/internal/platform/config"
	"github.com/SscSPs/gl_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/gl_engine/pkg/database"
)

// app is the state shared by every subcommand once the root has run.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	flagStore  string
	flagSQLite string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "gl_engine",
		Short:         "Double-entry general ledger service",
		Long:          "A general ledger with a chart of accounts, draft and posted vouchers, balances and financial statements, backed by PostgreSQL or SQLite.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.flagStore, "store", "", "Store driver override (postgres or sqlite)")
	root.PersistentFlags().StringVar(&a.flagSQLite, "db", "", "SQLite database path override")

	root.AddCommand(newServeCmd(a), newMigrateCmd(a), newReportCmd(a), newTokenCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		return err
	}
	if a.flagStore != "" {
		cfg.StoreDriver = a.flagStore
	}
	if a.flagSQLite != "" {
		cfg.SQLitePath = a.flagSQLite
	}

	a.cfg = cfg
	// Reports print JSON on stdout, so only the server logs there.
	out := os.Stderr
	if cmd.Name() == "serve" {
		out = os.Stdout
	}
	a.logger = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(a.logger)
	return nil
}

// store is an opened ledger store: repositories plus its lifecycle hooks.
type store struct {
	repos portsrepo.RepositoryProvider
	ping  func(ctx context.Context) error
	close func()
}

// openStore connects the configured driver. Postgres migrations run
// through golang-migrate when enabled; SQLite applies its own schema.
func (a *app) openStore(ctx context.Context) (*store, error) {
	switch a.cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := database.NewPgxPool(ctx, a.cfg.DatabaseURL, a.cfg.EnableDBCheck)
		if err != nil {
			return nil, err
		}
		a.logger.Info("Database connection pool established.")

		if a.cfg.RunMigrations {
			if err := database.RunMigrations(a.logger, a.cfg.DatabaseURL, a.cfg.MigrationsPath, database.MigrateUp); err != nil {
				database.ClosePgxPool(pool)
				return nil, err
			}
		}
		return &store{
			repos: pgsql.NewRepositoryProvider(pool),
			ping:  pool.Ping,
			close: func() { database.ClosePgxPool(pool) },
		}, nil

	case config.DriverSQLite:
		st, err := database.OpenSQLite(a.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.logger.Info("SQLite store opened", slog.String("path", a.cfg.SQLitePath))
		return &store{
			repos: st.Repositories(),
			ping:  st.Ping,
			close: func() {
				if err := st.Close(); err != nil {
					a.logger.Error("Error closing SQLite store", slog.String("error", err.Error()))
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", a.cfg.StoreDriver)
}
