// Package cli implements marketplacectl, the operator tool for schema
// migrations, seeding and account management.
package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"computing-marketplace/api/internal/config"
	"computing-marketplace/api/internal/database"
	"computing-marketplace/api/internal/log"
)

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "marketplacectl",
		Short:        "Operator tools for the computing marketplace API",
		SilenceUsage: true,
	}

	cmd.AddCommand(
		newMigrateCommand(),
		newSeedCommand(),
		newUserCommand(),
	)
	return cmd
}

// env is what every subcommand needs: config, a logger and a database pool.
type env struct {
	cfg  *config.AppConfig
	log  zerolog.Logger
	pool *pgxpool.Pool
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := log.New(cfg.Environment, cfg.Logging.Level)

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &env{cfg: cfg, log: logger, pool: pool}, nil
}

func (e *env) Close() {
	e.pool.Close()
}
