// Command taskctl runs operator tasks against the taskpulse database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/internal/config"
	pgInfra "github.com/fastygo/taskpulse/internal/infrastructure/postgres"
	"github.com/fastygo/taskpulse/pkg/logger"
)

var Version = "dev"

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "Operator tools for taskpulse",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(recalcCmd())
	rootCmd.AddCommand(dashboardCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every subcommand needs: configuration and a logger.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	zapLogger, err := logger.New(logger.Config{Level: level, Encoding: "console"})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: zapLogger}, nil
}

// withPool runs fn against a Postgres pool. The memory driver has no state
// outside the server process, so there is nothing to operate on.
func withPool(ctx context.Context, fn func(ctx context.Context, e *env, pool *pgxpool.Pool) error) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.logger.Sync()
	if !e.cfg.UsesPostgres() {
		return fmt.Errorf("taskctl needs STORAGE_DRIVER=%s, got %q", config.DriverPostgres, e.cfg.Storage.Driver)
	}
	pool, err := pgInfra.NewPool(ctx, e.cfg.Database, e.logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	return fn(ctx, e, pool)
}
