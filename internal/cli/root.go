// Package cli holds the school-core command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/school-core/pkg/config"
	"github.com/noah-isme/school-core/pkg/database"
	"github.com/noah-isme/school-core/pkg/logger"
)

// NewRootCommand builds the command tree. A fresh tree is returned on every call.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "school-core",
		Short:         "Teacher timetable and grade records service",
		Long:          "school-core keeps classroom timetables free of teacher double-booking and records subject grades.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DB_PATH)")

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newGradeCommand())
	root.AddCommand(newWorkloadCommand())
	root.AddCommand(newTokenCommand())
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig reads the environment and applies the --db override, which always selects SQLite.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = p
	}
	return cfg, nil
}

// openStore loads config, builds the logger and returns a migrated database.
func openStore(ctx context.Context, cmd *cobra.Command) (*config.Config, *zap.Logger, *sqlx.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	return cfg, logr, db, nil
}
