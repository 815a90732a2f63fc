// Command clubctl is the operator CLI: it applies database migrations and
// bootstraps superuser accounts, neither of which the HTTP API exposes.
package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/football-club/internal/config"
	"github.com/iliyamo/football-club/internal/database"
	"github.com/iliyamo/football-club/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "clubctl",
	Short:         "Operate the football club backend.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(newMigrateCmd(), newCreateSuperuserCmd())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logging.New(os.Stderr, "text", "error").Error(context.Background(), "clubctl failed", "error", err)
		os.Exit(1)
	}
}

// openDB loads the same configuration the server uses and connects.
func openDB() (config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, db, nil
}
