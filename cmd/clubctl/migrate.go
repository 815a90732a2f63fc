package main

import (
	"github.com/spf13/cobra"

	"github.com/iliyamo/football-club/internal/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema.",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, db, err := openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				return database.Migrate(cmd.Context(), db)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, db, err := openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				return database.Down(cmd.Context(), db)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the state of each migration.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, db, err := openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				return database.Status(cmd.Context(), db, cmd.OutOrStdout())
			},
		},
	)
	return cmd
}
