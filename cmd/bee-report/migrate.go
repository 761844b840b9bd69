package main

import (
	"github.com/spf13/cobra"

	"github.com/banshee-data/bee.report/internal/db"
)

func newMigrateCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "migrate ACTION [ARGS]",
		Short: "Manage the run database schema (up, down, version, force N)",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.OpenDB(dbPath)
			if err != nil {
				return err
			}
			defer database.Close()
			return db.RunMigrateCommand(database, args, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "runs.db", "SQLite database path")
	return cmd
}
