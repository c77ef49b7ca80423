package main

import (
	"log/slog"

	"github.com/Dosada05/spikezone/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		dbConn, err := openDatabase(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeDatabase(dbConn, logger)

		applied, err := db.Migrate(cmd.Context(), dbConn, db.Migrations())
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			logger.Info("database schema is up to date")
			return nil
		}
		logger.Info("migrations applied", slog.Any("versions", applied))
		return nil
	},
}
