package main

import (
	"github.com/spf13/cobra"

	"github.com/Dosada05/event-brackets/db"
)

var migrateStatusOnly bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		conn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout)
		if err != nil {
			return err
		}
		defer conn.Close()

		if migrateStatusOnly {
			return db.MigrationStatus(cmd.Context(), conn)
		}
		if err := db.Migrate(cmd.Context(), conn); err != nil {
			return err
		}
		logger.Info("database migrations applied")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatusOnly, "status", false, "print migration status instead of applying")
}
