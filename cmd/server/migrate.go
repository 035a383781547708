package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/natanhermes/buildflow/pkg/database"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Gerencia as migrações do banco",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Aplica as migrações pendentes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := loadBootstrap()
		if err != nil {
			return err
		}
		defer b.logger.Sync()

		db, err := b.openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB(db)

		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("obter sql.DB: %w", err)
		}
		return database.RunMigrations(sqlDB, b.logger)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Reverte migrações",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := loadBootstrap()
		if err != nil {
			return err
		}
		defer b.logger.Sync()

		db, err := b.openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB(db)

		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("obter sql.DB: %w", err)
		}
		return database.RollbackMigrations(sqlDB, migrateSteps, b.logger)
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "quantidade de migrações a reverter")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}
