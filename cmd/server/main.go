package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/natanhermes/buildflow/config"
	"github.com/natanhermes/buildflow/pkg/database"
	applogger "github.com/natanhermes/buildflow/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "buildflow",
	Short:         "API de acompanhamento de obras BuildFlow",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "arquivo de configuração (padrão ./config/config.yaml)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "erro: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap holds what every subcommand needs.
type bootstrap struct {
	cfg    *config.Config
	logger *zap.Logger
	level  zap.AtomicLevel
}

func loadBootstrap() (*bootstrap, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("carregar configuração: %w", err)
	}
	logger, level, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("inicializar logger: %w", err)
	}
	return &bootstrap{cfg: cfg, logger: logger, level: level}, nil
}

func (b *bootstrap) openDB(ctx context.Context) (*gorm.DB, error) {
	db, err := database.NewDB(ctx, &b.cfg.Database, b.cfg.Log.Level, b.logger)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
