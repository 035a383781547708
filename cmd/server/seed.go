package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/internal/repository"
	"github.com/natanhermes/buildflow/internal/seed"
	"github.com/natanhermes/buildflow/internal/service"
	"github.com/natanhermes/buildflow/pkg/jwt"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Carrega usuários, obras e equipes de um arquivo YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := loadBootstrap()
		if err != nil {
			return err
		}
		defer b.logger.Sync()

		f, err := seed.Load(seedFile)
		if err != nil {
			return err
		}

		db, err := b.openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB(db)

		repo := repository.NewRepository(db)
		svc := service.NewService(b.cfg, repo, jwt.NewManager(&b.cfg.Auth), nil, b.logger)

		sum, err := seed.Apply(cmd.Context(), svc, f, b.logger)
		if err != nil {
			return fmt.Errorf("seed interrompido: %w", err)
		}
		b.logger.Info("seed concluído",
			zap.Int("usuarios", sum.Usuarios),
			zap.Int("obras", sum.Obras),
			zap.Int("equipes", sum.Equipes),
			zap.Int("integrantes", sum.Integrantes),
			zap.Int("ignorados", sum.Skipped),
		)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "config/seed.yaml", "arquivo YAML de seed")
}
