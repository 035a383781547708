package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/repository"
)

// DashboardService headline metrics.
type DashboardService interface {
	Metrics(ctx context.Context) (*dto.DashboardMetrics, error)
}

type dashboardService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, now: time.Now, logger: logger}
}

func (s *dashboardService) Metrics(ctx context.Context) (*dto.DashboardMetrics, error) {
	var (
		m        dto.DashboardMetrics
		stats    *repository.ExecutionStats
		aditivos *repository.AditivoTotals
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		m.ObrasAtivas, err = s.repo.Obra.CountActive(gctx, s.now())
		return err
	})
	g.Go(func() (err error) {
		stats, err = s.repo.Pavimento.Stats(gctx)
		return err
	})
	g.Go(func() (err error) {
		aditivos, err = s.repo.Atividade.SumAditivos(gctx)
		return err
	})
	g.Go(func() (err error) {
		m.TotalAtividades, err = s.repo.Atividade.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("falha ao calcular métricas", zap.Error(err))
		return nil, err
	}

	m.TotalM2Executado = stats.TotalExecutadoM2
	m.PercentualMedioExecutado = stats.MediaPercentual
	m.TotalAditivoM3 = aditivos.TotalM3
	m.TotalAditivoL = aditivos.TotalL
	return &m, nil
}
